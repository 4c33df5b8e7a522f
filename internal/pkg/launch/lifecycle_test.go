package launch

import (
	"testing"
	"time"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceScheduledToOngoing(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)

	today := repo.addProject(projectScheduledOn(1, models.LaunchTierFree, testNow))
	tomorrow := repo.addProject(projectScheduledOn(2, models.LaunchTierFree, launchcalendar.AddDays(testNow, 1)))

	ids, err := svc.AdvanceScheduledToOngoing()
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, today.ID, ids[0])

	stored, _ := repo.GetProjectByID(today.ID)
	assert.Equal(t, models.StatusOngoing, stored.Status)
	untouched, _ := repo.GetProjectByID(tomorrow.ID)
	assert.Equal(t, models.StatusScheduled, untouched.Status)
}

func TestAdvanceOngoingToLaunched(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)

	yesterday := projectScheduledOn(1, models.LaunchTierFree, launchcalendar.AddDays(testNow, -1))
	yesterday.Status = models.StatusOngoing
	launched := repo.addProject(yesterday)

	stillToday := projectScheduledOn(2, models.LaunchTierFree, testNow)
	stillToday.Status = models.StatusOngoing
	ongoing := repo.addProject(stillToday)

	ids, err := svc.AdvanceOngoingToLaunched()
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, launched.ID, ids[0])

	stored, _ := repo.GetProjectByID(ongoing.ID)
	assert.Equal(t, models.StatusOngoing, stored.Status)
}

func TestRunLaunchCycleIdempotent(t *testing.T) {
	svc, repo, _, votes := newTestService(testNow)

	repo.addProject(projectScheduledOn(1, models.LaunchTierFree, testNow))
	y := projectScheduledOn(2, models.LaunchTierFree, launchcalendar.AddDays(testNow, -1))
	y.Status = models.StatusOngoing
	launched := repo.addProject(y)
	votes.counts[launched.ID] = 4

	first, err := svc.RunLaunchCycle()
	require.NoError(t, err)
	assert.Len(t, first.MovedToOngoing, 1)
	assert.Len(t, first.MovedToLaunched, 1)
	assert.Len(t, first.Ranked, 1)

	snapshot := snapshotProjects(repo)

	// Second run with the clock unchanged: nothing matches any filter.
	second, err := svc.RunLaunchCycle()
	require.NoError(t, err)
	assert.Empty(t, second.MovedToOngoing)
	assert.Empty(t, second.MovedToLaunched)
	assert.Empty(t, second.Ranked)
	assert.Zero(t, second.SweptPayments)

	assert.Equal(t, snapshot, snapshotProjects(repo))
}

func TestRunLaunchCycleNoDoubleTransitionInOneRun(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)

	// A project scheduled today moves to ongoing in phase 1 but must not
	// continue to launched in the same run: phase 2 only looks at
	// yesterday's window.
	p := repo.addProject(projectScheduledOn(1, models.LaunchTierFree, testNow))

	res, err := svc.RunLaunchCycle()
	require.NoError(t, err)
	assert.Len(t, res.MovedToOngoing, 1)
	assert.Empty(t, res.MovedToLaunched)

	stored, _ := repo.GetProjectByID(p.ID)
	assert.Equal(t, models.StatusOngoing, stored.Status)
}

func TestSweepAbandonedPayments(t *testing.T) {
	svc, repo, _, _ := newTestService(testNow)

	stale := projectDraft(1, models.LaunchTierPremium)
	stale.Status = models.StatusPaymentPending
	staleStored := repo.addProject(stale)
	repo.mu.Lock()
	repo.projects[staleStored.ID].UpdatedAt = testNow.Add(-25 * time.Hour)
	repo.mu.Unlock()

	fresh := projectDraft(2, models.LaunchTierPremium)
	fresh.Status = models.StatusPaymentPending
	freshStored := repo.addProject(fresh)
	repo.mu.Lock()
	repo.projects[freshStored.ID].UpdatedAt = testNow.Add(-23 * time.Hour)
	repo.mu.Unlock()

	swept, err := svc.SweepAbandonedPayments()
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	_, err = repo.GetProjectByID(staleStored.ID)
	assert.Error(t, err)
	_, err = repo.GetProjectByID(freshStored.ID)
	assert.NoError(t, err)
}

func snapshotProjects(repo *memoryRepo) map[uint]models.Project {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	out := make(map[uint]models.Project, len(repo.projects))
	for id, p := range repo.projects {
		out[id] = *p
	}
	return out
}
