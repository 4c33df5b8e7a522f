package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/tiers"
)

type fakeRepo struct {
	events   map[string]*models.PaymentWebhookEvent
	nextID   uint
	projects map[string]*models.Project
	sessions map[uint]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:   map[string]*models.PaymentWebhookEvent{},
		nextID:   1,
		projects: map[string]*models.Project{},
		sessions: map[uint]string{},
	}
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if stored, ok := r.events[key]; ok {
		return false, stored, nil
	}
	event.ID = r.nextID
	r.nextID++
	r.events[key] = event
	return true, event, nil
}

func (r *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	for _, ev := range r.events {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetProjectByUUID(uuid string) (*models.Project, error) {
	p, ok := r.projects[uuid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeRepo) SetProjectCheckoutSession(projectID uint, sessionID string) error {
	r.sessions[projectID] = sessionID
	return nil
}

type fakeProvider struct {
	created     *CheckoutSession
	createErr   error
	session     *CheckoutSession
	event       stripe.Event
	sigErr      error
	lastSuccess string
	lastCancel  string
}

func (p *fakeProvider) CreateCheckoutSession(projectUUID string, tier tiers.Tier, successURL, cancelURL string) (*CheckoutSession, error) {
	p.lastSuccess, p.lastCancel = successURL, cancelURL
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created.ProjectUUID = projectUUID
	return p.created, nil
}

func (p *fakeProvider) GetCheckoutSession(sessionID string) (*CheckoutSession, error) {
	return p.session, nil
}

func (p *fakeProvider) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	if p.sigErr != nil {
		return stripe.Event{}, p.sigErr
	}
	return p.event, nil
}

type fakeReconciler struct {
	confirmed []uint
	failed    []uint
	won       bool
}

func (f *fakeReconciler) ConfirmPayment(projectID uint) (bool, error) {
	f.confirmed = append(f.confirmed, projectID)
	return f.won, nil
}

func (f *fakeReconciler) FailPayment(projectID uint) (bool, error) {
	f.failed = append(f.failed, projectID)
	return f.won, nil
}

func pendingProject(repo *fakeRepo, id uint, uuid, tier string) *models.Project {
	p := &models.Project{
		UUID:       uuid,
		LaunchTier: tier,
		Status:     models.StatusPaymentPending,
	}
	p.ID = id
	repo.projects[uuid] = p
	return p
}

func checkoutCompletedEvent(eventID, projectUUID string) stripe.Event {
	raw, _ := json.Marshal(map[string]string{
		"client_reference_id": projectUUID,
		"payment_status":      "paid",
	})
	return stripe.Event{
		ID:   eventID,
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestStartCheckout(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{created: &CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}}
	svc := NewService(repo, provider, &fakeReconciler{})

	p := pendingProject(repo, 7, "uuid-7", models.LaunchTierPremium)
	url, err := svc.StartCheckout(context.Background(), p, "https://app/success", "https://app/cancel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://pay.example/cs_1" {
		t.Fatalf("unexpected checkout url: %q", url)
	}
	if repo.sessions[7] != "cs_1" {
		t.Fatalf("expected session id stored on project, got %q", repo.sessions[7])
	}
	if provider.created.ProjectUUID != "uuid-7" {
		t.Fatalf("expected project uuid as client reference, got %q", provider.created.ProjectUUID)
	}
}

func TestStartCheckoutRejectsNonPending(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeProvider{}, &fakeReconciler{})

	p := &models.Project{LaunchTier: models.LaunchTierPremium, Status: models.StatusScheduled}
	if _, err := svc.StartCheckout(context.Background(), p, "s", "c"); !errors.Is(err, ErrNotPendingPayment) {
		t.Fatalf("expected ErrNotPendingPayment, got %v", err)
	}
}

func TestStartCheckoutRejectsFreeTier(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeProvider{}, &fakeReconciler{})

	p := &models.Project{LaunchTier: models.LaunchTierFree, Status: models.StatusPaymentPending}
	if _, err := svc.StartCheckout(context.Background(), p, "s", "c"); err == nil {
		t.Fatalf("expected error for free tier checkout")
	}
}

func TestHandleWebhookCompletedConfirmsLaunch(t *testing.T) {
	repo := newFakeRepo()
	pendingProject(repo, 7, "uuid-7", models.LaunchTierPremium)
	provider := &fakeProvider{event: checkoutCompletedEvent("evt_1", "uuid-7")}
	rec := &fakeReconciler{won: true}
	svc := NewService(repo, provider, rec)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.confirmed) != 1 || rec.confirmed[0] != 7 {
		t.Fatalf("expected one confirm for project 7, got %v", rec.confirmed)
	}

	stored := repo.events["stripe/evt_1"]
	if stored == nil || stored.ProcessedAt == nil {
		t.Fatalf("expected event recorded and marked processed")
	}
	if !stored.SignatureValid {
		t.Fatalf("expected signature_valid on verified event")
	}
}

func TestHandleWebhookCompletedButUnpaidStaysPending(t *testing.T) {
	repo := newFakeRepo()
	pendingProject(repo, 7, "uuid-7", models.LaunchTierPremium)
	raw, _ := json.Marshal(map[string]string{
		"client_reference_id": "uuid-7",
		"payment_status":      "unpaid",
	})
	provider := &fakeProvider{event: stripe.Event{
		ID:   "evt_unpaid",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}}
	rec := &fakeReconciler{won: true}
	svc := NewService(repo, provider, rec)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.confirmed) != 0 {
		t.Fatalf("completed session without payment must not confirm, got %v", rec.confirmed)
	}
	if len(rec.failed) != 0 {
		t.Fatalf("completed session without payment must not fail the launch either")
	}
	stored := repo.events["stripe/evt_unpaid"]
	if stored == nil || stored.ProcessedAt == nil {
		t.Fatalf("expected unpaid delivery acknowledged and recorded")
	}
}

func TestHandleWebhookReplayProcessesOnce(t *testing.T) {
	repo := newFakeRepo()
	pendingProject(repo, 7, "uuid-7", models.LaunchTierPremium)
	provider := &fakeProvider{event: checkoutCompletedEvent("evt_1", "uuid-7")}
	rec := &fakeReconciler{won: true}
	svc := NewService(repo, provider, rec)

	for i := 0; i < 3; i++ {
		if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i, err)
		}
	}
	if len(rec.confirmed) != 1 {
		t.Fatalf("expected exactly one confirm across replays, got %d", len(rec.confirmed))
	}
}

func TestHandleWebhookExpiredFailsPayment(t *testing.T) {
	repo := newFakeRepo()
	pendingProject(repo, 7, "uuid-7", models.LaunchTierPremium)
	raw, _ := json.Marshal(map[string]string{"client_reference_id": "uuid-7"})
	provider := &fakeProvider{event: stripe.Event{
		ID:   "evt_2",
		Type: stripe.EventTypeCheckoutSessionExpired,
		Data: &stripe.EventData{Raw: raw},
	}}
	rec := &fakeReconciler{won: true}
	svc := NewService(repo, provider, rec)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.failed) != 1 || rec.failed[0] != 7 {
		t.Fatalf("expected one fail for project 7, got %v", rec.failed)
	}
	if len(rec.confirmed) != 0 {
		t.Fatalf("expired session must not confirm")
	}
}

func TestHandleWebhookInvalidSignature(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{sigErr: errors.New("bad signature")}
	rec := &fakeReconciler{}
	svc := NewService(repo, provider, rec)

	if err := svc.HandleWebhook(context.Background(), []byte(`{"x":1}`), "bad"); err == nil {
		t.Fatalf("expected signature error")
	}
	if len(rec.confirmed) != 0 && len(rec.failed) != 0 {
		t.Fatalf("invalid signature must not reach the launch engine")
	}
	// The delivery is still kept for audit, flagged invalid.
	for _, ev := range repo.events {
		if ev.SignatureValid {
			t.Fatalf("expected signature_valid=false on recorded event")
		}
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(repo.events))
	}
}

func TestHandleWebhookIgnoresUnrelatedEvents(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{event: stripe.Event{
		ID:   "evt_3",
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}}
	rec := &fakeReconciler{}
	svc := NewService(repo, provider, rec)

	if err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.confirmed) != 0 || len(rec.failed) != 0 {
		t.Fatalf("unrelated event must not transition anything")
	}
	stored := repo.events["stripe/evt_3"]
	if stored == nil || stored.ProcessedAt == nil {
		t.Fatalf("expected unrelated event acknowledged and recorded")
	}
}

func TestVerifyCheckoutPaidSession(t *testing.T) {
	repo := newFakeRepo()
	pendingProject(repo, 7, "uuid-7", models.LaunchTierPremium)
	provider := &fakeProvider{session: &CheckoutSession{ID: "cs_1", ProjectUUID: "uuid-7", Paid: true}}
	rec := &fakeReconciler{won: true}
	svc := NewService(repo, provider, rec)

	won, err := svc.VerifyCheckout(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !won || len(rec.confirmed) != 1 {
		t.Fatalf("expected confirmation via redirect fast path")
	}
}

func TestVerifyCheckoutUnpaidSession(t *testing.T) {
	repo := newFakeRepo()
	provider := &fakeProvider{session: &CheckoutSession{ID: "cs_1", ProjectUUID: "uuid-7", Paid: false}}
	rec := &fakeReconciler{}
	svc := NewService(repo, provider, rec)

	won, err := svc.VerifyCheckout(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if won || len(rec.confirmed) != 0 {
		t.Fatalf("unpaid session must not confirm")
	}
}

func TestRecordWebhookEventHashesMissingEventID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeProvider{}, &fakeReconciler{})

	created, stored, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    models.PaymentProviderStripe,
		PayloadJSON: `{"a":1}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected event created")
	}
	if len(stored.ProviderEventID) == 0 || stored.ProviderEventID[:5] != "hash:" {
		t.Fatalf("expected hashed event id, got %q", stored.ProviderEventID)
	}

	// Same payload dedupes on the hash.
	created, _, err = svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    models.PaymentProviderStripe,
		PayloadJSON: `{"a":1}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected duplicate payload to dedupe")
	}
}
