package launch

import "sort"

// MaxDailyRank is the lowest rank number the daily ranking hands out.
const MaxDailyRank = 3

// VoteTally pairs a project with its accumulated vote count.
type VoteTally struct {
	ProjectID uint
	Votes     int64
}

// RankedProject is one ranking assignment.
type RankedProject struct {
	ProjectID uint
	Rank      int
}

// RankByVotes computes the tie-aware daily ranking. Projects are sorted by
// vote count descending and partitioned into tie groups of equal counts.
// Every member of a group receives the current rank number; the counter
// then advances by exactly one regardless of group size, so two projects
// tied for first both take rank 1 and the next distinct count takes rank 2.
// Zero-vote projects are never ranked, and nothing past rank 3 is assigned.
func RankByVotes(tallies []VoteTally) []RankedProject {
	sorted := make([]VoteTally, 0, len(tallies))
	for _, t := range tallies {
		if t.Votes > 0 {
			sorted = append(sorted, t)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Votes > sorted[j].Votes
	})

	var out []RankedProject
	rank := 0
	var prevVotes int64 = -1
	for _, t := range sorted {
		if t.Votes != prevVotes {
			rank++
			prevVotes = t.Votes
		}
		if rank > MaxDailyRank {
			break
		}
		out = append(out, RankedProject{ProjectID: t.ProjectID, Rank: rank})
	}
	return out
}

// ComputeRanking counts votes for the given projects, ranks them and
// persists the result. Already-ranked projects keep their rank, which makes
// a re-run after a partial failure safe.
func (s *Service) ComputeRanking(projectIDs []uint) ([]RankedProject, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	tallies := make([]VoteTally, 0, len(projectIDs))
	for _, id := range projectIDs {
		votes, err := s.votes.CountVotes(id)
		if err != nil {
			return nil, err
		}
		tallies = append(tallies, VoteTally{ProjectID: id, Votes: votes})
	}

	ranked := RankByVotes(tallies)
	for _, r := range ranked {
		if _, err := s.repo.SetDailyRank(r.ProjectID, r.Rank); err != nil {
			return nil, err
		}
	}
	return ranked, nil
}
