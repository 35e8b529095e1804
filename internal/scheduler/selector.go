package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pigmemento/internal/models"

	"github.com/google/uuid"
)

// Selector produces the ordered list of cases to present next. It is
// read-only: any failure is safe to retry in full.
type Selector struct {
	store Store
}

// NewSelector creates a new selector
func NewSelector(store Store) *Selector {
	return &Selector{store: store}
}

// candidate carries the per-case ordering keys. A zero nextDueAt means
// the case is unseen and sorts as minimally due; a zero recentlyWrongAt
// means no boost.
type candidate struct {
	id              uuid.UUID
	nextDueAt       time.Time
	recentlyWrongAt time.Time
}

// SelectCases returns up to limit case IDs for the user, in display
// order: due-or-unseen cases first (recently-wrong boosted, earliest
// due first), topped up with not-yet-due exploration cases. Cases
// shown within the cooldown window are never returned. An anonymous
// user (uuid.Nil) gets a plain ID-ordered page with no
// personalization. difficulty filters the base set when non-empty.
func (s *Selector) SelectCases(ctx context.Context, userID uuid.UUID, difficulty string, limit int, now time.Time) ([]uuid.UUID, error) {
	if limit < 1 {
		limit = 1
	}

	cases, err := s.store.QueryCases(ctx, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}

	if userID == uuid.Nil {
		return anonymousPage(cases, limit), nil
	}

	statsRows, err := s.store.QueryStatsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}

	byCase := make(map[uuid.UUID]*models.UserCaseStats, len(statsRows))
	for i := range statsRows {
		byCase[statsRows[i].CaseID] = &statsRows[i]
	}

	seenCutoff := now.Add(-CooldownWindow)
	wrongCutoff := now.Add(-RecentlyWrongWindow)

	var due, exploration []candidate
	for _, c := range cases {
		stats := byCase[c.ID]

		// Cooldown applies to both pools
		if stats != nil && stats.LastSeenAt != nil && stats.LastSeenAt.After(seenCutoff) {
			continue
		}

		if stats == nil {
			// Unseen: implicitly due immediately
			due = append(due, candidate{id: c.ID})
			continue
		}

		cand := candidate{id: c.ID, nextDueAt: stats.NextDueAt}
		if stats.RecentlyWrongAt != nil && stats.RecentlyWrongAt.After(wrongCutoff) {
			cand.recentlyWrongAt = *stats.RecentlyWrongAt
		}

		if stats.NextDueAt.After(now) {
			exploration = append(exploration, cand)
		} else {
			due = append(due, cand)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return lessDue(due[i], due[j])
	})
	sort.SliceStable(exploration, func(i, j int) bool {
		return lessExploration(exploration[i], exploration[j])
	})

	result := make([]uuid.UUID, 0, limit)
	for _, cand := range due {
		if len(result) == limit {
			break
		}
		result = append(result, cand.id)
	}
	for _, cand := range exploration {
		if len(result) == limit {
			break
		}
		result = append(result, cand.id)
	}
	return result, nil
}

// lessDue orders the due-or-unseen pool: recently-wrong cases first,
// most recent mistake leading; then earliest due (unseen minimal);
// then descending ID as the stable tiebreak.
func lessDue(a, b candidate) bool {
	aWrong := !a.recentlyWrongAt.IsZero()
	bWrong := !b.recentlyWrongAt.IsZero()
	if aWrong != bWrong {
		return aWrong
	}
	if aWrong && !a.recentlyWrongAt.Equal(b.recentlyWrongAt) {
		return a.recentlyWrongAt.After(b.recentlyWrongAt)
	}
	if !a.nextDueAt.Equal(b.nextDueAt) {
		return a.nextDueAt.Before(b.nextDueAt)
	}
	return a.id.String() > b.id.String()
}

// lessExploration orders the top-up pool by closest-to-due first with
// the same tiebreak.
func lessExploration(a, b candidate) bool {
	if !a.nextDueAt.Equal(b.nextDueAt) {
		return a.nextDueAt.Before(b.nextDueAt)
	}
	return a.id.String() > b.id.String()
}

// anonymousPage is the degraded selection for users with no identity:
// a deterministic ID-ordered page.
func anonymousPage(cases []models.CaseSummary, limit int) []uuid.UUID {
	ids := make([]uuid.UUID, len(cases))
	for i, c := range cases {
		ids[i] = c.ID
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
