package scheduler

import (
	"context"
	"testing"
	"time"

	"pigmemento/internal/models"

	"github.com/google/uuid"
)

func newCaseIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestSelectNeverExceedsLimitOrRepeats(t *testing.T) {
	store := NewMemoryStore()
	for _, id := range newCaseIDs(20) {
		store.AddCase(id, models.DifficultyMed, testNow)
	}
	selector := NewSelector(store)

	result, err := selector.SelectCases(context.Background(), uuid.New(), "", 7, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(result) != 7 {
		t.Errorf("len(result) = %d, want 7", len(result))
	}

	seen := make(map[uuid.UUID]bool)
	for _, id := range result {
		if seen[id] {
			t.Errorf("case %s returned twice", id)
		}
		seen[id] = true
	}
}

func TestSelectHonorsDifficultyFilter(t *testing.T) {
	store := NewMemoryStore()
	easy := uuid.New()
	hard := uuid.New()
	store.AddCase(easy, models.DifficultyEasy, testNow)
	store.AddCase(hard, models.DifficultyHard, testNow)
	selector := NewSelector(store)

	result, err := selector.SelectCases(context.Background(), uuid.New(), models.DifficultyEasy, 10, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(result) != 1 || result[0] != easy {
		t.Errorf("result = %v, want only the easy case %s", result, easy)
	}
}

func TestSelectEmptyFilterMatchReturnsEmpty(t *testing.T) {
	store := NewMemoryStore()
	store.AddCase(uuid.New(), models.DifficultyEasy, testNow)
	selector := NewSelector(store)

	result, err := selector.SelectCases(context.Background(), uuid.New(), models.DifficultyHard, 10, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(result) != 0 {
		t.Errorf("result = %v, want empty", result)
	}
}

func TestSelectClampsNonPositiveLimit(t *testing.T) {
	store := NewMemoryStore()
	for _, id := range newCaseIDs(3) {
		store.AddCase(id, models.DifficultyMed, testNow)
	}
	selector := NewSelector(store)

	for _, limit := range []int{0, -5} {
		result, err := selector.SelectCases(context.Background(), uuid.New(), "", limit, testNow)
		if err != nil {
			t.Fatalf("SelectCases(limit=%d) error = %v", limit, err)
		}
		if len(result) != 1 {
			t.Errorf("SelectCases(limit=%d) returned %d cases, want 1", limit, len(result))
		}
	}
}

func TestSelectCooldownExcludesRecentlyShown(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	justShown := uuid.New()
	shownEarlier := uuid.New()
	store.AddCase(justShown, models.DifficultyMed, testNow)
	store.AddCase(shownEarlier, models.DifficultyMed, testNow)

	oneMinuteAgo := testNow.Add(-time.Minute)
	sixMinutesAgo := testNow.Add(-6 * time.Minute)
	seedStats(t, store, models.UserCaseStats{
		UserID:     userID,
		CaseID:     justShown,
		EaseFactor: DefaultEaseFactor,
		NextDueAt:  testNow.Add(-time.Hour), // due, but inside cooldown
		LastSeenAt: &oneMinuteAgo,
	})
	seedStats(t, store, models.UserCaseStats{
		UserID:     userID,
		CaseID:     shownEarlier,
		EaseFactor: DefaultEaseFactor,
		NextDueAt:  testNow.Add(-time.Hour),
		LastSeenAt: &sixMinutesAgo,
	})

	selector := NewSelector(store)
	result, err := selector.SelectCases(context.Background(), userID, "", 10, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}

	if containsID(result, justShown) {
		t.Errorf("case shown %v ago returned despite cooldown", time.Minute)
	}
	if !containsID(result, shownEarlier) {
		t.Errorf("case shown outside cooldown missing from %v", result)
	}
}

func TestSelectRecentlyWrongRanksFirst(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	wrongCase := uuid.New()
	plainCase := uuid.New()
	staleWrongCase := uuid.New()
	store.AddCase(wrongCase, models.DifficultyMed, testNow)
	store.AddCase(plainCase, models.DifficultyMed, testNow)
	store.AddCase(staleWrongCase, models.DifficultyMed, testNow)

	due := testNow.Add(-time.Hour)
	wrongAt := testNow.Add(-24 * time.Hour)
	staleWrongAt := testNow.Add(-8 * 24 * time.Hour) // outside the boost window
	seedStats(t, store, models.UserCaseStats{
		UserID: userID, CaseID: wrongCase,
		EaseFactor: DefaultEaseFactor, NextDueAt: due, RecentlyWrongAt: &wrongAt,
	})
	seedStats(t, store, models.UserCaseStats{
		UserID: userID, CaseID: plainCase,
		EaseFactor: DefaultEaseFactor, NextDueAt: due,
	})
	seedStats(t, store, models.UserCaseStats{
		UserID: userID, CaseID: staleWrongCase,
		EaseFactor: DefaultEaseFactor, NextDueAt: due, RecentlyWrongAt: &staleWrongAt,
	})

	selector := NewSelector(store)
	result, err := selector.SelectCases(context.Background(), userID, "", 3, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("len(result) = %d, want 3", len(result))
	}
	if result[0] != wrongCase {
		t.Errorf("result[0] = %s, want recently-wrong case %s first", result[0], wrongCase)
	}
}

func TestSelectOrdersDuePoolByNextDue(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	unseen := uuid.New()
	dueLongAgo := uuid.New()
	dueRecently := uuid.New()
	store.AddCase(unseen, models.DifficultyMed, testNow)
	store.AddCase(dueLongAgo, models.DifficultyMed, testNow)
	store.AddCase(dueRecently, models.DifficultyMed, testNow)

	longAgo := testNow.Add(-72 * time.Hour)
	recently := testNow.Add(-time.Hour)
	seedStats(t, store, models.UserCaseStats{
		UserID: userID, CaseID: dueLongAgo,
		EaseFactor: DefaultEaseFactor, NextDueAt: longAgo,
	})
	seedStats(t, store, models.UserCaseStats{
		UserID: userID, CaseID: dueRecently,
		EaseFactor: DefaultEaseFactor, NextDueAt: recently,
	})

	selector := NewSelector(store)
	result, err := selector.SelectCases(context.Background(), userID, "", 3, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	want := []uuid.UUID{unseen, dueLongAgo, dueRecently}
	for i, id := range want {
		if result[i] != id {
			t.Errorf("result[%d] = %s, want %s (full result %v)", i, result[i], id, result)
		}
	}
}

func TestSelectExplorationTopUp(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()

	dueCases := newCaseIDs(2)
	for _, id := range dueCases {
		store.AddCase(id, models.DifficultyMed, testNow)
	}

	notDue := newCaseIDs(10)
	for i, id := range notDue {
		store.AddCase(id, models.DifficultyMed, testNow)
		// Stagger future due dates so ordering is observable
		seedStats(t, store, models.UserCaseStats{
			UserID: userID, CaseID: id,
			EaseFactor: DefaultEaseFactor,
			NextDueAt:  testNow.Add(time.Duration(i+1) * 24 * time.Hour),
		})
	}

	selector := NewSelector(store)
	result, err := selector.SelectCases(context.Background(), userID, "", 5, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(result) != 5 {
		t.Fatalf("len(result) = %d, want 5", len(result))
	}

	// First two are the due/unseen pool, in some order
	if !containsID(dueCases, result[0]) || !containsID(dueCases, result[1]) {
		t.Errorf("result[0:2] = %v, want the due cases %v", result[:2], dueCases)
	}

	// Remaining three are the closest-to-due exploration cases
	for i := 0; i < 3; i++ {
		if result[2+i] != notDue[i] {
			t.Errorf("result[%d] = %s, want %s", 2+i, result[2+i], notDue[i])
		}
	}
}

func TestSelectTiebreakIsDeterministic(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	ids := newCaseIDs(6)
	due := testNow.Add(-time.Hour)
	for _, id := range ids {
		store.AddCase(id, models.DifficultyMed, testNow)
		seedStats(t, store, models.UserCaseStats{
			UserID: userID, CaseID: id,
			EaseFactor: DefaultEaseFactor, NextDueAt: due,
		})
	}

	selector := NewSelector(store)
	first, err := selector.SelectCases(context.Background(), userID, "", 6, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	second, err := selector.SelectCases(context.Background(), userID, "", 6, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering not stable: %v vs %v", first, second)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].String() < first[i].String() {
			t.Errorf("tiebreak not descending by ID at %d: %v", i, first)
		}
	}
}

func TestSelectAnonymousIsPlainPage(t *testing.T) {
	store := NewMemoryStore()
	ids := newCaseIDs(5)
	for _, id := range ids {
		store.AddCase(id, models.DifficultyMed, testNow)
	}

	selector := NewSelector(store)
	result, err := selector.SelectCases(context.Background(), uuid.Nil, "", 3, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("len(result) = %d, want 3", len(result))
	}
	for i := 1; i < len(result); i++ {
		if result[i-1].String() >= result[i].String() {
			t.Errorf("anonymous page not ID-ordered: %v", result)
		}
	}
}

func TestAnswerThenImmediateSelectExcludesCase(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	caseID := uuid.New()
	store.AddCase(caseID, models.DifficultyMed, testNow)

	selector := NewSelector(store)
	updater := NewUpdater(store)

	// Unseen case is served first
	before, err := selector.SelectCases(context.Background(), userID, "", 5, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(before) != 1 || before[0] != caseID {
		t.Fatalf("before answer: result = %v, want [%s]", before, caseID)
	}

	if _, err := updater.Update(context.Background(), userID, caseID, true, 1000, testNow); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Not due anymore and inside the cooldown window
	after, err := selector.SelectCases(context.Background(), userID, "", 5, testNow)
	if err != nil {
		t.Fatalf("SelectCases() error = %v", err)
	}
	if len(after) != 0 {
		t.Errorf("after answer: result = %v, want empty", after)
	}
}
