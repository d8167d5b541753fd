package achievements

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeStore is an in-memory Store with per-call failure injection.
type fakeStore struct {
	mu       sync.Mutex
	unlocks  map[string]bool
	blob     []byte
	insErr   error
	saveErr  error
	inserted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{unlocks: make(map[string]bool)}
}

func (f *fakeStore) UnlockedIDs(ctx context.Context, userID uint) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.unlocks))
	for id := range f.unlocks {
		out[id] = true
	}
	return out, nil
}

func (f *fakeStore) InsertUnlock(ctx context.Context, userID uint, achievementID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insErr != nil {
		return f.insErr
	}
	if f.unlocks[achievementID] {
		return ErrAlreadyUnlocked
	}
	f.unlocks[achievementID] = true
	f.inserted = append(f.inserted, achievementID)
	return nil
}

func (f *fakeStore) LatestTracking(ctx context.Context, userID uint) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blob, nil
}

func (f *fakeStore) SaveTracking(ctx context.Context, userID uint, blob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.blob = blob
	return nil
}

func (f *fakeStore) Reset(ctx context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks = make(map[string]bool)
	f.blob = nil
	return nil
}

func (f *fakeStore) insertCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, got := range f.inserted {
		if got == id {
			n++
		}
	}
	return n
}

type recordedToast struct {
	title    string
	duration time.Duration
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []recordedToast
}

func (f *fakeNotifier) Notify(userID uint, title, description string, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, recordedToast{title: title, duration: duration})
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.toasts)
}

type fakeAwarder struct {
	mu     sync.Mutex
	grants []Rarity
}

func (f *fakeAwarder) AwardAchievementXP(ctx context.Context, rarity Rarity, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, rarity)
}

func openTestSession(t *testing.T, store *fakeStore, notifier *fakeNotifier, xp *fakeAwarder) *Session {
	t.Helper()
	sess, err := OpenSession(context.Background(), 1, store, notifier, xp)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	sess.Engine().SetClock(fixedClock(calmTuesday))
	return sess
}

func TestUnlockHappyPath(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	xp := &fakeAwarder{}
	sess := openTestSession(t, store, notifier, xp)

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)

	if !sess.Unlocked("first_steps") {
		t.Fatal("first_steps not unlocked after subject_created")
	}
	if got := store.insertCount("first_steps"); got != 1 {
		t.Fatalf("insert count = %d, want 1", got)
	}
	if notifier.count() != 1 {
		t.Fatalf("toast count = %d, want 1", notifier.count())
	}
	if len(xp.grants) != 1 || xp.grants[0] != RarityCommon {
		t.Fatalf("xp grants = %v, want one common grant", xp.grants)
	}
	if len(store.blob) == 0 {
		t.Fatal("tracking blob not persisted after the pass")
	}
}

func TestUnlockAtMostOnce(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	sess := openTestSession(t, store, notifier, &fakeAwarder{})

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)

	if got := store.insertCount("first_steps"); got != 1 {
		t.Fatalf("insert count = %d, want 1", got)
	}
	if notifier.count() != 1 {
		t.Fatalf("toast count = %d, want 1", notifier.count())
	}
}

func TestDuplicateInsertAbsorbedSilently(t *testing.T) {
	store := newFakeStore()
	// Another writer already won the race
	store.unlocks["first_steps"] = true

	notifier := &fakeNotifier{}
	xp := &fakeAwarder{}
	sess := openTestSession(t, store, notifier, xp)
	// Simulate a session loaded before the other writer's unlock landed
	sess.mu.Lock()
	delete(sess.unlocked, "first_steps")
	sess.mu.Unlock()

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)

	if notifier.count() != 0 {
		t.Fatal("duplicate insert produced a toast")
	}
	if len(xp.grants) != 0 {
		t.Fatal("duplicate insert granted XP")
	}
	if !sess.Unlocked("first_steps") {
		t.Fatal("duplicate insert did not mark the id locally")
	}
}

func TestInsertFailureAbortsAndRetries(t *testing.T) {
	store := newFakeStore()
	store.insErr = errors.New("connection reset")

	notifier := &fakeNotifier{}
	sess := openTestSession(t, store, notifier, &fakeAwarder{})

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	if sess.Unlocked("first_steps") {
		t.Fatal("failed insert still marked the id unlocked")
	}
	if notifier.count() != 0 {
		t.Fatal("failed insert produced a toast")
	}

	// Store recovers; a later pass must retry and confirm. first_steps is
	// action-gated, so the action has to fire again.
	store.mu.Lock()
	store.insErr = nil
	store.mu.Unlock()

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	if !sess.Unlocked("first_steps") {
		t.Fatal("unlock not retried after the store recovered")
	}
	if notifier.count() != 1 {
		t.Fatalf("toast count = %d, want 1", notifier.count())
	}
}

func TestFailedInsertDoesNotArmCooldown(t *testing.T) {
	store := newFakeStore()
	store.insErr = errors.New("connection reset")
	notifier := &fakeNotifier{}
	sess := openTestSession(t, store, notifier, &fakeAwarder{})

	// night_owl carries a 1h cooldown; inside the 02:00-05:59 window any
	// pass satisfies it.
	threeAM := time.Date(2025, time.March, 11, 3, 0, 0, 0, referenceLocation)
	sess.Engine().SetClock(fixedClock(threeAM))

	sess.HandleAction(context.Background(), ActionThemeChanged, nil)
	if sess.Unlocked("night_owl") {
		t.Fatal("failed insert still marked night_owl unlocked")
	}

	store.mu.Lock()
	store.insErr = nil
	store.mu.Unlock()

	// One minute later, far inside the cooldown the failed attempt would
	// have armed.
	sess.Engine().SetClock(fixedClock(threeAM.Add(time.Minute)))
	sess.HandleAction(context.Background(), ActionThemeChanged, nil)
	if !sess.Unlocked("night_owl") {
		t.Fatal("retry throttled by the failed attempt's cooldown stamp")
	}
	if notifier.count() != 1 {
		t.Fatalf("toast count = %d, want 1", notifier.count())
	}
}

func TestPreviouslyUnlockedNeverRefires(t *testing.T) {
	store := newFakeStore()
	store.unlocks["first_steps"] = true

	notifier := &fakeNotifier{}
	sess := openTestSession(t, store, notifier, &fakeAwarder{})

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	if notifier.count() != 0 {
		t.Fatal("persisted unlock re-fired a toast")
	}
}

func TestImportGuardSuppressesEvaluation(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	sess := openTestSession(t, store, notifier, &fakeAwarder{})

	sess.BeginImport(time.Minute)
	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)

	if sess.Unlocked("first_steps") {
		t.Fatal("achievement unlocked during import")
	}
	// Side effects still land while suppressed
	if len(store.blob) == 0 {
		t.Fatal("tracking not persisted during import")
	}

	sess.EndImport()
	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	if !sess.Unlocked("first_steps") {
		t.Fatal("achievement not unlockable after import ended")
	}
}

func TestImportGuardExpires(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store, &fakeNotifier{}, &fakeAwarder{})

	sess.BeginImport(time.Minute)
	sess.Engine().SetClock(fixedClock(calmTuesday.Add(2 * time.Minute)))

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	if !sess.Unlocked("first_steps") {
		t.Fatal("import guard still active past its window")
	}
}

func TestResetWipesEverything(t *testing.T) {
	store := newFakeStore()
	sess := openTestSession(t, store, &fakeNotifier{}, &fakeAwarder{})

	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	if !sess.Unlocked("first_steps") {
		t.Fatal("setup: unlock did not land")
	}

	if err := sess.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if sess.Unlocked("first_steps") {
		t.Fatal("unlock survived Reset in memory")
	}
	if len(store.unlocks) != 0 || store.blob != nil {
		t.Fatal("unlock rows or blob survived Reset in the store")
	}

	// Re-unlockable after reset
	sess.Engine().SetClock(fixedClock(calmTuesday))
	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)
	if !sess.Unlocked("first_steps") {
		t.Fatal("achievement not re-unlockable after Reset")
	}
}

func TestClosedSessionIgnoresCalls(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	sess := openTestSession(t, store, notifier, &fakeAwarder{})

	sess.Close()
	sess.HandleAction(context.Background(), ActionSubjectCreated, nil)

	if sess.Unlocked("first_steps") {
		t.Fatal("closed session still unlocked an achievement")
	}
	if len(store.blob) != 0 {
		t.Fatal("closed session still persisted tracking")
	}
}

func TestOpenSessionDiscardsMalformedBlob(t *testing.T) {
	store := newFakeStore()
	store.blob = []byte("{definitely not json")
	store.unlocks["first_steps"] = true

	sess, err := OpenSession(context.Background(), 1, store, &fakeNotifier{}, &fakeAwarder{})
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	if sess.Engine().Tracking().ScheduleSlotsAdded != 0 {
		t.Fatal("malformed blob produced non-zero state")
	}
	// The unlocked set still protects against re-granting
	if !sess.Unlocked("first_steps") {
		t.Fatal("unlocked set lost alongside the blob")
	}
}

func TestSessionResume(t *testing.T) {
	store := newFakeStore()
	first := openTestSession(t, store, &fakeNotifier{}, &fakeAwarder{})

	for i := 0; i < 7; i++ {
		first.HandleAction(context.Background(), ActionScheduleSlotAdded, nil)
	}
	first.Close()

	second := openTestSession(t, store, &fakeNotifier{}, &fakeAwarder{})
	if got := second.Engine().Tracking().ScheduleSlotsAdded; got != 7 {
		t.Fatalf("resumed slots = %d, want 7", got)
	}
}
