// achievements/session.go - per-user session controller around one Engine
package achievements

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrAlreadyUnlocked is returned by Store.InsertUnlock when another writer
// has already unlocked the achievement. The session absorbs it silently.
var ErrAlreadyUnlocked = errors.New("achievement already unlocked")

// Store is the persistence boundary the session depends on. One row per
// (user, achievement) for unlocks, one latest-wins JSON blob per user for
// tracking state.
type Store interface {
	UnlockedIDs(ctx context.Context, userID uint) (map[string]bool, error)
	InsertUnlock(ctx context.Context, userID uint, achievementID string) error
	LatestTracking(ctx context.Context, userID uint) ([]byte, error)
	SaveTracking(ctx context.Context, userID uint, blob []byte) error
	// Reset deletes every unlock row and tracking blob for the user.
	Reset(ctx context.Context, userID uint) error
}

// Notifier is the one-way toast sink.
type Notifier interface {
	Notify(userID uint, title, description string, duration time.Duration)
}

// XPAwarder grants experience for a confirmed unlock.
type XPAwarder interface {
	AwardAchievementXP(ctx context.Context, rarity Rarity, name string)
}

// Toast durations keyed by rarity: rarer unlocks linger longer.
var toastDuration = map[Rarity]time.Duration{
	RarityCommon:    4 * time.Second,
	RarityRare:      5 * time.Second,
	RarityEpic:      6 * time.Second,
	RarityLegendary: 8 * time.Second,
}

// Session wraps one Engine for one logged-in user: it loads persisted
// state, bridges domain mutations into the engine, runs the at-most-once
// unlock protocol, and persists the tracking blob after every pass.
type Session struct {
	userID   uint
	engine   *Engine
	store    Store
	notifier Notifier
	xp       XPAwarder

	mu sync.Mutex
	// unlocked is seeded from the store at load time and is authoritative
	// for "already notified": ids present here never re-fire.
	unlocked map[string]bool
	// importUntil suppresses achievement evaluation during bulk imports
	// so programmatic changes don't trigger achievements tied to manual,
	// incremental actions.
	importUntil time.Time
	closed      bool
}

// OpenSession loads the user's unlocked-id set and latest tracking blob
// and returns an armed session. A malformed blob is treated as no prior
// state; the unlocked set still protects against re-granting unlocks.
func OpenSession(ctx context.Context, userID uint, store Store, notifier Notifier, xp XPAwarder) (*Session, error) {
	unlocked, err := store.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if unlocked == nil {
		unlocked = make(map[string]bool)
	}

	engine := NewEngine()
	blob, err := store.LatestTracking(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		if restoreErr := engine.Restore(blob); restoreErr != nil {
			log.Printf("user %d: discarding malformed tracking blob: %v", userID, restoreErr)
			engine = NewEngine()
		}
	}

	return &Session{
		userID:   userID,
		engine:   engine,
		store:    store,
		notifier: notifier,
		xp:       xp,
		unlocked: unlocked,
	}, nil
}

// UserID returns the identity this session is partitioned by.
func (s *Session) UserID() uint {
	return s.userID
}

// Engine exposes the underlying engine for clock injection in tests.
func (s *Session) Engine() *Engine {
	return s.engine
}

// Unlocked reports whether the achievement has been unlocked this session
// or any earlier one.
func (s *Session) Unlocked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked[id]
}

// UnlockedIDs returns a copy of the unlocked-id set.
func (s *Session) UnlockedIDs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.unlocked))
	for id := range s.unlocked {
		out[id] = true
	}
	return out
}

// SectionSeen reports whether the section has already been visited.
func (s *Session) SectionSeen(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.engine.Tracking().SectionsVisited[name]
	return ok
}

// HandleAction applies one discrete event, evaluates the rule table, and
// persists the tracking blob. The caller must only invoke it after the
// primary domain write has succeeded; success of that write is the
// completion signal, no settle delays.
func (s *Session) HandleAction(ctx context.Context, name string, payload map[string]string) {
	s.pass(ctx, func() {
		s.engine.TrackAction(name, payload)
	})
}

// SetDomainData refreshes the engine's snapshot, recomputes streaks,
// evaluates, and persists. Called on every relevant domain-data change.
func (s *Session) SetDomainData(ctx context.Context, snapshot Snapshot) {
	s.pass(ctx, func() {
		s.engine.SetCurrentData(snapshot)
		s.engine.UpdateSequenceData()
	})
}

// UpdateExperience pushes the authoritative XP total into the engine and
// evaluates XP-gated achievements.
func (s *Session) UpdateExperience(ctx context.Context, totalXP int) {
	s.pass(ctx, func() {
		s.engine.UpdateExperience(totalXP)
	})
}

// UpdateClassCounters pushes class membership/leadership counts into the
// engine. Idempotent to repeat with the same values.
func (s *Session) UpdateClassCounters(ctx context.Context, members, led int) {
	s.pass(ctx, func() {
		s.engine.UpdateClassMembers(members)
		s.engine.UpdateClassesLed(led)
	})
}

// BeginImport suppresses achievement evaluation for at most window, so a
// bulk schedule import doesn't spuriously trigger achievements tied to
// manual, incremental actions.
func (s *Session) BeginImport(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importUntil = s.engine.now().Add(window)
}

// EndImport lifts the import guard early.
func (s *Session) EndImport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importUntil = time.Time{}
}

func (s *Session) importing() bool {
	return !s.importUntil.IsZero() && s.engine.now().Before(s.importUntil)
}

// Reset deletes all unlock rows and tracking blobs at the store, then
// re-arms a zeroed engine. Synchronous: the lock is held for the whole
// transition so no stale in-flight evaluation can re-unlock anything
// during the reset window.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Reset(ctx, s.userID); err != nil {
		return err
	}
	s.engine.ResetAll()
	s.unlocked = make(map[string]bool)
	return nil
}

// Close deactivates the session. In-flight calls that resolve after Close
// find the session closed and do not mutate state, so account switches
// cannot bleed one user's evaluations into another's session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// pass runs one mutation + evaluation + persist cycle under the lock,
// then dispatches toasts and XP awards outside it. XP awards can re-enter
// the session (the awarder pushes the new total back in), which is safe
// once the lock is released and terminates because unlocks are
// at-most-once.
func (s *Session) pass(ctx context.Context, mutate func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	mutate()
	var confirmed []Achievement
	if !s.importing() {
		confirmed = s.evaluateAll(ctx)
	}
	s.engine.ClearActions()
	s.persist(ctx)
	s.mu.Unlock()

	for _, a := range confirmed {
		if s.notifier != nil {
			s.notifier.Notify(s.userID, "Conquista desbloqueada: "+a.Name, a.Description, toastDuration[a.Rarity])
		}
		if s.xp != nil {
			s.xp.AwardAchievementXP(ctx, a.Rarity, a.Name)
		}
	}
}

// evaluateAll runs the unlock protocol over the whole catalog and returns
// the achievements whose store insert was confirmed. Callers hold s.mu.
func (s *Session) evaluateAll(ctx context.Context) []Achievement {
	var confirmed []Achievement
	for _, a := range catalog {
		if s.tryUnlock(ctx, a) {
			confirmed = append(confirmed, a)
		}
	}
	return confirmed
}

// tryUnlock is the at-most-once unlock protocol: skip if already known
// unlocked, consult the engine as oracle, then attempt the store insert.
// A duplicate means another writer won the race: mark locally, no toast,
// no XP. Any other store failure aborts with no local change so a later
// pass can retry. Only a confirmed insert reports true.
func (s *Session) tryUnlock(ctx context.Context, a Achievement) bool {
	if s.unlocked[a.ID] {
		return false
	}
	if !s.engine.CanUnlock(a.ID) {
		return false
	}

	err := s.store.InsertUnlock(ctx, s.userID, a.ID)
	switch {
	case errors.Is(err, ErrAlreadyUnlocked):
		s.unlocked[a.ID] = true
		return false
	case err != nil:
		// Drop the stamp CanUnlock just wrote, otherwise a cooldown rule
		// would defer the retry by the whole cooldown.
		s.engine.Tracking().ClearVerification(a.ID)
		log.Printf("user %d: unlock %s aborted: %v", s.userID, a.ID, err)
		return false
	}

	s.unlocked[a.ID] = true
	return true
}

// persist saves the tracking blob, latest-wins. A transient failure is
// abandoned; the next pass persists again. Callers hold s.mu.
func (s *Session) persist(ctx context.Context) {
	blob, err := s.engine.Serialize()
	if err != nil {
		log.Printf("user %d: serialize tracking: %v", s.userID, err)
		return
	}
	if err := s.store.SaveTracking(ctx, s.userID, blob); err != nil {
		log.Printf("user %d: save tracking: %v", s.userID, err)
	}
}
