// gamification/awarder.go - per-user XP ledger front-end
package gamification

import (
	"context"
	"fmt"
	"log"
	"time"

	"faltula/achievements"
)

// LevelRecord is the persisted leveling row as read back from the store.
// Tier and LevelProgress are derived on read, never trusted from storage.
type LevelRecord struct {
	Level         int     `json:"level"`
	TotalXP       int     `json:"total_experience"`
	Tier          Tier    `json:"current_tier"`
	LevelProgress float64 `json:"level_progress"`
}

// LevelResult is the outcome of one atomic XP application.
type LevelResult struct {
	NewLevel  int  `json:"new_level"`
	Tier      Tier `json:"tier"`
	TotalXP   int  `json:"total_experience"`
	LeveledUp bool `json:"leveled_up"`
}

// LevelStore applies XP deltas atomically and reads leveling rows.
type LevelStore interface {
	// ApplyXPDelta increments total_experience and recomputes level/tier
	// in one atomic store operation. The caller trusts the response.
	ApplyXPDelta(ctx context.Context, userID uint, amount int) (LevelResult, error)
	Level(ctx context.Context, userID uint) (LevelRecord, error)
}

// Notifier is the toast sink for XP and level-up notifications.
type Notifier interface {
	Notify(userID uint, title, description string, duration time.Duration)
}

// Awarder is the session-scoped XP front-end for one user: it applies
// grants through the store, coalesces their toasts, and raises a distinct
// level-up notification when a grant crosses a level boundary.
type Awarder struct {
	userID    uint
	store     LevelStore
	notifier  Notifier
	coalescer *Coalescer
	onTotal   func(totalXP int)
}

// NewAwarder builds an awarder for a user. quiet tunes the coalescing
// window; zero selects the default.
func NewAwarder(userID uint, store LevelStore, notifier Notifier, quiet time.Duration) *Awarder {
	a := &Awarder{
		userID:   userID,
		store:    store,
		notifier: notifier,
	}
	a.coalescer = NewCoalescer(quiet, func(total int, summary string) {
		if a.notifier == nil {
			return
		}
		title := fmt.Sprintf("+%d XP", total)
		a.notifier.Notify(a.userID, title, summary, 4*time.Second)
	})
	return a
}

// OnTotalExperience registers a hook receiving the authoritative XP total
// after every applied grant; the session manager uses it to push the
// total into the achievement engine.
func (a *Awarder) OnTotalExperience(fn func(totalXP int)) {
	a.onTotal = fn
}

// AddExperience applies one grant. On store failure nothing is buffered
// and nothing is notified; the grant simply did not happen.
func (a *Awarder) AddExperience(ctx context.Context, amount int, reason string) (LevelResult, error) {
	if amount <= 0 {
		return LevelResult{}, fmt.Errorf("xp amount must be positive, got %d", amount)
	}
	res, err := a.store.ApplyXPDelta(ctx, a.userID, amount)
	if err != nil {
		return LevelResult{}, err
	}

	a.coalescer.Add(amount, reason)
	if res.LeveledUp && a.notifier != nil {
		title := fmt.Sprintf("Subiu para o nível %d!", res.NewLevel)
		a.notifier.Notify(a.userID, title, "Tier "+TierName(res.Tier), 6*time.Second)
	}
	if a.onTotal != nil {
		a.onTotal(res.TotalXP)
	}
	return res, nil
}

// Semantic award helpers for direct UI actions not funneled through the
// rule engine.

func (a *Awarder) AwardAbsenceXP(ctx context.Context) {
	a.awardQuiet(ctx, XPAbsenceLogged, "Falta registrada")
}

func (a *Awarder) AwardScheduleSlotXP(ctx context.Context) {
	a.awardQuiet(ctx, XPScheduleSlot, "Aula adicionada")
}

func (a *Awarder) AwardSubjectXP(ctx context.Context) {
	a.awardQuiet(ctx, XPSubjectCreated, "Matéria cadastrada")
}

func (a *Awarder) AwardNoteXP(ctx context.Context) {
	a.awardQuiet(ctx, XPNoteCreated, "Anotação criada")
}

func (a *Awarder) AwardClassJoinXP(ctx context.Context) {
	a.awardQuiet(ctx, XPClassJoined, "Entrou em uma turma")
}

func (a *Awarder) AwardGradesImportXP(ctx context.Context) {
	a.awardQuiet(ctx, XPGradesImported, "Notas importadas")
}

func (a *Awarder) AwardProfileXP(ctx context.Context) {
	a.awardQuiet(ctx, XPProfileUpdated, "Perfil atualizado")
}

func (a *Awarder) AwardSectionXP(ctx context.Context) {
	a.awardQuiet(ctx, XPSectionExplored, "Nova seção explorada")
}

// AwardAchievementXP grants the rarity-scaled reward for a confirmed
// achievement unlock. Implements achievements.XPAwarder.
func (a *Awarder) AwardAchievementXP(ctx context.Context, rarity achievements.Rarity, name string) {
	a.awardQuiet(ctx, AchievementXP(rarity), "Conquista: "+name)
}

func (a *Awarder) awardQuiet(ctx context.Context, amount int, reason string) {
	if _, err := a.AddExperience(ctx, amount, reason); err != nil {
		log.Printf("user %d: xp grant %q: %v", a.userID, reason, err)
	}
}

// Progression reads the authoritative leveling row with derived fields
// recomputed.
func (a *Awarder) Progression(ctx context.Context) (LevelRecord, error) {
	return a.store.Level(ctx, a.userID)
}

// Close flushes any pending aggregated toast. Must be called on session
// teardown so an already-applied grant's notification is not lost.
func (a *Awarder) Close() {
	a.coalescer.Close()
}
