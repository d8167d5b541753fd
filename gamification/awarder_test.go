package gamification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"faltula/achievements"
)

// fakeLevelStore applies deltas against an in-memory total using the real
// leveling math.
type fakeLevelStore struct {
	mu      sync.Mutex
	totalXP int
	err     error
	applies int
}

func (f *fakeLevelStore) ApplyXPDelta(ctx context.Context, userID uint, amount int) (LevelResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return LevelResult{}, f.err
	}
	before := LevelForXP(f.totalXP)
	f.totalXP += amount
	f.applies++
	after := LevelForXP(f.totalXP)
	return LevelResult{
		NewLevel:  after,
		Tier:      TierForLevel(after),
		TotalXP:   f.totalXP,
		LeveledUp: after > before,
	}, nil
}

func (f *fakeLevelStore) Level(ctx context.Context, userID uint) (LevelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	level := LevelForXP(f.totalXP)
	return LevelRecord{
		Level:         level,
		TotalXP:       f.totalXP,
		Tier:          TierForLevel(level),
		LevelProgress: LevelProgress(f.totalXP),
	}, nil
}

type toastRecorder struct {
	mu     sync.Mutex
	titles []string
}

func (r *toastRecorder) Notify(userID uint, title, description string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
}

func (r *toastRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.titles))
	copy(out, r.titles)
	return out
}

func TestAddExperienceRejectsNonPositive(t *testing.T) {
	store := &fakeLevelStore{}
	a := NewAwarder(1, store, nil, time.Hour)

	if _, err := a.AddExperience(context.Background(), 0, "nada"); err == nil {
		t.Fatal("zero amount accepted")
	}
	if _, err := a.AddExperience(context.Background(), -5, "nada"); err == nil {
		t.Fatal("negative amount accepted")
	}
	if store.applies != 0 {
		t.Fatalf("store touched %d times for rejected grants", store.applies)
	}
}

func TestAddExperienceStoreFailure(t *testing.T) {
	store := &fakeLevelStore{err: errors.New("deadlock detected")}
	toasts := &toastRecorder{}
	a := NewAwarder(1, store, toasts, time.Hour)

	if _, err := a.AddExperience(context.Background(), 10, "Matéria cadastrada"); err == nil {
		t.Fatal("store failure not surfaced")
	}
	a.coalescer.Flush()
	if got := toasts.snapshot(); len(got) != 0 {
		t.Fatalf("failed grant produced toasts: %v", got)
	}
}

func TestLevelUpToastIsImmediate(t *testing.T) {
	store := &fakeLevelStore{totalXP: 95}
	toasts := &toastRecorder{}
	a := NewAwarder(1, store, toasts, time.Hour)

	res, err := a.AddExperience(context.Background(), 10, "Matéria cadastrada")
	if err != nil {
		t.Fatalf("AddExperience: %v", err)
	}
	if !res.LeveledUp || res.NewLevel != 2 {
		t.Fatalf("result = %+v, want level-up to 2", res)
	}

	// The level-up toast goes out right away while the XP toast is still
	// held by the coalescer.
	got := toasts.snapshot()
	if len(got) != 1 || got[0] != "Subiu para o nível 2!" {
		t.Fatalf("toasts = %v, want the level-up toast alone", got)
	}

	a.coalescer.Flush()
	got = toasts.snapshot()
	if len(got) != 2 || got[1] != "+10 XP" {
		t.Fatalf("toasts after flush = %v", got)
	}
}

func TestGrantWithinLevelDoesNotAnnounce(t *testing.T) {
	store := &fakeLevelStore{totalXP: 10}
	toasts := &toastRecorder{}
	a := NewAwarder(1, store, toasts, time.Hour)

	if _, err := a.AddExperience(context.Background(), 5, "Falta registrada"); err != nil {
		t.Fatalf("AddExperience: %v", err)
	}
	for _, title := range toasts.snapshot() {
		if strings.HasPrefix(title, "Subiu") {
			t.Fatalf("spurious level-up toast %q", title)
		}
	}
}

func TestOnTotalExperienceHook(t *testing.T) {
	store := &fakeLevelStore{}
	a := NewAwarder(1, store, nil, time.Hour)

	var seen []int
	a.OnTotalExperience(func(totalXP int) { seen = append(seen, totalXP) })

	a.AwardSubjectXP(context.Background())
	a.AwardAbsenceXP(context.Background())

	if len(seen) != 2 || seen[0] != XPSubjectCreated || seen[1] != XPSubjectCreated+XPAbsenceLogged {
		t.Fatalf("hook totals = %v", seen)
	}
}

func TestAwardAchievementXPByRarity(t *testing.T) {
	tests := []struct {
		rarity achievements.Rarity
		amount int
	}{
		{achievements.RarityCommon, 10},
		{achievements.RarityRare, 25},
		{achievements.RarityEpic, 50},
		{achievements.RarityLegendary, 100},
	}
	for _, tt := range tests {
		store := &fakeLevelStore{}
		a := NewAwarder(1, store, nil, time.Hour)
		a.AwardAchievementXP(context.Background(), tt.rarity, "Qualquer")
		if store.totalXP != tt.amount {
			t.Errorf("%s unlock granted %d xp, want %d", tt.rarity, store.totalXP, tt.amount)
		}
	}
}

func TestCloseFlushesAggregatedToast(t *testing.T) {
	store := &fakeLevelStore{}
	toasts := &toastRecorder{}
	a := NewAwarder(1, store, toasts, time.Hour)

	a.AwardNoteXP(context.Background())
	a.AwardNoteXP(context.Background())
	a.Close()

	got := toasts.snapshot()
	if len(got) != 1 || got[0] != "+10 XP" {
		t.Fatalf("toasts after close = %v", got)
	}
}

func TestProgressionDerivesFields(t *testing.T) {
	store := &fakeLevelStore{totalXP: 1050}
	a := NewAwarder(1, store, nil, time.Hour)

	rec, err := a.Progression(context.Background())
	if err != nil {
		t.Fatalf("Progression: %v", err)
	}
	if rec.Level != 11 || rec.Tier != TierVeterano {
		t.Fatalf("record = %+v", rec)
	}
	if rec.LevelProgress <= 0 || rec.LevelProgress >= 100 {
		t.Fatalf("progress = %v, want inside the level", rec.LevelProgress)
	}
}
