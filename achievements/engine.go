// achievements/engine.go - the rule engine orchestrating tracking + evaluation
package achievements

import (
	"encoding/json"
	"time"
)

// Inbound action event names fired by handlers into the engine. Each is a
// fire-once notification; the engine's response is a counter/set mutation,
// never a direct unlock.
const (
	ActionSubjectCreated      = "subject_created"
	ActionScheduleSlotAdded   = "schedule_slot_added"
	ActionColorChanged        = "color_changed"
	ActionSectionVisited      = "section_visited"
	ActionGradeImported       = "grade_imported"
	ActionAbsenceAdded        = "absence_added"
	ActionEarlyClassAttended  = "early_class_attended"
	ActionQuickAbsenceRemoval = "quick_absence_removal"
	ActionThemeChanged        = "theme_changed"
	ActionNoteCreated         = "note_created"
	ActionJoinedClass         = "joined_class"
)

// referenceLocation is the single civil timezone all calendar and hour
// logic is normalized to, so time-based rules behave the same regardless
// of server locale.
var referenceLocation = loadReferenceLocation()

func loadReferenceLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// tzdata may be absent in minimal containers.
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}

// Engine owns one TrackingState and evaluates the rule table against it.
// It is not safe for concurrent use; the session controller serializes
// access.
type Engine struct {
	tracking *TrackingState
	data     Snapshot
	now      func() time.Time

	// actions fired since the last ClearActions; consumed by
	// ActionCondition during the current evaluation pass.
	actions map[string]bool
}

// NewEngine returns an engine with a zero-valued tracking state.
func NewEngine() *Engine {
	return &Engine{
		tracking: NewTrackingState(),
		now:      time.Now,
		actions:  make(map[string]bool),
	}
}

// SetClock overrides the engine clock. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Tracking exposes the engine's state for persistence and inspection.
func (e *Engine) Tracking() *TrackingState {
	return e.tracking
}

// TrackAction applies the side effects of a discrete event and marks the
// action as fired for the current evaluation pass. payload keys depend on
// the action (color, section, date).
func (e *Engine) TrackAction(name string, payload map[string]string) {
	e.actions[name] = true

	switch name {
	case ActionSubjectCreated:
		e.tracking.AddColor(payload["color"])
	case ActionScheduleSlotAdded:
		e.tracking.ScheduleSlotsAdded++
		e.tracking.AddColor(payload["color"])
	case ActionColorChanged:
		e.tracking.AddColor(payload["color"])
	case ActionSectionVisited:
		e.tracking.AddSection(payload["section"])
	case ActionAbsenceAdded:
		e.tracking.AddMonthlyAbsence(payload["date"])
	case ActionEarlyClassAttended:
		// One counted check-in per civil day, no matter how many times
		// the endpoint is hit.
		today := civilDate(e.now().In(referenceLocation))
		if e.tracking.LastEarlyCheckIn != today {
			e.tracking.LastEarlyCheckIn = today
			e.tracking.EarlyClassesAttended++
		}
	case ActionThemeChanged:
		e.tracking.ThemeChanges++
	case ActionNoteCreated:
		e.tracking.NotesCreated++
	}
}

// ClearActions ends the current evaluation pass.
func (e *Engine) ClearActions() {
	e.actions = make(map[string]bool)
}

// SetCurrentData refreshes the read-only domain snapshot used by data and
// sequence conditions.
func (e *Engine) SetCurrentData(s Snapshot) {
	e.data = s
}

// UpdateExperience sets the total-experience counter from the
// authoritative gamification store. Snapshots, not deltas.
func (e *Engine) UpdateExperience(totalXP int) {
	e.tracking.TotalExperience = totalXP
}

// UpdateClassMembers sets the size of the largest class the user leads.
func (e *Engine) UpdateClassMembers(n int) {
	e.tracking.ClassMembers = n
}

// UpdateClassesLed sets how many classes the user currently leads.
func (e *Engine) UpdateClassesLed(n int) {
	e.tracking.ClassesLed = n
}

// UpdateSequenceData recomputes the derived streak counters from the
// current snapshot. Must run before evaluating sequence conditions.
func (e *Engine) UpdateSequenceData() {
	today := e.now().In(referenceLocation)
	e.tracking.ConsecutiveWeekdaysWithoutAbsence = e.weekdayStreak(today)
	e.tracking.ConsecutiveFridaysWithoutAbsence = e.fridayStreak(today)
	e.updateSubjectStreaks(today)
}

// weekdayStreak counts clean weekdays walking back from today, skipping
// Saturday and Sunday, stopping at the first day with an absence. Capped
// at 5 examined weekdays.
func (e *Engine) weekdayStreak(today time.Time) int {
	count := 0
	d := today
	examined := 0
	for examined < 5 {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			d = d.AddDate(0, 0, -1)
			continue
		}
		if e.data.HasAbsenceOn(civilDate(d)) {
			break
		}
		count++
		examined++
		d = d.AddDate(0, 0, -1)
	}
	return count
}

// fridayStreak counts clean Fridays over the last 4 distinct Friday dates
// (including today when today is a Friday), stopping at the first Friday
// with an absence.
func (e *Engine) fridayStreak(today time.Time) int {
	offset := (int(today.Weekday()) - int(time.Friday) + 7) % 7
	friday := today.AddDate(0, 0, -offset)
	count := 0
	for i := 0; i < 4; i++ {
		if e.data.HasAbsenceOn(civilDate(friday)) {
			break
		}
		count++
		friday = friday.AddDate(0, 0, -7)
	}
	return count
}

// updateSubjectStreaks starts, advances, or hard-resets the per-subject
// zero-absence streaks. Days is recomputed from the tracked start date,
// not incremented, so missed sessions don't distort the count.
func (e *Engine) updateSubjectStreaks(today time.Time) {
	for _, subj := range e.data.Subjects {
		if subj.CurrentAbsences > 0 {
			delete(e.tracking.SubjectZeroAbsences, subj.ID)
			continue
		}
		streak, ok := e.tracking.SubjectZeroAbsences[subj.ID]
		if !ok {
			e.tracking.SubjectZeroAbsences[subj.ID] = SubjectStreak{
				StartDate: civilDate(today),
				Days:      1,
			}
			continue
		}
		start, err := time.ParseInLocation("2006-01-02", streak.StartDate, referenceLocation)
		if err != nil {
			// Corrupt start date: restart the streak rather than guess.
			e.tracking.SubjectZeroAbsences[subj.ID] = SubjectStreak{
				StartDate: civilDate(today),
				Days:      1,
			}
			continue
		}
		streak.Days = int(today.Sub(start).Hours()/24) + 1
		e.tracking.SubjectZeroAbsences[subj.ID] = streak
	}
}

// CanUnlock reports whether the achievement's requirement is currently
// satisfied. The cooldown gate applies independently of unlock state; a
// true result stamps last_verification so evaluation frequency stays
// bounded even for already-unlocked ids.
func (e *Engine) CanUnlock(id string) bool {
	req, ok := rules[id]
	if !ok {
		return false
	}

	now := e.now().In(referenceLocation)
	if req.Cooldown > 0 {
		if last, seen := e.tracking.LastVerification[id]; seen {
			if now.Sub(time.UnixMilli(last)) < req.Cooldown {
				return false
			}
		}
	}

	ctx := &EvalContext{
		Tracking: e.tracking,
		Data:     &e.data,
		Now:      now,
		Actions:  e.actions,
	}

	var satisfied bool
	switch req.Logic {
	case LogicAny:
		for _, c := range req.Conditions {
			if c.Matches(ctx) {
				satisfied = true
				break
			}
		}
	default:
		satisfied = len(req.Conditions) > 0
		for _, c := range req.Conditions {
			if !c.Matches(ctx) {
				satisfied = false
				break
			}
		}
	}

	if satisfied {
		e.tracking.StampVerification(id, now)
	}
	return satisfied
}

// Serialize renders the tracking state as the persisted JSON document.
func (e *Engine) Serialize() ([]byte, error) {
	return json.Marshal(e.tracking)
}

// Restore replaces the tracking state from a persisted document.
func (e *Engine) Restore(data []byte) error {
	state := NewTrackingState()
	if err := json.Unmarshal(data, state); err != nil {
		return err
	}
	e.tracking = state
	return nil
}

// ResetAll wipes the tracking state back to zero. Used on semester reset.
func (e *Engine) ResetAll() {
	e.tracking = NewTrackingState()
	e.actions = make(map[string]bool)
}

func civilDate(t time.Time) string {
	return t.Format("2006-01-02")
}
