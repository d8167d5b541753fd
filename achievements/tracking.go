// achievements/tracking.go - per-user tracking counters and sets
package achievements

import (
	"encoding/json"
	"sort"
	"time"
)

// MonthlyAbsence is one bucket of the per-month absence histogram.
// Date is the month key in "YYYY-MM" form.
type MonthlyAbsence struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SubjectStreak tracks how long a subject has been held at zero absences.
// StartDate is the civil date ("YYYY-MM-DD") the streak began.
type SubjectStreak struct {
	StartDate string `json:"startDate"`
	Days      int    `json:"days"`
}

// TrackingState is the mutable bag of counters and sets the rule engine
// reads and writes. One instance per user session; persisted as a single
// JSON document, latest-wins.
type TrackingState struct {
	ScheduleSlotsAdded                int
	ThemeChanges                      int
	NotesCreated                      int
	TotalExperience                   int
	ClassMembers                      int
	ClassesLed                        int
	EarlyClassesAttended              int
	ConsecutiveWeekdaysWithoutAbsence int
	ConsecutiveFridaysWithoutAbsence  int

	// LastEarlyCheckIn is the civil date ("YYYY-MM-DD") of the most recent
	// counted early check-in; one slot yields at most one per day.
	LastEarlyCheckIn string

	UniqueColorsUsed map[string]struct{}
	SectionsVisited  map[string]struct{}

	MonthlyAbsences     []MonthlyAbsence
	SubjectZeroAbsences map[string]SubjectStreak

	// LastVerification maps achievement id -> epoch millis of the last
	// evaluation that returned true. Persisted so cooldowns survive a
	// session resume.
	LastVerification map[string]int64
}

// NewTrackingState returns a zero-valued state with all maps ready.
func NewTrackingState() *TrackingState {
	return &TrackingState{
		UniqueColorsUsed:    make(map[string]struct{}),
		SectionsVisited:     make(map[string]struct{}),
		SubjectZeroAbsences: make(map[string]SubjectStreak),
		LastVerification:    make(map[string]int64),
	}
}

// AddColor records a schedule color as used.
func (t *TrackingState) AddColor(color string) {
	if color == "" {
		return
	}
	t.UniqueColorsUsed[color] = struct{}{}
}

// AddSection records an app section as visited.
func (t *TrackingState) AddSection(section string) {
	if section == "" {
		return
	}
	t.SectionsVisited[section] = struct{}{}
}

// AddMonthlyAbsence bumps the histogram bucket for the month of the given
// civil date ("YYYY-MM-DD"). Unparseable dates are ignored.
func (t *TrackingState) AddMonthlyAbsence(date string) {
	if len(date) < 7 {
		return
	}
	month := date[:7]
	for i := range t.MonthlyAbsences {
		if t.MonthlyAbsences[i].Date == month {
			t.MonthlyAbsences[i].Count++
			return
		}
	}
	t.MonthlyAbsences = append(t.MonthlyAbsences, MonthlyAbsence{Date: month, Count: 1})
}

// MonthAbsenceCount returns the histogram count for a "YYYY-MM" key.
func (t *TrackingState) MonthAbsenceCount(month string) int {
	for _, m := range t.MonthlyAbsences {
		if m.Date == month {
			return m.Count
		}
	}
	return 0
}

// MaxSubjectStreakDays returns the longest zero-absence streak across all
// tracked subjects, in days.
func (t *TrackingState) MaxSubjectStreakDays() int {
	best := 0
	for _, s := range t.SubjectZeroAbsences {
		if s.Days > best {
			best = s.Days
		}
	}
	return best
}

// StampVerification records that an achievement evaluated true at the
// given time, for cooldown throttling.
func (t *TrackingState) StampVerification(id string, at time.Time) {
	t.LastVerification[id] = at.UnixMilli()
}

// ClearVerification drops the cooldown stamp for an achievement so the
// next evaluation is not throttled.
func (t *TrackingState) ClearVerification(id string) {
	delete(t.LastVerification, id)
}

// trackingJSON is the store-facing document shape: sets as arrays of
// strings, everything else as plain numbers/objects.
type trackingJSON struct {
	ScheduleSlotsAdded                int                      `json:"schedule_slots_added"`
	ThemeChanges                      int                      `json:"theme_changes"`
	NotesCreated                      int                      `json:"notes_created"`
	TotalExperience                   int                      `json:"total_experience"`
	ClassMembers                      int                      `json:"class_members"`
	ClassesLed                        int                      `json:"classes_led"`
	EarlyClassesAttended              int                      `json:"early_classes_attended"`
	ConsecutiveWeekdaysWithoutAbsence int                      `json:"consecutive_weekdays_without_absence"`
	ConsecutiveFridaysWithoutAbsence  int                      `json:"consecutive_fridays_without_absence"`
	LastEarlyCheckIn                  string                   `json:"last_early_check_in"`
	UniqueColorsUsed                  []string                 `json:"unique_colors_used"`
	SectionsVisited                   []string                 `json:"sections_visited"`
	MonthlyAbsences                   []MonthlyAbsence         `json:"monthly_absences"`
	SubjectZeroAbsences               map[string]SubjectStreak `json:"subject_zero_absences_tracking"`
	LastVerification                  map[string]int64         `json:"last_verification"`
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// MarshalJSON serializes the state into the persisted document shape.
func (t *TrackingState) MarshalJSON() ([]byte, error) {
	doc := trackingJSON{
		ScheduleSlotsAdded:                t.ScheduleSlotsAdded,
		ThemeChanges:                      t.ThemeChanges,
		NotesCreated:                      t.NotesCreated,
		TotalExperience:                   t.TotalExperience,
		ClassMembers:                      t.ClassMembers,
		ClassesLed:                        t.ClassesLed,
		EarlyClassesAttended:              t.EarlyClassesAttended,
		ConsecutiveWeekdaysWithoutAbsence: t.ConsecutiveWeekdaysWithoutAbsence,
		ConsecutiveFridaysWithoutAbsence:  t.ConsecutiveFridaysWithoutAbsence,
		LastEarlyCheckIn:                  t.LastEarlyCheckIn,
		UniqueColorsUsed:                  setToSorted(t.UniqueColorsUsed),
		SectionsVisited:                   setToSorted(t.SectionsVisited),
		MonthlyAbsences:                   t.MonthlyAbsences,
		SubjectZeroAbsences:               t.SubjectZeroAbsences,
		LastVerification:                  t.LastVerification,
	}
	return json.Marshal(doc)
}

// UnmarshalJSON restores a state from the persisted document shape.
func (t *TrackingState) UnmarshalJSON(data []byte) error {
	var doc trackingJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	t.ScheduleSlotsAdded = doc.ScheduleSlotsAdded
	t.ThemeChanges = doc.ThemeChanges
	t.NotesCreated = doc.NotesCreated
	t.TotalExperience = doc.TotalExperience
	t.ClassMembers = doc.ClassMembers
	t.ClassesLed = doc.ClassesLed
	t.EarlyClassesAttended = doc.EarlyClassesAttended
	t.ConsecutiveWeekdaysWithoutAbsence = doc.ConsecutiveWeekdaysWithoutAbsence
	t.ConsecutiveFridaysWithoutAbsence = doc.ConsecutiveFridaysWithoutAbsence
	t.LastEarlyCheckIn = doc.LastEarlyCheckIn
	t.UniqueColorsUsed = sortedToSet(doc.UniqueColorsUsed)
	t.SectionsVisited = sortedToSet(doc.SectionsVisited)
	t.MonthlyAbsences = doc.MonthlyAbsences
	t.SubjectZeroAbsences = doc.SubjectZeroAbsences
	t.LastVerification = doc.LastVerification
	if t.SubjectZeroAbsences == nil {
		t.SubjectZeroAbsences = make(map[string]SubjectStreak)
	}
	if t.LastVerification == nil {
		t.LastVerification = make(map[string]int64)
	}
	return nil
}
