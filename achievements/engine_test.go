package achievements

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// A Tuesday afternoon in the reference timezone.
var calmTuesday = time.Date(2025, time.March, 11, 15, 0, 0, 0, referenceLocation)

func newTestEngine(now time.Time) *Engine {
	e := NewEngine()
	e.SetClock(fixedClock(now))
	return e
}

func TestFirstStepsFiresOnSubjectCreated(t *testing.T) {
	e := newTestEngine(calmTuesday)

	if e.CanUnlock("first_steps") {
		t.Fatal("first_steps satisfied before any action")
	}

	e.TrackAction(ActionSubjectCreated, nil)
	if !e.CanUnlock("first_steps") {
		t.Fatal("first_steps not satisfied after subject_created")
	}

	e.ClearActions()
	if e.CanUnlock("first_steps") {
		t.Fatal("first_steps still satisfied after the pass ended")
	}
}

func TestScheduleBuilderThreshold(t *testing.T) {
	e := newTestEngine(calmTuesday)

	for i := 0; i < 9; i++ {
		e.TrackAction(ActionScheduleSlotAdded, nil)
	}
	if e.CanUnlock("schedule_builder") {
		t.Fatal("schedule_builder satisfied at 9 slots")
	}

	e.TrackAction(ActionScheduleSlotAdded, nil)
	if !e.CanUnlock("schedule_builder") {
		t.Fatal("schedule_builder not satisfied at 10 slots")
	}
}

func TestEarlyCheckInCountsOncePerDay(t *testing.T) {
	e := newTestEngine(calmTuesday)

	for i := 0; i < 5; i++ {
		e.TrackAction(ActionEarlyClassAttended, nil)
	}
	if got := e.Tracking().EarlyClassesAttended; got != 1 {
		t.Fatalf("early classes after 5 same-day check-ins = %d, want 1", got)
	}

	// A new day counts again.
	for day := 1; day <= 4; day++ {
		e.SetClock(fixedClock(calmTuesday.AddDate(0, 0, day)))
		e.TrackAction(ActionEarlyClassAttended, nil)
		e.TrackAction(ActionEarlyClassAttended, nil)
	}
	if got := e.Tracking().EarlyClassesAttended; got != 5 {
		t.Fatalf("early classes after 5 distinct days = %d, want 5", got)
	}
	if !e.CanUnlock("early_bird") {
		t.Fatal("early_bird not satisfied after 5 distinct days")
	}
}

func TestCreationColorsFeedColorSet(t *testing.T) {
	colors := []string{"red", "blue", "green", "yellow", "purple", "orange", "teal"}

	e := newTestEngine(calmTuesday)
	e.TrackAction(ActionSubjectCreated, map[string]string{"color": colors[0]})
	for _, color := range colors[1:] {
		e.TrackAction(ActionScheduleSlotAdded, map[string]string{"color": color})
	}

	if got := len(e.Tracking().UniqueColorsUsed); got != 7 {
		t.Fatalf("unique colors after colored creations = %d, want 7", got)
	}
	if !e.CanUnlock("rainbow_collector") {
		t.Fatal("rainbow_collector not satisfied by a 7-color grid built normally")
	}

	// Colorless creations leave the set alone.
	e.TrackAction(ActionSubjectCreated, nil)
	e.TrackAction(ActionScheduleSlotAdded, nil)
	if got := len(e.Tracking().UniqueColorsUsed); got != 7 {
		t.Fatalf("unique colors after colorless creations = %d, want 7", got)
	}
}

func TestColorAchievements(t *testing.T) {
	colors := []string{"red", "blue", "green", "yellow", "purple", "orange", "teal"}

	e := newTestEngine(calmTuesday)
	e.TrackAction(ActionColorChanged, map[string]string{"color": colors[0]})
	e.TrackAction(ActionColorChanged, map[string]string{"color": colors[1]})

	if !e.CanUnlock("minimalist") {
		t.Fatal("minimalist not satisfied with exactly 2 colors")
	}
	if e.CanUnlock("rainbow_collector") {
		t.Fatal("rainbow_collector satisfied with 2 colors")
	}

	// Repeating an existing color must not change set cardinality
	e.TrackAction(ActionColorChanged, map[string]string{"color": colors[0]})
	if !e.CanUnlock("minimalist") {
		t.Fatal("repeated color broke the minimalist count")
	}

	for _, c := range colors[2:] {
		e.TrackAction(ActionColorChanged, map[string]string{"color": c})
	}
	if e.CanUnlock("minimalist") {
		t.Fatal("minimalist still satisfied with 7 colors")
	}
	if !e.CanUnlock("rainbow_collector") {
		t.Fatal("rainbow_collector not satisfied with 7 colors")
	}
}

func TestExplorerNeedsAllCoreSections(t *testing.T) {
	e := newTestEngine(calmTuesday)

	for _, s := range coreSections[:len(coreSections)-1] {
		e.TrackAction(ActionSectionVisited, map[string]string{"section": s})
	}
	if e.CanUnlock("explorer") {
		t.Fatal("explorer satisfied with one section missing")
	}

	e.TrackAction(ActionSectionVisited, map[string]string{"section": coreSections[len(coreSections)-1]})
	if !e.CanUnlock("explorer") {
		t.Fatal("explorer not satisfied with all sections visited")
	}
}

func TestNightOwlWindow(t *testing.T) {
	tests := []struct {
		hour int
		want bool
	}{
		{1, false},
		{2, true},
		{3, true},
		{5, true},
		{6, false},
		{15, false},
	}

	for _, tt := range tests {
		now := time.Date(2025, time.March, 11, tt.hour, 30, 0, 0, referenceLocation)
		e := newTestEngine(now)
		if got := e.CanUnlock("night_owl"); got != tt.want {
			t.Errorf("hour %d: night_owl = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestNightOwlUsesReferenceTimezone(t *testing.T) {
	// 06:00 UTC is 03:00 in the reference timezone: inside the window
	// even though the raw UTC hour is not.
	utc := time.Date(2025, time.March, 11, 6, 0, 0, 0, time.UTC)
	e := newTestEngine(utc)
	if !e.CanUnlock("night_owl") {
		t.Fatal("night_owl ignored the reference timezone")
	}
}

func TestHolidayRules(t *testing.T) {
	christmas := time.Date(2025, time.December, 25, 10, 0, 0, 0, referenceLocation)
	newYear := time.Date(2026, time.January, 1, 10, 0, 0, 0, referenceLocation)

	tests := []struct {
		name string
		now  time.Time
		id   string
		want bool
	}{
		{"christmas on christmas", christmas, "christmas_spirit", true},
		{"christmas on a tuesday", calmTuesday, "christmas_spirit", false},
		{"new year on new year", newYear, "new_year_new_me", true},
		{"holiday any on christmas", christmas, "holiday_scholar", true},
		{"holiday any on new year", newYear, "holiday_scholar", true},
		{"holiday any on a tuesday", calmTuesday, "holiday_scholar", false},
	}

	for _, tt := range tests {
		e := newTestEngine(tt.now)
		if got := e.CanUnlock(tt.id); got != tt.want {
			t.Errorf("%s: CanUnlock(%s) = %v, want %v", tt.name, tt.id, got, tt.want)
		}
	}
}

func TestCooldownGateAndStamp(t *testing.T) {
	now := time.Date(2025, time.March, 11, 3, 0, 0, 0, referenceLocation)
	e := newTestEngine(now)

	if !e.CanUnlock("night_owl") {
		t.Fatal("first evaluation should pass")
	}
	if _, ok := e.Tracking().LastVerification["night_owl"]; !ok {
		t.Fatal("true evaluation did not stamp last_verification")
	}

	// Inside the cooldown the gate blocks before conditions run
	e.SetClock(fixedClock(now.Add(30 * time.Minute)))
	if e.CanUnlock("night_owl") {
		t.Fatal("evaluation passed inside the cooldown window")
	}

	// After the cooldown it passes again
	e.SetClock(fixedClock(now.Add(61 * time.Minute)))
	if !e.CanUnlock("night_owl") {
		t.Fatal("evaluation blocked after the cooldown expired")
	}
}

func TestFalseEvaluationDoesNotStamp(t *testing.T) {
	e := newTestEngine(calmTuesday) // 15:00, outside the night window
	if e.CanUnlock("night_owl") {
		t.Fatal("night_owl satisfied at 15:00")
	}
	if _, ok := e.Tracking().LastVerification["night_owl"]; ok {
		t.Fatal("false evaluation stamped last_verification")
	}
}

func TestWeekdayStreak(t *testing.T) {
	// Friday; the prior weekdays are Mon-Thu of the same week.
	friday := time.Date(2025, time.March, 14, 12, 0, 0, 0, referenceLocation)

	tests := []struct {
		name     string
		absences []AbsenceInfo
		want     int
	}{
		{"no absences", nil, 5},
		{"absence today", []AbsenceInfo{{SubjectID: "1", Date: "2025-03-14"}}, 0},
		{"absence on wednesday", []AbsenceInfo{{SubjectID: "1", Date: "2025-03-12"}}, 2},
		{"weekend absence ignored", []AbsenceInfo{{SubjectID: "1", Date: "2025-03-09"}}, 5},
	}

	for _, tt := range tests {
		e := newTestEngine(friday)
		e.SetCurrentData(Snapshot{Absences: tt.absences})
		e.UpdateSequenceData()
		if got := e.Tracking().ConsecutiveWeekdaysWithoutAbsence; got != tt.want {
			t.Errorf("%s: weekday streak = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFridayStreak(t *testing.T) {
	// A Friday. The window is this Friday plus the three before it.
	friday := time.Date(2025, time.March, 28, 12, 0, 0, 0, referenceLocation)

	tests := []struct {
		name     string
		now      time.Time
		absences []AbsenceInfo
		want     int
	}{
		{"clean month of fridays", friday, nil, 4},
		{"absence on this friday", friday, []AbsenceInfo{{SubjectID: "1", Date: "2025-03-28"}}, 0},
		{"absence two fridays back", friday, []AbsenceInfo{{SubjectID: "1", Date: "2025-03-14"}}, 2},
		{
			// From a Monday the most recent Friday is 3 days back.
			"evaluated on a monday",
			time.Date(2025, time.March, 31, 12, 0, 0, 0, referenceLocation),
			[]AbsenceInfo{{SubjectID: "1", Date: "2025-03-21"}},
			1,
		},
	}

	for _, tt := range tests {
		e := newTestEngine(tt.now)
		e.SetCurrentData(Snapshot{Absences: tt.absences})
		e.UpdateSequenceData()
		if got := e.Tracking().ConsecutiveFridaysWithoutAbsence; got != tt.want {
			t.Errorf("%s: friday streak = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSubjectStreakLifecycle(t *testing.T) {
	day1 := time.Date(2025, time.March, 1, 12, 0, 0, 0, referenceLocation)
	e := newTestEngine(day1)

	clean := Snapshot{Subjects: []SubjectInfo{{ID: "42", Name: "Cálculo", CurrentAbsences: 0}}}
	e.SetCurrentData(clean)
	e.UpdateSequenceData()

	if got := e.Tracking().MaxSubjectStreakDays(); got != 1 {
		t.Fatalf("new streak days = %d, want 1", got)
	}

	// 30 days later the streak is recomputed from the start date, not
	// incremented per visit.
	e.SetClock(fixedClock(day1.AddDate(0, 0, 30)))
	e.UpdateSequenceData()
	if got := e.Tracking().MaxSubjectStreakDays(); got != 31 {
		t.Fatalf("resumed streak days = %d, want 31", got)
	}
	if !e.CanUnlock("subject_devotion") {
		t.Fatal("subject_devotion not satisfied at 31 days")
	}

	// One absence hard-deletes the streak
	dirty := Snapshot{Subjects: []SubjectInfo{{ID: "42", Name: "Cálculo", CurrentAbsences: 1}}}
	e.SetCurrentData(dirty)
	e.UpdateSequenceData()
	if got := e.Tracking().MaxSubjectStreakDays(); got != 0 {
		t.Fatalf("streak after absence = %d, want 0", got)
	}
}

func TestControlledMonth(t *testing.T) {
	day28 := time.Date(2025, time.March, 28, 12, 0, 0, 0, referenceLocation)

	e := newTestEngine(day28)
	for i := 0; i < 3; i++ {
		e.TrackAction(ActionAbsenceAdded, map[string]string{"date": "2025-03-10"})
	}
	if !e.CanUnlock("controlled_month") {
		t.Fatal("controlled_month not satisfied on day 28 with 3 absences")
	}

	e2 := newTestEngine(day28)
	for i := 0; i < 4; i++ {
		e2.TrackAction(ActionAbsenceAdded, map[string]string{"date": "2025-03-10"})
	}
	if e2.CanUnlock("controlled_month") {
		t.Fatal("controlled_month satisfied with 4 absences")
	}

	// Absences from another month don't count against this one
	e3 := newTestEngine(day28)
	for i := 0; i < 6; i++ {
		e3.TrackAction(ActionAbsenceAdded, map[string]string{"date": "2025-02-10"})
	}
	if !e3.CanUnlock("controlled_month") {
		t.Fatal("controlled_month blocked by another month's absences")
	}
}

func TestProfileComplete(t *testing.T) {
	e := newTestEngine(calmTuesday)

	e.SetCurrentData(Snapshot{Profile: map[string]string{"course": "Engenharia"}})
	if e.CanUnlock("profile_complete") {
		t.Fatal("profile_complete satisfied with university missing")
	}

	e.SetCurrentData(Snapshot{Profile: map[string]string{
		"course":     "Engenharia",
		"university": "UFMG",
	}})
	if !e.CanUnlock("profile_complete") {
		t.Fatal("profile_complete not satisfied with both fields set")
	}

	// Empty string does not count as present
	e.SetCurrentData(Snapshot{Profile: map[string]string{
		"course":     "Engenharia",
		"university": "",
	}})
	if e.CanUnlock("profile_complete") {
		t.Fatal("profile_complete satisfied with empty university")
	}
}

func TestXPThresholds(t *testing.T) {
	tests := []struct {
		xp   int
		id   string
		want bool
	}{
		{999, "xp_hunter", false},
		{1000, "xp_hunter", true},
		{4999, "xp_master", false},
		{5000, "xp_master", true},
		{14674, "lenda_viva", false},
		{14675, "lenda_viva", true},
	}

	for _, tt := range tests {
		e := newTestEngine(calmTuesday)
		e.UpdateExperience(tt.xp)
		if got := e.CanUnlock(tt.id); got != tt.want {
			t.Errorf("xp=%d: CanUnlock(%s) = %v, want %v", tt.xp, tt.id, got, tt.want)
		}
	}
}

func TestResetAllZeroesState(t *testing.T) {
	e := newTestEngine(calmTuesday)
	e.TrackAction(ActionScheduleSlotAdded, nil)
	e.TrackAction(ActionColorChanged, map[string]string{"color": "red"})
	e.Tracking().StampVerification("night_owl", calmTuesday)

	e.ResetAll()

	tr := e.Tracking()
	if tr.ScheduleSlotsAdded != 0 || len(tr.UniqueColorsUsed) != 0 || len(tr.LastVerification) != 0 {
		t.Fatal("ResetAll left residual state")
	}
}
