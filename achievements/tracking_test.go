package achievements

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestTrackingRoundTrip(t *testing.T) {
	state := NewTrackingState()
	state.ScheduleSlotsAdded = 12
	state.ThemeChanges = 3
	state.NotesCreated = 7
	state.TotalExperience = 2675
	state.ClassMembers = 11
	state.ClassesLed = 2
	state.EarlyClassesAttended = 5
	state.ConsecutiveWeekdaysWithoutAbsence = 4
	state.ConsecutiveFridaysWithoutAbsence = 2
	state.AddColor("red")
	state.AddColor("blue")
	state.AddSection("dashboard")
	state.AddMonthlyAbsence("2025-03-10")
	state.AddMonthlyAbsence("2025-03-21")
	state.AddMonthlyAbsence("2025-04-02")
	state.SubjectZeroAbsences["42"] = SubjectStreak{StartDate: "2025-02-01", Days: 30}
	state.StampVerification("night_owl", time.UnixMilli(1741600000000))

	blob, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewTrackingState()
	if err := json.Unmarshal(blob, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(state, restored) {
		t.Errorf("round trip diverged:\n got %+v\nwant %+v", restored, state)
	}
}

func TestTrackingDocumentKeys(t *testing.T) {
	state := NewTrackingState()
	state.AddColor("red")
	state.AddSection("dashboard")

	blob, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(blob, &doc); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}

	for _, key := range []string{
		"schedule_slots_added",
		"unique_colors_used",
		"sections_visited",
		"monthly_absences",
		"subject_zero_absences_tracking",
		"last_verification",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing key %q", key)
		}
	}

	// Sets serialize as arrays
	var colors []string
	if err := json.Unmarshal(doc["unique_colors_used"], &colors); err != nil {
		t.Fatalf("unique_colors_used is not an array: %v", err)
	}
}

func TestMonthlyAbsenceHistogram(t *testing.T) {
	state := NewTrackingState()
	state.AddMonthlyAbsence("2025-03-10")
	state.AddMonthlyAbsence("2025-03-28")
	state.AddMonthlyAbsence("2025-04-01")
	state.AddMonthlyAbsence("bad") // ignored

	if got := state.MonthAbsenceCount("2025-03"); got != 2 {
		t.Errorf("march count = %d, want 2", got)
	}
	if got := state.MonthAbsenceCount("2025-04"); got != 1 {
		t.Errorf("april count = %d, want 1", got)
	}
	if got := state.MonthAbsenceCount("2025-05"); got != 0 {
		t.Errorf("may count = %d, want 0", got)
	}
}

func TestRestoreMalformedBlobFails(t *testing.T) {
	e := NewEngine()
	e.TrackAction(ActionScheduleSlotAdded, nil)

	if err := e.Restore([]byte("{not json")); err == nil {
		t.Fatal("Restore accepted a malformed blob")
	}
	// Failed restore must not clobber the existing state
	if e.Tracking().ScheduleSlotsAdded != 1 {
		t.Fatal("failed Restore mutated the engine state")
	}
}

func TestRestoreMissingMapsStayUsable(t *testing.T) {
	e := NewEngine()
	if err := e.Restore([]byte(`{"schedule_slots_added": 3}`)); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	tr := e.Tracking()
	if tr.ScheduleSlotsAdded != 3 {
		t.Fatalf("slots = %d, want 3", tr.ScheduleSlotsAdded)
	}
	// Maps absent from the document must come back non-nil
	tr.StampVerification("x", time.Now())
	tr.SubjectZeroAbsences["1"] = SubjectStreak{StartDate: "2025-01-01", Days: 1}
}
