// achievements/condition.go - rule conditions and their evaluation
package achievements

import (
	"strings"
	"time"
)

// Operator is the comparison applied by data/cumulative/sequence conditions.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpGreater   Operator = "greater"
	OpLess      Operator = "less"
	OpExists    Operator = "exists"
	OpNotExists Operator = "not_exists"
	OpContains  Operator = "contains"
)

// Counter names understood by cumulative and sequence conditions.
const (
	CounterScheduleSlots   = "schedule_slots_added"
	CounterThemeChanges    = "theme_changes"
	CounterNotesCreated    = "notes_created"
	CounterTotalExperience = "total_experience"
	CounterClassMembers    = "class_members"
	CounterClassesLed      = "classes_led"
	CounterEarlyClasses    = "early_classes_attended"
	CounterUniqueColors    = "unique_colors_used"
	CounterSectionsVisited = "sections_visited"
	CounterMonthAbsences   = "current_month_absences"
	CounterWeekdayStreak   = "consecutive_weekdays_without_absence"
	CounterFridayStreak    = "consecutive_fridays_without_absence"
	CounterSubjectStreak   = "subject_zero_absence_days"
)

// TimeField selects which calendar component a TimeCondition inspects.
type TimeField string

const (
	TimeHour       TimeField = "hour"
	TimeDayOfWeek  TimeField = "day_of_week" // 0 = Sunday
	TimeDayOfMonth TimeField = "day_of_month"
	TimeChristmas  TimeField = "christmas_day"
	TimeNewYear    TimeField = "new_year_day"
)

// EvalContext carries everything a condition may inspect. Now is already
// normalized to the reference timezone.
type EvalContext struct {
	Tracking *TrackingState
	Data     *Snapshot
	Now      time.Time
	// Actions holds the discrete event names fired in the current
	// evaluation pass.
	Actions map[string]bool
}

// Condition is a sealed union: only the concrete types in this file
// implement it. Evaluation is pure.
type Condition interface {
	Matches(ctx *EvalContext) bool
	// counter/field the condition reads; used by catalog linting.
	target() string
}

// DataCondition reads a dotted path out of the domain snapshot, e.g.
// "profile.course". exists means present and not the empty string.
type DataCondition struct {
	Field string
	Op    Operator
	Value string
}

func (c DataCondition) target() string { return c.Field }

func (c DataCondition) Matches(ctx *EvalContext) bool {
	val, ok := ctx.Data.Lookup(c.Field)
	switch c.Op {
	case OpExists:
		return ok && val != ""
	case OpNotExists:
		return !ok || val == ""
	case OpEquals:
		return ok && val == c.Value
	case OpGreater:
		return ok && val > c.Value
	case OpLess:
		return ok && val < c.Value
	}
	return false
}

// TimeCondition tests wall-clock fields in the fixed reference timezone.
// For TimeHour, Min and Max bound an inclusive range; for the other
// numeric fields Value is compared with equality.
type TimeCondition struct {
	Field TimeField
	Min   int
	Max   int
	Value int
}

func (c TimeCondition) target() string { return string(c.Field) }

func (c TimeCondition) Matches(ctx *EvalContext) bool {
	now := ctx.Now
	switch c.Field {
	case TimeHour:
		h := now.Hour()
		return h >= c.Min && h <= c.Max
	case TimeDayOfWeek:
		return int(now.Weekday()) == c.Value
	case TimeDayOfMonth:
		return now.Day() == c.Value
	case TimeChristmas:
		return now.Month() == time.December && now.Day() == 25
	case TimeNewYear:
		return now.Month() == time.January && now.Day() == 1
	}
	return false
}

// ActionCondition is satisfied by the mere fact that the named action was
// tracked in the current evaluation pass.
type ActionCondition struct {
	Action string
}

func (c ActionCondition) target() string { return c.Action }

func (c ActionCondition) Matches(ctx *EvalContext) bool {
	return ctx.Actions[c.Action]
}

// CumulativeCondition compares a named counter or set cardinality against
// Value. With OpContains and the sections_visited counter, Sections must
// be a subset of the visited set.
type CumulativeCondition struct {
	Counter  string
	Op       Operator
	Value    int
	Sections []string
}

func (c CumulativeCondition) target() string { return c.Counter }

func (c CumulativeCondition) Matches(ctx *EvalContext) bool {
	t := ctx.Tracking
	if c.Op == OpContains {
		if c.Counter != CounterSectionsVisited {
			return false
		}
		for _, s := range c.Sections {
			if _, ok := t.SectionsVisited[s]; !ok {
				return false
			}
		}
		return true
	}

	var n int
	switch c.Counter {
	case CounterScheduleSlots:
		n = t.ScheduleSlotsAdded
	case CounterThemeChanges:
		n = t.ThemeChanges
	case CounterNotesCreated:
		n = t.NotesCreated
	case CounterTotalExperience:
		n = t.TotalExperience
	case CounterClassMembers:
		n = t.ClassMembers
	case CounterClassesLed:
		n = t.ClassesLed
	case CounterEarlyClasses:
		n = t.EarlyClassesAttended
	case CounterUniqueColors:
		n = len(t.UniqueColorsUsed)
	case CounterSectionsVisited:
		n = len(t.SectionsVisited)
	case CounterMonthAbsences:
		n = t.MonthAbsenceCount(ctx.Now.Format("2006-01"))
	default:
		return false
	}
	return compare(n, c.Op, c.Value)
}

// SequenceCondition reads a derived streak counter. The streaks are
// recomputed on demand by Engine.UpdateSequenceData, not maintained
// incrementally.
type SequenceCondition struct {
	Counter string
	Op      Operator
	Value   int
}

func (c SequenceCondition) target() string { return c.Counter }

func (c SequenceCondition) Matches(ctx *EvalContext) bool {
	t := ctx.Tracking
	var n int
	switch c.Counter {
	case CounterWeekdayStreak:
		n = t.ConsecutiveWeekdaysWithoutAbsence
	case CounterFridayStreak:
		n = t.ConsecutiveFridaysWithoutAbsence
	case CounterSubjectStreak:
		n = t.MaxSubjectStreakDays()
	default:
		return false
	}
	return compare(n, c.Op, c.Value)
}

func compare(n int, op Operator, value int) bool {
	switch op {
	case OpEquals:
		return n == value
	case OpGreater:
		return n > value
	case OpLess:
		return n < value
	}
	return false
}

// Snapshot is the read-only view of the user's domain data consumed by
// data and sequence conditions.
type Snapshot struct {
	Subjects []SubjectInfo
	Schedule []ScheduleSlotInfo
	Absences []AbsenceInfo
	Profile  map[string]string
}

// SubjectInfo is the slice of a subject the engine cares about.
type SubjectInfo struct {
	ID              string
	Name            string
	CurrentAbsences int
}

// ScheduleSlotInfo is one weekly schedule slot.
type ScheduleSlotInfo struct {
	SubjectID string
	Weekday   int // 0 = Sunday
	StartHour int
}

// AbsenceInfo is one logged absence. Date is the civil date "YYYY-MM-DD".
type AbsenceInfo struct {
	SubjectID string
	Date      string
}

// Lookup resolves a dotted path against the snapshot. Only profile fields
// are addressable ("profile.<key>").
func (s *Snapshot) Lookup(path string) (string, bool) {
	if s == nil {
		return "", false
	}
	parts := strings.SplitN(path, ".", 2)
	if len(parts) != 2 || parts[0] != "profile" || s.Profile == nil {
		return "", false
	}
	val, ok := s.Profile[parts[1]]
	return val, ok
}

// HasAbsenceOn reports whether any absence matches the given civil date.
func (s *Snapshot) HasAbsenceOn(date string) bool {
	if s == nil {
		return false
	}
	for _, a := range s.Absences {
		if a.Date == date {
			return true
		}
	}
	return false
}
