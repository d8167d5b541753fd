// achievements/lint.go - static validation of requirement conditions
package achievements

import (
	"fmt"
	"strings"
)

var knownCumulativeCounters = map[string]bool{
	CounterScheduleSlots:   true,
	CounterThemeChanges:    true,
	CounterNotesCreated:    true,
	CounterTotalExperience: true,
	CounterClassMembers:    true,
	CounterClassesLed:      true,
	CounterEarlyClasses:    true,
	CounterUniqueColors:    true,
	CounterSectionsVisited: true,
	CounterMonthAbsences:   true,
}

var knownSequenceCounters = map[string]bool{
	CounterWeekdayStreak: true,
	CounterFridayStreak:  true,
	CounterSubjectStreak: true,
}

var knownTimeFields = map[TimeField]bool{
	TimeHour:       true,
	TimeDayOfWeek:  true,
	TimeDayOfMonth: true,
	TimeChristmas:  true,
	TimeNewYear:    true,
}

var knownActions = map[string]bool{
	ActionSubjectCreated:      true,
	ActionScheduleSlotAdded:   true,
	ActionColorChanged:        true,
	ActionSectionVisited:      true,
	ActionGradeImported:       true,
	ActionAbsenceAdded:        true,
	ActionEarlyClassAttended:  true,
	ActionQuickAbsenceRemoval: true,
	ActionThemeChanged:        true,
	ActionNoteCreated:         true,
	ActionJoinedClass:         true,
}

func comparisonOp(op Operator) bool {
	return op == OpEquals || op == OpGreater || op == OpLess
}

// LintRequirement checks every condition of a requirement against the
// known counters, time fields, action names and operators, and returns a
// human-readable problem per violation. A condition that references an
// unknown target silently never matches at runtime, so this is the only
// place such a typo can surface.
func LintRequirement(req Requirement) []string {
	var problems []string
	for i, c := range req.Conditions {
		for _, p := range lintCondition(c) {
			problems = append(problems, fmt.Sprintf("condition %d: %s", i, p))
		}
	}
	return problems
}

func lintCondition(c Condition) []string {
	switch cond := c.(type) {
	case DataCondition:
		var problems []string
		// Lookup only resolves profile.<key> paths; anything else is
		// unreachable data.
		if !strings.HasPrefix(cond.Field, "profile.") || cond.Field == "profile." {
			problems = append(problems, fmt.Sprintf("data field %q is not addressable", cond.target()))
		}
		switch cond.Op {
		case OpExists, OpNotExists, OpEquals, OpGreater, OpLess:
		default:
			problems = append(problems, fmt.Sprintf("data operator %q unknown", cond.Op))
		}
		return problems
	case TimeCondition:
		var problems []string
		if !knownTimeFields[cond.Field] {
			problems = append(problems, fmt.Sprintf("time field %q unknown", cond.target()))
		}
		if cond.Field == TimeHour {
			if cond.Min < 0 || cond.Max > 23 || cond.Min > cond.Max {
				problems = append(problems, fmt.Sprintf("hour range [%d,%d] invalid", cond.Min, cond.Max))
			}
		}
		return problems
	case ActionCondition:
		if !knownActions[cond.Action] {
			return []string{fmt.Sprintf("action %q unknown", cond.target())}
		}
		return nil
	case CumulativeCondition:
		var problems []string
		if !knownCumulativeCounters[cond.Counter] {
			problems = append(problems, fmt.Sprintf("cumulative counter %q unknown", cond.target()))
		}
		if cond.Op == OpContains {
			if cond.Counter != CounterSectionsVisited {
				problems = append(problems, fmt.Sprintf("contains only applies to %s", CounterSectionsVisited))
			}
			if len(cond.Sections) == 0 {
				problems = append(problems, "contains with no sections")
			}
		} else if !comparisonOp(cond.Op) {
			problems = append(problems, fmt.Sprintf("cumulative operator %q unknown", cond.Op))
		}
		return problems
	case SequenceCondition:
		var problems []string
		if !knownSequenceCounters[cond.Counter] {
			problems = append(problems, fmt.Sprintf("sequence counter %q unknown", cond.target()))
		}
		if !comparisonOp(cond.Op) {
			problems = append(problems, fmt.Sprintf("sequence operator %q unknown", cond.Op))
		}
		return problems
	default:
		return []string{fmt.Sprintf("condition type %T unknown", c)}
	}
}
