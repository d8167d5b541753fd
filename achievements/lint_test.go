package achievements

import (
	"strings"
	"testing"
)

// The shipped rule table must be clean: every condition references a
// counter, field, action or operator the evaluator understands.
func TestShippedRulesLintClean(t *testing.T) {
	for id, req := range rules {
		if problems := LintRequirement(req); len(problems) != 0 {
			t.Errorf("%s: %v", id, problems)
		}
	}
}

func TestLintRequirement(t *testing.T) {
	tests := []struct {
		name string
		req  Requirement
		want string // substring of the reported problem; "" means clean
	}{
		{
			name: "valid cumulative",
			req: Requirement{Conditions: []Condition{
				CumulativeCondition{Counter: CounterNotesCreated, Op: OpGreater, Value: 4},
			}},
		},
		{
			name: "unknown cumulative counter",
			req: Requirement{Conditions: []Condition{
				CumulativeCondition{Counter: "notes_craeted", Op: OpGreater, Value: 4},
			}},
			want: `counter "notes_craeted" unknown`,
		},
		{
			name: "contains on the wrong counter",
			req: Requirement{Conditions: []Condition{
				CumulativeCondition{Counter: CounterUniqueColors, Op: OpContains, Sections: []string{"dashboard"}},
			}},
			want: "contains only applies to sections_visited",
		},
		{
			name: "contains with no sections",
			req: Requirement{Conditions: []Condition{
				CumulativeCondition{Counter: CounterSectionsVisited, Op: OpContains},
			}},
			want: "contains with no sections",
		},
		{
			name: "exists on a cumulative counter",
			req: Requirement{Conditions: []Condition{
				CumulativeCondition{Counter: CounterThemeChanges, Op: OpExists},
			}},
			want: `operator "exists" unknown`,
		},
		{
			name: "unknown sequence counter",
			req: Requirement{Conditions: []Condition{
				SequenceCondition{Counter: CounterNotesCreated, Op: OpGreater, Value: 1},
			}},
			want: `sequence counter "notes_created" unknown`,
		},
		{
			name: "unknown action",
			req: Requirement{Conditions: []Condition{
				ActionCondition{Action: "subject_craeted"},
			}},
			want: `action "subject_craeted" unknown`,
		},
		{
			name: "unknown time field",
			req: Requirement{Conditions: []Condition{
				TimeCondition{Field: TimeField("moon_phase")},
			}},
			want: `time field "moon_phase" unknown`,
		},
		{
			name: "inverted hour range",
			req: Requirement{Conditions: []Condition{
				TimeCondition{Field: TimeHour, Min: 5, Max: 2},
			}},
			want: "hour range [5,2] invalid",
		},
		{
			name: "unaddressable data field",
			req: Requirement{Conditions: []Condition{
				DataCondition{Field: "settings.theme", Op: OpExists},
			}},
			want: `data field "settings.theme" is not addressable`,
		},
		{
			name: "valid profile data field",
			req: Requirement{Conditions: []Condition{
				DataCondition{Field: "profile.course", Op: OpExists},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := LintRequirement(tt.req)
			if tt.want == "" {
				if len(problems) != 0 {
					t.Fatalf("problems = %v, want none", problems)
				}
				return
			}
			for _, p := range problems {
				if strings.Contains(p, tt.want) {
					return
				}
			}
			t.Fatalf("problems = %v, want one containing %q", problems, tt.want)
		})
	}
}

func TestLintReportsEveryBadCondition(t *testing.T) {
	req := Requirement{Conditions: []Condition{
		ActionCondition{Action: "bogus_one"},
		CumulativeCondition{Counter: "bogus_two", Op: OpGreater},
	}}
	problems := LintRequirement(req)
	if len(problems) != 2 {
		t.Fatalf("problems = %v, want 2 entries", problems)
	}
	if !strings.HasPrefix(problems[0], "condition 0:") || !strings.HasPrefix(problems[1], "condition 1:") {
		t.Fatalf("problems not indexed by position: %v", problems)
	}
}
