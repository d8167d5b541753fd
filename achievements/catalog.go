// achievements/catalog.go - static achievement catalog and rule table
package achievements

import "time"

// Rarity scales the XP reward and the unlock toast styling.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Category groups achievements in the UI.
type Category string

const (
	CategoryIntegration Category = "integration"
	CategoryConsistency Category = "consistency"
	CategorySecret      Category = "secret"
)

// Logic combines a requirement's conditions.
type Logic string

const (
	LogicAll Logic = "all"
	LogicAny Logic = "any"
)

// Achievement is one static catalog entry. Secret entries are hidden from
// listings until unlocked.
type Achievement struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	Rarity      Rarity   `json:"rarity"`
	Secret      bool     `json:"is_secret"`
}

// Requirement gates an achievement's unlock: its conditions combined by
// Logic, throttled by Cooldown between two evaluation attempts of the
// same id regardless of unlock state.
type Requirement struct {
	Conditions []Condition
	Logic      Logic
	Cooldown   time.Duration
}

// Sections the explorer achievement expects the user to have visited.
var coreSections = []string{"dashboard", "schedule", "absences", "classes", "ranking"}

// Catalog returns the full ordered achievement list. The slice is rebuilt
// on each call so callers cannot mutate the process-wide table.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// RequirementFor returns the rule for an achievement id.
func RequirementFor(id string) (Requirement, bool) {
	req, ok := rules[id]
	return req, ok
}

// CatalogEntry returns the catalog entry for an achievement id.
func CatalogEntry(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

var catalog = []Achievement{
	// integration: discrete app actions and running counters
	{ID: "first_steps", Name: "Primeiros Passos", Description: "Cadastre sua primeira matéria", Icon: "🎓", Category: CategoryIntegration, Rarity: RarityCommon},
	{ID: "schedule_builder", Name: "Arquiteto de Horários", Description: "Adicione 10 aulas à sua grade", Icon: "📐", Category: CategoryIntegration, Rarity: RarityRare},
	{ID: "rainbow_collector", Name: "Colecionador de Cores", Description: "Use 7 cores diferentes na grade", Icon: "🌈", Category: CategoryIntegration, Rarity: RarityRare},
	{ID: "minimalist", Name: "Minimalista", Description: "Mantenha a grade com exatamente 2 cores", Icon: "⬜", Category: CategoryIntegration, Rarity: RarityRare},
	{ID: "explorer", Name: "Explorador", Description: "Visite todas as seções do app", Icon: "🧭", Category: CategoryIntegration, Rarity: RarityCommon},
	{ID: "theme_switcher", Name: "Camaleão", Description: "Troque de tema 10 vezes", Icon: "🎨", Category: CategoryIntegration, Rarity: RarityCommon},
	{ID: "note_taker", Name: "Anotador", Description: "Crie 5 anotações", Icon: "📝", Category: CategoryIntegration, Rarity: RarityCommon},
	{ID: "grade_importer", Name: "Importador", Description: "Importe suas notas pela primeira vez", Icon: "📥", Category: CategoryIntegration, Rarity: RarityCommon},
	{ID: "profile_complete", Name: "Perfil Completo", Description: "Preencha curso e universidade no perfil", Icon: "🪪", Category: CategoryIntegration, Rarity: RarityCommon},
	{ID: "class_joiner", Name: "Colega de Turma", Description: "Entre em uma turma", Icon: "🤝", Category: CategoryIntegration, Rarity: RarityCommon},
	{ID: "class_leader", Name: "Líder de Turma", Description: "Lidere sua primeira turma", Icon: "👑", Category: CategoryIntegration, Rarity: RarityRare},
	{ID: "popular_leader", Name: "Líder Popular", Description: "Lidere uma turma com 10 membros", Icon: "📣", Category: CategoryIntegration, Rarity: RarityEpic},
	{ID: "xp_hunter", Name: "Caçador de XP", Description: "Acumule 1.000 XP", Icon: "⚡", Category: CategoryIntegration, Rarity: RarityRare},
	{ID: "xp_master", Name: "Mestre do XP", Description: "Acumule 5.000 XP", Icon: "🔥", Category: CategoryIntegration, Rarity: RarityEpic},
	{ID: "lenda_viva", Name: "Lenda Viva", Description: "Alcance o tier Lenda", Icon: "🏆", Category: CategoryIntegration, Rarity: RarityLegendary},

	// consistency: attendance streaks and calendar discipline
	{ID: "early_bird", Name: "Madrugador", Description: "Compareça a 5 aulas das 7h", Icon: "🌅", Category: CategoryConsistency, Rarity: RarityRare},
	{ID: "perfect_week", Name: "Semana Perfeita", Description: "5 dias úteis seguidos sem faltar", Icon: "📅", Category: CategoryConsistency, Rarity: RarityRare},
	{ID: "friday_warrior", Name: "Guerreiro de Sexta", Description: "4 sextas-feiras seguidas sem faltar", Icon: "🛡️", Category: CategoryConsistency, Rarity: RarityEpic},
	{ID: "subject_devotion", Name: "Dedicação Total", Description: "30 dias sem faltar em uma matéria", Icon: "💪", Category: CategoryConsistency, Rarity: RarityEpic},
	{ID: "iron_attendance", Name: "Presença de Ferro", Description: "90 dias sem faltar em uma matéria", Icon: "🥇", Category: CategoryConsistency, Rarity: RarityLegendary},
	{ID: "controlled_month", Name: "Mês Sob Controle", Description: "Feche o mês com menos de 4 faltas", Icon: "✅", Category: CategoryConsistency, Rarity: RarityRare},

	// secret: hidden until unlocked
	{ID: "night_owl", Name: "Coruja", Description: "Use o app na madrugada", Icon: "🦉", Category: CategorySecret, Rarity: RarityEpic, Secret: true},
	{ID: "christmas_spirit", Name: "Espírito Natalino", Description: "Use o app no Natal", Icon: "🎄", Category: CategorySecret, Rarity: RarityEpic, Secret: true},
	{ID: "new_year_new_me", Name: "Ano Novo, Eu Novo", Description: "Use o app no Ano Novo", Icon: "🎆", Category: CategorySecret, Rarity: RarityEpic, Secret: true},
	{ID: "holiday_scholar", Name: "Estudante de Feriado", Description: "Use o app no Natal ou no Ano Novo", Icon: "🎁", Category: CategorySecret, Rarity: RarityLegendary, Secret: true},
	{ID: "quick_fix", Name: "Correção Rápida", Description: "Remova uma falta logo após registrá-la", Icon: "⏪", Category: CategorySecret, Rarity: RarityRare, Secret: true},
}

var rules = map[string]Requirement{
	"first_steps": {
		Conditions: []Condition{ActionCondition{Action: ActionSubjectCreated}},
		Logic:      LogicAll,
	},
	"schedule_builder": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterScheduleSlots, Op: OpGreater, Value: 9}},
		Logic:      LogicAll,
	},
	"rainbow_collector": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterUniqueColors, Op: OpGreater, Value: 6}},
		Logic:      LogicAll,
	},
	"minimalist": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterUniqueColors, Op: OpEquals, Value: 2}},
		Logic:      LogicAll,
	},
	"explorer": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterSectionsVisited, Op: OpContains, Sections: coreSections}},
		Logic:      LogicAll,
	},
	"theme_switcher": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterThemeChanges, Op: OpGreater, Value: 9}},
		Logic:      LogicAll,
	},
	"note_taker": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterNotesCreated, Op: OpGreater, Value: 4}},
		Logic:      LogicAll,
	},
	"grade_importer": {
		Conditions: []Condition{ActionCondition{Action: ActionGradeImported}},
		Logic:      LogicAll,
	},
	"profile_complete": {
		Conditions: []Condition{
			DataCondition{Field: "profile.course", Op: OpExists},
			DataCondition{Field: "profile.university", Op: OpExists},
		},
		Logic: LogicAll,
	},
	"class_joiner": {
		Conditions: []Condition{ActionCondition{Action: ActionJoinedClass}},
		Logic:      LogicAll,
	},
	"class_leader": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterClassesLed, Op: OpGreater, Value: 0}},
		Logic:      LogicAll,
	},
	"popular_leader": {
		Conditions: []Condition{
			CumulativeCondition{Counter: CounterClassesLed, Op: OpGreater, Value: 0},
			CumulativeCondition{Counter: CounterClassMembers, Op: OpGreater, Value: 9},
		},
		Logic: LogicAll,
	},
	"xp_hunter": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterTotalExperience, Op: OpGreater, Value: 999}},
		Logic:      LogicAll,
	},
	"xp_master": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterTotalExperience, Op: OpGreater, Value: 4999}},
		Logic:      LogicAll,
	},
	"lenda_viva": {
		// 14675 XP is the cumulative cost of level 51, the Lenda floor.
		Conditions: []Condition{CumulativeCondition{Counter: CounterTotalExperience, Op: OpGreater, Value: 14674}},
		Logic:      LogicAll,
	},
	"early_bird": {
		Conditions: []Condition{CumulativeCondition{Counter: CounterEarlyClasses, Op: OpGreater, Value: 4}},
		Logic:      LogicAll,
	},
	"perfect_week": {
		Conditions: []Condition{SequenceCondition{Counter: CounterWeekdayStreak, Op: OpGreater, Value: 4}},
		Logic:      LogicAll,
		Cooldown:   12 * time.Hour,
	},
	"friday_warrior": {
		Conditions: []Condition{SequenceCondition{Counter: CounterFridayStreak, Op: OpGreater, Value: 3}},
		Logic:      LogicAll,
		Cooldown:   12 * time.Hour,
	},
	"subject_devotion": {
		Conditions: []Condition{SequenceCondition{Counter: CounterSubjectStreak, Op: OpGreater, Value: 29}},
		Logic:      LogicAll,
		Cooldown:   12 * time.Hour,
	},
	"iron_attendance": {
		Conditions: []Condition{SequenceCondition{Counter: CounterSubjectStreak, Op: OpGreater, Value: 89}},
		Logic:      LogicAll,
		Cooldown:   12 * time.Hour,
	},
	"controlled_month": {
		Conditions: []Condition{
			TimeCondition{Field: TimeDayOfMonth, Value: 28},
			CumulativeCondition{Counter: CounterMonthAbsences, Op: OpLess, Value: 4},
		},
		Logic:    LogicAll,
		Cooldown: 24 * time.Hour,
	},
	"night_owl": {
		Conditions: []Condition{TimeCondition{Field: TimeHour, Min: 2, Max: 5}},
		Logic:      LogicAll,
		Cooldown:   time.Hour,
	},
	"christmas_spirit": {
		Conditions: []Condition{TimeCondition{Field: TimeChristmas}},
		Logic:      LogicAll,
		Cooldown:   time.Hour,
	},
	"new_year_new_me": {
		Conditions: []Condition{TimeCondition{Field: TimeNewYear}},
		Logic:      LogicAll,
		Cooldown:   time.Hour,
	},
	"holiday_scholar": {
		Conditions: []Condition{
			TimeCondition{Field: TimeChristmas},
			TimeCondition{Field: TimeNewYear},
		},
		Logic:    LogicAny,
		Cooldown: time.Hour,
	},
	"quick_fix": {
		Conditions: []Condition{ActionCondition{Action: ActionQuickAbsenceRemoval}},
		Logic:      LogicAll,
	},
}
