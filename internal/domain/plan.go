package domain

import "time"

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type QuestionCategory string

const (
	CategoryTechnical     QuestionCategory = "technical"
	CategoryBehavioral    QuestionCategory = "behavioral"
	CategorySystemDesign  QuestionCategory = "system_design"
	CategoryCulturalFit   QuestionCategory = "cultural_fit"
	CategoryConsciousness QuestionCategory = "consciousness"
)

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyAdvanced Difficulty = "advanced"
)

// FocusArea es un tema de preparacion con minutos estimados.
type FocusArea struct {
	Name             string   `json:"name"`
	Priority         Priority `json:"priority"`
	Category         string   `json:"category"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	Resources        []string `json:"resources,omitempty"`
}

type InterviewQuestion struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Category    QuestionCategory `json:"category"`
	Subcategory string           `json:"subcategory"`
	Difficulty  Difficulty       `json:"difficulty"`
}

// StarExample es una narrativa Situation/Task/Action/Result.
type StarExample struct {
	Situation string `json:"situation" yaml:"situation"`
	Task      string `json:"task" yaml:"task"`
	Action    string `json:"action" yaml:"action"`
	Result    string `json:"result" yaml:"result"`
}

type DayPlan struct {
	Day        int      `json:"day"`
	FocusArea  string   `json:"focus_area"`
	Minutes    int      `json:"minutes"`
	Activities []string `json:"activities"`
	Goals      []string `json:"goals"`
}

type Checkpoint struct {
	Day   int    `json:"day"`
	Check string `json:"check"`
}

type PreparationSchedule struct {
	Days        []DayPlan    `json:"days"`
	Milestones  []string     `json:"milestones"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// PreparationPlan se crea una vez por aplicacion y no se modifica.
type PreparationPlan struct {
	ID                     string                 `json:"id"`
	FocusAreas             []FocusArea            `json:"focus_areas"`
	Questions              []InterviewQuestion    `json:"questions"`
	StarExamples           map[string]StarExample `json:"star_examples"`
	TimeAllocation         map[string]int         `json:"time_allocation"`
	TotalMinutes           int                    `json:"total_minutes"`
	DailyMinutes           int                    `json:"daily_minutes"`
	Schedule               PreparationSchedule    `json:"schedule"`
	ResearchQuestions      []string               `json:"research_questions,omitempty"`
	ConsciousnessAlignment float64                `json:"consciousness_alignment"`
	CreatedAt              time.Time              `json:"created_at"`
}
