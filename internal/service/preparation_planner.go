package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

const componentPlanner = "preparation_planner"

const (
	maxFocusAreas      = 8
	maxQuestions       = 12
	consciousnessPairs = 2
	questionsPerArea   = 2
	minPlanMinutes     = 120
	planDays           = 7
	DefaultDailyCap    = 120
)

type focusSpec struct {
	name        string
	category    string
	priority    domain.Priority
	qCategory   domain.QuestionCategory
	qSub        string
	qDifficulty domain.Difficulty
	resources   []string
}

// Catalogo de focus areas; el orden de cada grupo es el orden de salida.
var (
	backendFocus = []focusSpec{
		{"Python fundamentals", "technical", domain.PriorityHigh, domain.CategoryTechnical, "python.fundamental", domain.DifficultyMedium, []string{"Python documentation", "LeetCode practice"}},
		{"Data structures & algorithms", "technical", domain.PriorityHigh, domain.CategoryTechnical, "algorithms.data_structures", domain.DifficultyMedium, []string{"Algorithm drills", "Complexity cheat sheet"}},
		{"System design", "system_design", domain.PriorityHigh, domain.CategorySystemDesign, "scalability", domain.DifficultyHard, []string{"System design patterns"}},
	}
	frontendFocus = []focusSpec{
		{"UI/UX principles", "technical", domain.PriorityHigh, domain.CategoryTechnical, "javascript.frameworks", domain.DifficultyMedium, []string{"Design system guidelines"}},
		{"Browser technologies", "technical", domain.PriorityHigh, domain.CategoryTechnical, "javascript.fundamental", domain.DifficultyMedium, []string{"MDN web docs", "JavaScript patterns"}},
		{"State management", "technical", domain.PriorityMedium, domain.CategoryTechnical, "javascript.advanced", domain.DifficultyHard, []string{"React documentation"}},
	}
	leadershipFocus = []focusSpec{
		{"Leadership", "leadership", domain.PriorityCritical, domain.CategoryBehavioral, "leadership", domain.DifficultyAdvanced, []string{"Leadership cases"}},
		{"Architecture decisions", "system_design", domain.PriorityCritical, domain.CategorySystemDesign, "reliability", domain.DifficultyHard, []string{"Architecture decision records"}},
		{"Team dynamics", "behavioral", domain.PriorityHigh, domain.CategoryBehavioral, "conflict_resolution", domain.DifficultyMedium, []string{"Team retrospectives"}},
	}
	dataFocus = []focusSpec{
		{"AI/ML fundamentals", "technical", domain.PriorityHigh, domain.CategoryTechnical, "ml.fundamental", domain.DifficultyMedium, []string{"ML course notes"}},
		{"Data analysis", "technical", domain.PriorityHigh, domain.CategoryTechnical, "ml.data_analysis", domain.DifficultyMedium, []string{"Notebook exercises"}},
		{"Model evaluation", "technical", domain.PriorityMedium, domain.CategoryTechnical, "ml.evaluation", domain.DifficultyHard, []string{"Evaluation metric references"}},
	}
	alwaysFocus = []focusSpec{
		{"Communication skills", "behavioral", domain.PriorityMedium, domain.CategoryBehavioral, "communication", domain.DifficultyEasy, []string{"STAR method practice"}},
		{"Cultural fit", "cultural_fit", domain.PriorityMedium, domain.CategoryCulturalFit, "values", domain.DifficultyEasy, []string{"Company values page"}},
		{"Consciousness alignment", "consciousness", domain.PriorityLow, domain.CategoryConsciousness, "evolution", domain.DifficultyAdvanced, []string{"Innovation case studies"}},
	}
)

var (
	backendTerms    = []string{"python", "backend", "engineer"}
	frontendTerms   = []string{"frontend", "javascript", "fullstack"}
	leadershipTerms = []string{"senior", "lead", "architect"}
	dataTerms       = []string{"ai", "ml", "data"}
)

var experiencePlanMultipliers = map[domain.Seniority]float64{
	domain.SenioritySenior: 0.8,
	domain.SeniorityJunior: 1.2,
}

var planMilestones = []string{
	"Complete technical fundamentals review",
	"Practice behavioral questions with STAR method",
	"Review system design concepts",
	"Conduct mock interview session",
	"Finalize company research and questions",
}

var planCheckpoints = []domain.Checkpoint{
	{Day: 2, Check: "Technical preparation 50% complete"},
	{Day: 4, Check: "Behavioral scenarios practiced"},
	{Day: 6, Check: "Mock interview completed"},
	{Day: 7, Check: "Final preparation review"},
}

// PreparationPlanner arma el plan de preparacion de una aplicacion.
type PreparationPlanner struct {
	logger   *zap.Logger
	library  domain.QuestionLibrary
	dailyCap int
}

func NewPreparationPlanner(logger *zap.Logger, library domain.QuestionLibrary, dailyCap int) (*PreparationPlanner, error) {
	if library == nil {
		return nil, domain.MissingCollaborator(componentPlanner, "question library")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if dailyCap <= 0 {
		dailyCap = DefaultDailyCap
	}
	return &PreparationPlanner{logger: logger, library: library, dailyCap: dailyCap}, nil
}

// Plan es determinista para las mismas entradas y el mismo instante.
func (p *PreparationPlanner) Plan(job domain.JobDescription, candidate domain.CandidateProfile, now time.Time) (domain.PreparationPlan, error) {
	if err := job.Validate(); err != nil {
		return domain.PreparationPlan{}, domain.InvalidInput(componentPlanner, "malformed job: %v", err)
	}
	if candidate.AvailableMinutes <= 0 {
		return domain.PreparationPlan{}, domain.InvalidInput(componentPlanner, "available preparation minutes must be positive, got %d", candidate.AvailableMinutes)
	}
	experience := candidate.Experience.Normalize()
	if experience == "" {
		return domain.PreparationPlan{}, domain.InvalidInput(componentPlanner, "unknown experience level %q", candidate.Experience)
	}

	words := titleWords(job.Title)
	seniorRole := hasAnyWord(words, leadershipTerms)
	specs := selectFocus(words)

	total, allocation, err := p.allocate(specs, seniorRole, experience, candidate.AvailableMinutes)
	if err != nil {
		return domain.PreparationPlan{}, err
	}
	areas := distributeMinutes(specs, allocation)

	daily := total / planDays
	if daily > p.dailyCap {
		daily = p.dailyCap
	}

	plan := domain.PreparationPlan{
		ID:                     stableID("plan", job.Title, job.Company, string(experience), strconv.Itoa(candidate.AvailableMinutes), now.UTC().Format(time.RFC3339Nano)),
		FocusAreas:             areas,
		Questions:              p.selectQuestions(specs),
		StarExamples:           p.starExamples(seniorRole),
		TimeAllocation:         allocation,
		TotalMinutes:           total,
		DailyMinutes:           daily,
		Schedule:               buildSchedule(areas, daily),
		ResearchQuestions:      researchQuestions(job.Company),
		ConsciousnessAlignment: planConsciousness(len(areas), experience),
		CreatedAt:              now.UTC(),
	}
	if err := checkPlan(plan, candidate.AvailableMinutes, p.dailyCap); err != nil {
		return domain.PreparationPlan{}, err
	}
	p.logger.Debug("preparation plan built",
		zap.String("plan_id", plan.ID),
		zap.Int("focus_areas", len(areas)),
		zap.Int("total_minutes", total),
	)
	return plan, nil
}

func titleWords(title string) []string {
	return strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasAnyWord(words, terms []string) bool {
	for _, w := range words {
		for _, t := range terms {
			if w == t {
				return true
			}
		}
	}
	return false
}

func selectFocus(words []string) []focusSpec {
	var specs []focusSpec
	seen := make(map[string]bool)
	add := func(group []focusSpec) {
		for _, s := range group {
			if seen[s.name] || len(specs) >= maxFocusAreas {
				continue
			}
			seen[s.name] = true
			specs = append(specs, s)
		}
	}
	if hasAnyWord(words, backendTerms) {
		add(backendFocus)
	}
	if hasAnyWord(words, frontendTerms) {
		add(frontendFocus)
	}
	if hasAnyWord(words, leadershipTerms) {
		add(leadershipFocus)
	}
	if hasAnyWord(words, dataTerms) {
		add(dataFocus)
	}
	add(alwaysFocus)
	return specs
}

// allocate calcula los minutos por categoria y el total final.
func (p *PreparationPlanner) allocate(specs []focusSpec, seniorRole bool, experience domain.Seniority, available int) (int, map[string]int, error) {
	var categories []string
	base := make(map[string]int)
	for _, s := range specs {
		if _, ok := base[s.category]; ok {
			continue
		}
		categories = append(categories, s.category)
		base[s.category] = p.library.BaseMinutes(s.category)
	}
	if seniorRole {
		if _, ok := base["system_design"]; ok {
			base["system_design"] += 60
		}
		if _, ok := base["leadership"]; ok {
			base["leadership"] += 90
		}
	}
	sum := 0
	for _, c := range categories {
		sum += base[c]
	}
	if sum <= 0 {
		return 0, nil, domain.ContractViolation(componentPlanner, "base minutes sum to %d", sum)
	}

	mult := 1.0
	if m, ok := experiencePlanMultipliers[experience]; ok {
		mult = m
	}
	total := int(float64(sum) * mult)
	if total < minPlanMinutes {
		total = minPlanMinutes
	}
	if total > available {
		total = available
	}

	allocation := make(map[string]int, len(categories))
	assigned := 0
	for _, c := range categories {
		share := base[c] * total / sum
		allocation[c] = share
		assigned += share
	}
	allocation[categories[0]] += total - assigned
	return total, allocation, nil
}

// distributeMinutes reparte cada categoria entre sus focus areas; el resto va a la primera.
func distributeMinutes(specs []focusSpec, allocation map[string]int) []domain.FocusArea {
	byCategory := make(map[string][]int)
	for i, s := range specs {
		byCategory[s.category] = append(byCategory[s.category], i)
	}
	minutes := make([]int, len(specs))
	for category, idxs := range byCategory {
		share := allocation[category] / len(idxs)
		for _, i := range idxs {
			minutes[i] = share
		}
		minutes[idxs[0]] += allocation[category] - share*len(idxs)
	}
	areas := make([]domain.FocusArea, len(specs))
	for i, s := range specs {
		areas[i] = domain.FocusArea{
			Name:             s.name,
			Priority:         s.priority,
			Category:         s.category,
			EstimatedMinutes: minutes[i],
			Resources:        append([]string(nil), s.resources...),
		}
	}
	return areas
}

func (p *PreparationPlanner) selectQuestions(specs []focusSpec) []domain.InterviewQuestion {
	var out []domain.InterviewQuestion
	seen := make(map[string]bool)
	limit := maxQuestions - consciousnessPairs
	for _, s := range specs {
		texts := p.library.Questions(s.qCategory, s.qSub)
		for i, text := range texts {
			if i >= questionsPerArea || len(out) >= limit {
				break
			}
			if seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, domain.InterviewQuestion{
				ID:          fmt.Sprintf("%s.%s.%d", s.qCategory, s.qSub, i+1),
				Text:        text,
				Category:    s.qCategory,
				Subcategory: s.qSub,
				Difficulty:  s.qDifficulty,
			})
		}
	}
	innovation := p.library.Questions(domain.CategoryConsciousness, "innovation")
	for i, text := range innovation {
		if i >= consciousnessPairs {
			break
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, domain.InterviewQuestion{
			ID:          fmt.Sprintf("%s.innovation.%d", domain.CategoryConsciousness, i+1),
			Text:        text,
			Category:    domain.CategoryConsciousness,
			Subcategory: "innovation",
			Difficulty:  domain.DifficultyAdvanced,
		})
	}
	return out
}

func (p *PreparationPlanner) starExamples(seniorRole bool) map[string]domain.StarExample {
	labels := []string{"problem_solving", "learning"}
	if seniorRole {
		labels = append(labels, "leadership")
	}
	out := make(map[string]domain.StarExample, len(labels))
	for _, label := range labels {
		if ex, ok := p.library.StarExample(label); ok {
			out[label] = ex
		}
	}
	return out
}

func buildSchedule(areas []domain.FocusArea, daily int) domain.PreparationSchedule {
	days := make([]domain.DayPlan, planDays)
	for d := 1; d <= planDays; d++ {
		focus := areas[(d-1)%len(areas)].Name
		days[d-1] = domain.DayPlan{
			Day:        d,
			FocusArea:  focus,
			Minutes:    daily,
			Activities: dailyActivities(focus),
			Goals: []string{
				fmt.Sprintf("Achieve %d%% completion of %s preparation", d*100/planDays, focus),
				fmt.Sprintf("Answer %d practice questions on %s out loud", d+1, focus),
			},
		}
	}
	return domain.PreparationSchedule{
		Days:        days,
		Milestones:  append([]string(nil), planMilestones...),
		Checkpoints: append([]domain.Checkpoint(nil), planCheckpoints...),
	}
}

func dailyActivities(focus string) []string {
	lower := strings.ToLower(focus)
	switch {
	case strings.Contains(lower, "python") || strings.Contains(lower, "algorithms"):
		return []string{
			"Review Python fundamentals and data structures",
			"Practice algorithm problems",
			"Study common Python interview questions",
		}
	case strings.Contains(lower, "browser") || strings.Contains(lower, "ui/ux") || strings.Contains(lower, "state"):
		return []string{
			"Review JavaScript ES6+ features",
			"Practice React component patterns",
			"Review asynchronous programming concepts",
		}
	case strings.Contains(lower, "design") || strings.Contains(lower, "architecture"):
		return []string{
			"Study scalable system architecture patterns",
			"Review database design and optimization",
			"Practice system design interview questions",
		}
	case strings.Contains(lower, "communication") || strings.Contains(lower, "leadership") || strings.Contains(lower, "team"):
		return []string{
			"Practice STAR method with common questions",
			"Prepare specific examples from your experience",
			"Record and review practice responses",
		}
	default:
		return []string{
			"Review focus area fundamentals",
			"Practice related interview questions",
			"Prepare relevant examples and stories",
		}
	}
}

func researchQuestions(company string) []string {
	if strings.TrimSpace(company) == "" {
		company = "the company"
	}
	return []string{
		fmt.Sprintf("What are %s's main products and services?", company),
		fmt.Sprintf("Who are %s's main competitors?", company),
		fmt.Sprintf("What recent news or developments has %s announced?", company),
		fmt.Sprintf("How does %s describe its engineering culture?", company),
	}
}

// planConsciousness es solo informativo: no afecta otras decisiones.
func planConsciousness(areas int, experience domain.Seniority) float64 {
	bonus := 0.3
	switch experience {
	case domain.SenioritySenior, domain.SeniorityExecutive:
		bonus = 0.5
	case domain.SeniorityJunior:
		bonus = 0.2
	}
	return clamp01(float64(areas)/float64(maxFocusAreas)*0.5 + bonus)
}

func checkPlan(plan domain.PreparationPlan, available, dailyCap int) error {
	sum := 0
	for _, a := range plan.FocusAreas {
		if a.EstimatedMinutes < 0 {
			return domain.ContractViolation(componentPlanner, "negative minutes for %s", a.Name)
		}
		sum += a.EstimatedMinutes
	}
	if sum != plan.TotalMinutes {
		return domain.ContractViolation(componentPlanner, "focus minutes %d != total %d", sum, plan.TotalMinutes)
	}
	if plan.TotalMinutes > available {
		return domain.ContractViolation(componentPlanner, "total %d exceeds available %d", plan.TotalMinutes, available)
	}
	for _, d := range plan.Schedule.Days {
		if d.Minutes > dailyCap {
			return domain.ContractViolation(componentPlanner, "day %d exceeds cap", d.Day)
		}
	}
	return nil
}
