package service

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/domain"
	"interview-coach/internal/library"
)

var monday = time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

func newTestPlanner(t *testing.T) *PreparationPlanner {
	t.Helper()
	p, err := NewPreparationPlanner(nil, library.MustDefault(), 0)
	require.NoError(t, err)
	return p
}

func focusNames(areas []domain.FocusArea) []string {
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = a.Name
	}
	return out
}

func seniorPythonJob() domain.JobDescription {
	return domain.JobDescription{
		Title:          "Senior Python Engineer",
		Company:        "Acme",
		Salary:         &domain.SalaryRange{Min: 170000, Max: 210000},
		RequiredSkills: []string{"python", "scalability"},
	}
}

func TestPreparationPlanner_SeniorPython(t *testing.T) {
	p := newTestPlanner(t)
	plan, err := p.Plan(seniorPythonJob(), domain.CandidateProfile{Experience: domain.SenioritySenior, AvailableMinutes: 480}, monday)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Python fundamentals",
		"Data structures & algorithms",
		"System design",
		"Leadership",
		"Architecture decisions",
		"Team dynamics",
		"Communication skills",
		"Cultural fit",
	}, focusNames(plan.FocusAreas))

	assert.Equal(t, 480, plan.TotalMinutes)
	assert.Equal(t, map[string]int{
		"technical":     144,
		"system_design": 120,
		"leadership":    72,
		"behavioral":    96,
		"cultural_fit":  48,
	}, plan.TimeAllocation)
	assert.Len(t, plan.Schedule.Days, 7)
	assert.Equal(t, 68, plan.DailyMinutes)
	assert.LessOrEqual(t, len(plan.Questions), maxQuestions)
	assert.Contains(t, plan.StarExamples, "leadership")
	assert.Equal(t, "What are Acme's main products and services?", plan.ResearchQuestions[0])

	sum := 0
	for _, a := range plan.FocusAreas {
		sum += a.EstimatedMinutes
	}
	assert.Equal(t, plan.TotalMinutes, sum)
}

func TestPreparationPlanner_JuniorFrontend(t *testing.T) {
	p := newTestPlanner(t)
	job := domain.JobDescription{Title: "Junior Frontend Developer", RequiredSkills: []string{"javascript", "react"}}
	plan, err := p.Plan(job, domain.CandidateProfile{Experience: domain.SeniorityJunior, AvailableMinutes: 120}, monday)
	require.NoError(t, err)

	assert.Equal(t, 120, plan.TotalMinutes)
	names := focusNames(plan.FocusAreas)
	assert.Contains(t, names, "UI/UX principles")
	assert.Contains(t, names, "Browser technologies")
	assert.NotContains(t, plan.StarExamples, "leadership")
	assert.Equal(t, "What are the company's main products and services?", plan.ResearchQuestions[0])

	for _, d := range plan.Schedule.Days {
		assert.LessOrEqual(t, d.Minutes, DefaultDailyCap)
	}
}

func TestPreparationPlanner_Deterministic(t *testing.T) {
	p := newTestPlanner(t)
	candidate := domain.CandidateProfile{Experience: "mid_level", AvailableMinutes: 900}
	first, err := p.Plan(seniorPythonJob(), candidate, monday)
	require.NoError(t, err)
	second, err := p.Plan(seniorPythonJob(), candidate, monday)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("plan not deterministic (-first +second):\n%s", diff)
	}

	later, err := p.Plan(seniorPythonJob(), candidate, monday.Add(time.Minute))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, later.ID)
}

func TestPreparationPlanner_DailyCap(t *testing.T) {
	p, err := NewPreparationPlanner(nil, library.MustDefault(), 30)
	require.NoError(t, err)
	plan, err := p.Plan(seniorPythonJob(), domain.CandidateProfile{Experience: domain.SeniorityMid, AvailableMinutes: 5000}, monday)
	require.NoError(t, err)
	assert.Equal(t, 30, plan.DailyMinutes)
}

func TestPreparationPlanner_InvalidInput(t *testing.T) {
	p := newTestPlanner(t)
	cases := map[string]struct {
		job       domain.JobDescription
		candidate domain.CandidateProfile
	}{
		"empty title":        {domain.JobDescription{}, domain.CandidateProfile{Experience: "mid", AvailableMinutes: 60}},
		"no minutes":         {seniorPythonJob(), domain.CandidateProfile{Experience: "mid"}},
		"unknown experience": {seniorPythonJob(), domain.CandidateProfile{Experience: "guru", AvailableMinutes: 60}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.Plan(tc.job, tc.candidate, monday)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestNewPreparationPlanner_RequiresLibrary(t *testing.T) {
	_, err := NewPreparationPlanner(nil, nil, 0)
	assert.ErrorIs(t, err, domain.ErrMissingCollaborator)
}
