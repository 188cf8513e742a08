package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/domain"
)

func completedSession(id string, at time.Time) domain.InterviewSession {
	return domain.InterviewSession{
		ID:              id,
		ApplicationID:   "app-1",
		Stage:           domain.StageInitial,
		Type:            "behavioral",
		DurationMinutes: 60,
		ScheduledAt:     at,
		Status:          domain.SessionCompleted,
	}
}

func TestPerformanceAggregator_BuildRecord(t *testing.T) {
	agg := NewPerformanceAggregator()
	dims := domain.DimensionScores{Communication: 0.9, Technical: 0.5, ProblemSolving: 0.75, CulturalFit: 0.85, Consciousness: 0.6}
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	rec, err := agg.BuildRecord(completedSession("s1", now), dims, "", now)
	require.NoError(t, err)

	want := 0.9*0.20 + 0.5*0.25 + 0.85*0.15 + 0.75*0.20 + 0.6*0.20
	assert.InDelta(t, want, rec.Overall, 1e-12)
	assert.Equal(t, "behavioral", rec.InterviewType)
	assert.Equal(t, []string{
		"Exceptional communication skills and clarity of expression",
		"Strong cultural alignment and collaborative mindset",
	}, rec.Strengths)
	assert.Equal(t, []string{
		"Technical depth and practical application knowledge",
		"Consciousness-guided innovation and forward-thinking approach",
	}, rec.Improvements)
	assert.LessOrEqual(t, len(rec.Recommendations), maxRecommendations)
	assert.Equal(t, baseRecommendations, rec.Recommendations[:2])
}

func TestPerformanceAggregator_GenericPhrases(t *testing.T) {
	agg := NewPerformanceAggregator()
	mid := domain.DimensionScores{Communication: 0.75, Technical: 0.75, ProblemSolving: 0.75, CulturalFit: 0.75, Consciousness: 0.75}
	assert.Equal(t, []string{genericStrength}, agg.DeriveStrengths(mid))
	assert.Equal(t, []string{genericImprovement}, agg.DeriveImprovements(mid))

	low := domain.DimensionScores{}
	assert.Len(t, agg.DeriveRecommendations(low), maxRecommendations)
}

func TestPerformanceAggregator_Rejects(t *testing.T) {
	agg := NewPerformanceAggregator()
	now := time.Now().UTC()
	ok := domain.DimensionScores{Communication: 0.5}

	scheduled := completedSession("s1", now)
	scheduled.Status = domain.SessionScheduled
	_, err := agg.BuildRecord(scheduled, ok, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = agg.BuildRecord(completedSession("", now), ok, "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = agg.BuildRecord(completedSession("s1", now), domain.DimensionScores{Technical: 1.2}, "", now)
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	assert.Equal(t, componentAggregator, domain.ComponentOf(err))
}
