package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/domain"
)

func historyOf(overalls []float64, last domain.DimensionScores) []domain.PerformanceRecord {
	out := make([]domain.PerformanceRecord, len(overalls))
	for i, o := range overalls {
		out[i] = domain.PerformanceRecord{
			ID:        stableID("rec", string(rune('a'+i))),
			SessionID: stableID("sess", string(rune('a'+i))),
			Overall:   o,
			Scores:    domain.DimensionScores{Communication: o, Technical: o, ProblemSolving: o, CulturalFit: o, Consciousness: 0.4},
		}
	}
	out[len(out)-1].Scores = last
	return out
}

func TestTrajectoryPredictor_ImprovingTrend(t *testing.T) {
	p := NewTrajectoryPredictor(nil)
	last := domain.DimensionScores{Communication: 0.9, Technical: 0.85, ProblemSolving: 0.7, CulturalFit: 0.88, Consciousness: 0.4}
	history := historyOf([]float64{0.60, 0.65, 0.72, 0.78, 0.83}, last)

	f, err := p.Forecast(history, domain.ForecastContext{})
	require.NoError(t, err)

	assert.Equal(t, domain.TrendImproving, f.Trend)
	assert.InDelta(t, 0.055, f.ImprovementRate, 1e-9)
	assert.InDelta(t, 0.98, f.ConsciousnessMultiplier, 1e-9)
	assert.InDelta(t, 0.90209, f.Predicted, 1e-6)
	assert.GreaterOrEqual(t, f.Predicted, 0.80)
	assert.LessOrEqual(t, f.Predicted, 0.95)
	assert.Equal(t, []string{
		"Innovation and forward-thinking approaches",
		"Systematic problem-solving methods",
	}, f.FocusRecommendations)
	assert.LessOrEqual(t, f.Interval.Low, f.Predicted)
	assert.GreaterOrEqual(t, f.Interval.High, f.Predicted)
	assert.Contains(t, f.Recommendations, "Continue current improvement trajectory with consistent practice")
}

func TestTrajectoryPredictor_Baseline(t *testing.T) {
	p := NewTrajectoryPredictor(nil)
	cases := []struct {
		level domain.Seniority
		want  float64
	}{
		{"", 0.6},
		{domain.SeniorityJunior, 0.48},
		{"mid_level", 0.6},
		{domain.SenioritySenior, 0.72},
		{domain.SeniorityExecutive, 0.66},
	}
	for _, tc := range cases {
		t.Run(string(tc.level), func(t *testing.T) {
			f, err := p.Forecast(nil, domain.ForecastContext{Experience: tc.level})
			require.NoError(t, err)
			assert.InDelta(t, tc.want, f.Predicted, 1e-12)
			assert.Equal(t, domain.TrendInsufficientData, f.Trend)
			assert.InDelta(t, clamp01(tc.want+0.2), f.Interval.High, 1e-12)
		})
	}

	_, err := p.Forecast(nil, domain.ForecastContext{Experience: "wizard"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTrajectoryPredictor_RejectsOutOfRangeHistory(t *testing.T) {
	p := NewTrajectoryPredictor(nil)
	history := []domain.PerformanceRecord{{Overall: 1.3}}
	_, err := p.Forecast(history, domain.ForecastContext{})
	assert.ErrorIs(t, err, domain.ErrContractViolation)
}

func TestTrajectoryPredictor_ContextAdjustments(t *testing.T) {
	p := NewTrajectoryPredictor(nil)
	history := historyOf([]float64{0.5, 0.5}, domain.DimensionScores{Communication: 0.5, Technical: 0.5, ProblemSolving: 0.5, CulturalFit: 0.5, Consciousness: 0.4})
	days := 2

	plain, err := p.Forecast(history, domain.ForecastContext{})
	require.NoError(t, err)
	rushed, err := p.Forecast(history, domain.ForecastContext{InterviewType: "executive", PreparationDays: &days})
	require.NoError(t, err)

	assert.InDelta(t, plain.Predicted-0.2, rushed.Predicted, 1e-9)
	assert.Equal(t, domain.TrendStable, plain.Trend)
}

func TestTrajectoryPredictor_ForecastOffer(t *testing.T) {
	p := NewTrajectoryPredictor(nil)

	got, err := p.ForecastOffer(0.85, domain.OfferContext{CompetitionLevel: "high", CandidateMarketFit: "poor"})
	require.NoError(t, err)
	assert.InDelta(t, 0.35, got.Probability, 1e-9)
	assert.InDelta(t, 0.2, got.ConfidenceLevel, 1e-9)
	assert.Len(t, got.Recommendations, maxOfferAdvice)
	assert.Equal(t, "Performance prediction: 85.0%", got.KeyFactors[0])

	strong, err := p.ForecastOffer(0.95, domain.OfferContext{PanelFeedback: "very_positive", CompetitionLevel: "low"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, strong.Probability)

	_, err = p.ForecastOffer(1.5, domain.OfferContext{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
