package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/domain"
)

func TestResponseScorer_BalancedAnswer(t *testing.T) {
	scorer := NewResponseScorer(nil)
	bundle := domain.ResponseBundle{
		"q1": "First, I analyzed the problem systematically. I clearly explained the solution and the team collaborated.",
	}

	scores, err := scorer.Score(bundle, "behavioral")
	require.NoError(t, err)

	// clearly + first sobre tres grupos de cuatro keywords
	assert.InDelta(t, (0.25+0.25+0)/3, scores.Communication, 1e-9)
	// analyze + solution de cinco, systematically de tres
	assert.InDelta(t, (0.4+1.0/3)/2, scores.ProblemSolving, 1e-9)
	assert.InDelta(t, 1.0/3, scores.CulturalFit, 1e-9)
	assert.Zero(t, scores.Technical)
	assert.Zero(t, scores.Consciousness)
}

func TestResponseScorer_TechnicalWeighting(t *testing.T) {
	scorer := NewResponseScorer(nil)
	cases := []struct {
		name          string
		text          string
		interviewType string
		want          float64
	}{
		{"advanced vocabulary", "We focused on architecture and scalability", "technical", 1.0},
		{"mixed levels", "I understand the basic design", "systemic", (0.3 + 0.3 + 1.0) / 3},
		{"no vocabulary", "I like my team", "technical", 0},
		{"non technical interview", "architecture and scalability", "executive", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scores, err := scorer.Score(domain.ResponseBundle{"a": tc.text}, tc.interviewType)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, scores.Technical, 1e-9)
		})
	}
}

func TestResponseScorer_IgnoresNonTextAnswers(t *testing.T) {
	scorer := NewResponseScorer(nil)
	scores, err := scorer.Score(domain.ResponseBundle{"a": nil, "b": "   ", "c": 42}, "behavioral")
	require.NoError(t, err)
	assert.NoError(t, scores.CheckRange())
}

func TestResponseScorer_EmptyBundle(t *testing.T) {
	_, err := NewResponseScorer(nil).Score(domain.ResponseBundle{}, "technical")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResponseScorer_Deterministic(t *testing.T) {
	scorer := NewResponseScorer(nil)
	answers := []string{
		"First, I analyzed the problem systematically.",
		"I clearly explained the architecture to the team.",
		"We collaborated on scalability and I learned a lot.",
		"In the future I want to innovate on the design.",
		"Confident that the solution was correct.",
		"Honestly I am not sure.",
	}
	for _, interviewType := range []string{"behavioral", "technical", "systemic", "strategic", "executive", ""} {
		t.Run(defaultString(interviewType, "untyped"), func(t *testing.T) {
			forward := domain.ResponseBundle{}
			for i, a := range answers {
				forward[fmt.Sprintf("q%d", i)] = a
			}
			backward := domain.ResponseBundle{}
			for i := len(answers) - 1; i >= 0; i-- {
				backward[fmt.Sprintf("q%d", i)] = answers[i]
			}

			first, err := scorer.Score(forward, interviewType)
			require.NoError(t, err)
			require.NoError(t, first.CheckRange())
			for run := 0; run < 20; run++ {
				again, err := scorer.Score(forward, interviewType)
				require.NoError(t, err)
				require.Equal(t, first, again, "run %d", run)
			}
			reordered, err := scorer.Score(backward, interviewType)
			require.NoError(t, err)
			assert.Equal(t, first, reordered)
		})
	}
}
