package service

import (
	"math"
	"strings"
	"time"

	"interview-coach/internal/domain"
)

const componentAggregator = "performance_aggregator"

// DimensionWeights suman 1.0; el resultado igual se recorta a [0,1].
var DimensionWeights = map[domain.Dimension]float64{
	domain.DimCommunication:  0.20,
	domain.DimTechnical:      0.25,
	domain.DimCulturalFit:    0.15,
	domain.DimProblemSolving: 0.20,
	domain.DimConsciousness:  0.20,
}

const (
	strengthThreshold    = 0.8
	improvementThreshold = 0.7
	maxRecommendations   = 5
)

var strengthPhrases = map[domain.Dimension]string{
	domain.DimCommunication:  "Exceptional communication skills and clarity of expression",
	domain.DimTechnical:      "Strong technical foundation and problem-solving capabilities",
	domain.DimProblemSolving: "Excellent analytical thinking and solution design",
	domain.DimConsciousness:  "High consciousness alignment and innovative thinking",
	domain.DimCulturalFit:    "Strong cultural alignment and collaborative mindset",
}

var improvementPhrases = map[domain.Dimension]string{
	domain.DimCommunication:  "Communication clarity and structured response delivery",
	domain.DimTechnical:      "Technical depth and practical application knowledge",
	domain.DimProblemSolving: "Structured problem-solving methodology and logic",
	domain.DimConsciousness:  "Consciousness-guided innovation and forward-thinking approach",
	domain.DimCulturalFit:    "Team collaboration and cultural adaptation skills",
}

var recommendationPhrases = map[domain.Dimension]string{
	domain.DimCommunication:  "Work on pacing and taking brief pauses before responding",
	domain.DimTechnical:      "Deepen knowledge in specific technical domains of interest",
	domain.DimProblemSolving: "Practice breaking down complex problems systematically",
	domain.DimConsciousness:  "Study transformative technologies and innovation patterns",
	domain.DimCulturalFit:    "Develop stronger team collaboration and communication skills",
}

const (
	genericStrength    = "Consistent performance across evaluated dimensions"
	genericImprovement = "Continue building on current strengths"
)

var baseRecommendations = []string{
	"Practice with diverse mock interview scenarios",
	"Focus on STAR method for behavioral questions",
}

// PerformanceAggregator combina dimensiones en un PerformanceRecord.
type PerformanceAggregator struct{}

func NewPerformanceAggregator() *PerformanceAggregator {
	return &PerformanceAggregator{}
}

// ComputeOverall es la suma ponderada de las dimensiones.
func (a *PerformanceAggregator) ComputeOverall(dims domain.DimensionScores) float64 {
	return clamp01(weightedSum(dims))
}

func weightedSum(dims domain.DimensionScores) float64 {
	sum := 0.0
	for _, ns := range dims.Named() {
		sum += ns.Score * DimensionWeights[ns.Dimension]
	}
	return sum
}

func (a *PerformanceAggregator) DeriveStrengths(dims domain.DimensionScores) []string {
	var out []string
	for _, ns := range dims.Named() {
		if ns.Score >= strengthThreshold {
			out = append(out, strengthPhrases[ns.Dimension])
		}
	}
	if len(out) == 0 {
		out = append(out, genericStrength)
	}
	return out
}

func (a *PerformanceAggregator) DeriveImprovements(dims domain.DimensionScores) []string {
	var out []string
	for _, ns := range dims.Named() {
		if ns.Score < improvementThreshold {
			out = append(out, improvementPhrases[ns.Dimension])
		}
	}
	if len(out) == 0 {
		out = append(out, genericImprovement)
	}
	return out
}

func (a *PerformanceAggregator) DeriveRecommendations(dims domain.DimensionScores) []string {
	out := append([]string(nil), baseRecommendations...)
	for _, ns := range dims.Named() {
		if ns.Score < improvementThreshold {
			out = append(out, recommendationPhrases[ns.Dimension])
		}
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// BuildRecord valida las dimensiones y arma el registro. Un score fuera de [0,1]
// es una violacion de contrato y no produce registro.
func (a *PerformanceAggregator) BuildRecord(session domain.InterviewSession, dims domain.DimensionScores, interviewType string, now time.Time) (domain.PerformanceRecord, error) {
	if strings.TrimSpace(session.ID) == "" {
		return domain.PerformanceRecord{}, domain.InvalidInput(componentAggregator, "session id is required")
	}
	if session.Status != domain.SessionCompleted {
		return domain.PerformanceRecord{}, domain.InvalidInput(componentAggregator, "session %s is %s, expected completed", session.ID, session.Status)
	}
	if err := dims.CheckRange(); err != nil {
		return domain.PerformanceRecord{}, domain.ContractViolation(componentAggregator, "%v", err)
	}
	overall := a.ComputeOverall(dims)
	if math.Abs(overall-weightedSum(dims)) > 1e-9 {
		return domain.PerformanceRecord{}, domain.ContractViolation(componentAggregator, "overall %v differs from weighted sum", overall)
	}
	if interviewType == "" {
		interviewType = session.Type
	}
	return domain.PerformanceRecord{
		ID:              stableID("record", session.ID),
		SessionID:       session.ID,
		InterviewType:   interviewType,
		Scores:          dims,
		Overall:         overall,
		Strengths:       a.DeriveStrengths(dims),
		Improvements:    a.DeriveImprovements(dims),
		Recommendations: a.DeriveRecommendations(dims),
		CreatedAt:       now.UTC(),
	}, nil
}
