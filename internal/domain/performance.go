package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ResponseBundle mapea id de pregunta a la respuesta libre del candidato.
type ResponseBundle map[string]any

// DimensionScores son las cinco dimensiones evaluadas, cada una en [0,1].
type DimensionScores struct {
	Communication  float64 `json:"communication"`
	Technical      float64 `json:"technical"`
	ProblemSolving float64 `json:"problem_solving"`
	CulturalFit    float64 `json:"cultural_fit"`
	Consciousness  float64 `json:"consciousness"`
}

// Dimension identifica una dimension por nombre estable.
type Dimension string

const (
	DimCommunication  Dimension = "communication"
	DimTechnical      Dimension = "technical"
	DimProblemSolving Dimension = "problem_solving"
	DimCulturalFit    Dimension = "cultural_fit"
	DimConsciousness  Dimension = "consciousness"
)

type NamedScore struct {
	Dimension Dimension
	Score     float64
}

// Named devuelve las dimensiones en orden fijo.
func (d DimensionScores) Named() []NamedScore {
	return []NamedScore{
		{DimCommunication, d.Communication},
		{DimTechnical, d.Technical},
		{DimProblemSolving, d.ProblemSolving},
		{DimConsciousness, d.Consciousness},
		{DimCulturalFit, d.CulturalFit},
	}
}

// Vector devuelve las dimensiones para embeddings (orden de la struct).
func (d DimensionScores) Vector() []float32 {
	return []float32{
		float32(d.Communication),
		float32(d.Technical),
		float32(d.ProblemSolving),
		float32(d.CulturalFit),
		float32(d.Consciousness),
	}
}

// CheckRange verifica que todas las dimensiones esten en [0,1].
func (d DimensionScores) CheckRange() error {
	var bad []string
	for _, ns := range d.Named() {
		if math.IsNaN(ns.Score) || ns.Score < 0 || ns.Score > 1 {
			bad = append(bad, fmt.Sprintf("%s=%v", ns.Dimension, ns.Score))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("scores out of [0,1]: %s", strings.Join(bad, ", "))
	}
	return nil
}

// PerformanceRecord se deriva una vez de un ResponseBundle.
type PerformanceRecord struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"session_id"`
	InterviewType   string          `json:"interview_type,omitempty"`
	Scores          DimensionScores `json:"scores"`
	Overall         float64         `json:"overall"`
	Strengths       []string        `json:"strengths"`
	Improvements    []string        `json:"improvements"`
	Recommendations []string        `json:"recommendations"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendStable           Trend = "stable"
	TrendDeclining        Trend = "declining"
	TrendInsufficientData Trend = "insufficient_data"
)

type ConfidenceInterval struct {
	Low      float64 `json:"low"`
	Expected float64 `json:"expected"`
	High     float64 `json:"high"`
}

// Forecast es la prediccion para la siguiente sesion.
type Forecast struct {
	Predicted               float64            `json:"predicted"`
	Interval                ConfidenceInterval `json:"interval"`
	ImprovementPotential    float64            `json:"improvement_potential"`
	LongTermPotential       float64            `json:"long_term_potential"`
	Trend                   Trend              `json:"trend"`
	ImprovementRate         float64            `json:"improvement_rate"`
	ConsciousnessMultiplier float64            `json:"consciousness_multiplier"`
	ConfidenceLevel         float64            `json:"confidence_level"`
	FocusRecommendations    []string           `json:"focus_recommendations"`
	Recommendations         []string           `json:"recommendations"`
}

// ForecastContext son los ajustes contextuales opcionales del host.
type ForecastContext struct {
	Experience       Seniority `json:"experience_level,omitempty"`
	InterviewType    string    `json:"interview_type,omitempty"`
	CompanySize      string    `json:"company_size,omitempty"`
	MarketConditions string    `json:"market_conditions,omitempty"`
	PreparationDays  *int      `json:"preparation_days,omitempty"`
}

// OfferContext alimenta la estimacion de probabilidad de oferta.
type OfferContext struct {
	CompetitionLevel   string `json:"competition_level,omitempty"`
	CandidateMarketFit string `json:"candidate_market_fit,omitempty"`
	PanelFeedback      string `json:"panel_feedback,omitempty"`
}

type OfferForecast struct {
	Probability     float64  `json:"probability"`
	ConfidenceLevel float64  `json:"confidence_level"`
	KeyFactors      []string `json:"key_factors"`
	Recommendations []string `json:"recommendations"`
}
