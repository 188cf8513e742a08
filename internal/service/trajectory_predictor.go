package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

const componentPredictor = "trajectory_predictor"

var experienceMultipliers = map[domain.Seniority]float64{
	domain.SeniorityJunior:    0.8,
	domain.SeniorityMid:       1.0,
	domain.SenioritySenior:    1.2,
	domain.SeniorityExecutive: 1.1,
}

const (
	baselineScore       = 0.6
	baselineHalfWidth   = 0.2
	trendThreshold      = 0.05
	defaultRate         = 0.05
	maxRate             = 0.1
	defaultVariance     = 0.05
	focusThreshold      = 0.8
	maintenanceFocus    = "Continue developing well-rounded interview skills"
	defaultPrepDays     = 7
	maxForecastAdvice   = 5
	maxOfferAdvice      = 3
	confidenceBaseWidth = 0.15
)

var focusPhrases = map[domain.Dimension]string{
	domain.DimCommunication:  "Response clarity and structure",
	domain.DimTechnical:      "Technical depth and current trends",
	domain.DimProblemSolving: "Systematic problem-solving methods",
	domain.DimConsciousness:  "Innovation and forward-thinking approaches",
	domain.DimCulturalFit:    "Team dynamics and collaboration skills",
}

var baselineRecommendations = []string{
	"Focus on fundamental interview preparation",
	"Practice common behavioral and technical questions",
	"Develop clear communication of problem-solving approaches",
}

// TrajectoryPredictor proyecta la siguiente sesion a partir de la historia.
type TrajectoryPredictor struct {
	logger *zap.Logger
}

func NewTrajectoryPredictor(logger *zap.Logger) *TrajectoryPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrajectoryPredictor{logger: logger}
}

type trajectory struct {
	trend      domain.Trend
	prediction float64
	slope      float64
}

// Forecast produce la prediccion; con historia vacia devuelve la linea base.
func (p *TrajectoryPredictor) Forecast(history []domain.PerformanceRecord, ctx domain.ForecastContext) (domain.Forecast, error) {
	for i, rec := range history {
		if err := rec.Scores.CheckRange(); err != nil {
			return domain.Forecast{}, domain.ContractViolation(componentPredictor, "record %d: %v", i, err)
		}
		if rec.Overall < 0 || rec.Overall > 1 {
			return domain.Forecast{}, domain.ContractViolation(componentPredictor, "record %d: overall %v out of [0,1]", i, rec.Overall)
		}
	}
	if len(history) == 0 {
		return p.baseline(ctx)
	}

	scores := make([]float64, len(history))
	for i, rec := range history {
		scores[i] = rec.Overall
	}

	traj := fitTrajectory(scores)
	rate := improvementRate(scores)
	recent := scores[max(0, len(scores)-3):]
	current := mean(recent...)
	ceiling := clamp01(current + 0.3)

	multiplier := consciousnessMultiplier(history)
	withRate := clamp(traj.prediction+0.5*rate, 0, 1)
	withConsciousness := clamp(withRate*multiplier, 0, 1)
	predicted := clamp01(withConsciousness + contextualAdjustment(ctx, traj.trend))

	variance := defaultVariance
	if len(scores) > 1 {
		variance = sampleVariance(scores)
	}
	dataQuality := clamp01(float64(len(scores)) / 5)
	consistency := 1 - clamp(variance, 0, 0.5)
	width := confidenceBaseWidth * (1 - dataQuality*consistency)

	forecast := domain.Forecast{
		Predicted: predicted,
		Interval: domain.ConfidenceInterval{
			Low:      clamp01(predicted - 1.5*width),
			Expected: predicted,
			High:     clamp01(predicted + 1.5*width),
		},
		ImprovementPotential:    clamp01(ceiling - current),
		LongTermPotential:       ceiling,
		Trend:                   traj.trend,
		ImprovementRate:         rate,
		ConsciousnessMultiplier: multiplier,
		ConfidenceLevel:         dataQuality * consistency,
		FocusRecommendations:    focusRecommendations(history[len(history)-1].Scores),
		Recommendations:         forecastRecommendations(predicted, rate),
	}
	p.logger.Debug("forecast computed",
		zap.Int("history", len(history)),
		zap.String("trend", string(traj.trend)),
		zap.Float64("slope", traj.slope),
		zap.Float64("predicted", predicted),
	)
	return forecast, nil
}

func (p *TrajectoryPredictor) baseline(ctx domain.ForecastContext) (domain.Forecast, error) {
	level := ctx.Experience.Normalize()
	if ctx.Experience != "" && level == "" {
		return domain.Forecast{}, domain.InvalidInput(componentPredictor, "unknown experience level %q", ctx.Experience)
	}
	if level == "" {
		level = domain.SeniorityMid
	}
	predicted := baselineScore * experienceMultipliers[level]
	return domain.Forecast{
		Predicted: predicted,
		Interval: domain.ConfidenceInterval{
			Low:      clamp01(predicted - baselineHalfWidth),
			Expected: predicted,
			High:     clamp01(predicted + baselineHalfWidth),
		},
		ImprovementPotential: 0.3,
		LongTermPotential:    0.4,
		Trend:                domain.TrendInsufficientData,
		ImprovementRate:      defaultRate,
		FocusRecommendations: []string{maintenanceFocus},
		Recommendations:      append([]string(nil), baselineRecommendations...),
	}, nil
}

// fitTrajectory ajusta minimos cuadrados sobre x = 0..n-1 y predice x = n.
func fitTrajectory(scores []float64) trajectory {
	n := len(scores)
	if n < 2 {
		return trajectory{trend: domain.TrendInsufficientData, prediction: scores[0]}
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range scores {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	trend := domain.TrendStable
	switch {
	case slope > trendThreshold:
		trend = domain.TrendImproving
	case slope < -trendThreshold:
		trend = domain.TrendDeclining
	}
	return trajectory{
		trend:      trend,
		prediction: clamp01(intercept + slope*fn),
		slope:      slope,
	}
}

// improvementRate es la media de diferencias consecutivas de las ultimas 3 sesiones.
func improvementRate(scores []float64) float64 {
	recent := scores[max(0, len(scores)-3):]
	if len(recent) < 2 {
		return defaultRate
	}
	sum := 0.0
	for i := 1; i < len(recent); i++ {
		sum += recent[i] - recent[i-1]
	}
	return clamp(sum/float64(len(recent)-1), -maxRate, maxRate)
}

func consciousnessMultiplier(history []domain.PerformanceRecord) float64 {
	latest := history[len(history)-1].Scores.Consciousness
	base := 0.9
	switch {
	case latest >= 0.8:
		base = 1.3
	case latest >= 0.6:
		base = 1.1
	}
	if len(history) < 2 {
		return base
	}
	values := make([]float64, len(history))
	for i, rec := range history {
		values[i] = rec.Scores.Consciousness
	}
	bonus := mean(values...) * 0.2
	if bonus > 0.1 {
		bonus = 0.1
	}
	return base + bonus
}

func contextualAdjustment(ctx domain.ForecastContext, trend domain.Trend) float64 {
	total := 0.0
	switch ctx.InterviewType {
	case "executive":
		total -= 0.1
	case "behavioral":
		total += 0.05
	}
	switch ctx.CompanySize {
	case "startup":
		total += 0.05
	case "enterprise":
		total -= 0.05
	}
	if ctx.MarketConditions == "hot" && trend == domain.TrendImproving {
		total += 0.05
	}
	days := defaultPrepDays
	if ctx.PreparationDays != nil {
		days = *ctx.PreparationDays
	}
	switch {
	case days < 3:
		total -= 0.1
	case days > 14:
		total += 0.05
	}
	return total
}

// focusRecommendations toma las dos dimensiones mas bajas del ultimo registro.
func focusRecommendations(latest domain.DimensionScores) []string {
	named := latest.Named()
	sort.SliceStable(named, func(i, j int) bool { return named[i].Score < named[j].Score })
	var out []string
	for _, ns := range named[:2] {
		if ns.Score < focusThreshold {
			out = append(out, focusPhrases[ns.Dimension])
		}
	}
	if len(out) == 0 {
		out = append(out, maintenanceFocus)
	}
	return out
}

func forecastRecommendations(predicted, rate float64) []string {
	var out []string
	switch {
	case predicted < 0.6:
		out = append(out,
			"Intensive preparation focusing on technical fundamentals",
			"Mock interviews with similar company profiles",
			"Address communication clarity and response structure",
		)
	case predicted < 0.8:
		out = append(out,
			"Targeted practice on identified weak areas",
			"Expand knowledge of company-specific technologies",
			"Develop stronger examples of leadership and impact",
		)
	default:
		out = append(out,
			"Maintain preparation intensity with advanced scenarios",
			"Focus on demonstrating thought leadership",
			"Prepare for challenging technical and strategic questions",
		)
	}
	switch {
	case rate > 0.05:
		out = append(out, "Continue current improvement trajectory with consistent practice")
	case rate < 0:
		out = append(out, "Identify and address factors impacting recent performance trends")
	}
	if len(out) > maxForecastAdvice {
		out = out[:maxForecastAdvice]
	}
	return out
}

// ForecastOffer estima la probabilidad de oferta a partir del score previsto.
func (p *TrajectoryPredictor) ForecastOffer(predicted float64, ctx domain.OfferContext) (domain.OfferForecast, error) {
	if predicted < 0 || predicted > 1 {
		return domain.OfferForecast{}, domain.InvalidInput(componentPredictor, "predicted score %v out of [0,1]", predicted)
	}
	competition := defaultString(ctx.CompetitionLevel, "medium")
	fit := defaultString(ctx.CandidateMarketFit, "good")
	panel := defaultString(ctx.PanelFeedback, "positive")

	var base float64
	switch {
	case predicted >= 0.9:
		base = 0.85
	case predicted >= 0.8:
		base = 0.65
	case predicted >= 0.7:
		base = 0.40
	case predicted >= 0.6:
		base = 0.20
	default:
		base = 0.05
	}
	adj := 0.0
	switch competition {
	case "high":
		adj -= 0.15
	case "low":
		adj += 0.10
	}
	switch fit {
	case "excellent":
		adj += 0.10
	case "poor":
		adj -= 0.15
	}
	switch panel {
	case "very_positive":
		adj += 0.10
	case "negative":
		adj -= 0.20
	}
	probability := clamp01(base + adj)

	provided := 0
	for _, v := range []string{ctx.CompetitionLevel, ctx.CandidateMarketFit, ctx.PanelFeedback} {
		if v != "" {
			provided++
		}
	}

	var advice []string
	switch {
	case probability < 0.3:
		advice = append(advice,
			"Consider targeting positions with lower competition or better fit",
			"Focus on building stronger foundational skills before applying",
		)
	case probability < 0.6:
		advice = append(advice,
			"Continue applying to similar roles while strengthening weak areas",
			"Consider informational interviews to improve positioning",
		)
	default:
		advice = append(advice,
			"Strong candidate profile - continue current application strategy",
			"Prepare comprehensive negotiation strategy",
		)
	}
	if competition == "high" {
		advice = append(advice, "Consider building stronger differentiation in your resume and interviews")
	}
	if fit == "poor" {
		advice = append(advice, "Focus on gaining experience in high-demand skills or roles")
	}
	if len(advice) > maxOfferAdvice {
		advice = advice[:maxOfferAdvice]
	}

	return domain.OfferForecast{
		Probability:     probability,
		ConfidenceLevel: clamp(float64(provided)/10, 0, 0.9),
		KeyFactors: []string{
			fmt.Sprintf("Performance prediction: %.1f%%", predicted*100),
			"Competition level: " + competition,
			"Market fit: " + fit,
			"Panel reaction: " + panel,
		},
		Recommendations: advice,
	}, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
