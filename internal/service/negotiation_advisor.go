package service

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

const componentNegotiation = "negotiation_advisor"

type marketBand struct {
	category string
	rng      domain.MarketRange
}

var (
	seniorPythonMarket = marketBand{"senior_python_engineer", domain.MarketRange{Min: 150000, Max: 200000, Median: 175000}}
	fullstackMarket    = marketBand{"fullstack_engineer", domain.MarketRange{Min: 120000, Max: 170000, Median: 145000}}
	managerMarket      = marketBand{"engineering_manager", domain.MarketRange{Min: 180000, Max: 250000, Median: 215000}}
)

const (
	acceptableFloor   = 114000
	acceptableCeiling = 178500
)

var (
	specializedSkills = []string{"machine learning", "cloud architecture", "leadership", "system design"}
	tightMarketTerms  = []string{"python", "fullstack", "leadership"}
)

type NegotiationAdvisor struct {
	logger *zap.Logger
}

func NewNegotiationAdvisor(logger *zap.Logger) *NegotiationAdvisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NegotiationAdvisor{logger: logger}
}

func marketFor(avg float64) marketBand {
	switch {
	case avg >= 200000:
		return managerMarket
	case avg >= 150000:
		return seniorPythonMarket
	default:
		return fullstackMarket
	}
}

// Analyze requiere un rango salarial en el puesto.
func (a *NegotiationAdvisor) Analyze(job domain.JobDescription) (domain.NegotiationAnalysis, error) {
	if job.Salary == nil {
		return domain.NegotiationAnalysis{}, domain.InvalidInput(componentNegotiation, "job %q has no salary range", job.Title)
	}
	if err := job.Validate(); err != nil {
		return domain.NegotiationAnalysis{}, domain.InvalidInput(componentNegotiation, "malformed job: %v", err)
	}
	if job.Salary.Max <= 0 {
		return domain.NegotiationAnalysis{}, domain.InvalidInput(componentNegotiation, "salary range must be positive")
	}

	avg := job.Salary.Average()
	band := marketFor(avg)
	median := band.rng.Median
	ratio := avg / median

	analysis := domain.NegotiationAnalysis{
		MarketCategory:   band.category,
		Market:           band.rng,
		Competitiveness:  competitiveness(ratio),
		CompetitiveRatio: ratio,
		CounterOffer:     math.Round(counterOffer(avg, median)),
		Acceptable: domain.AcceptableRange{
			Minimum:    math.Max(float64(job.Salary.Min), acceptableFloor),
			Target:     math.Min(acceptableCeiling, avg*1.15),
			Optimistic: median * 1.1,
		},
		LeveragePosition: leveragePosition(ratio),
		LeveragePoints:   leveragePoints(job),
		WalkAway: domain.WalkAway{
			Absolute:  float64(job.Salary.Min) * 0.95,
			Preferred: float64(job.Salary.Min) * 1.05,
			Ideal:     float64(job.Salary.Min) * 1.15,
		},
	}
	analysis.Script = negotiationScript(job, analysis)

	a.logger.Debug("offer analyzed",
		zap.String("market_category", band.category),
		zap.String("competitiveness", analysis.Competitiveness),
		zap.Float64("counter_offer", analysis.CounterOffer),
	)
	return analysis, nil
}

func competitiveness(ratio float64) string {
	switch {
	case ratio < 0.9:
		return "below_market"
	case ratio <= 1.1:
		return "at_market"
	default:
		return "above_market"
	}
}

func counterOffer(avg, median float64) float64 {
	switch {
	case avg < 0.9*median:
		return avg + 0.05*median
	case avg < median:
		return median
	default:
		return avg + math.Min(0.03*avg, 0.02*median)
	}
}

func leveragePosition(ratio float64) string {
	switch {
	case ratio < 0.95:
		return "strong"
	case ratio <= 1.0:
		return "moderate"
	default:
		return "limited"
	}
}

func leveragePoints(job domain.JobDescription) []string {
	var points []string
	title := strings.ToLower(job.Title)
	if strings.Contains(title, "senior") || job.Seniority.Normalize() == domain.SenioritySenior {
		points = append(points,
			"Extensive experience in scalable systems and team leadership",
			"Proven track record of delivering complex projects on time",
		)
	}
	for _, skill := range specializedSkills {
		for _, req := range job.RequiredSkills {
			if strings.Contains(strings.ToLower(req), skill) {
				points = append(points, "Expertise in "+skill)
				break
			}
		}
	}
	for _, term := range tightMarketTerms {
		if strings.Contains(title, term) {
			points = append(points, "High demand for specialized skills in current market")
			break
		}
	}
	return points
}

func negotiationScript(job domain.JobDescription, analysis domain.NegotiationAnalysis) []string {
	company := defaultString(job.Company, "the company")
	script := []string{
		fmt.Sprintf("Thank you for the offer. I'm excited about the opportunity to join %s and contribute to this role.", company),
		fmt.Sprintf("I've been particularly impressed with %s's work in innovation and growth and believe my experience in scalable systems and team leadership would be valuable.", company),
	}
	if analysis.Competitiveness == "below_market" {
		script = append(script, fmt.Sprintf("Based on my research and experience level, I was targeting a base salary in the range of %s-%s.",
			formatDollars(analysis.Market.Min), formatDollars(analysis.Market.Max)))
	}
	if analysis.CounterOffer > 0 {
		script = append(script, fmt.Sprintf("I'd like to discuss bringing the base salary to %s.", formatDollars(analysis.CounterOffer)))
	}
	script = append(script,
		"Additionally, I'd appreciate discussing the bonus structure, professional development opportunities, and work-life balance policies.",
		fmt.Sprintf("I believe this compensation structure would allow me to fully commit to %s and deliver maximum value.", company),
	)
	return script
}

// formatDollars: 175000 -> "$175,000".
func formatDollars(v float64) string {
	digits := fmt.Sprintf("%d", int64(math.Round(v)))
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String()
}
