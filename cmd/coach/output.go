package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"interview-coach/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")).Width(26)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2a3850")).Padding(0, 1)
)

// emit imprime v como JSON con --json, o el reporte formateado.
func emit(w io.Writer, v any, report func() string) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, report())
	return err
}

func row(label string, value any) string {
	return labelStyle.Render(label) + fmt.Sprint(value)
}

func bullets(items []string) string {
	if len(items) == 0 {
		return mutedStyle.Render("  (none)")
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "  • " + it
	}
	return strings.Join(lines, "\n")
}

func section(title string, lines ...string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{titleStyle.Render(title)}, lines...)...))
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func renderError(err error) string {
	if kind := domain.KindOf(err); kind != "" {
		return errorStyle.Render(fmt.Sprintf("%s (%s)", kind, domain.ComponentOf(err))) + " " + err.Error()
	}
	return errorStyle.Render("error") + " " + err.Error()
}

func renderPlan(plan domain.PreparationPlan) string {
	focus := make([]string, len(plan.FocusAreas))
	for i, f := range plan.FocusAreas {
		focus[i] = fmt.Sprintf("%-40s %-8s %3d min", f.Name, f.Priority, f.EstimatedMinutes)
	}
	cats := make([]string, 0, len(plan.TimeAllocation))
	for c := range plan.TimeAllocation {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	alloc := make([]string, len(cats))
	for i, c := range cats {
		alloc[i] = row(c, fmt.Sprintf("%d min", plan.TimeAllocation[c]))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		section("Preparation plan "+plan.ID,
			row("total", fmt.Sprintf("%d min", plan.TotalMinutes)),
			row("daily", fmt.Sprintf("%d min", plan.DailyMinutes)),
			row("questions", len(plan.Questions)),
			row("alignment", fmt.Sprintf("%.3f", plan.ConsciousnessAlignment)),
		),
		section("Focus areas", bullets(focus)),
		section("Time allocation", alloc...),
	)
}

func renderSessions(sessions []domain.InterviewSession, smoothness, efficiency float64) string {
	lines := make([]string, len(sessions))
	for i, s := range sessions {
		lines[i] = fmt.Sprintf("%-10s %-14s %s  %3d min  %s", s.Stage, s.Type, s.ScheduledAt.Format("Mon 2006-01-02 15:04"), s.DurationMinutes, s.Platform)
	}
	return section("Interview rounds",
		append(lines,
			row("smoothness", fmt.Sprintf("%.3f", smoothness)),
			row("timing efficiency", fmt.Sprintf("%.3f", efficiency)),
		)...,
	)
}

func renderScores(d domain.DimensionScores) string {
	lines := make([]string, 0, 5)
	for _, n := range d.Named() {
		lines = append(lines, row(string(n.Dimension), pct(n.Score)))
	}
	return section("Dimension scores", lines...)
}

func renderRecord(r domain.PerformanceRecord) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderScores(r.Scores),
		section("Performance "+r.SessionID,
			row("overall", pct(r.Overall)),
			"strengths:", bullets(r.Strengths),
			"improvements:", bullets(r.Improvements),
			"recommendations:", bullets(r.Recommendations),
		),
	)
}

func renderForecast(f domain.Forecast) string {
	return section("Trajectory forecast",
		row("trend", f.Trend),
		row("predicted", pct(f.Predicted)),
		row("interval", fmt.Sprintf("%s - %s", pct(f.Interval.Low), pct(f.Interval.High))),
		row("improvement rate", fmt.Sprintf("%.3f", f.ImprovementRate)),
		row("confidence", pct(f.ConfidenceLevel)),
		"focus:", bullets(f.FocusRecommendations),
		"recommendations:", bullets(f.Recommendations),
	)
}

func renderOffer(o domain.OfferForecast) string {
	return section("Offer forecast",
		row("probability", pct(o.Probability)),
		row("confidence", pct(o.ConfidenceLevel)),
		"factors:", bullets(o.KeyFactors),
		"recommendations:", bullets(o.Recommendations),
	)
}

func renderNegotiation(a domain.NegotiationAnalysis) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		section("Offer analysis",
			row("market", fmt.Sprintf("%s (median %s)", a.MarketCategory, dollars(a.Market.Median))),
			row("competitiveness", fmt.Sprintf("%s (%.2f)", a.Competitiveness, a.CompetitiveRatio)),
			row("counter offer", dollars(a.CounterOffer)),
			row("acceptable", fmt.Sprintf("%s / %s / %s", dollars(a.Acceptable.Minimum), dollars(a.Acceptable.Target), dollars(a.Acceptable.Optimistic))),
			row("walk away", dollars(a.WalkAway.Absolute)),
			row("leverage", a.LeveragePosition),
			bullets(a.LeveragePoints),
		),
		section("Script", bullets(a.Script)),
	)
}

func renderFollowUp(p domain.FollowUpPlan) string {
	lines := make([]string, len(p.Messages))
	for i, m := range p.Messages {
		lines[i] = fmt.Sprintf("%d. %-16s %s", m.Sequence, m.Type, m.ScheduledAt.Format("Mon 2006-01-02 15:04"))
	}
	return section("Follow-up sequence ("+string(p.Strategy)+")",
		append(lines, row("harmony", fmt.Sprintf("%.3f", p.HarmonyScore)))...,
	)
}

func dollars(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String()
}
