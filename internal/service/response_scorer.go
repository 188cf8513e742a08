package service

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

const componentScorer = "response_scorer"

type keywordSet []string

// ratio cuenta keywords presentes como substring (no tokenizado).
func (k keywordSet) ratio(text string) float64 {
	if len(k) == 0 || text == "" {
		return 0
	}
	matches := 0
	for _, kw := range k {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	return clamp01(float64(matches) / float64(len(k)))
}

func (k keywordSet) matches(text string) int {
	n := 0
	for _, kw := range k {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func (k keywordSet) hit(text string) bool {
	return k.matches(text) > 0
}

var (
	clarityWords    = keywordSet{"clearly", "specifically", "precisely", "concisely"}
	structureWords  = keywordSet{"first", "then", "finally", "additionally"}
	confidenceWords = keywordSet{"definitely", "certainly", "confident", "successful"}

	methodologyWords = keywordSet{"analyze", "approach", "strategy", "solution", "evaluate"}
	systematicWords  = keywordSet{"step-by-step", "methodically", "systematically"}

	collaborationWords = keywordSet{"team", "collaborate", "together", "support"}
	initiativeWords    = keywordSet{"initiated", "proposed", "improved", "innovated"}
	growthWords        = keywordSet{"learned", "grew", "developed", "evolved"}

	innovationWords = keywordSet{"evolve", "transform", "innovative", "conscious", "adaptive"}
	forwardWords    = keywordSet{"future", "emerging", "trending", "next-generation", "cutting-edge"}
	learningWords   = keywordSet{"learn", "grow", "develop", "evolve", "adapt"}
)

type expertiseLevel struct {
	words  keywordSet
	weight float64
}

var expertiseLevels = []expertiseLevel{
	{keywordSet{"basic", "fundamental", "understand"}, 0.3},
	{keywordSet{"intermediate", "experienced", "implement"}, 0.5},
	{keywordSet{"architecture", "scalability", "optimization", "design"}, 1.0},
}

// technicalInterviewTypes son los tipos donde se evalua vocabulario tecnico.
var technicalInterviewTypes = map[string]bool{
	"technical": true,
	"systemic":  true,
}

// DimensionScorer calcula las cinco dimensiones a partir de respuestas.
type DimensionScorer interface {
	Score(bundle domain.ResponseBundle, interviewType string) (domain.DimensionScores, error)
}

// ResponseScorer puntua respuestas por coincidencia de keywords.
type ResponseScorer struct {
	logger *zap.Logger
}

func NewResponseScorer(logger *zap.Logger) *ResponseScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseScorer{logger: logger}
}

func (s *ResponseScorer) Score(bundle domain.ResponseBundle, interviewType string) (domain.DimensionScores, error) {
	if len(bundle) == 0 {
		return domain.DimensionScores{}, domain.InvalidInput(componentScorer, "response bundle is empty")
	}
	text := bundleText(bundle)
	interviewType = strings.ToLower(strings.TrimSpace(interviewType))

	scores := domain.DimensionScores{
		Communication:  mean(clarityWords.ratio(text), structureWords.ratio(text), confidenceWords.ratio(text)),
		Technical:      technicalScore(text, interviewType),
		ProblemSolving: mean(methodologyWords.ratio(text), systematicWords.ratio(text)),
		CulturalFit:    culturalFitScore(text),
		Consciousness:  mean(innovationWords.ratio(text), forwardWords.ratio(text), learningWords.ratio(text)),
	}
	if err := scores.CheckRange(); err != nil {
		return domain.DimensionScores{}, domain.ContractViolation(componentScorer, "%v", err)
	}
	s.logger.Debug("responses scored",
		zap.Int("answers", len(bundle)),
		zap.String("interview_type", interviewType),
		zap.Float64("communication", scores.Communication),
		zap.Float64("technical", scores.Technical),
	)
	return scores, nil
}

// bundleText concatena respuestas en orden de clave para que el resultado sea estable.
func bundleText(bundle domain.ResponseBundle) string {
	keys := make([]string, 0, len(bundle))
	for k := range bundle {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var s string
		switch v := bundle[k].(type) {
		case nil:
			continue
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func technicalScore(text, interviewType string) float64 {
	if !technicalInterviewTypes[interviewType] {
		return 0
	}
	weighted := 0.0
	total := 0
	for _, lvl := range expertiseLevels {
		n := lvl.words.matches(text)
		weighted += float64(n) * lvl.weight
		total += n
	}
	if total < 1 {
		total = 1
	}
	return clamp01(weighted / float64(total))
}

func culturalFitScore(text string) float64 {
	hits := 0
	for _, set := range []keywordSet{collaborationWords, initiativeWords, growthWords} {
		if set.hit(text) {
			hits++
		}
	}
	return float64(hits) / 3
}
