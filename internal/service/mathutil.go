package service

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func mean(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleVariance usa n-1 en el denominador.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values...)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

var idNamespace = uuid.MustParse("6f1c7c4e-3f0a-4c57-9a51-2b0f4c8e9d10")

// stableID genera un UUID v5 determinista a partir de las partes dadas.
func stableID(parts ...string) string {
	return uuid.NewSHA1(idNamespace, []byte(strings.Join(parts, "|"))).String()
}
