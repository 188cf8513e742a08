package domain

type MarketRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

type AcceptableRange struct {
	Minimum    float64 `json:"minimum"`
	Target     float64 `json:"target"`
	Optimistic float64 `json:"optimistic"`
}

type WalkAway struct {
	Absolute  float64 `json:"absolute_minimum"`
	Preferred float64 `json:"preferred_minimum"`
	Ideal     float64 `json:"ideal_target"`
}

// NegotiationAnalysis resume la posicion del candidato frente a una oferta.
type NegotiationAnalysis struct {
	MarketCategory   string          `json:"market_category"`
	Market           MarketRange     `json:"market"`
	Competitiveness  string          `json:"competitiveness"`
	CompetitiveRatio float64         `json:"competitive_ratio"`
	CounterOffer     float64         `json:"counter_offer"`
	Acceptable       AcceptableRange `json:"acceptable_range"`
	LeveragePosition string          `json:"leverage_position"`
	LeveragePoints   []string        `json:"leverage_points"`
	WalkAway         WalkAway        `json:"walk_away"`
	Script           []string        `json:"script"`
}
