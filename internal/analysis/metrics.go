package analysis

// Metrics are the five aggregate indices derived from a Breakdown. Each value
// is a percentage clamped to [0,100]; a zero denominator yields 0, never NaN.
type Metrics struct {
	ContentGapIndex         float64 `json:"contentGapIndex"`
	CarelessnessIndex       float64 `json:"carelessnessIndex"`
	EliminationEfficiency   float64 `json:"eliminationEfficiency"`
	LogicRiskRatio          float64 `json:"logicRiskRatio"`
	StrategyDisciplineScore float64 `json:"strategyDisciplineScore"`
}

// Flags carry the qualitative reading of each metric against its target.
// They are informational only and never alter the numbers.
type Flags struct {
	HighContentGap           bool `json:"highContentGap"`           // >= 15
	HighCarelessness         bool `json:"highCarelessness"`         // >= 20
	LowEliminationEfficiency bool `json:"lowEliminationEfficiency"` // < 60
	HighLogicRisk            bool `json:"highLogicRisk"`            // > 5
	LowStrategyDiscipline    bool `json:"lowStrategyDiscipline"`    // < 75
}

// ComputeMetrics derives the five indices from category counts.
func ComputeMetrics(b Breakdown) Metrics {
	return Metrics{
		ContentGapIndex:         percentage(b.A1, b.Total),
		CarelessnessIndex:       percentage(b.B1, b.B1+b.D2+b.E2),
		EliminationEfficiency:   percentage(b.D1, b.D1+b.D2),
		LogicRiskRatio:          percentage(b.E2, b.Total-b.A1),
		StrategyDisciplineScore: percentage(b.C1+b.D1, b.C1+b.D1+b.E1),
	}
}

// Flags evaluates the metric targets.
func (m Metrics) Flags() Flags {
	return Flags{
		HighContentGap:           m.ContentGapIndex >= 15,
		HighCarelessness:         m.CarelessnessIndex >= 20,
		LowEliminationEfficiency: m.EliminationEfficiency < 60,
		HighLogicRisk:            m.LogicRiskRatio > 5,
		LowStrategyDiscipline:    m.StrategyDisciplineScore < 75,
	}
}

func percentage(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	v := float64(num) / float64(den) * 100
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
