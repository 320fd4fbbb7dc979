package merge

import (
	"math"

	"secagent/internal/model"
)

// Severity weights for risk scoring. The exact values are policy, but the
// score they produce is deterministic and monotonic in both severity and
// finding count.
var severityWeights = map[model.Severity]float64{
	model.SeverityCritical: 10.0,
	model.SeverityHigh:     8.0,
	model.SeverityMedium:   5.0,
	model.SeverityLow:      2.0,
	model.SeverityUnknown:  1.0,
}

const scoreScale = 0.2

// Score computes a [0,10] risk score as a severity-weighted sum of all
// findings, scaled and clipped. No findings yields exactly 0.
func Score(results []model.ScanResult) float64 {
	var weighted float64
	for _, res := range results {
		for _, f := range res.Findings {
			weighted += severityWeights[f.Severity]
		}
	}
	if weighted == 0 {
		return 0
	}

	score := weighted * scoreScale
	if score > 10 {
		score = 10
	}
	return math.Round(score*100) / 100
}
