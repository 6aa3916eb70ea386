package app

import (
	"math"

	"iqboard-service/internal/domain"
)

type rankBand struct {
	min, max int
	tier     domain.RankTier
}

// rankBands partition 0-100 with inclusive boundaries, no gaps, no overlaps.
var rankBands = []rankBand{
	{95, 100, domain.RankGradientArchitect},
	{85, 94, domain.RankNeuralElite},
	{70, 84, domain.RankProtocolScholar},
	{50, 69, domain.RankDataExplorer},
	{0, 49, domain.RankModelInitiate},
}

// CalculateScore derives the full score result for a completed session.
// Percentage is round-half-up on the real ratio; an empty session scores zero.
// Callers pass 0 <= correct <= total; out-of-range inputs are not clamped.
func CalculateScore(total, correct int) domain.ScoreResult {
	wrong := total - correct
	percentage := 0
	if total != 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}

	// Fallback is unreachable while the bands cover 0-100.
	rank := domain.RankModelInitiate
	for _, band := range rankBands {
		if percentage >= band.min && percentage <= band.max {
			rank = band.tier
			break
		}
	}

	return domain.ScoreResult{
		Total:      total,
		Correct:    correct,
		Wrong:      wrong,
		Percentage: percentage,
		Rank:       rank,
	}
}
