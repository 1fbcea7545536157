package scoring

import (
	"time"

	"bastion/internal/models"
)

const recentWindow = 30 * 24 * time.Hour

// highRiskCategories get elevated category scoring. Matching is
// case-insensitive set membership on the normalized category string.
var highRiskCategories = map[string]bool{
	"electronics": true,
	"jewelry":     true,
	"luxury":      true,
	"designer":    true,
	"gaming":      true,
}

func isRecent(t time.Time) bool {
	return time.Since(t) <= recentWindow
}

func recentClaimCount(history []models.Claim) int {
	count := 0
	for _, claim := range history {
		if isRecent(claim.CreatedAt) {
			count++
		}
	}
	return count
}

func claimValue(items []models.ItemData) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalValue()
	}
	return total
}

// averageClaimValue is the sum of all historical item values divided by the
// number of historical claims.
func averageClaimValue(history []models.Claim) float64 {
	if len(history) == 0 {
		return 0
	}
	var total float64
	for _, claim := range history {
		total += claim.TotalValue()
	}
	return total / float64(len(history))
}

// frequencyScore: 20 points per claim in the trailing 30 days, capped at 100.
func frequencyScore(history []models.Claim) float64 {
	return min(100, float64(recentClaimCount(history))*20)
}

// valueDeviationScore measures how far the current claim value sits above the
// user's historical average. Without history, only absolute value matters.
func valueDeviationScore(items []models.ItemData, history []models.Claim) float64 {
	currentValue := claimValue(items)
	avgValue := averageClaimValue(history)
	if avgValue > 0 {
		deviationRatio := currentValue / avgValue
		return min(100, max(0, (deviationRatio-1)*30))
	}
	if currentValue > 500 {
		return 30
	}
	return 10
}

// categoryScore is the high-risk share of current items scaled to 80.
func categoryScore(items []models.ItemData) float64 {
	if len(items) == 0 {
		return 0
	}
	highRisk := 0
	for _, item := range items {
		if highRiskCategories[normalizeCategory(item.Category)] {
			highRisk++
		}
	}
	return float64(highRisk) / float64(len(items)) * 80
}

// quantityScore compares current item quantities against the user's
// historical quantity distribution. New customers are judged on absolute
// thresholds instead.
func quantityScore(items []models.ItemData, history []models.Claim) float64 {
	if len(items) == 0 {
		return 0
	}

	totalCurrent := 0
	maxCurrent := 0
	for _, item := range items {
		totalCurrent += item.Quantity
		if item.Quantity > maxCurrent {
			maxCurrent = item.Quantity
		}
	}

	var historical []int
	for _, claim := range history {
		for _, item := range claim.ClaimData {
			historical = append(historical, item.Quantity)
		}
	}

	if len(historical) == 0 {
		switch {
		case maxCurrent >= 10:
			return 80
		case maxCurrent >= 5:
			return 50
		case totalCurrent >= 8:
			return 40
		default:
			return 10
		}
	}

	totalHistorical := 0
	maxHistorical := 0
	for _, qty := range historical {
		totalHistorical += qty
		if qty > maxHistorical {
			maxHistorical = qty
		}
	}
	avgHistorical := float64(totalHistorical) / float64(len(historical))

	score := 0.0

	// Quantities far beyond anything seen before
	if maxCurrent > maxHistorical*3 {
		score += 40
	} else if maxCurrent > maxHistorical*2 {
		score += 25
	}

	// Total quantity spike against the historical average
	if float64(totalCurrent) > avgHistorical*5 {
		score += 30
	} else if float64(totalCurrent) > avgHistorical*3 {
		score += 20
	}

	// Bulk patterns: several high-quantity items in one claim
	highQtyItems := 0
	for _, item := range items {
		if item.Quantity >= 5 {
			highQtyItems++
		}
	}
	if highQtyItems >= 3 {
		score += 25
	} else if highQtyItems >= 2 {
		score += 15
	}

	// Round-number quantities are a common fabrication tell
	roundNumbers := 0
	for _, item := range items {
		if item.Quantity%5 == 0 && item.Quantity >= 10 {
			roundNumbers++
		}
	}
	if roundNumbers >= 2 {
		score += 15
	}

	return min(100, score)
}
