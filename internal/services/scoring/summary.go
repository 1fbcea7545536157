package scoring

import (
	"math"
	"sort"

	"bastion/internal/models"
)

// Summarize aggregates a user's claim history for reporting alongside an
// assessment.
func Summarize(history []models.Claim) HistoricalSummary {
	summary := HistoricalSummary{
		TotalClaims:          len(history),
		MostCommonCategories: []CategoryCount{},
	}
	if len(history) == 0 {
		return summary
	}

	counts := make(map[string]int)
	var order []string
	for _, claim := range history {
		for _, item := range claim.ClaimData {
			summary.TotalValue += item.TotalValue()
			cat := normalizeCategory(item.Category)
			if cat == "" {
				cat = "unknown"
			}
			if _, ok := counts[cat]; !ok {
				order = append(order, cat)
			}
			counts[cat]++
		}
		if isRecent(claim.CreatedAt) {
			summary.RecentClaims30d++
		}
	}

	summary.TotalValue = math.Round(summary.TotalValue*100) / 100
	summary.AvgClaimValue = math.Round(summary.TotalValue/float64(len(history))*100) / 100

	// Sort by count, first-seen order breaking ties, and keep the top 5.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 5 {
		order = order[:5]
	}
	for _, cat := range order {
		summary.MostCommonCategories = append(summary.MostCommonCategories, CategoryCount{
			Category: cat,
			Count:    counts[cat],
		})
	}
	return summary
}
