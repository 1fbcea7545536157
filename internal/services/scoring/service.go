// Package scoring turns raw claim history into a 0-100 fraud score.
//
// The calculator blends a deterministic weighted base score with an
// adjustment derived from the pattern-relevance service. The external call is
// best-effort: any failure degrades to a local keyword fallback and never
// blocks the base score.
package scoring

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"bastion/internal/models"
	"bastion/internal/services/rerank"
)

const (
	rerankTopN        = 5
	maxAIAdjustment   = 20.0
	defaultConfidence = 0.5
)

// Options configures the calculator.
type Options struct {
	// DisableQuantityFactor drops the quantity-pattern factor from the base
	// score; the remaining factor weights are renormalized.
	DisableQuantityFactor bool
}

// Calculator computes fraud assessments. It is safe for concurrent use.
type Calculator struct {
	reranker        rerank.Reranker
	includeQuantity bool
}

func NewCalculator(reranker rerank.Reranker, opts Options) *Calculator {
	return &Calculator{
		reranker:        reranker,
		includeQuantity: !opts.DisableQuantityFactor,
	}
}

// Compute scores one claim (items) against the user's full claim history.
// The base score is deterministic for fixed inputs; only the
// pattern-relevance adjustment depends on the external service.
func (c *Calculator) Compute(ctx context.Context, profile Profile, items []models.ItemData, history []models.Claim) *Assessment {
	summary := c.behaviorSummary(profile, items, history)
	indicators := c.analyzePatterns(ctx, summary)

	factors := c.baseFactors(profile, items, history)
	baseScore := weightedScore(factors)
	finalScore := clampScore(baseScore + aiAdjustment(indicators))

	return &Assessment{
		FraudScore:       finalScore,
		BaseScore:        clampScore(baseScore),
		Confidence:       confidence(indicators),
		RiskFactors:      indicators,
		Recommendations:  recommendations(finalScore, indicators),
		BehaviorAnalysis: summary,
		BaseFactors:      factors,
	}
}

func (c *Calculator) baseFactors(profile Profile, items []models.ItemData, history []models.Claim) []Factor {
	if c.includeQuantity {
		return []Factor{
			{Name: "frequency", Score: frequencyScore(history), Weight: 0.25},
			{Name: "value_deviation", Score: valueDeviationScore(items, history), Weight: 0.25},
			{Name: "category_risk", Score: categoryScore(items), Weight: 0.20},
			{Name: "historical_risk", Score: float64(profile.RiskScore), Weight: 0.20},
			{Name: "quantity_pattern", Score: quantityScore(items, history), Weight: 0.15},
		}
	}
	return []Factor{
		{Name: "frequency", Score: frequencyScore(history), Weight: 0.30},
		{Name: "value_deviation", Score: valueDeviationScore(items, history), Weight: 0.25},
		{Name: "category_risk", Score: categoryScore(items), Weight: 0.25},
		{Name: "historical_risk", Score: float64(profile.RiskScore), Weight: 0.20},
	}
}

// weightedScore normalizes by the total weight so the factor set always
// behaves as if its weights summed to 1.
func weightedScore(factors []Factor) int {
	var sum, totalWeight float64
	for _, f := range factors {
		sum += f.Score * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(sum / totalWeight))
}

func (c *Calculator) analyzePatterns(ctx context.Context, behaviorSummary string) []Indicator {
	results, err := c.reranker.Rerank(ctx, behaviorSummary, fraudPatterns, rerankTopN)
	if err != nil {
		log.Printf("Pattern relevance service unavailable, using local fallback: %v", err)
		return fallbackIndicators(behaviorSummary)
	}

	indicators := make([]Indicator, 0, len(results))
	for _, result := range results {
		indicators = append(indicators, Indicator{
			Pattern:    fraudPatterns[result.Index],
			Relevance:  result.RelevanceScore,
			RiskWeight: patternRiskWeight(result.Index),
		})
	}
	return indicators
}

// aiAdjustment converts matched indicators into a bounded score delta. Each
// indicator contributes its risk weight scaled by its share of the total
// relevance mass.
func aiAdjustment(indicators []Indicator) int {
	if len(indicators) == 0 {
		return 0
	}

	var totalRelevance float64
	for _, ind := range indicators {
		totalRelevance += ind.Relevance
	}

	var adjustment float64
	for _, ind := range indicators {
		weight := ind.Relevance / max(totalRelevance, 0.1)
		adjustment += float64(ind.RiskWeight) * weight
	}

	adjustment = max(-maxAIAdjustment, min(maxAIAdjustment, adjustment))
	return int(math.Round(adjustment))
}

func confidence(indicators []Indicator) float64 {
	if len(indicators) == 0 {
		return defaultConfidence
	}
	var total float64
	for _, ind := range indicators {
		total += ind.Relevance
	}
	avg := total / float64(len(indicators))
	return max(0, min(1, avg))
}

func recommendations(fraudScore int, indicators []Indicator) []string {
	var recs []string

	switch {
	case fraudScore >= 80:
		recs = append(recs,
			"HIGH RISK: Recommend manual review and additional verification",
			"Consider requiring additional documentation for this return")
	case fraudScore >= 60:
		recs = append(recs,
			"MEDIUM RISK: Flag for closer monitoring",
			"Consider implementing stricter return policy for this customer")
	case fraudScore >= 40:
		recs = append(recs, "LOW-MEDIUM RISK: Monitor for patterns")
	default:
		recs = append(recs, "LOW RISK: Standard processing recommended")
	}

	// Pattern-specific tips for the strongest matches
	limit := min(3, len(indicators))
	for _, ind := range indicators[:limit] {
		if ind.Relevance <= 0.7 {
			continue
		}
		pattern := strings.ToLower(ind.Pattern)
		switch {
		case strings.Contains(pattern, "expensive items frequently"):
			recs = append(recs, "Consider implementing purchase history verification")
		case strings.Contains(pattern, "multiple returns"):
			recs = append(recs, "Review return frequency limits for this customer")
		case strings.Contains(pattern, "high-value returns"):
			recs = append(recs, "Require receipt verification for high-value returns")
		}
	}

	return recs
}

func (c *Calculator) behaviorSummary(profile Profile, items []models.ItemData, history []models.Claim) string {
	flagged := "No"
	if profile.IsFlagged {
		flagged = "Yes"
	}

	return fmt.Sprintf(`Customer Profile Analysis:
- Total historical returns: %d
- Current return value: $%.2f
- Average historical return value: $%.2f
- Current return categories: %s
- Recent returns (30 days): %d
- Current risk score: %d
- Previously flagged: %s
- Return frequency pattern: %s`,
		len(history),
		claimValue(items),
		averageClaimValue(history),
		strings.Join(uniqueCategories(items), ", "),
		recentClaimCount(history),
		profile.RiskScore,
		flagged,
		frequencyPattern(len(history)))
}

// frequencyPattern labels a user by how often they return.
func frequencyPattern(totalClaims int) string {
	switch {
	case totalClaims <= 1:
		return "New customer"
	case totalClaims <= 3:
		return "Occasional returner"
	case totalClaims <= 10:
		return "Regular returner"
	default:
		return "Frequent returner"
	}
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func uniqueCategories(items []models.ItemData) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, item := range items {
		cat := normalizeCategory(item.Category)
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		categories = append(categories, cat)
	}
	return categories
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
