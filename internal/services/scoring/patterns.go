package scoring

import "strings"

// fraudPatterns is the fixed catalog submitted to the pattern-relevance
// service on every computation. Index order matters: patternRiskWeights is
// keyed by position.
var fraudPatterns = []string{
	"Customer returns expensive items frequently claiming defects or wrong size",
	"Multiple returns of same product category within short time period",
	"High-value returns with vague or inconsistent return reasons",
	"Returns concentrated on single store despite shopping at multiple locations",
	"Unusual email usage patterns with multiple different addresses",
	"Returns of high-risk categories like electronics, jewelry, or luxury items",
	"Rapid succession of returns after account creation",
	"Returns that significantly exceed customer's historical spending patterns",
	"Bulk quantity returns significantly higher than normal purchase patterns",
	"Suspicious round number quantities like 10, 15, 20 items per return",
}

var patternRiskWeights = []int{25, 20, 30, 15, 10, 25, 20, 15, 15, 20}

const defaultPatternRiskWeight = 15

func patternRiskWeight(index int) int {
	if index >= 0 && index < len(patternRiskWeights) {
		return patternRiskWeights[index]
	}
	return defaultPatternRiskWeight
}

// fallbackIndicators is the local keyword match used when the relevance
// service is unavailable. It keeps scoring alive on the base factors plus a
// coarse adjustment.
func fallbackIndicators(behaviorSummary string) []Indicator {
	summary := strings.ToLower(behaviorSummary)
	var indicators []Indicator

	if strings.Contains(summary, "frequent") || strings.Contains(summary, "multiple") {
		indicators = append(indicators, Indicator{
			Pattern:    "High frequency return pattern detected",
			Relevance:  0.8,
			RiskWeight: 25,
		})
	}
	if strings.Contains(summary, "expensive") || strings.Contains(summary, "high") {
		indicators = append(indicators, Indicator{
			Pattern:    "High-value return pattern detected",
			Relevance:  0.7,
			RiskWeight: 20,
		})
	}
	return indicators
}
