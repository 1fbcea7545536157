package scoring

// Profile is the slice of a user's stored state the calculator reads.
type Profile struct {
	RiskScore int
	IsFlagged bool
}

// Indicator is a fraud pattern the relevance service matched against the
// user's behavior summary.
type Indicator struct {
	Pattern    string  `json:"pattern"`
	Relevance  float64 `json:"relevance_score"`
	RiskWeight int     `json:"risk_weight"`
}

// Factor is one weighted component of the base score.
type Factor struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Assessment is the full result of scoring one claim against a user's history.
type Assessment struct {
	FraudScore       int         `json:"fraud_score"`
	BaseScore        int         `json:"base_score"`
	Confidence       float64     `json:"confidence"`
	RiskFactors      []Indicator `json:"risk_factors"`
	Recommendations  []string    `json:"recommendations"`
	BehaviorAnalysis string      `json:"behavior_analysis"`
	BaseFactors      []Factor    `json:"base_factors"`
}

// CategoryCount pairs an item category with its occurrence count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// HistoricalSummary aggregates a user's claim history.
type HistoricalSummary struct {
	TotalClaims          int             `json:"total_claims"`
	TotalValue           float64         `json:"total_value"`
	AvgClaimValue        float64         `json:"avg_claim_value"`
	MostCommonCategories []CategoryCount `json:"most_common_categories"`
	RecentClaims30d      int             `json:"recent_claims_30d"`
}
