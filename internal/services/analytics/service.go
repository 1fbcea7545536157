// Package analytics aggregates claim activity for the admin dashboard.
package analytics

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
)

// DashboardMetrics is the headline view of claim activity.
type DashboardMetrics struct {
	TotalClaims    int64   `json:"total_claims"`
	PendingClaims  int64   `json:"pending_claims"`
	ApprovedClaims int64   `json:"approved_claims"`
	DeniedClaims   int64   `json:"denied_claims"`
	FlaggedUsers   int     `json:"flagged_users"`
	ScoredUsers    int     `json:"scored_users"`
	TotalValue     float64 `json:"total_value"`
}

// CategoryMetric is aggregate claimed value and volume for one category.
type CategoryMetric struct {
	Category   string  `json:"category"`
	ClaimCount int     `json:"claim_count"`
	ItemCount  int     `json:"item_count"`
	TotalValue float64 `json:"total_value"`
}

type Service struct {
	claims repositories.ClaimRepository
	users  repositories.UserRepository
}

func NewService(claims repositories.ClaimRepository, users repositories.UserRepository) *Service {
	return &Service{claims: claims, users: users}
}

// Dashboard aggregates claim counts by status and user risk totals over the
// given time range.
func (s *Service) Dashboard(ctx context.Context, timeRange string) (*DashboardMetrics, error) {
	counts, err := s.claims.StatusCounts()
	if err != nil {
		return nil, err
	}

	metrics := &DashboardMetrics{
		PendingClaims:  counts[models.ClaimStatusPending],
		ApprovedClaims: counts[models.ClaimStatusApproved],
		DeniedClaims:   counts[models.ClaimStatusDenied],
	}
	metrics.TotalClaims = metrics.PendingClaims + metrics.ApprovedClaims + metrics.DeniedClaims

	claims, err := s.claims.FindSince(rangeStart(timeRange))
	if err != nil {
		return nil, err
	}
	for _, claim := range claims {
		metrics.TotalValue += claim.TotalValue()
	}
	metrics.TotalValue = math.Round(metrics.TotalValue*100) / 100

	users, err := s.users.ListAll()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.IsFlagged {
			metrics.FlaggedUsers++
		}
		if user.RiskScore != nil {
			metrics.ScoredUsers++
		}
	}

	return metrics, nil
}

// TopCategories ranks item categories by claimed value over the given range.
func (s *Service) TopCategories(ctx context.Context, timeRange string, limit int) ([]CategoryMetric, error) {
	if limit <= 0 {
		limit = 10
	}

	claims, err := s.claims.FindSince(rangeStart(timeRange))
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryMetric)
	for _, claim := range claims {
		seenInClaim := make(map[string]bool)
		for _, item := range claim.ClaimData {
			cat := strings.ToLower(strings.TrimSpace(item.Category))
			metric, ok := byCategory[cat]
			if !ok {
				metric = &CategoryMetric{Category: cat}
				byCategory[cat] = metric
			}
			metric.ItemCount += item.Quantity
			metric.TotalValue += item.TotalValue()
			if !seenInClaim[cat] {
				metric.ClaimCount++
				seenInClaim[cat] = true
			}
		}
	}

	metrics := make([]CategoryMetric, 0, len(byCategory))
	for _, metric := range byCategory {
		metric.TotalValue = math.Round(metric.TotalValue*100) / 100
		metrics = append(metrics, *metric)
	}
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].TotalValue > metrics[j].TotalValue
	})
	if len(metrics) > limit {
		metrics = metrics[:limit]
	}
	return metrics, nil
}

// rangeStart maps a dashboard range label to its start time.
func rangeStart(timeRange string) time.Time {
	now := time.Now().UTC()
	switch timeRange {
	case "1m":
		return now.AddDate(0, 0, -30)
	case "3m":
		return now.AddDate(0, 0, -90)
	case "1y":
		return now.AddDate(-1, 0, 0)
	default: // 7d
		return now.AddDate(0, 0, -7)
	}
}
