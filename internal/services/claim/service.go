// Package claim implements the return-claim workflow: submission with fraud
// scoring, status transitions, and lookups.
package claim

import (
	"context"
	"errors"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/scoring"
	"bastion/internal/validation"

	"github.com/google/uuid"
)

var ErrInvalidStatusTransition = errors.New("claim status cannot be changed")

// Scorer computes a fraud assessment for a claim against a user's history.
type Scorer interface {
	Compute(ctx context.Context, profile scoring.Profile, items []models.ItemData, history []models.Claim) *scoring.Assessment
}

// RiskRefresher triggers a background refresh of a user's cached risk bundle.
type RiskRefresher interface {
	InvalidateAndRecompute(ctx context.Context, userID uuid.UUID)
}

// SubmitResult is the outcome of a claim submission.
type SubmitResult struct {
	Claim     *models.Claim `json:"claim"`
	RiskScore int           `json:"risk_score"`
	IsFlagged bool          `json:"is_flagged"`
	Message   string        `json:"message"`
}

type Service struct {
	claims repositories.ClaimRepository
	users  repositories.UserRepository
	stores repositories.StoreRepository
	scorer Scorer
	risk   RiskRefresher
}

func NewService(claims repositories.ClaimRepository, users repositories.UserRepository, stores repositories.StoreRepository, scorer Scorer, risk RiskRefresher) *Service {
	return &Service{
		claims: claims,
		users:  users,
		stores: stores,
		scorer: scorer,
		risk:   risk,
	}
}

// Submit scores and persists a new claim, updates the user's stored risk
// state, and kicks off a background refresh of the risk cache.
func (s *Service) Submit(ctx context.Context, userID, storeID uuid.UUID, emailAtStore string, items []models.ItemData) (*SubmitResult, error) {
	if err := validation.ValidateClaimSubmission(emailAtStore, items); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.GetByID(storeID); err != nil {
		return nil, err
	}

	history, err := s.claims.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	profile := scoring.Profile{
		RiskScore: user.StoredRiskScore(),
		IsFlagged: user.IsFlagged,
	}
	assessment := s.scorer.Compute(ctx, profile, items, history)
	flagged := scoring.ShouldFlag(assessment.FraudScore, user.IsFlagged)

	if err := s.users.UpdateRiskScore(user.ID, assessment.FraudScore, flagged); err != nil {
		return nil, err
	}

	claim := &models.Claim{
		UserID:       userID,
		StoreID:      storeID,
		EmailAtStore: emailAtStore,
		Status:       models.ClaimStatusPending,
		ClaimData:    items,
	}
	if err := s.claims.Create(claim); err != nil {
		return nil, err
	}

	// Refresh the cached risk bundle off the request path.
	go s.risk.InvalidateAndRecompute(context.Background(), userID)

	return &SubmitResult{
		Claim:     claim,
		RiskScore: assessment.FraudScore,
		IsFlagged: flagged,
		Message:   submitMessage(assessment.FraudScore, flagged),
	}, nil
}

func submitMessage(score int, flagged bool) string {
	switch {
	case flagged:
		return "Claim submitted - HIGH RISK detected. Manual review required."
	case score >= 50:
		return "Claim submitted - Medium risk detected. Additional verification may be required."
	default:
		return "Claim submitted successfully - Low risk detected."
	}
}

// UpdateStatus transitions a PENDING claim to APPROVED or DENIED. The
// transition is terminal, and the owner's risk bundle is refreshed because
// denial rate feeds the aggregate score.
func (s *Service) UpdateStatus(ctx context.Context, claimID uuid.UUID, status string) (*models.Claim, error) {
	claim, err := s.claims.GetByID(claimID)
	if err != nil {
		return nil, err
	}
	if !models.ValidStatusTransition(claim.Status, status) {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.claims.UpdateStatus(claimID, status); err != nil {
		return nil, err
	}
	claim.Status = status

	go s.risk.InvalidateAndRecompute(context.Background(), claim.UserID)

	return claim, nil
}

// GetByID retrieves a single claim.
func (s *Service) GetByID(ctx context.Context, claimID uuid.UUID) (*models.Claim, error) {
	return s.claims.GetByID(claimID)
}

// GetByUser retrieves a user's claims, newest first.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) ([]models.Claim, error) {
	if _, err := s.users.GetByID(userID); err != nil {
		return nil, err
	}
	return s.claims.FindByUser(userID)
}

// Analyze runs an on-demand fraud assessment of hypothetical claim items for
// a user without persisting anything.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, items []models.ItemData) (*scoring.Assessment, scoring.HistoricalSummary, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, scoring.HistoricalSummary{}, err
	}

	history, err := s.claims.FindByUser(userID)
	if err != nil {
		return nil, scoring.HistoricalSummary{}, err
	}

	profile := scoring.Profile{
		RiskScore: user.StoredRiskScore(),
		IsFlagged: user.IsFlagged,
	}
	assessment := s.scorer.Compute(ctx, profile, items, history)
	return assessment, scoring.Summarize(history), nil
}
