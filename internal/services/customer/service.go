// Package customer handles registration and customer lookups.
package customer

import (
	"context"
	"errors"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrWeakPassword = errors.New("password must be at least 8 characters")

// UserWithStats is a user row joined with their claim statistics.
type UserWithStats struct {
	ID             uuid.UUID  `json:"id"`
	FullName       string     `json:"full_name"`
	CreatedAt      time.Time  `json:"created_at"`
	RiskScore      *int       `json:"risk_score"`
	IsFlagged      bool       `json:"is_flagged"`
	TotalClaims    int        `json:"total_claims"`
	PendingClaims  int        `json:"pending_claims"`
	ApprovedClaims int        `json:"approved_claims"`
	DeniedClaims   int        `json:"denied_claims"`
	LastActivity   *time.Time `json:"last_activity"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type Service struct {
	users  repositories.UserRepository
	claims repositories.ClaimRepository
}

func NewService(users repositories.UserRepository, claims repositories.ClaimRepository) *Service {
	return &Service{users: users, claims: claims}
}

// Register creates a new customer account. The password is stored as a
// bcrypt hash; the risk score starts absent until the first computation.
func (s *Service) Register(ctx context.Context, fullName, dob, email, password string) (*models.User, error) {
	if err := validation.ValidateRegistration(fullName, dob, email); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName: fullName,
		DOB:      dob,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a single customer.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(id)
}

// ListWithStats returns a page of customers joined with per-user claim
// statistics, for the admin listing.
func (s *Service) ListWithStats(ctx context.Context, page, limit int) ([]UserWithStats, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	users, total, err := s.users.List((page-1)*limit, limit)
	if err != nil {
		return nil, Pagination{}, err
	}

	result := make([]UserWithStats, 0, len(users))
	for _, user := range users {
		stats := UserWithStats{
			ID:        user.ID,
			FullName:  user.FullName,
			CreatedAt: user.CreatedAt,
			RiskScore: user.RiskScore,
			IsFlagged: user.IsFlagged,
		}

		claims, err := s.claims.FindByUser(user.ID)
		if err != nil {
			return nil, Pagination{}, err
		}
		stats.TotalClaims = len(claims)
		for _, claim := range claims {
			switch claim.Status {
			case models.ClaimStatusPending:
				stats.PendingClaims++
			case models.ClaimStatusApproved:
				stats.ApprovedClaims++
			case models.ClaimStatusDenied:
				stats.DeniedClaims++
			}
			if stats.LastActivity == nil || claim.CreatedAt.After(*stats.LastActivity) {
				created := claim.CreatedAt
				stats.LastActivity = &created
			}
		}

		result = append(result, stats)
	}

	pagination := Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}
	return result, pagination, nil
}
