package repositories

import (
	"errors"
	"time"

	"bastion/internal/models"

	"github.com/google/uuid"
)

var ErrClaimNotFound = errors.New("claim not found")

// ClaimRepository defines the interface for claim-related record store operations
type ClaimRepository interface {
	// Create persists a new claim
	Create(claim *models.Claim) error

	// GetByID retrieves a claim by its ID
	GetByID(id uuid.UUID) (*models.Claim, error)

	// FindByUser retrieves a user's claims, newest first
	FindByUser(userID uuid.UUID) ([]models.Claim, error)

	// UpdateStatus transitions a claim to a new status
	UpdateStatus(id uuid.UUID, status string) error

	// StatusCounts returns claim counts grouped by status
	StatusCounts() (map[string]int64, error)

	// FindSince retrieves claims created at or after the given time
	FindSince(since time.Time) ([]models.Claim, error)
}
