package repositories

import (
	"errors"

	"bastion/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already taken")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// UserRepository defines the interface for user-related record store operations
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// GetByID retrieves a user by their ID
	GetByID(id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by their email address
	GetByEmail(email string) (*models.User, error)

	// UpdateRiskScore persists a freshly computed risk score and flag state
	UpdateRiskScore(id uuid.UUID, riskScore int, isFlagged bool) error

	// List retrieves users with pagination
	List(offset, limit int) ([]models.User, int64, error)

	// ListAll retrieves every user, for cache warm-up at startup
	ListAll() ([]models.User, error)
}
