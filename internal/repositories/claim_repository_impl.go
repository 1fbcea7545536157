package repositories

import (
	"context"
	"errors"
	"log"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type claimRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewClaimRepository creates a new instance of ClaimRepository
func NewClaimRepository(db *gorm.DB, cache *cache.CacheService) ClaimRepository {
	return &claimRepository{
		db:    db,
		cache: cache,
	}
}

func (r *claimRepository) Create(claim *models.Claim) error {
	if err := r.db.Create(claim).Error; err != nil {
		return ErrDatabaseOperation
	}
	if err := r.cache.InvalidateUserClaims(context.Background(), claim.UserID); err != nil {
		log.Printf("Failed to invalidate claims cache for user %s: %v", claim.UserID, err)
	}
	return nil
}

func (r *claimRepository) GetByID(id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.First(&claim, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) FindByUser(userID uuid.UUID) ([]models.Claim, error) {
	// Try cache first; the full history feeds every score computation.
	if claims, err := r.cache.GetUserClaims(context.Background(), userID); err == nil {
		return claims, nil
	}

	var claims []models.Claim
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, err
	}

	if err := r.cache.CacheUserClaims(context.Background(), userID, claims); err != nil {
		log.Printf("Failed to cache claims for user %s: %v", userID, err)
	}
	return claims, nil
}

func (r *claimRepository) UpdateStatus(id uuid.UUID, status string) error {
	claim, err := r.GetByID(id)
	if err != nil {
		return err
	}

	result := r.db.Model(&models.Claim{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return ErrDatabaseOperation
	}

	if err := r.cache.InvalidateUserClaims(context.Background(), claim.UserID); err != nil {
		log.Printf("Failed to invalidate claims cache for user %s: %v", claim.UserID, err)
	}
	return nil
}

func (r *claimRepository) StatusCounts() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := r.db.Model(&models.Claim{}).Select("status, count(*) as count").Group("status").Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *claimRepository) FindSince(since time.Time) ([]models.Claim, error) {
	var claims []models.Claim
	if err := r.db.Where("created_at >= ?", since).Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}
