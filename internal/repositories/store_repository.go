package repositories

import (
	"errors"

	"bastion/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrStoreNotFound = errors.New("store not found")

// StoreRepository defines the interface for store-related record store operations
type StoreRepository interface {
	Create(store *models.Store) error
	GetByID(id uuid.UUID) (*models.Store, error)
	List() ([]models.Store, error)
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new instance of StoreRepository
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *models.Store) error {
	if err := r.db.Create(store).Error; err != nil {
		return ErrDatabaseOperation
	}
	return nil
}

func (r *storeRepository) GetByID(id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) List() ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.Order("created_at DESC").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}
