package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claim statuses. A claim starts PENDING; APPROVED and DENIED are terminal.
const (
	ClaimStatusPending  = "PENDING"
	ClaimStatusApproved = "APPROVED"
	ClaimStatusDenied   = "DENIED"
)

// Claim is a submitted return/dispute with one or more items.
type Claim struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	StoreID      uuid.UUID `gorm:"type:uuid;index;not null" json:"store_id"`
	EmailAtStore string    `gorm:"not null" json:"email_at_store"`
	Status       string    `gorm:"not null;default:'PENDING'" json:"status"`
	ClaimData    ItemList  `gorm:"type:jsonb" json:"claim_data"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TotalValue is the claimed value across all items.
func (c *Claim) TotalValue() float64 {
	var total float64
	for _, item := range c.ClaimData {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ValidStatusTransition reports whether a claim may move from one status to
// another. Only PENDING claims can change, and only to a terminal status.
func ValidStatusTransition(from, to string) bool {
	if from != ClaimStatusPending {
		return false
	}
	return to == ClaimStatusApproved || to == ClaimStatusDenied
}
