package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a customer who submits return claims. RiskScore is nil until the
// first risk computation for the user has completed.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	DOB       string    `gorm:"not null" json:"dob"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	RiskScore *int      `json:"risk_score"`
	IsFlagged bool      `gorm:"default:false" json:"is_flagged"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// StoredRiskScore returns the persisted risk score, or 0 when none has been
// calculated yet.
func (u *User) StoredRiskScore() int {
	if u.RiskScore == nil {
		return 0
	}
	return *u.RiskScore
}
