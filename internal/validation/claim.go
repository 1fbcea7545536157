package validation

import (
	"fmt"

	"bastion/internal/models"
)

// ValidateClaimSubmission checks the collaborator-facing claim payload
// before it reaches the scoring core: items must exist and carry positive
// prices and quantities.
func ValidateClaimSubmission(emailAtStore string, items []models.ItemData) error {
	v := New()
	v.Check(ValidEmail(emailAtStore), "email_at_store", "must be a valid email address")
	v.Check(len(items) > 0, "claim_data", "must contain at least one item")

	for i, item := range items {
		field := fmt.Sprintf("claim_data[%d]", i)
		v.Check(item.ItemName != "", field+".item_name", "is required")
		v.Check(item.Category != "", field+".category", "is required")
		v.Check(item.Price > 0, field+".price", "must be greater than zero")
		v.Check(item.Quantity > 0, field+".quantity", "must be greater than zero")
	}

	return v.Err()
}

// ValidateRegistration checks a new customer payload.
func ValidateRegistration(fullName, dob, email string) error {
	v := New()
	v.Check(fullName != "", "full_name", "is required")
	v.Check(dob != "", "dob", "is required")
	v.Check(ValidEmail(email), "email", "must be a valid email address")
	return v.Err()
}
