package handlers

import (
	"errors"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/claim"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClaimHandler struct {
	claimService *claim.Service
}

func NewClaimHandler(claimService *claim.Service) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// claimContext mirrors the submission payload: the claim details nested
// under the submitting user.
type claimContext struct {
	StoreID      uuid.UUID         `json:"store_id"`
	EmailAtStore string            `json:"email_at_store"`
	ClaimData    []models.ItemData `json:"claim_data"`
}

type submitClaimPayload struct {
	UserID       uuid.UUID    `json:"user_id"`
	ClaimContext claimContext `json:"claim_context"`
}

func (h *ClaimHandler) SubmitClaim(c *fiber.Ctx) error {
	var payload submitClaimPayload
	if err := c.BodyParser(&payload); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.claimService.Submit(c.Context(),
		payload.UserID,
		payload.ClaimContext.StoreID,
		payload.ClaimContext.EmailAtStore,
		payload.ClaimContext.ClaimData,
	)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, repositories.ErrStoreNotFound):
			return response.NotFound(c, "Store not found")
		default:
			return response.BadRequest(c, err.Error())
		}
	}

	return c.JSON(fiber.Map{
		"claim_id":   result.Claim.ID,
		"user_id":    result.Claim.UserID,
		"status":     result.Claim.Status,
		"risk_score": result.RiskScore,
		"is_flagged": result.IsFlagged,
		"message":    result.Message,
	})
}

func (h *ClaimHandler) GetClaim(c *fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid claim ID")
	}

	found, err := h.claimService.GetByID(c.Context(), claimID)
	if err != nil {
		if errors.Is(err, repositories.ErrClaimNotFound) {
			return response.NotFound(c, "Claim not found")
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Claim retrieved successfully", found)
}

func (h *ClaimHandler) GetUserClaims(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	claims, err := h.claimService.GetByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Claims retrieved successfully", claims)
}

func (h *ClaimHandler) UpdateClaimStatus(c *fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid claim ID")
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	updated, err := h.claimService.UpdateStatus(c.Context(), claimID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrClaimNotFound):
			return response.NotFound(c, "Claim not found")
		case errors.Is(err, claim.ErrInvalidStatusTransition):
			return response.BadRequest(c, err.Error())
		default:
			return response.ServerError(c, err.Error())
		}
	}
	return response.Success(c, "Claim status updated successfully", updated)
}
