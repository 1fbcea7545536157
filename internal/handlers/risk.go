package handlers

import (
	"errors"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/claim"
	"bastion/internal/services/riskcache"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RiskHandler struct {
	riskCache    *riskcache.Service
	claimService *claim.Service
}

func NewRiskHandler(riskCache *riskcache.Service, claimService *claim.Service) *RiskHandler {
	return &RiskHandler{riskCache: riskCache, claimService: claimService}
}

// GetUserRisk serves a user's cached risk bundle. While a computation is in
// flight the handler answers 202 so callers know to retry rather than treat
// the user as unscored.
func (h *RiskHandler) GetUserRisk(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	entry, err := h.riskCache.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, riskcache.ErrCalculationInProgress) {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"status":  "calculating",
				"message": "Risk score is being calculated, retry shortly",
			})
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Risk score retrieved successfully", entry)
}

func (h *RiskHandler) CacheStats(c *fiber.Ctx) error {
	return response.Success(c, "Cache stats retrieved successfully", h.riskCache.Stats())
}

type analyzeRequest struct {
	UserID    uuid.UUID         `json:"user_id"`
	ClaimData []models.ItemData `json:"claim_data"`
}

// Analyze scores hypothetical claim items for a user without persisting a
// claim.
func (h *RiskHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	assessment, summary, err := h.claimService.Analyze(c.Context(), req.UserID, req.ClaimData)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, err.Error())
	}

	return c.JSON(fiber.Map{
		"fraud_score":        assessment.FraudScore,
		"confidence":         assessment.Confidence,
		"risk_factors":       assessment.RiskFactors,
		"recommendations":    assessment.Recommendations,
		"behavior_analysis":  assessment.BehaviorAnalysis,
		"historical_summary": summary,
	})
}
