package handlers

import (
	"bastion/internal/services/analytics"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	metrics, err := h.analyticsService.Dashboard(c.Context(), c.Query("time_range", "7d"))
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Dashboard metrics retrieved successfully", metrics)
}

func (h *AnalyticsHandler) TopCategories(c *fiber.Ctx) error {
	metrics, err := h.analyticsService.TopCategories(c.Context(), c.Query("time_range", "7d"), c.QueryInt("limit", 10))
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Top categories retrieved successfully", metrics)
}
