package handlers

import (
	"errors"

	"bastion/internal/repositories"
	"bastion/internal/services/customer"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CustomerHandler struct {
	customerService *customer.Service
}

func NewCustomerHandler(customerService *customer.Service) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var input struct {
		FullName string `json:"full_name"`
		DOB      string `json:"dob"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	user, err := h.customerService.Register(c.Context(), input.FullName, input.DOB, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return response.Error(c, fiber.StatusConflict, "Email already registered")
		}
		return response.BadRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Customer registered successfully",
		"customer": user,
	})
}

func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.customerService.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Customer retrieved successfully", user)
}

func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	users, pagination, err := h.customerService.ListWithStats(c.Context(), page, limit)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": pagination,
	})
}
