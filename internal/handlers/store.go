package handlers

import (
	"errors"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StoreHandler struct {
	stores repositories.StoreRepository
}

func NewStoreHandler(stores repositories.StoreRepository) *StoreHandler {
	return &StoreHandler{stores: stores}
}

func (h *StoreHandler) CreateStore(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Name == "" {
		return response.BadRequest(c, "Store name is required")
	}

	store := &models.Store{Name: input.Name}
	if err := h.stores.Create(store); err != nil {
		return response.ServerError(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Store created successfully",
		"store":   store,
	})
}

func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	storeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid store ID")
	}

	store, err := h.stores.GetByID(storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrStoreNotFound) {
			return response.NotFound(c, "Store not found")
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Store retrieved successfully", store)
}

func (h *StoreHandler) ListStores(c *fiber.Ctx) error {
	stores, err := h.stores.List()
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Stores retrieved successfully", stores)
}
