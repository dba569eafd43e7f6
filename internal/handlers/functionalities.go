package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/middleware"
	"github.com/example/allrev/internal/models"
	"github.com/example/allrev/internal/utils"
)

// FunctionalityHandler manages the tenant's service catalog.
type FunctionalityHandler struct {
	db *gorm.DB
}

// NewFunctionalityHandler constructs FunctionalityHandler.
func NewFunctionalityHandler(db *gorm.DB) *FunctionalityHandler {
	return &FunctionalityHandler{db: db}
}

// ListFunctionalities returns the tenant's catalog, paginated.
func (h *FunctionalityHandler) ListFunctionalities(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	var items []models.Functionality
	var total int64

	scope := h.db.Model(&models.Functionality{}).Where("tenant_id = ?", current.TenantID)
	if c.Query("active") == "true" {
		scope = scope.Where("active = ?", true)
	}

	if err := scope.Count(&total).Error; err != nil {
		return err
	}

	if err := scope.Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    items,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetFunctionality returns a single catalog entry by ID.
func (h *FunctionalityHandler) GetFunctionality(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.Functionality
	if err := h.db.First(&item, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "functionality not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// CreateFunctionality persists a new catalog entry.
func (h *FunctionalityHandler) CreateFunctionality(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var payload models.Functionality
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	payload.ID = uuid.Nil
	payload.TenantID = current.TenantID
	payload.Active = true
	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// UpdateFunctionality updates an existing catalog entry.
func (h *FunctionalityHandler) UpdateFunctionality(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.Functionality
	if err := h.db.First(&item, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "functionality not found")
		}
		return err
	}

	var payload models.Functionality
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = item.ID
	payload.TenantID = item.TenantID
	if err := h.db.Model(&item).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// DeleteFunctionality deactivates a catalog entry so historical order items
// keep their reference.
func (h *FunctionalityHandler) DeleteFunctionality(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Model(&models.Functionality{}).
		Where("id = ? AND tenant_id = ?", id, current.TenantID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "functionality not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
