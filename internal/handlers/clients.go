package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/middleware"
	"github.com/example/allrev/internal/models"
	"github.com/example/allrev/internal/utils"
)

// ClientHandler manages the tenant's client records.
type ClientHandler struct {
	db *gorm.DB
}

// NewClientHandler constructs ClientHandler.
func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// ListClients returns paginated clients of the current tenant.
func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	var clients []models.Client
	var total int64

	scope := h.db.Model(&models.Client{}).Where("tenant_id = ?", current.TenantID)
	if search := c.Query("search"); search != "" {
		scope = scope.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := scope.Count(&total).Error; err != nil {
		return err
	}

	if err := scope.Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&clients).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    clients,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetClient returns a single client by ID.
func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var client models.Client
	if err := h.db.First(&client, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": client})
}

// CreateClient persists a new client under the current tenant.
func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var payload models.Client
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	payload.ID = uuid.Nil
	payload.TenantID = current.TenantID
	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// UpdateClient updates an existing client.
func (h *ClientHandler) UpdateClient(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var client models.Client
	if err := h.db.First(&client, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return err
	}

	var payload models.Client
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = client.ID
	payload.TenantID = client.TenantID
	if err := h.db.Model(&client).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": client})
}

// DeleteClient removes a client. Clients with orders are protected.
func (h *ClientHandler) DeleteClient(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var orderCount int64
	if err := h.db.Model(&models.Order{}).Where("client_id = ?", id).Count(&orderCount).Error; err != nil {
		return err
	}
	if orderCount > 0 {
		return fiber.NewError(fiber.StatusConflict, "client has orders and cannot be deleted")
	}

	if err := h.db.Delete(&models.Client{}, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
