package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/middleware"
	"github.com/example/allrev/internal/models"
)

// ResponsibilityHandler manages staff assignments on order items.
type ResponsibilityHandler struct {
	db *gorm.DB
}

// NewResponsibilityHandler constructs ResponsibilityHandler.
func NewResponsibilityHandler(db *gorm.DB) *ResponsibilityHandler {
	return &ResponsibilityHandler{db: db}
}

// ListResponsibilities returns the assignments of one order item.
func (h *ResponsibilityHandler) ListResponsibilities(c *fiber.Ctx) error {
	item, err := h.loadItem(c)
	if err != nil {
		return err
	}

	var assignments []models.OrderItemResponsibility
	if err := h.db.Preload("User").Where("order_item_id = ?", item.ID).
		Order("created_at asc").Find(&assignments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": assignments})
}

type assignRequest struct {
	UserID string `json:"user_id"`
}

// AssignUser makes a staff member responsible for an order item.
func (h *ResponsibilityHandler) AssignUser(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	item, err := h.loadItem(c)
	if err != nil {
		return err
	}

	var req assignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}

	var user models.User
	if err := h.db.First(&user, "id = ? AND tenant_id = ?", userID, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	var existing models.OrderItemResponsibility
	err = h.db.First(&existing, "order_item_id = ? AND user_id = ?", item.ID, user.ID).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already assigned")
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	assignment := models.OrderItemResponsibility{
		OrderItemID: item.ID,
		UserID:      user.ID,
	}
	if err := h.db.Create(&assignment).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": assignment})
}

type updateResponsibilityRequest struct {
	Delivered *bool      `json:"delivered"`
	PaidAt    *time.Time `json:"paid_at"`
}

// UpdateResponsibility marks an assignment delivered and/or paid out.
func (h *ResponsibilityHandler) UpdateResponsibility(c *fiber.Ctx) error {
	item, err := h.loadItem(c)
	if err != nil {
		return err
	}

	assignmentID, err := uuid.Parse(c.Params("assignmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var assignment models.OrderItemResponsibility
	err = h.db.First(&assignment, "id = ? AND order_item_id = ?", assignmentID, item.ID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "assignment not found")
		}
		return err
	}

	var req updateResponsibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Delivered != nil {
		assignment.Delivered = *req.Delivered
	}
	if req.PaidAt != nil {
		assignment.PaidAt = req.PaidAt
	}

	if err := h.db.Save(&assignment).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": assignment})
}

// RemoveResponsibility unassigns a staff member from an order item.
func (h *ResponsibilityHandler) RemoveResponsibility(c *fiber.Ctx) error {
	item, err := h.loadItem(c)
	if err != nil {
		return err
	}

	assignmentID, err := uuid.Parse(c.Params("assignmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.OrderItemResponsibility{},
		"id = ? AND order_item_id = ?", assignmentID, item.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "assignment not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ResponsibilityHandler) loadItem(c *fiber.Ctx) (*models.OrderItem, error) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.OrderItem
	err = h.db.Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.tenant_id = ?", id, current.TenantID).
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "order item not found")
		}
		return nil, err
	}
	return &item, nil
}
