package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/middleware"
	"github.com/example/allrev/internal/models"
	"github.com/example/allrev/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

type orderItemRequest struct {
	FunctionalityID string  `json:"functionality_id"`
	Description     *string `json:"description"`
}

type installmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

type createOrderRequest struct {
	ClientID      string               `json:"client_id"`
	OrderNumber   string               `json:"order_number"`
	Description   string               `json:"description"`
	ContractDate  *time.Time           `json:"contract_date"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	AmountTotal   decimal.Decimal      `json:"amount_total"`
	Items         []orderItemRequest   `json:"items"`
	Installments  []installmentRequest `json:"installments"`
}

// CreateOrder places a new order with its items and installment plan.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.OrderNumber == "" || len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}
	if req.AmountTotal.LessThanOrEqual(decimal.Zero) {
		return fiber.NewError(fiber.StatusBadRequest, "amount_total must be positive")
	}
	if len(req.Installments) > 2 {
		return fiber.NewError(fiber.StatusBadRequest, "at most two installments are supported")
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client_id")
	}

	var client models.Client
	if err := h.db.First(&client, "id = ? AND tenant_id = ?", clientID, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return err
	}

	var existing models.Order
	err = h.db.Where("tenant_id = ? AND order_number = ?", current.TenantID, req.OrderNumber).
		First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "order number already in use")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentMethodOther
	}
	if !req.PaymentMethod.IsValid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment_method")
	}

	contractDate := time.Now()
	if req.ContractDate != nil {
		contractDate = *req.ContractDate
	}

	// Default plan: a single installment for the full amount, due on the
	// contract date.
	if len(req.Installments) == 0 {
		req.Installments = []installmentRequest{{Amount: req.AmountTotal, DueDate: contractDate}}
	}

	planTotal := decimal.Zero
	for _, inst := range req.Installments {
		planTotal = planTotal.Add(inst.Amount)
	}
	if !planTotal.Equal(req.AmountTotal) {
		return fiber.NewError(fiber.StatusBadRequest, "installment amounts must add up to amount_total")
	}

	order := models.Order{
		TenantID:      current.TenantID,
		ClientID:      client.ID,
		OrderNumber:   req.OrderNumber,
		Description:   req.Description,
		ContractDate:  contractDate,
		AmountTotal:   req.AmountTotal,
		AmountPaid:    decimal.Zero,
		PaymentMethod: req.PaymentMethod,
		PaymentTerms:  models.PaymentTermsOne,
		PaymentStatus: models.PaymentStatusPending,
		WorkStatus:    models.WorkStatusPending,
	}
	if len(req.Installments) == 2 {
		order.PaymentTerms = models.PaymentTermsTwo
	}

	for _, item := range req.Items {
		functionalityID, err := uuid.Parse(item.FunctionalityID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid functionality_id")
		}

		var functionality models.Functionality
		if err := h.db.First(&functionality, "id = ? AND tenant_id = ?", functionalityID, current.TenantID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "functionality not found")
			}
			return err
		}

		orderNumber := req.OrderNumber
		order.Items = append(order.Items, models.OrderItem{
			FunctionalityID: functionality.ID,
			ClientID:        client.ID,
			OrderNumber:     &orderNumber,
			ItemStatus:      models.ItemStatusPending,
			Description:     item.Description,
			ContractDate:    &contractDate,
		})
	}

	for i, inst := range req.Installments {
		order.Installments = append(order.Installments, models.OrderInstallment{
			Sequence: i + 1,
			Amount:   inst.Amount,
			DueDate:  inst.DueDate,
		})
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns the tenant's orders with optional status filters.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	var orders []models.Order
	var total int64

	scope := h.db.Model(&models.Order{}).Where("tenant_id = ?", current.TenantID)
	if status := c.Query("payment_status"); status != "" {
		scope = scope.Where("payment_status = ?", status)
	}
	if status := c.Query("work_status"); status != "" {
		scope = scope.Where("work_status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid client_id")
		}
		scope = scope.Where("client_id = ?", id)
	}

	if err := scope.Count(&total).Error; err != nil {
		return err
	}

	if err := scope.Preload("Client").Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns one order with its items, installments, and assignments.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	err = h.db.Preload("Client").
		Preload("Items.Functionality").
		Preload("Items.Responsibilities.User").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence asc")
		}).
		First(&order, "id = ? AND tenant_id = ?", id, current.TenantID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateOrderRequest struct {
	Description   *string               `json:"description"`
	PaymentMethod *models.PaymentMethod `json:"payment_method"`
}

// UpdateOrder updates an order's description or payment method. Amounts and
// statuses are derived, never set directly.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Description != nil {
		order.Description = *req.Description
	}
	if req.PaymentMethod != nil {
		if !req.PaymentMethod.IsValid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payment_method")
		}
		order.PaymentMethod = *req.PaymentMethod
	}

	if err := h.db.Save(&order).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// DeleteOrder removes an order together with its items, installments, and
// assignments, in dependency order so the RESTRICT references hold.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var itemIDs []uuid.UUID
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).
			Pluck("id", &itemIDs).Error; err != nil {
			return err
		}

		if len(itemIDs) > 0 {
			if err := tx.Delete(&models.OrderItemResponsibility{}, "order_item_id IN ?", itemIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.OrderItem{}, "order_id = ?", order.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.OrderInstallment{}, "order_id = ?", order.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type updateItemStatusRequest struct {
	ItemStatus models.ItemStatus `json:"item_status"`
}

// UpdateItemStatus moves one order item through its workflow and recomputes
// the owning order's work status.
func (h *OrderHandler) UpdateItemStatus(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateItemStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !req.ItemStatus.IsValid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item_status")
	}

	var item models.OrderItem
	err = h.db.Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.id = ? AND orders.tenant_id = ?", id, current.TenantID).
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order item not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		item.ItemStatus = req.ItemStatus
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		var statuses []models.ItemStatus
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", item.OrderID).
			Pluck("item_status", &statuses).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).Where("id = ?", item.OrderID).
			Update("work_status", models.DeriveWorkStatus(statuses)).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}
