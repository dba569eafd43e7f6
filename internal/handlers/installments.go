package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/middleware"
	"github.com/example/allrev/internal/models"
)

// InstallmentHandler manages an order's payment installments.
type InstallmentHandler struct {
	db *gorm.DB
}

// NewInstallmentHandler constructs InstallmentHandler.
func NewInstallmentHandler(db *gorm.DB) *InstallmentHandler {
	return &InstallmentHandler{db: db}
}

// ListInstallments returns the installments of one order.
func (h *InstallmentHandler) ListInstallments(c *fiber.Ctx) error {
	order, err := h.loadOrder(c)
	if err != nil {
		return err
	}

	var installments []models.OrderInstallment
	if err := h.db.Where("order_id = ?", order.ID).Order("sequence asc").
		Find(&installments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": installments})
}

type payInstallmentRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// PayInstallment marks one installment paid and recomputes the order's paid
// amount and payment status from its installments.
func (h *InstallmentHandler) PayInstallment(c *fiber.Ctx) error {
	order, err := h.loadOrder(c)
	if err != nil {
		return err
	}

	sequence, err := c.ParamsInt("seq")
	if err != nil || sequence < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid sequence")
	}

	var req payInstallmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	var installment models.OrderInstallment
	err = h.db.First(&installment, "order_id = ? AND sequence = ?", order.ID, sequence).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "installment not found")
		}
		return err
	}

	if installment.PaidAt != nil {
		return fiber.NewError(fiber.StatusConflict, "installment already paid")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		installment.PaidAt = &paidAt
		if err := tx.Save(&installment).Error; err != nil {
			return err
		}

		var paid []models.OrderInstallment
		if err := tx.Where("order_id = ? AND paid_at IS NOT NULL", order.ID).
			Find(&paid).Error; err != nil {
			return err
		}

		amountPaid := decimal.Zero
		for _, p := range paid {
			amountPaid = amountPaid.Add(p.Amount)
		}

		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"amount_paid":    amountPaid,
			"payment_status": models.DerivePaymentStatus(amountPaid, order.AmountTotal),
		}).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": installment})
}

func (h *InstallmentHandler) loadOrder(c *fiber.Ctx) (*models.Order, error) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND tenant_id = ?", id, current.TenantID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}
