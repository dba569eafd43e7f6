package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/middleware"
	"github.com/example/allrev/internal/models"
)

// ReportHandler serves aggregated views over the tenant's orders.
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Summary returns order counts by status plus billed/received totals and the
// outstanding receivable amount.
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var byWorkStatus []statusCount
	err := h.db.Model(&models.Order{}).
		Select("work_status AS status, COUNT(*) AS count").
		Where("tenant_id = ?", current.TenantID).
		Group("work_status").
		Scan(&byWorkStatus).Error
	if err != nil {
		return err
	}

	var byPaymentStatus []statusCount
	err = h.db.Model(&models.Order{}).
		Select("payment_status AS status, COUNT(*) AS count").
		Where("tenant_id = ?", current.TenantID).
		Group("payment_status").
		Scan(&byPaymentStatus).Error
	if err != nil {
		return err
	}

	var totals struct {
		AmountTotal decimal.Decimal
		AmountPaid  decimal.Decimal
	}
	err = h.db.Model(&models.Order{}).
		Select("COALESCE(SUM(amount_total), 0) AS amount_total, COALESCE(SUM(amount_paid), 0) AS amount_paid").
		Where("tenant_id = ?", current.TenantID).
		Scan(&totals).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"orders_by_work_status":    byWorkStatus,
			"orders_by_payment_status": byPaymentStatus,
			"amount_total":             totals.AmountTotal,
			"amount_paid":              totals.AmountPaid,
			"outstanding":              totals.AmountTotal.Sub(totals.AmountPaid),
		},
	})
}

type receivableRow struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	ClientName  string          `json:"client_name"`
	Sequence    int             `json:"sequence"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
}

// Receivables lists unpaid installments ordered by due date, optionally only
// those already overdue.
func (h *ReportHandler) Receivables(c *fiber.Ctx) error {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	scope := h.db.Table("order_installments").
		Select("order_installments.order_id, orders.order_number, clients.name AS client_name, " +
			"order_installments.sequence, order_installments.amount, order_installments.due_date").
		Joins("JOIN orders ON orders.id = order_installments.order_id").
		Joins("JOIN clients ON clients.id = orders.client_id").
		Where("orders.tenant_id = ? AND order_installments.paid_at IS NULL", current.TenantID)

	if c.Query("overdue") == "true" {
		scope = scope.Where("order_installments.due_date < ?", time.Now())
	}

	var rows []receivableRow
	if err := scope.Order("order_installments.due_date asc").Scan(&rows).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rows,
		"total":   total,
	})
}
