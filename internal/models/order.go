package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the normalized payment method vocabulary.
type PaymentMethod string

const (
	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodDeposit  PaymentMethod = "deposit"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodOther    PaymentMethod = "other"
)

// IsValid checks if the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodTransfer, PaymentMethodDeposit, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentTerms records how many installments an order is split into.
type PaymentTerms string

const (
	PaymentTermsOne PaymentTerms = "ONE"
	PaymentTermsTwo PaymentTerms = "TWO"
)

// PaymentStatus is derived from the paid/total amount comparison.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusPaid          PaymentStatus = "PAID"
)

// WorkStatus summarizes delivery progress across an order's items.
type WorkStatus string

const (
	WorkStatusPending    WorkStatus = "PENDING"
	WorkStatusInProgress WorkStatus = "IN_PROGRESS"
	WorkStatusOverdue    WorkStatus = "OVERDUE"
	WorkStatusCompleted  WorkStatus = "COMPLETED"
)

// IsValid checks if the value is a known WorkStatus.
func (s WorkStatus) IsValid() bool {
	switch s {
	case WorkStatusPending, WorkStatusInProgress, WorkStatusOverdue, WorkStatusCompleted:
		return true
	}
	return false
}

// ItemStatus is the normalized per-item status vocabulary.
type ItemStatus string

const (
	ItemStatusPending         ItemStatus = "PENDING"
	ItemStatusInProgress      ItemStatus = "IN_PROGRESS"
	ItemStatusAwaitingClient  ItemStatus = "AWAITING_CLIENT"
	ItemStatusAwaitingAdvisor ItemStatus = "AWAITING_ADVISOR"
	ItemStatusOverdue         ItemStatus = "OVERDUE"
	ItemStatusFinished        ItemStatus = "FINISHED"
)

// IsValid checks if the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusInProgress, ItemStatusAwaitingClient,
		ItemStatusAwaitingAdvisor, ItemStatusOverdue, ItemStatusFinished:
		return true
	}
	return false
}

// DerivePaymentStatus compares paid and total amounts: PENDING when nothing
// was paid, PAID when paid covers the total, PARTIALLY_PAID in between.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return PaymentStatusPending
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartiallyPaid
	}
}

// DeriveWorkStatus reduces normalized item statuses to an order-level work
// status: OVERDUE wins over everything, then IN_PROGRESS, then all-finished
// means COMPLETED.
func DeriveWorkStatus(statuses []ItemStatus) WorkStatus {
	if len(statuses) == 0 {
		return WorkStatusPending
	}

	allFinished := true
	anyInProgress := false
	for _, status := range statuses {
		switch status {
		case ItemStatusOverdue:
			return WorkStatusOverdue
		case ItemStatusInProgress:
			anyInProgress = true
		}
		if status != ItemStatusFinished {
			allFinished = false
		}
	}

	if anyInProgress {
		return WorkStatusInProgress
	}
	if allFinished {
		return WorkStatusCompleted
	}
	return WorkStatusPending
}

// Order is the aggregate a client's items are billed and tracked under.
// (tenant_id, order_number) is unique per agency.
type Order struct {
	BaseModel
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_number" json:"tenant_id"`
	ClientID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client            `json:"client,omitempty"`
	OrderNumber   string             `gorm:"size:60;not null;uniqueIndex:idx_orders_tenant_number" json:"order_number"`
	Description   string             `json:"description"`
	ContractDate  time.Time          `json:"contract_date"`
	AmountTotal   decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_total"`
	AmountPaid    decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	PaymentMethod PaymentMethod      `gorm:"size:20;not null;default:'other'" json:"payment_method"`
	PaymentTerms  PaymentTerms       `gorm:"size:10;not null;default:'ONE'" json:"payment_terms"`
	PaymentStatus PaymentStatus      `gorm:"size:20;not null;default:'PENDING';index" json:"payment_status"`
	WorkStatus    WorkStatus         `gorm:"size:20;not null;default:'PENDING';index" json:"work_status"`
	Items         []OrderItem        `json:"items,omitempty"`
	Installments  []OrderInstallment `json:"installments,omitempty"`
}

// OrderItem is a single contracted service inside an order. Pricing and
// payment live on the order and its installments, not here.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	FunctionalityID uuid.UUID      `gorm:"type:uuid;not null;index" json:"functionality_id"`
	Functionality   *Functionality `json:"functionality,omitempty"`
	ClientID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"client_id"`
	OrderNumber     *string        `gorm:"size:60" json:"order_number"`
	ItemStatus      ItemStatus     `gorm:"size:20;not null;default:'PENDING';index" json:"item_status"`
	Description     *string        `json:"description"`
	ContractDate    *time.Time     `json:"contract_date"`

	Responsibilities []OrderItemResponsibility `json:"responsibilities,omitempty"`
}

// OrderInstallment is one payment slice of an order.
type OrderInstallment struct {
	BaseModel
	OrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Sequence int             `gorm:"not null" json:"sequence"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate  time.Time       `gorm:"not null" json:"due_date"`
	PaidAt   *time.Time      `json:"paid_at"`
}
