package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItemResponsibility ties an order item to the staff member responsible
// for delivering it, with its own payout/delivery tracking.
type OrderItemResponsibility struct {
	BaseModel
	OrderItemID uuid.UUID  `gorm:"type:uuid;index" json:"order_item_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `json:"user,omitempty"`
	PaidAt      *time.Time `json:"paid_at"`
	Delivered   bool       `gorm:"default:false" json:"delivered"`
}

// TableName pins the table renamed from the legacy assignment table.
func (OrderItemResponsibility) TableName() string {
	return "order_item_responsibilities"
}
