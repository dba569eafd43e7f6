package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Functionality is an entry in a tenant's service catalog (a review or
// advisory service the agency sells).
type Functionality struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant      *Tenant         `json:"tenant,omitempty"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"base_price"`
	Active      bool            `gorm:"default:true" json:"active"`
}

// TableName keeps the historical table name used since the first schema.
func (Functionality) TableName() string {
	return "functionalities"
}
