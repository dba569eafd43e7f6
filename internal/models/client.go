package models

import "github.com/google/uuid"

// Client represents a customer of a tenant agency.
type Client struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant   *Tenant   `json:"tenant,omitempty"`
	Name     string    `gorm:"size:150;not null" json:"name"`
	Email    string    `gorm:"size:150" json:"email"`
	Phone    string    `gorm:"size:40" json:"phone"`
	Document string    `gorm:"size:40" json:"document"`
	Notes    string    `json:"notes"`
	Orders   []Order   `json:"orders,omitempty"`
}
