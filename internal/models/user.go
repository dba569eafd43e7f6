package models

import "github.com/google/uuid"

// UserRole distinguishes agency administrators from advisors.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAdvisor UserRole = "advisor"
)

// IsValid checks if the role is a known UserRole.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleAdvisor
}

// User represents a staff member of a tenant agency.
type User struct {
	BaseModel
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant       *Tenant   `json:"tenant,omitempty"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	Email        string    `gorm:"size:150;uniqueIndex" json:"email"`
	Role         UserRole  `gorm:"size:20;not null;default:'advisor'" json:"role"`
	PasswordHash string    `json:"-"`
	Active       bool      `gorm:"default:true" json:"active"`
}
