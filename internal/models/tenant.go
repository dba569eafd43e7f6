package models

// Tenant represents an advisory agency. Every other record in the system
// belongs to exactly one tenant, directly or through its client.
type Tenant struct {
	BaseModel
	Name         string `gorm:"size:150;not null" json:"name"`
	Slug         string `gorm:"size:80;uniqueIndex" json:"slug"`
	ContactEmail string `gorm:"size:150" json:"contact_email"`
	Users        []User `json:"users,omitempty"`
}
