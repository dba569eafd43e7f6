package migration

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/models"
)

// All returns the full migration chain in version order.
func All() []Migration {
	return []Migration{
		{Version: 1, Name: "initial_schema", Run: runInitialSchema},
		{Version: 2, Name: "orders_backfill", Run: runOrdersBackfill},
		{Version: 3, Name: "normalize_responsibilities", Run: runNormalizeResponsibilities},
		{Version: 4, Name: "tighten_references", Run: runTightenReferences},
	}
}

// Run applies the full chain against the given database.
func Run(db *gorm.DB) error {
	return NewRunner(db, All()).Up()
}

// legacyFunctionalityClient is the frozen shape of the per-item records that
// carried order and payment data before orders existed as an aggregate.
type legacyFunctionalityClient struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FunctionalityID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderNumber     *string         `gorm:"size:60"`
	Description     *string
	Status          string          `gorm:"size:30;not null;default:'PENDING_PAYMENT'"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod   *string         `gorm:"size:60"`
	PaidAt          *time.Time
	ContractDate    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (legacyFunctionalityClient) TableName() string {
	return "functionalities_clients"
}

// legacyFunctionalityUser is the frozen shape of the per-item staff
// assignment table, with its loosely typed string reference.
type legacyFunctionalityUser struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FunctionalityClientID *string   `gorm:"size:60;index"`
	UserID                uuid.UUID `gorm:"type:uuid;not null;index"`
	PaidAt                *time.Time
	Delivered             bool `gorm:"default:false"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (legacyFunctionalityUser) TableName() string {
	return "functionalities_users"
}

// runInitialSchema creates the pre-orders shape of the database: the stable
// reference tables plus the two legacy tables later reworked by the chain.
func runInitialSchema(tx *gorm.DB) error {
	return tx.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Client{},
		&models.Functionality{},
		&legacyFunctionalityClient{},
		&legacyFunctionalityUser{},
	)
}
