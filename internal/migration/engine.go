package migration

import (
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"
)

// SchemaMigration is the ledger row recording an applied migration version.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey" json:"version"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	AppliedAt time.Time `gorm:"not null" json:"applied_at"`
}

// TableName pins the ledger table name.
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migration is a single forward-only schema step. Run executes inside one
// transaction together with the ledger insert, so a failed step leaves no
// trace in the ledger.
type Migration struct {
	Version int
	Name    string
	Run     func(tx *gorm.DB) error
}

// Runner applies registered migrations in version order, skipping versions
// already present in the ledger.
type Runner struct {
	db         *gorm.DB
	migrations []Migration
}

// NewRunner builds a Runner over the given migration set.
func NewRunner(db *gorm.DB, migrations []Migration) *Runner {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})
	return &Runner{db: db, migrations: sorted}
}

// AppliedVersion returns the highest version recorded in the ledger, or 0
// when no migration has run yet.
func (r *Runner) AppliedVersion() (int, error) {
	if !r.db.Migrator().HasTable(&SchemaMigration{}) {
		return 0, nil
	}
	var version *int
	err := r.db.Model(&SchemaMigration{}).Select("MAX(version)").Scan(&version).Error
	if err != nil {
		return 0, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

// Pending lists the migrations not yet recorded in the ledger.
func (r *Runner) Pending() ([]Migration, error) {
	applied, err := r.appliedSet()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, m := range r.migrations {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each in its own transaction.
func (r *Runner) Up() error {
	if err := r.db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to ensure migration ledger: %w", err)
	}

	pending, err := r.Pending()
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		log.Println("migrations: nothing to apply")
		return nil
	}

	for _, m := range pending {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.Version,
				Name:      m.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %04d_%s failed: %w", m.Version, m.Name, err)
		}
		log.Printf("migrations: applied %04d_%s", m.Version, m.Name)
	}

	return nil
}

func (r *Runner) appliedSet() (map[int]bool, error) {
	applied := make(map[int]bool)
	if !r.db.Migrator().HasTable(&SchemaMigration{}) {
		return applied, nil
	}

	var records []SchemaMigration
	if err := r.db.Find(&records).Error; err != nil {
		return nil, err
	}
	for _, rec := range records {
		applied[rec.Version] = true
	}
	return applied, nil
}
