package migration

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/allrev/internal/models"
)

// runNormalizeResponsibilities renames the legacy staff assignment table to
// order_item_responsibilities and replaces its loosely typed string key with
// a proper UUID reference to order_items.
func runNormalizeResponsibilities(tx *gorm.DB) error {
	m := tx.Migrator()

	if m.HasTable("functionalities_users") && !m.HasTable("order_item_responsibilities") {
		if err := m.RenameTable("functionalities_users", "order_item_responsibilities"); err != nil {
			return fmt.Errorf("failed to rename functionalities_users: %w", err)
		}
	}

	if err := tx.AutoMigrate(&models.OrderItemResponsibility{}); err != nil {
		return err
	}

	// The legacy key column is gone once the tightener has run; nothing left
	// to normalize in that case.
	if !m.HasColumn(&models.OrderItemResponsibility{}, "functionality_client_id") {
		return nil
	}

	type legacyAssignment struct {
		ID                    uuid.UUID
		FunctionalityClientID *string
	}

	var assignments []legacyAssignment
	err := tx.Table("order_item_responsibilities").
		Select("id, functionality_client_id").
		Where("functionality_client_id IS NOT NULL").
		Scan(&assignments).Error
	if err != nil {
		return fmt.Errorf("failed to load legacy assignments: %w", err)
	}

	skipped := 0
	for _, assignment := range assignments {
		itemID, err := uuid.Parse(*assignment.FunctionalityClientID)
		if err != nil {
			skipped++
			continue
		}
		err = tx.Table("order_item_responsibilities").
			Where("id = ?", assignment.ID).
			Update("order_item_id", itemID).Error
		if err != nil {
			return fmt.Errorf("failed to normalize assignment %s: %w", assignment.ID, err)
		}
	}

	if skipped > 0 {
		log.Printf("migrations: %d responsibility key(s) were not valid UUIDs and were left unlinked", skipped)
	}
	return nil
}
