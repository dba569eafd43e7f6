package migration

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/example/allrev/internal/models"
)

// legacyStatusValues is the recognized legacy vocabulary, used to count rows
// that fall back to the default classification.
func legacyStatusValues() []string {
	values := make([]string, 0, len(itemStatusMap))
	for raw := range itemStatusMap {
		values = append(values, raw)
	}
	return values
}

// runOrdersBackfill renames the legacy per-item table to order_items,
// creates the orders and order_installments tables, and derives one order
// per (tenant, client, order_number) group: classify, aggregate, synthesize
// installments. Runs inside a single transaction; the whole version applies
// or none of it does.
func runOrdersBackfill(tx *gorm.DB) error {
	m := tx.Migrator()

	if m.HasTable("functionalities_clients") && !m.HasTable("order_items") {
		if err := m.RenameTable("functionalities_clients", "order_items"); err != nil {
			return fmt.Errorf("failed to rename functionalities_clients: %w", err)
		}
	}

	if err := tx.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderInstallment{}); err != nil {
		return err
	}

	// The legacy status column is the marker that the backfill has not run
	// against this data yet; once stripped, there is nothing to re-derive.
	if !m.HasColumn(&models.OrderItem{}, "status") {
		return nil
	}

	if err := classifyItemStatuses(tx); err != nil {
		return err
	}

	rows, err := loadLegacyItems(tx)
	if err != nil {
		return err
	}

	aggregates, stats := buildAggregates(rows, tx.NowFunc())
	if stats.UnknownPaymentMethods > 0 {
		log.Printf("migrations: %d legacy payment method(s) outside the known vocabulary defaulted to %q",
			stats.UnknownPaymentMethods, models.PaymentMethodOther)
	}

	for _, agg := range aggregates {
		order := models.Order{
			TenantID:      agg.TenantID,
			ClientID:      agg.ClientID,
			OrderNumber:   agg.OrderNumber,
			Description:   agg.Description,
			ContractDate:  agg.ContractDate,
			AmountTotal:   agg.AmountTotal,
			AmountPaid:    agg.AmountPaid,
			PaymentMethod: agg.PaymentMethod,
			PaymentTerms:  models.PaymentTermsOne,
			PaymentStatus: agg.PaymentStatus,
			WorkStatus:    agg.WorkStatus,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order %s: %w", agg.OrderNumber, err)
		}

		err := tx.Table("order_items").
			Where("client_id = ? AND order_number = ?", agg.ClientID, agg.OrderNumber).
			Update("order_id", order.ID).Error
		if err != nil {
			return fmt.Errorf("failed to link items to order %s: %w", agg.OrderNumber, err)
		}

		specs, terms := synthesizeInstallments(agg)
		for _, spec := range specs {
			installment := models.OrderInstallment{
				OrderID:  order.ID,
				Sequence: spec.Sequence,
				Amount:   spec.Amount,
				DueDate:  spec.DueDate,
				PaidAt:   spec.PaidAt,
			}
			if err := tx.Create(&installment).Error; err != nil {
				return fmt.Errorf("failed to create installment %d for order %s: %w",
					spec.Sequence, agg.OrderNumber, err)
			}
		}

		if terms != models.PaymentTermsOne {
			err := tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("payment_terms", terms).Error
			if err != nil {
				return err
			}
		}
	}

	log.Printf("migrations: backfilled %d order(s) from %d legacy item(s)", len(aggregates), len(rows))
	return nil
}

// classifyItemStatuses writes the normalized item_status for every row from
// its legacy status. Unrecognized values keep the PENDING column default and
// are counted so the fallback stays observable.
func classifyItemStatuses(tx *gorm.DB) error {
	for raw, status := range itemStatusMap {
		err := tx.Table("order_items").
			Where("UPPER(TRIM(status)) = ?", raw).
			Update("item_status", string(status)).Error
		if err != nil {
			return fmt.Errorf("failed to classify legacy status %q: %w", raw, err)
		}
	}

	var unknown int64
	err := tx.Table("order_items").
		Where("status IS NULL OR UPPER(TRIM(status)) NOT IN ?", legacyStatusValues()).
		Count(&unknown).Error
	if err != nil {
		return err
	}
	if unknown > 0 {
		log.Printf("migrations: %d legacy item status(es) outside the known vocabulary defaulted to %q",
			unknown, models.ItemStatusPending)
	}
	return nil
}

// loadLegacyItems reads every legacy item joined to its client for the
// tenant reference; rows without an order number are filtered out later by
// the aggregator.
func loadLegacyItems(tx *gorm.DB) ([]legacyItemRow, error) {
	var rows []legacyItemRow
	err := tx.Table("order_items").
		Select("order_items.id, clients.tenant_id, order_items.client_id, order_items.order_number, " +
			"order_items.description, order_items.status, order_items.total_price, " +
			"order_items.payment_method, order_items.paid_at, order_items.contract_date").
		Joins("JOIN clients ON clients.id = order_items.client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy items: %w", err)
	}
	return rows, nil
}
