package migration

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/allrev/internal/models"
)

// legacyItemRow is one per-item record read back during the backfill, joined
// to its owning client to resolve the tenant.
type legacyItemRow struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ClientID      uuid.UUID
	OrderNumber   *string
	Description   *string
	Status        string
	TotalPrice    decimal.Decimal
	PaymentMethod *string
	PaidAt        *time.Time
	ContractDate  *time.Time
}

// orderAggregate is the derived order for one (tenant, client, order_number)
// group of legacy items.
type orderAggregate struct {
	TenantID      uuid.UUID
	ClientID      uuid.UUID
	OrderNumber   string
	Description   string
	ContractDate  time.Time
	AmountTotal   decimal.Decimal
	AmountPaid    decimal.Decimal
	PaymentMethod models.PaymentMethod
	PaymentStatus models.PaymentStatus
	WorkStatus    models.WorkStatus

	// LatestPaidAt is the most recent paid_at among the group's paid items,
	// carried onto the paid installment.
	LatestPaidAt *time.Time

	// ItemIDs are the source rows, used to resolve order_id back onto them.
	ItemIDs []uuid.UUID
}

// backfillStats counts classification fallbacks so defaulted legacy values
// stay observable instead of silently disappearing.
type backfillStats struct {
	UnknownPaymentMethods int
}

// buildAggregates groups legacy items carrying an order number and derives
// one order per (tenant, client, order_number) group. Rows without an order
// number are excluded. now is used when a group has no contract date at all.
func buildAggregates(rows []legacyItemRow, now time.Time) ([]*orderAggregate, backfillStats) {
	var stats backfillStats

	grouped := make([]legacyItemRow, 0, len(rows))
	for _, row := range rows {
		if row.OrderNumber == nil || *row.OrderNumber == "" {
			continue
		}
		grouped = append(grouped, row)
	}

	// Deterministic processing order; also makes the "first non-null" picks
	// below stable across runs.
	sort.Slice(grouped, func(i, j int) bool {
		a, b := grouped[i], grouped[j]
		if a.TenantID != b.TenantID {
			return a.TenantID.String() < b.TenantID.String()
		}
		if a.ClientID != b.ClientID {
			return a.ClientID.String() < b.ClientID.String()
		}
		if *a.OrderNumber != *b.OrderNumber {
			return *a.OrderNumber < *b.OrderNumber
		}
		return a.ID.String() < b.ID.String()
	})

	type groupKey struct {
		TenantID    uuid.UUID
		ClientID    uuid.UUID
		OrderNumber string
	}

	index := make(map[groupKey]*orderAggregate)
	var aggregates []*orderAggregate
	methods := make(map[groupKey][]string)
	statuses := make(map[groupKey][]string)

	for _, row := range grouped {
		key := groupKey{TenantID: row.TenantID, ClientID: row.ClientID, OrderNumber: *row.OrderNumber}
		agg, ok := index[key]
		if !ok {
			agg = &orderAggregate{
				TenantID:    row.TenantID,
				ClientID:    row.ClientID,
				OrderNumber: *row.OrderNumber,
				AmountTotal: decimal.Zero,
				AmountPaid:  decimal.Zero,
			}
			index[key] = agg
			aggregates = append(aggregates, agg)
		}

		agg.ItemIDs = append(agg.ItemIDs, row.ID)
		agg.AmountTotal = agg.AmountTotal.Add(row.TotalPrice)

		if row.PaidAt != nil {
			agg.AmountPaid = agg.AmountPaid.Add(row.TotalPrice)
			if agg.LatestPaidAt == nil || row.PaidAt.After(*agg.LatestPaidAt) {
				paidAt := *row.PaidAt
				agg.LatestPaidAt = &paidAt
			}
		}

		if agg.Description == "" && row.Description != nil && *row.Description != "" {
			agg.Description = *row.Description
		}

		if row.ContractDate != nil && (agg.ContractDate.IsZero() || row.ContractDate.Before(agg.ContractDate)) {
			agg.ContractDate = *row.ContractDate
		}

		if row.PaymentMethod != nil && *row.PaymentMethod != "" {
			methods[key] = append(methods[key], *row.PaymentMethod)
		}
		statuses[key] = append(statuses[key], row.Status)
	}

	for key, agg := range index {
		if agg.ContractDate.IsZero() {
			agg.ContractDate = now
		}

		// Representative payment method: the smallest non-null raw value of
		// the group, classified once. Mixed methods within a group are not
		// validated.
		agg.PaymentMethod = models.PaymentMethodOther
		if raw := methods[key]; len(raw) > 0 {
			sort.Strings(raw)
			method, recognized := classifyPaymentMethod(raw[0])
			agg.PaymentMethod = method
			if !recognized {
				stats.UnknownPaymentMethods++
			}
		}

		agg.PaymentStatus = models.DerivePaymentStatus(agg.AmountPaid, agg.AmountTotal)
		agg.WorkStatus = deriveLegacyWorkStatus(statuses[key])
	}

	return aggregates, stats
}

// deriveLegacyWorkStatus reduces the raw item statuses of a group: OVERDUE wins
// over everything, then IN_PROGRESS, then all-done means COMPLETED.
func deriveLegacyWorkStatus(rawStatuses []string) models.WorkStatus {
	if len(rawStatuses) == 0 {
		return models.WorkStatusPending
	}

	allDone := true
	anyInProgress := false
	for _, raw := range rawStatuses {
		upper := strings.ToUpper(strings.TrimSpace(raw))
		if upper == "OVERDUE" {
			return models.WorkStatusOverdue
		}
		if upper == "IN_PROGRESS" {
			anyInProgress = true
		}
		if !isDoneStatus(upper) {
			allDone = false
		}
	}

	if anyInProgress {
		return models.WorkStatusInProgress
	}
	if allDone {
		return models.WorkStatusCompleted
	}
	return models.WorkStatusPending
}
