package migration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/allrev/internal/models"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func legacyRow(tenant, client uuid.UUID, orderNumber, status string, price float64, paidAt *time.Time) legacyItemRow {
	return legacyItemRow{
		ID:          uuid.New(),
		TenantID:    tenant,
		ClientID:    client,
		OrderNumber: strPtr(orderNumber),
		Status:      status,
		TotalPrice:  decimal.NewFromFloat(price),
		PaidAt:      paidAt,
	}
}

func TestBuildAggregatesAmountsAndStatus(t *testing.T) {
	tenant := uuid.New()
	client := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	paid := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	paidLater := time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)

	rows := []legacyItemRow{
		legacyRow(tenant, client, "ORD-1", "IN_PROGRESS", 100, &paid),
		legacyRow(tenant, client, "ORD-1", "IN_PROGRESS", 200, &paidLater),
		legacyRow(tenant, client, "ORD-1", "PENDING_PAYMENT", 50, nil),
	}

	aggregates, _ := buildAggregates(rows, now)
	require.Len(t, aggregates, 1)

	agg := aggregates[0]
	assert.Equal(t, "ORD-1", agg.OrderNumber)
	assert.True(t, agg.AmountTotal.Equal(decimal.NewFromInt(350)), "amount_total = %s", agg.AmountTotal)
	assert.True(t, agg.AmountPaid.Equal(decimal.NewFromInt(300)), "amount_paid = %s", agg.AmountPaid)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, agg.PaymentStatus)
	assert.Equal(t, models.WorkStatusInProgress, agg.WorkStatus)
	require.NotNil(t, agg.LatestPaidAt)
	assert.True(t, agg.LatestPaidAt.Equal(paidLater))
	assert.Len(t, agg.ItemIDs, 3)
}

func TestBuildAggregatesExcludesRowsWithoutOrderNumber(t *testing.T) {
	tenant := uuid.New()
	client := uuid.New()

	rows := []legacyItemRow{
		legacyRow(tenant, client, "ORD-1", "PENDING_PAYMENT", 100, nil),
		{ID: uuid.New(), TenantID: tenant, ClientID: client, Status: "PENDING_PAYMENT", TotalPrice: decimal.NewFromInt(40)},
	}

	aggregates, _ := buildAggregates(rows, time.Now())
	require.Len(t, aggregates, 1)
	assert.True(t, aggregates[0].AmountTotal.Equal(decimal.NewFromInt(100)))
}

func TestBuildAggregatesGroupsByTenantClientAndNumber(t *testing.T) {
	tenant := uuid.New()
	clientA := uuid.New()
	clientB := uuid.New()

	rows := []legacyItemRow{
		legacyRow(tenant, clientA, "ORD-1", "PENDING_PAYMENT", 100, nil),
		legacyRow(tenant, clientA, "ORD-2", "PENDING_PAYMENT", 100, nil),
		legacyRow(tenant, clientB, "ORD-1", "PENDING_PAYMENT", 100, nil),
	}

	aggregates, _ := buildAggregates(rows, time.Now())
	assert.Len(t, aggregates, 3)
}

func TestBuildAggregatesPaymentStatusBoundaries(t *testing.T) {
	tenant := uuid.New()
	client := uuid.New()
	paid := time.Now()

	tests := []struct {
		name     string
		rows     []legacyItemRow
		expected models.PaymentStatus
	}{
		{
			name:     "nothing paid",
			rows:     []legacyItemRow{legacyRow(tenant, client, "N-1", "PENDING_PAYMENT", 100, nil)},
			expected: models.PaymentStatusPending,
		},
		{
			name: "everything paid",
			rows: []legacyItemRow{
				legacyRow(tenant, client, "N-2", "COMPLETED", 100, &paid),
				legacyRow(tenant, client, "N-2", "COMPLETED", 50, &paid),
			},
			expected: models.PaymentStatusPaid,
		},
		{
			name: "partially paid",
			rows: []legacyItemRow{
				legacyRow(tenant, client, "N-3", "COMPLETED", 100, &paid),
				legacyRow(tenant, client, "N-3", "PENDING_PAYMENT", 50, nil),
			},
			expected: models.PaymentStatusPartiallyPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aggregates, _ := buildAggregates(tt.rows, time.Now())
			require.Len(t, aggregates, 1)
			assert.Equal(t, tt.expected, aggregates[0].PaymentStatus)
		})
	}
}

func TestBuildAggregatesWorkStatus(t *testing.T) {
	tenant := uuid.New()
	client := uuid.New()

	tests := []struct {
		name     string
		statuses []string
		expected models.WorkStatus
	}{
		{"all finished or delivered", []string{"COMPLETED", "FINISHED", "DELIVERED"}, models.WorkStatusCompleted},
		{"overdue beats completed", []string{"FINISHED", "OVERDUE", "FINISHED"}, models.WorkStatusOverdue},
		{"in progress beats pending", []string{"IN_PROGRESS", "PENDING_PAYMENT"}, models.WorkStatusInProgress},
		{"awaiting defaults to pending", []string{"AWAITING_CLIENT", "AWAITING_ADVISOR"}, models.WorkStatusPending},
		{"canceled counts as done", []string{"CANCELED", "COMPLETED"}, models.WorkStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]legacyItemRow, 0, len(tt.statuses))
			for _, status := range tt.statuses {
				rows = append(rows, legacyRow(tenant, client, "W-1", status, 10, nil))
			}

			aggregates, _ := buildAggregates(rows, time.Now())
			require.Len(t, aggregates, 1)
			assert.Equal(t, tt.expected, aggregates[0].WorkStatus)
		})
	}
}

func TestBuildAggregatesRepresentativePicks(t *testing.T) {
	tenant := uuid.New()
	client := uuid.New()
	early := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)

	rows := []legacyItemRow{
		{
			ID: uuid.New(), TenantID: tenant, ClientID: client,
			OrderNumber: strPtr("P-1"), Status: "PENDING_PAYMENT",
			TotalPrice: decimal.NewFromInt(10), PaymentMethod: strPtr("transferencia"),
			ContractDate: timePtr(late),
		},
		{
			ID: uuid.New(), TenantID: tenant, ClientID: client,
			OrderNumber: strPtr("P-1"), Status: "PENDING_PAYMENT",
			TotalPrice: decimal.NewFromInt(10), PaymentMethod: strPtr("pix"),
			ContractDate: timePtr(early), Description: strPtr("thesis review"),
		},
	}

	aggregates, stats := buildAggregates(rows, time.Now())
	require.Len(t, aggregates, 1)

	agg := aggregates[0]
	// The sorted minimum raw value "pix" wins, not a per-item decision.
	assert.Equal(t, models.PaymentMethodPix, agg.PaymentMethod)
	assert.Equal(t, "thesis review", agg.Description)
	assert.True(t, agg.ContractDate.Equal(early))
	assert.Zero(t, stats.UnknownPaymentMethods)
}

func TestBuildAggregatesDefaultsAndFallbacks(t *testing.T) {
	tenant := uuid.New()
	client := uuid.New()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	rows := []legacyItemRow{
		{
			ID: uuid.New(), TenantID: tenant, ClientID: client,
			OrderNumber: strPtr("D-1"), Status: "WEIRD",
			TotalPrice: decimal.NewFromInt(10), PaymentMethod: strPtr("goats"),
		},
	}

	aggregates, stats := buildAggregates(rows, now)
	require.Len(t, aggregates, 1)

	agg := aggregates[0]
	assert.True(t, agg.ContractDate.Equal(now), "contract_date defaults to the migration time")
	assert.Equal(t, models.PaymentMethodOther, agg.PaymentMethod)
	assert.Equal(t, models.WorkStatusPending, agg.WorkStatus)
	assert.Equal(t, 1, stats.UnknownPaymentMethods)
}
