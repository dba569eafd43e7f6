package migration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/allrev/internal/models"
)

func TestSynthesizeInstallmentsPaidAndRemainder(t *testing.T) {
	contract := time.Date(2024, 2, 5, 15, 30, 0, 0, time.UTC)
	paidAt := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)

	agg := &orderAggregate{
		ContractDate: contract,
		AmountTotal:  decimal.NewFromInt(350),
		AmountPaid:   decimal.NewFromInt(300),
		LatestPaidAt: &paidAt,
	}

	specs, terms := synthesizeInstallments(agg)
	require.Len(t, specs, 2)
	assert.Equal(t, models.PaymentTermsTwo, terms)

	assert.Equal(t, 1, specs[0].Sequence)
	assert.True(t, specs[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), specs[0].DueDate)
	require.NotNil(t, specs[0].PaidAt)
	assert.True(t, specs[0].PaidAt.Equal(paidAt))

	assert.Equal(t, 2, specs[1].Sequence)
	assert.True(t, specs[1].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), specs[1].DueDate)
	assert.Nil(t, specs[1].PaidAt)

	// The installments always cover the full order amount.
	sum := specs[0].Amount.Add(specs[1].Amount)
	assert.True(t, sum.Equal(agg.AmountTotal))
}

func TestSynthesizeInstallmentsFullyPaid(t *testing.T) {
	paidAt := time.Now()
	agg := &orderAggregate{
		ContractDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AmountTotal:  decimal.NewFromInt(200),
		AmountPaid:   decimal.NewFromInt(200),
		LatestPaidAt: &paidAt,
	}

	specs, terms := synthesizeInstallments(agg)
	require.Len(t, specs, 1)
	assert.Equal(t, models.PaymentTermsOne, terms)
	assert.Equal(t, 1, specs[0].Sequence)
	assert.True(t, specs[0].Amount.Equal(decimal.NewFromInt(200)))
	assert.NotNil(t, specs[0].PaidAt)
}

func TestSynthesizeInstallmentsNothingPaid(t *testing.T) {
	agg := &orderAggregate{
		ContractDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AmountTotal:  decimal.NewFromInt(120),
		AmountPaid:   decimal.Zero,
	}

	specs, terms := synthesizeInstallments(agg)
	require.Len(t, specs, 1)
	assert.Equal(t, models.PaymentTermsOne, terms)

	// A lone remainder takes sequence 1, not 2.
	assert.Equal(t, 1, specs[0].Sequence)
	assert.True(t, specs[0].Amount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), specs[0].DueDate)
	assert.Nil(t, specs[0].PaidAt)
}
