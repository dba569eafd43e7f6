package migration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/allrev/internal/models"
)

// remainderDueDays is how long after the contract date the unpaid balance of
// a backfilled order falls due.
const remainderDueDays = 30

// installmentSpec describes one installment to synthesize for an order.
type installmentSpec struct {
	Sequence int
	Amount   decimal.Decimal
	DueDate  time.Time
	PaidAt   *time.Time
}

// synthesizeInstallments derives at most two installments from an aggregate:
// a paid installment covering amount_paid (due on the contract date, stamped
// with the latest item paid_at) and a remainder installment due 30 days
// later. When nothing was paid the remainder takes sequence 1. The returned
// terms are TWO only when both installments exist.
func synthesizeInstallments(agg *orderAggregate) ([]installmentSpec, models.PaymentTerms) {
	var specs []installmentSpec
	dueDate := dateOnly(agg.ContractDate)

	if agg.AmountPaid.GreaterThan(decimal.Zero) {
		specs = append(specs, installmentSpec{
			Sequence: 1,
			Amount:   agg.AmountPaid,
			DueDate:  dueDate,
			PaidAt:   agg.LatestPaidAt,
		})
	}

	remainder := agg.AmountTotal.Sub(agg.AmountPaid)
	if remainder.GreaterThan(decimal.Zero) {
		specs = append(specs, installmentSpec{
			Sequence: len(specs) + 1,
			Amount:   remainder,
			DueDate:  dueDate.AddDate(0, 0, remainderDueDays),
		})
	}

	terms := models.PaymentTermsOne
	if len(specs) == 2 {
		terms = models.PaymentTermsTwo
	}
	return specs, terms
}

// dateOnly truncates a timestamp to its date part.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
