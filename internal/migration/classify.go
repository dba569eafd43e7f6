package migration

import (
	"strings"

	"github.com/example/allrev/internal/models"
)

// itemStatusMap maps the legacy status vocabulary onto the normalized item
// statuses. COMPLETED and CANCELED both collapse to FINISHED.
var itemStatusMap = map[string]models.ItemStatus{
	"PENDING_PAYMENT":  models.ItemStatusPending,
	"IN_PROGRESS":      models.ItemStatusInProgress,
	"AWAITING_CLIENT":  models.ItemStatusAwaitingClient,
	"AWAITING_ADVISOR": models.ItemStatusAwaitingAdvisor,
	"OVERDUE":          models.ItemStatusOverdue,
	"COMPLETED":        models.ItemStatusFinished,
	"CANCELED":         models.ItemStatusFinished,
}

// classifyItemStatus maps a legacy status onto the normalized vocabulary.
// Unrecognized values default to PENDING; the second return reports whether
// the input was recognized so callers can count fallbacks.
func classifyItemStatus(raw string) (models.ItemStatus, bool) {
	if status, ok := itemStatusMap[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return status, true
	}
	return models.ItemStatusPending, false
}

// paymentMethodMap is the fixed vocabulary of free-text payment methods,
// including the Portuguese spellings found in legacy data.
var paymentMethodMap = map[string]models.PaymentMethod{
	"pix": models.PaymentMethodPix,

	"transfer":               models.PaymentMethodTransfer,
	"bank transfer":          models.PaymentMethodTransfer,
	"bank_transfer":          models.PaymentMethodTransfer,
	"transferencia":          models.PaymentMethodTransfer,
	"transferência":          models.PaymentMethodTransfer,
	"transferencia bancaria": models.PaymentMethodTransfer,
	"transferência bancária": models.PaymentMethodTransfer,

	"deposit":  models.PaymentMethodDeposit,
	"deposito": models.PaymentMethodDeposit,
	"depósito": models.PaymentMethodDeposit,

	"card":              models.PaymentMethodCard,
	"credit card":       models.PaymentMethodCard,
	"debit card":        models.PaymentMethodCard,
	"cartao":            models.PaymentMethodCard,
	"cartão":            models.PaymentMethodCard,
	"cartao de credito": models.PaymentMethodCard,
	"cartão de crédito": models.PaymentMethodCard,
	"cartao de debito":  models.PaymentMethodCard,
	"cartão de débito":  models.PaymentMethodCard,

	"boleto":   models.PaymentMethodOther,
	"cash":     models.PaymentMethodOther,
	"dinheiro": models.PaymentMethodOther,
}

// classifyPaymentMethod maps a free-text payment method onto the normalized
// vocabulary, case-insensitively. Anything outside the vocabulary maps to
// "other"; the second return reports whether the input was recognized.
func classifyPaymentMethod(raw string) (models.PaymentMethod, bool) {
	if method, ok := paymentMethodMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return method, true
	}
	return models.PaymentMethodOther, false
}

// doneStatuses are the legacy statuses counted as finished work when
// aggregating an order's work status. DELIVERED appears in old data even
// though it was never part of the documented enum.
var doneStatuses = map[string]bool{
	"COMPLETED": true,
	"CANCELED":  true,
	"FINISHED":  true,
	"DELIVERED": true,
}

func isDoneStatus(raw string) bool {
	return doneStatuses[strings.ToUpper(strings.TrimSpace(raw))]
}
