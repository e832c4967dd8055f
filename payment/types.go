package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Provider is the name of a payment processor that delivers webhooks.
type Provider string

// Supported providers.
const (
	ProviderNOWPayments Provider = "nowpayments" // NOWPayments is the crypto payment processor.
	ProviderPaystack    Provider = "paystack"    // Paystack is the card payment processor.
)

// Status is a payment status as reported by a provider.
// Each provider has its own vocabulary, see State for the normalized form.
type Status string

// Known provider statuses.
const (
	StatusConfirming    Status = "confirming"     // Crypto transaction seen, waiting for confirmations.
	StatusConfirmed     Status = "confirmed"      // Crypto transaction confirmed on chain.
	StatusFinished      Status = "finished"       // Crypto payment credited to the merchant.
	StatusFailed        Status = "failed"         // Crypto payment failed.
	StatusRefunded      Status = "refunded"       // Crypto payment refunded to the payer.
	StatusChargeSuccess Status = "charge_success" // Card charge succeeded.
	StatusChargeFailed  Status = "charge_failed"  // Card charge failed.
)

// State is the normalized tri-state of a payment.
type State string

// Predefined payment states.
const (
	StatePending   State = "pending"   // Payment is in progress.
	StateSucceeded State = "succeeded" // Payment is settled, subscription can be activated.
	StateFailed    State = "failed"    // Payment is failed or refunded.
	StateUnknown   State = "unknown"   // Status is not handled by this service.
)

// State collapses the provider status into the normalized tri-state.
func (s Status) State() State {
	switch s {
	case StatusConfirming:
		return StatePending
	case StatusConfirmed, StatusFinished, StatusChargeSuccess:
		return StateSucceeded
	case StatusFailed, StatusRefunded, StatusChargeFailed:
		return StateFailed
	default:
		return StateUnknown
	}
}

// NormalizeStatus converts a raw provider status or event name into a Status,
// e.g. "charge.success" becomes "charge_success".
func NormalizeStatus(raw string) Status {
	raw = strings.ToLower(strings.TrimSpace(raw))
	return Status(strings.ReplaceAll(raw, ".", "_"))
}

// Event is a webhook delivery normalized across providers.
// It lives for a single request and is never persisted.
type Event struct {
	Provider          Provider        `json:"provider"`
	ExternalPaymentID string          `json:"external_payment_id"` // ExternalPaymentID is the provider payment id, used as idempotency key by the backend.
	OrderID           string          `json:"order_id"`            // OrderID is the raw order id (crypto) or the payment reference (card).
	Order             Order           `json:"order"`               // Order holds the subscription fields correlated with the payment.
	OrderErr          error           `json:"-"`                   // OrderErr is set when the order fields could not be fully recovered.
	Status            Status          `json:"status"`
	AmountPaid        decimal.Decimal `json:"amount_paid"` // AmountPaid is the paid amount in major currency units.
	Currency          string          `json:"currency"`
	RawPayload        []byte          `json:"-"` // RawPayload is the original body, kept for logging only.
}

// State returns the normalized state of the event status.
func (e Event) State() State {
	return e.Status.State()
}
