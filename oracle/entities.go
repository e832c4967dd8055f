package oracle

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ActivateSubscriptionParams are the parameters for a subscription activation.
type ActivateSubscriptionParams struct {
	UserID       string
	PlanID       string
	BillingCycle string
	PaymentID    string          // PaymentID is the provider payment id, the backend's idempotency key.
	AmountPaid   decimal.Decimal // AmountPaid is in major currency units.
	PayCurrency  string
	OrderID      string
}

// UpdatePaymentStatusRequest is the body of PUT /payments/{paymentId}/status.
type UpdatePaymentStatusRequest struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// ActivateSubscriptionRequest is the body of POST /subscriptions/activate.
type ActivateSubscriptionRequest struct {
	UserID       string  `json:"user_id"`
	PlanID       string  `json:"plan_id"`
	BillingCycle string  `json:"billing_cycle"`
	PaymentID    string  `json:"payment_id"`
	AmountPaid   float64 `json:"amount_paid"`
	PayCurrency  string  `json:"pay_currency"`
	OrderID      string  `json:"order_id"`
}

// UpdateSubscriptionPlanRequest is the body of PUT /dashboard/{userId}/subscription.
type UpdateSubscriptionPlanRequest struct {
	SubscriptionPlan string `json:"subscription_plan"`
}

// Error is returned when the Oracle Engine responds with a non-2xx status.
type Error struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("oracle engine: %s %s: unexpected status code: %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("oracle engine: %s %s: unexpected status code: %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}
