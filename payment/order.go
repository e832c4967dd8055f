package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/random"
)

const (
	orderIDSeparator = "_"
	orderIDSegments  = 5

	// SubscriptionTag is the leading segment of subscription order ids.
	SubscriptionTag = "sub"

	orderNonceLength = 8
)

// Predefined order id errors.
var (
	ErrMalformedOrderID = errors.New("malformed order id")
	ErrInvalidOrder     = errors.New("invalid order")
)

// Order is the subscription checkout encoded into a crypto order id:
// {subscriptionTag}_{planId}_{billingFrequency}_{userId}_{nonce}.
type Order struct {
	SubscriptionTag  string `json:"subscription_tag,omitempty"`
	PlanID           string `json:"plan_id,omitempty"`
	BillingFrequency string `json:"billing_frequency,omitempty"`
	UserID           string `json:"user_id,omitempty"`
	Nonce            string `json:"nonce,omitempty"`
}

// Complete reports whether the order carries everything needed to activate a subscription.
func (o Order) Complete() bool {
	return o.PlanID != "" && o.BillingFrequency != "" && o.UserID != ""
}

// ParseOrderID splits the order id into its positional segments.
// It never fails hard: missing segments are left empty and reported
// through an error wrapping ErrMalformedOrderID, so callers can keep the
// partial fields and decide how to degrade.
// Extra separators are kept in the nonce.
func ParseOrderID(orderID string) (Order, error) {
	parts := strings.SplitN(strings.TrimSpace(orderID), orderIDSeparator, orderIDSegments)

	segment := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	order := Order{
		SubscriptionTag:  segment(0),
		PlanID:           segment(1),
		BillingFrequency: segment(2),
		UserID:           segment(3),
		Nonce:            segment(4),
	}

	if len(parts) < orderIDSegments {
		return order, fmt.Errorf("%w: expected %d segments, got %d", ErrMalformedOrderID, orderIDSegments, len(parts))
	}
	if !order.Complete() {
		return order, fmt.Errorf("%w: empty plan, billing frequency or user segment", ErrMalformedOrderID)
	}

	return order, nil
}

// NewOrderID builds an order id for the given subscription checkout.
// A random nonce is generated when the order has none.
func NewOrderID(o Order) (string, error) {
	if o.SubscriptionTag == "" {
		o.SubscriptionTag = SubscriptionTag
	}
	if o.Nonce == "" {
		o.Nonce = random.String(orderNonceLength)
	}
	if !o.Complete() {
		return "", fmt.Errorf("%w: plan id, billing frequency and user id are required", ErrInvalidOrder)
	}

	segments := []string{o.SubscriptionTag, o.PlanID, o.BillingFrequency, o.UserID, o.Nonce}
	for _, s := range segments[:orderIDSegments-1] {
		if strings.Contains(s, orderIDSeparator) {
			return "", fmt.Errorf("%w: segment %q contains %q", ErrInvalidOrder, s, orderIDSeparator)
		}
	}

	return strings.Join(segments, orderIDSeparator), nil
}
