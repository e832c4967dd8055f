package reconcile

import (
	"context"
	"errors"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/oracle-dashboard/webhooks/oracle"
	"github.com/oracle-dashboard/webhooks/payment"
)

// Action is the backend mutation chosen for an event.
type Action string

// Predefined actions.
const (
	ActionNone         Action = "none"          // Unknown status, nothing to reconcile.
	ActionStatusUpdate Action = "status_update" // Payment status updated on the backend.
	ActionActivation   Action = "activation"    // Subscription activated by the payment.
	ActionFallback     Action = "fallback"      // Activation failed, plan updated directly.
	ActionDropped      Action = "dropped"       // Activation skipped, the order can't be correlated.
)

// ErrIncompleteOrder is reported when a settled payment can't be mapped onto a subscription.
var ErrIncompleteOrder = errors.New("order is missing user, plan or billing frequency")

type (
	// Dispatcher maps normalized payment events onto Oracle Engine calls.
	// It keeps no state: duplicate and out-of-order deliveries are passed
	// through and the backend is expected to be idempotent per payment id.
	Dispatcher struct {
		gateway  backendGateway
		logger   log.Logger
		fallback map[payment.Provider]bool
	}

	// DispatcherOption configures the dispatcher.
	DispatcherOption func(*Dispatcher)

	backendGateway interface {
		UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
		ActivateSubscription(ctx context.Context, arg oracle.ActivateSubscriptionParams) error
		UpdateSubscriptionPlan(ctx context.Context, userID, planID string) error
	}

	// Result describes what the dispatcher did with an event.
	// Errors are reported, never returned: the provider is acknowledged regardless.
	Result struct {
		Action      Action
		State       payment.State
		Err         error // Err is the error of the primary call.
		FallbackErr error // FallbackErr is the error of the fallback plan update.
	}
)

// NewDispatcher creates a dispatcher calling the given gateway.
// By default the plan fallback is enabled for the card provider only.
func NewDispatcher(gw backendGateway, logger log.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	d := &Dispatcher{
		gateway:  gw,
		logger:   logger,
		fallback: map[payment.Provider]bool{payment.ProviderPaystack: true},
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// WithPlanFallback replaces the set of providers whose failed activation
// falls back to a direct subscription plan update.
func WithPlanFallback(providers ...payment.Provider) DispatcherOption {
	return func(d *Dispatcher) {
		d.fallback = make(map[payment.Provider]bool, len(providers))
		for _, p := range providers {
			d.fallback[p] = true
		}
	}
}

// Dispatch reconciles a single event.
func (d *Dispatcher) Dispatch(ctx context.Context, event payment.Event) Result {
	logger := log.With(d.logger,
		"provider", event.Provider,
		"payment_id", event.ExternalPaymentID,
		"order_id", event.OrderID,
		"status", event.Status,
	)

	state := event.State()
	switch state {
	case payment.StatePending:
		// Best effort, activation is driven by the later confirmation.
		err := d.gateway.UpdatePaymentStatus(ctx, event.ExternalPaymentID, string(event.Status))
		if err != nil {
			level.Warn(logger).Log("msg", "failed to update pending payment status", "error", err)
		}
		return Result{Action: ActionStatusUpdate, State: state, Err: err}

	case payment.StateSucceeded:
		return d.activate(ctx, logger, event)

	case payment.StateFailed:
		err := d.gateway.UpdatePaymentStatus(ctx, event.ExternalPaymentID, string(payment.StateFailed))
		if err != nil {
			level.Error(logger).Log("msg", "failed to mark payment as failed", "amount", event.AmountPaid.String(), "error", err)
		}
		return Result{Action: ActionStatusUpdate, State: state, Err: err}

	default:
		level.Info(logger).Log("msg", "unhandled payment status")
		return Result{Action: ActionNone, State: state}
	}
}

func (d *Dispatcher) activate(ctx context.Context, logger log.Logger, event payment.Event) Result {
	if !event.Order.Complete() {
		err := ErrIncompleteOrder
		if event.OrderErr != nil {
			err = event.OrderErr
		}
		level.Error(logger).Log(
			"msg", "dropping subscription activation",
			"amount", event.AmountPaid.String(),
			"currency", event.Currency,
			"error", err,
		)
		return Result{Action: ActionDropped, State: payment.StateSucceeded, Err: err}
	}

	err := d.gateway.ActivateSubscription(ctx, oracle.ActivateSubscriptionParams{
		UserID:       event.Order.UserID,
		PlanID:       event.Order.PlanID,
		BillingCycle: event.Order.BillingFrequency,
		PaymentID:    event.ExternalPaymentID,
		AmountPaid:   event.AmountPaid,
		PayCurrency:  event.Currency,
		OrderID:      event.OrderID,
	})
	if err == nil {
		return Result{Action: ActionActivation, State: payment.StateSucceeded}
	}

	level.Error(logger).Log(
		"msg", "failed to activate subscription",
		"user_id", event.Order.UserID,
		"plan_id", event.Order.PlanID,
		"amount", event.AmountPaid.String(),
		"currency", event.Currency,
		"error", err,
	)

	if !d.fallback[event.Provider] {
		return Result{Action: ActionActivation, State: payment.StateSucceeded, Err: err}
	}

	fallbackErr := d.gateway.UpdateSubscriptionPlan(ctx, event.Order.UserID, event.Order.PlanID)
	if fallbackErr != nil {
		level.Error(logger).Log(
			"msg", "fallback subscription plan update failed, manual follow-up required",
			"user_id", event.Order.UserID,
			"plan_id", event.Order.PlanID,
			"amount", event.AmountPaid.String(),
			"error", fallbackErr,
		)
	} else {
		level.Warn(logger).Log("msg", "subscription plan updated by fallback", "user_id", event.Order.UserID, "plan_id", event.Order.PlanID)
	}

	return Result{Action: ActionFallback, State: payment.StateSucceeded, Err: err, FallbackErr: fallbackErr}
}
