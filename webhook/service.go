package webhook

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/oracle-dashboard/webhooks/payment"
	"github.com/oracle-dashboard/webhooks/reconcile"
)

type (
	// ReceivedAck is the acknowledgement expected by NOWPayments.
	ReceivedAck struct {
		Received bool `json:"received"`
	}

	// SuccessAck is the acknowledgement expected by Paystack.
	SuccessAck struct {
		Success bool `json:"success"`
	}

	// Service receives webhook deliveries and reconciles them.
	Service struct {
		providers  *Registry
		dispatcher dispatcher
		logger     log.Logger
	}

	dispatcher interface {
		Dispatch(ctx context.Context, event payment.Event) reconcile.Result
	}
)

// NewService returns a webhook service for the given providers.
func NewService(providers *Registry, d dispatcher, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &Service{
		providers:  providers,
		dispatcher: d,
		logger:     logger,
	}
}

// Receive verifies, decodes and reconciles a single delivery and returns the
// provider acknowledgement. Only an unknown provider, a bad signature or an
// undecodable payload produce an error; reconciliation failures are logged
// and the delivery is acknowledged anyway.
func (s *Service) Receive(ctx context.Context, provider string, body []byte, header http.Header) (interface{}, error) {
	logger := log.With(s.logger, "delivery_id", uuid.New().String(), "provider", provider)

	p, err := s.providers.Lookup(provider)
	if err != nil {
		level.Warn(logger).Log("msg", "webhook for unknown provider")
		return nil, err
	}

	// Nothing is parsed before the signature is checked.
	if err := p.Verify(body, header); err != nil {
		level.Warn(logger).Log("msg", "rejected webhook", "error", err)
		return nil, err
	}

	event, err := p.Decode(body)
	if err != nil {
		level.Error(logger).Log("msg", "failed to decode webhook", "error", err, "payload", string(body))
		return nil, err
	}

	result := s.dispatcher.Dispatch(ctx, event)

	keyvals := []interface{}{
		"msg", "webhook processed",
		"payment_id", event.ExternalPaymentID,
		"order_id", event.OrderID,
		"status", event.Status,
		"state", result.State,
		"action", result.Action,
	}
	if result.Err != nil {
		keyvals = append(keyvals, "error", result.Err)
	}
	if result.FallbackErr != nil {
		keyvals = append(keyvals, "fallback_error", result.FallbackErr)
	}
	if result.Err != nil {
		level.Warn(logger).Log(keyvals...)
	} else {
		level.Info(logger).Log(keyvals...)
	}

	return p.Ack(), nil
}

// Providers returns the names of the supported providers.
func (s *Service) Providers() []string {
	return s.providers.Names()
}
