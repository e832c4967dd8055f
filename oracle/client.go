package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// ContentTypeJSON is the content type for JSON.
	ContentTypeJSON = "application/json"

	// DefaultTimeout bounds every call to the Oracle Engine.
	DefaultTimeout = 10 * time.Second

	maxErrorBodySize = 4 << 10
)

type (
	// Client is an Oracle Engine client used to reconcile payments.
	// Every call is a single attempt: no retries, no circuit breaker.
	Client struct {
		client *http.Client

		baseURL      string
		serviceToken string

		endpointPaymentStatus        string
		endpointActivateSubscription string
		endpointSubscriptionPlan     string
	}

	// ClientOption is a function that can be used to configure an Oracle Engine client.
	ClientOption func(*Client)
)

// NewClient returns a new Oracle Engine client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},

		baseURL:                      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		endpointPaymentStatus:        "/payments/%s/status",
		endpointActivateSubscription: "/subscriptions/activate",
		endpointSubscriptionPlan:     "/dashboard/%s/subscription",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets the underlying HTTP client. A nil client is ignored.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the request timeout on a copy of the underlying HTTP client,
// a client passed with WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			cl := *c.client
			cl.Timeout = timeout
			c.client = &cl
		}
	}
}

// WithServiceToken sets the bearer token sent with every request.
func WithServiceToken(token string) ClientOption {
	return func(c *Client) {
		c.serviceToken = strings.TrimSpace(token)
	}
}

// UpdatePaymentStatus sets the status of the payment with the given provider id.
func (c *Client) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	endpoint := fmt.Sprintf(c.endpointPaymentStatus, url.PathEscape(paymentID))
	if err := c.call(ctx, http.MethodPut, endpoint, UpdatePaymentStatusRequest{
		PaymentID: paymentID,
		Status:    status,
	}); err != nil {
		return errors.Wrap(err, "failed to update payment status")
	}

	return nil
}

// ActivateSubscription activates the subscription paid by the given payment.
// The backend is expected to treat this call as idempotent per payment id and order id.
func (c *Client) ActivateSubscription(ctx context.Context, arg ActivateSubscriptionParams) error {
	if err := c.call(ctx, http.MethodPost, c.endpointActivateSubscription, ActivateSubscriptionRequest{
		UserID:       arg.UserID,
		PlanID:       arg.PlanID,
		BillingCycle: arg.BillingCycle,
		PaymentID:    arg.PaymentID,
		AmountPaid:   arg.AmountPaid.InexactFloat64(),
		PayCurrency:  arg.PayCurrency,
		OrderID:      arg.OrderID,
	}); err != nil {
		return errors.Wrap(err, "failed to activate subscription")
	}

	return nil
}

// UpdateSubscriptionPlan sets the user's subscription plan directly.
// It carries no payment metadata, so it doesn't trigger the activation side effects.
func (c *Client) UpdateSubscriptionPlan(ctx context.Context, userID, planID string) error {
	endpoint := fmt.Sprintf(c.endpointSubscriptionPlan, url.PathEscape(userID))
	if err := c.call(ctx, http.MethodPut, endpoint, UpdateSubscriptionPlanRequest{
		SubscriptionPlan: planID,
	}); err != nil {
		return errors.Wrap(err, "failed to update subscription plan")
	}

	return nil
}

// call makes a single request to the given endpoint with a JSON encoded body.
// The response body is discarded on a 2xx status, other statuses return an *Error.
func (c *Client) call(ctx context.Context, method, endpoint string, params interface{}) error {
	var body io.Reader
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal %s params: %w", method, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Accept", ContentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}
	if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make %s request: %w", method, err)
	}

	return c.parseResponse(method, endpoint, resp)
}

// parseResponse maps non-2xx statuses to *Error and drains the body.
func (c *Client) parseResponse(method, endpoint string, resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &Error{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	return nil
}
