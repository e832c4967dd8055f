package oracle_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oracle-dashboard/webhooks/oracle"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

func newBackend(t *testing.T, status int) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if len(b) > 0 {
			require.NoError(t, json.Unmarshal(b, &rec.Body))
		}
		requests = append(requests, rec)

		w.Header().Set("Content-Type", oracle.ContentTypeJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	return srv, &requests
}

func TestClient_UpdatePaymentStatus(t *testing.T) {
	srv, requests := newBackend(t, http.StatusOK)
	client := oracle.NewClient(srv.URL+"/", oracle.WithServiceToken("svc-token"))

	err := client.UpdatePaymentStatus(context.Background(), "5077125051", "confirming")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/payments/5077125051/status", req.Path)
	assert.Equal(t, "Bearer svc-token", req.Auth)
	assert.Equal(t, map[string]interface{}{"payment_id": "5077125051", "status": "confirming"}, req.Body)
}

func TestClient_ActivateSubscription(t *testing.T) {
	srv, requests := newBackend(t, http.StatusCreated)
	client := oracle.NewClient(srv.URL)

	err := client.ActivateSubscription(context.Background(), oracle.ActivateSubscriptionParams{
		UserID:       "user789",
		PlanID:       "plan123",
		BillingCycle: "monthly",
		PaymentID:    "5077125051",
		AmountPaid:   decimal.RequireFromString("49.99"),
		PayCurrency:  "usdttrc20",
		OrderID:      "sub_plan123_monthly_user789_abcde",
	})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/subscriptions/activate", req.Path)
	assert.Empty(t, req.Auth)
	assert.Equal(t, map[string]interface{}{
		"user_id":       "user789",
		"plan_id":       "plan123",
		"billing_cycle": "monthly",
		"payment_id":    "5077125051",
		"amount_paid":   49.99,
		"pay_currency":  "usdttrc20",
		"order_id":      "sub_plan123_monthly_user789_abcde",
	}, req.Body)
}

func TestClient_UpdateSubscriptionPlan(t *testing.T) {
	srv, requests := newBackend(t, http.StatusOK)
	client := oracle.NewClient(srv.URL)

	require.NoError(t, client.UpdateSubscriptionPlan(context.Background(), "user789", "plan123"))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/dashboard/user789/subscription", req.Path)
	assert.Equal(t, map[string]interface{}{"subscription_plan": "plan123"}, req.Body)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv, requests := newBackend(t, http.StatusBadGateway)
	client := oracle.NewClient(srv.URL)

	err := client.UpdateSubscriptionPlan(context.Background(), "user789", "plan123")
	require.Error(t, err)

	var oerr *oracle.Error
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, http.StatusBadGateway, oerr.StatusCode)
	assert.Equal(t, `{"ok":true}`, oerr.Body)
	assert.Len(t, *requests, 1, "a failed call must not be retried")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := oracle.NewClient(srv.URL, oracle.WithTimeout(20*time.Millisecond))
	err := client.UpdatePaymentStatus(context.Background(), "1", "failed")
	require.Error(t, err)
}

func TestClient_OptionsDontMutateSharedClient(t *testing.T) {
	srv, requests := newBackend(t, http.StatusOK)

	shared := &http.Client{Timeout: time.Minute}
	client := oracle.NewClient(srv.URL, oracle.WithHTTPClient(shared), oracle.WithTimeout(time.Second))
	require.NoError(t, client.UpdatePaymentStatus(context.Background(), "1", "failed"))
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Len(t, *requests, 1)

	require.NotPanics(t, func() {
		client = oracle.NewClient(srv.URL, oracle.WithHTTPClient(nil), oracle.WithTimeout(time.Second))
	})
	require.NoError(t, client.UpdatePaymentStatus(context.Background(), "2", "failed"))
	assert.Len(t, *requests, 2)
}
