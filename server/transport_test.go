package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/oracle-dashboard/webhooks/oracle"
	"github.com/oracle-dashboard/webhooks/reconcile"
	"github.com/oracle-dashboard/webhooks/server"
	"github.com/oracle-dashboard/webhooks/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ipnSecret   = "ipn-secret"
	paystackKey = "sk_test_secret"
)

// oracleEngine is a fake backend answering every request with the status set per path.
type oracleEngine struct {
	mu       sync.Mutex
	calls    []string
	statuses map[string]int
}

func (o *oracleEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	o.mu.Lock()
	o.calls = append(o.calls, r.Method+" "+r.URL.Path)
	status, ok := o.statuses[r.URL.Path]
	o.mu.Unlock()

	if !ok {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{}`))
}

func (o *oracleEngine) Calls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.calls...)
}

func newTestServer(t *testing.T, statuses map[string]int) (*httptest.Server, *oracleEngine) {
	t.Helper()

	engine := &oracleEngine{statuses: statuses}
	backend := httptest.NewServer(engine)
	t.Cleanup(backend.Close)

	logger := log.NewNopLogger()
	svc := webhook.NewService(
		webhook.NewRegistry(webhook.NewNOWPayments(ipnSecret), webhook.NewPaystack(paystackKey)),
		reconcile.NewDispatcher(oracle.NewClient(backend.URL), logger),
		logger,
	)

	srv := httptest.NewServer(server.MakeHTTPHandler(
		server.MakeEndpoints(svc, server.Config{AppName: "Oracle Dashboard", Version: "test"}),
		logger,
	))
	t.Cleanup(srv.Close)

	return srv, engine
}

func post(t *testing.T, url, header, signature, body string) (int, map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(header, signature)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp.StatusCode, out
}

const cryptoFinished = `{"payment_id":5077125051,"payment_status":"finished","order_id":"sub_plan123_monthly_user789_abcde","actually_paid":49.99,"pay_currency":"usdttrc20"}`

const cardSuccess = `{"event":"charge.success","data":{"reference":"ref_123","amount":5000,"currency":"NGN","metadata":{"user_id":"user789","plan_id":"plan123","billing_frequency":"yearly"}}}`

func TestReceiveWebhook_InvalidSignature(t *testing.T) {
	srv, engine := newTestServer(t, nil)

	code, body := post(t, srv.URL+"/nowpayments", webhook.NOWPaymentsSignatureHeader, webhook.Sign([]byte(cryptoFinished), "wrong"), cryptoFinished)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, float64(http.StatusUnauthorized), body["code"])

	code, _ = post(t, srv.URL+"/paystack", "", "", cardSuccess)
	assert.Equal(t, http.StatusUnauthorized, code)

	assert.Empty(t, engine.Calls(), "no backend call may happen before the signature is verified")
}

func TestReceiveWebhook_CryptoActivation(t *testing.T) {
	srv, engine := newTestServer(t, nil)

	code, body := post(t, srv.URL+"/nowpayments", webhook.NOWPaymentsSignatureHeader, webhook.Sign([]byte(cryptoFinished), ipnSecret), cryptoFinished)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"received": true}, body)
	assert.Equal(t, []string{"POST /subscriptions/activate"}, engine.Calls())
}

func TestReceiveWebhook_AcknowledgesBackendFailure(t *testing.T) {
	srv, engine := newTestServer(t, map[string]int{
		"/subscriptions/activate": http.StatusInternalServerError,
	})

	code, body := post(t, srv.URL+"/nowpayments", webhook.NOWPaymentsSignatureHeader, webhook.Sign([]byte(cryptoFinished), ipnSecret), cryptoFinished)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"received": true}, body)
	assert.Equal(t, []string{"POST /subscriptions/activate"}, engine.Calls(), "crypto activation has no fallback")
}

func TestReceiveWebhook_CardFallback(t *testing.T) {
	srv, engine := newTestServer(t, map[string]int{
		"/subscriptions/activate":         http.StatusServiceUnavailable,
		"/dashboard/user789/subscription": http.StatusInternalServerError,
	})

	code, body := post(t, srv.URL+"/paystack", webhook.PaystackSignatureHeader, webhook.Sign([]byte(cardSuccess), paystackKey), cardSuccess)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]interface{}{"success": true}, body)
	assert.Equal(t, []string{
		"POST /subscriptions/activate",
		"PUT /dashboard/user789/subscription",
	}, engine.Calls())
}

func TestReceiveWebhook_DecodeFailure(t *testing.T) {
	srv, engine := newTestServer(t, nil)

	payload := `{"payment_status":"finished","order_id":"sub_plan123_monthly_user789_abcde"}`
	code, body := post(t, srv.URL+"/nowpayments", webhook.NOWPaymentsSignatureHeader, webhook.Sign([]byte(payload), ipnSecret), payload)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, webhook.ErrDecode.Error(), body["error"])
	assert.Empty(t, engine.Calls())
}

func TestReceiveWebhook_UnknownProvider(t *testing.T) {
	srv, engine := newTestServer(t, nil)

	code, _ := post(t, srv.URL+"/stripe", "Stripe-Signature", "t=1,v1=abc", `{}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Empty(t, engine.Calls())
}

func TestReceiveWebhook_PendingStatus(t *testing.T) {
	srv, engine := newTestServer(t, map[string]int{
		"/payments/42/status": http.StatusBadGateway,
	})

	payload := `{"payment_id":"42","payment_status":"confirming","order_id":"sub_plan123_monthly_user789_abcde"}`
	code, _ := post(t, srv.URL+"/nowpayments", webhook.NOWPaymentsSignatureHeader, webhook.Sign([]byte(payload), ipnSecret), payload)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"PUT /payments/42/status"}, engine.Calls())
}

func TestGetAppInfo(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info server.GetAppInfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, server.GetAppInfoResponse{
		Name:      "Oracle Dashboard",
		Version:   "test",
		Providers: []string{"nowpayments", "paystack"},
	}, info)
}
