package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oracle-dashboard/webhooks/internal/validator"
	"github.com/oracle-dashboard/webhooks/payment"
)

// NOWPaymentsSignatureHeader carries the IPN signature of NOWPayments deliveries.
const NOWPaymentsSignatureHeader = "x-nowpayments-sig"

// NOWPayments handles crypto payment IPN callbacks.
type NOWPayments struct {
	ipnSecret string
}

// NewNOWPayments returns the NOWPayments provider verifying with the given IPN secret.
func NewNOWPayments(ipnSecret string) *NOWPayments {
	return &NOWPayments{ipnSecret: strings.TrimSpace(ipnSecret)}
}

type (
	nowPaymentsPayload struct {
		PaymentID     interface{}     `json:"payment_id"`
		PaymentStatus string          `json:"payment_status"`
		OrderID       string          `json:"order_id"`
		ActuallyPaid  json.RawMessage `json:"actually_paid"`
		PriceAmount   json.RawMessage `json:"price_amount"`
		PayCurrency   string          `json:"pay_currency"`
	}

	// nowPaymentsRequired are the fields a delivery can't be reconciled without.
	nowPaymentsRequired struct {
		PaymentID     string `json:"payment_id" validate:"required"`
		PaymentStatus string `json:"payment_status" validate:"required"`
		OrderID       string `json:"order_id" validate:"required"`
	}
)

func (p *NOWPayments) Name() payment.Provider { return payment.ProviderNOWPayments }

func (p *NOWPayments) SignatureHeader() string { return NOWPaymentsSignatureHeader }

func (p *NOWPayments) Ack() interface{} { return ReceivedAck{Received: true} }

// Verify checks the HMAC-SHA-512 of the raw body.
func (p *NOWPayments) Verify(body []byte, header http.Header) error {
	return verifyHeader(body, header, NOWPaymentsSignatureHeader, p.ipnSecret)
}

// Decode parses an IPN callback. A malformed order id doesn't fail decoding:
// the recovered segments are kept and the parse error is set on the event.
func (p *NOWPayments) Decode(body []byte) (payment.Event, error) {
	var payload nowPaymentsPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return payment.Event{}, NewDecodeError(p.Name(), "malformed json", err)
	}

	required := nowPaymentsRequired{
		PaymentID:     stringify(payload.PaymentID),
		PaymentStatus: strings.TrimSpace(payload.PaymentStatus),
		OrderID:       strings.TrimSpace(payload.OrderID),
	}
	if v := validator.ValidateStruct(&required); len(v) > 0 {
		return payment.Event{}, NewDecodeError(p.Name(), "missing required fields", validator.NewValidationError(v))
	}

	amount := parseAmount(payload.ActuallyPaid)
	if !amount.IsPositive() {
		amount = parseAmount(payload.PriceAmount)
	}

	order, orderErr := payment.ParseOrderID(required.OrderID)

	return payment.Event{
		Provider:          p.Name(),
		ExternalPaymentID: required.PaymentID,
		OrderID:           required.OrderID,
		Order:             order,
		OrderErr:          orderErr,
		Status:            payment.NormalizeStatus(required.PaymentStatus),
		AmountPaid:        amount,
		Currency:          strings.ToLower(strings.TrimSpace(payload.PayCurrency)),
		RawPayload:        body,
	}, nil
}
