package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oracle-dashboard/webhooks/internal/validator"
	"github.com/oracle-dashboard/webhooks/payment"
	"github.com/shopspring/decimal"
)

// PaystackSignatureHeader carries the signature of Paystack deliveries.
const PaystackSignatureHeader = "x-paystack-signature"

// minorUnitsPerMajor converts Paystack amounts (kobo, cents) to major units.
var minorUnitsPerMajor = decimal.NewFromInt(100)

// Paystack handles card payment events.
type Paystack struct {
	secretKey string
}

// NewPaystack returns the Paystack provider verifying with the given secret key.
func NewPaystack(secretKey string) *Paystack {
	return &Paystack{secretKey: strings.TrimSpace(secretKey)}
}

type (
	paystackPayload struct {
		Event string `json:"event"`
		Data  struct {
			Reference string          `json:"reference"`
			Amount    json.RawMessage `json:"amount"`
			Currency  string          `json:"currency"`
			Metadata  json.RawMessage `json:"metadata"`
		} `json:"data"`
	}

	paystackRequired struct {
		Event     string `json:"event" validate:"required"`
		Reference string `json:"reference" validate:"required"`
	}
)

func (p *Paystack) Name() payment.Provider { return payment.ProviderPaystack }

func (p *Paystack) SignatureHeader() string { return PaystackSignatureHeader }

func (p *Paystack) Ack() interface{} { return SuccessAck{Success: true} }

// Verify checks the HMAC-SHA-512 of the raw body.
func (p *Paystack) Verify(body []byte, header http.Header) error {
	return verifyHeader(body, header, PaystackSignatureHeader, p.secretKey)
}

// Decode parses a Paystack event. The subscription is correlated through
// data.metadata, the reference doubles as the order id. Metadata that isn't
// an object leaves the order incomplete instead of failing the decode.
func (p *Paystack) Decode(body []byte) (payment.Event, error) {
	var payload paystackPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return payment.Event{}, NewDecodeError(p.Name(), "malformed json", err)
	}

	required := paystackRequired{
		Event:     strings.TrimSpace(payload.Event),
		Reference: strings.TrimSpace(payload.Data.Reference),
	}
	if v := validator.ValidateStruct(&required); len(v) > 0 {
		return payment.Event{}, NewDecodeError(p.Name(), "missing required fields", validator.NewValidationError(v))
	}

	metadata := parseMetadata(payload.Data.Metadata)
	order := payment.Order{
		PlanID:           stringify(metadata["plan_id"]),
		BillingFrequency: stringify(metadata["billing_frequency"]),
		UserID:           stringify(metadata["user_id"]),
	}
	var orderErr error
	if !order.Complete() {
		orderErr = payment.ErrMalformedOrderID
	}

	return payment.Event{
		Provider:          p.Name(),
		ExternalPaymentID: required.Reference,
		OrderID:           required.Reference,
		Order:             order,
		OrderErr:          orderErr,
		Status:            payment.NormalizeStatus(required.Event),
		AmountPaid:        parseAmount(payload.Data.Amount).Div(minorUnitsPerMajor),
		Currency:          strings.ToUpper(strings.TrimSpace(payload.Data.Currency)),
		RawPayload:        body,
	}, nil
}
