package webhook_test

import (
	"strings"
	"testing"

	"github.com/oracle-dashboard/webhooks/webhook"
	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"payment_id":5077125051,"payment_status":"finished","order_id":"sub_plan123_monthly_user789_abcde"}`)
	secret := "ipn-secret"
	sig := webhook.Sign(body, secret)

	assert.Len(t, sig, 128)
	assert.True(t, webhook.VerifySignature(body, sig, secret))
	assert.True(t, webhook.VerifySignature(body, strings.ToUpper(sig), secret), "hex digest is case insensitive")

	assert.False(t, webhook.VerifySignature(body, sig, "other-secret"))
	assert.False(t, webhook.VerifySignature(body, "", secret))
	assert.False(t, webhook.VerifySignature(body, sig, ""))
	assert.False(t, webhook.VerifySignature(body, "not-hex", secret))
	assert.False(t, webhook.VerifySignature(body, sig[:64], secret))
}

func TestVerifySignature_AnyByteChangeFails(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_123","amount":5000}}`)
	secret := "sk_test"
	sig := webhook.Sign(body, secret)

	for i := range body {
		tampered := append([]byte(nil), body...)
		tampered[i] ^= 0x01
		assert.False(t, webhook.VerifySignature(tampered, sig, secret), "byte %d flipped", i)
	}

	// Re-serializing the same JSON with other whitespace changes the digest.
	reformatted := []byte(`{"event": "charge.success","data":{"reference":"ref_123","amount":5000}}`)
	assert.False(t, webhook.VerifySignature(reformatted, sig, secret))
}
