package validator_test

import (
	"errors"
	"testing"

	"github.com/oracle-dashboard/webhooks/internal/validator"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	require.Empty(t, validator.ValidateStruct(&testPayload{PaymentID: "1", Status: "finished"}))

	v := validator.ValidateStruct(&testPayload{PaymentID: "1"})
	require.Len(t, v, 1)

	err := validator.NewValidationError(v)
	require.True(t, errors.Is(err, validator.ErrValidation))
	require.Contains(t, err.Error(), "validation error")
}
