package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightfold/portal/internal/signature"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifier_VerifyWebhook(t *testing.T) {
	const secret = "whsec_test"

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"id":"pay_001"}}}`)

	type testCase struct {
		name    string
		body    []byte
		sig     string
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Valid",
			body: body,
			sig:  sign(secret, body),
		},
		{
			name:    "TamperedBody",
			body:    []byte(`{"event":"payment.captured","payload":{"payment":{"id":"pay_002"}}}`),
			sig:     sign(secret, body),
			wantErr: true,
		},
		{
			name:    "WrongSecret",
			body:    body,
			sig:     sign("whsec_other", body),
			wantErr: true,
		},
		{
			name:    "EmptySignature",
			body:    body,
			sig:     "",
			wantErr: true,
		},
		{
			name: "ReserializedBody",
			// Same JSON, different whitespace. The digest is over raw bytes.
			body:    []byte(`{"event": "payment.captured", "payload": {"payment": {"id": "pay_001"}}}`),
			sig:     sign(secret, body),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := signature.NewVerifier(secret)

			err := v.VerifyWebhook(tt.body, tt.sig)
			if tt.wantErr {
				assert.ErrorIs(t, err, signature.ErrInvalidSignature)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestVerifier_VerifyCheckout(t *testing.T) {
	const secret = "key_secret_test"

	v := signature.NewVerifier(secret)

	good := sign(secret, []byte("order_123|pay_456"))

	assert.NoError(t, v.VerifyCheckout("order_123", "pay_456", good))

	// Swapping the ids breaks the orderID|paymentID ordering.
	assert.ErrorIs(t, v.VerifyCheckout("pay_456", "order_123", good), signature.ErrInvalidSignature)
	assert.ErrorIs(t, v.VerifyCheckout("order_123", "pay_457", good), signature.ErrInvalidSignature)
	assert.ErrorIs(t, v.VerifyCheckout("order_123", "pay_456", ""), signature.ErrInvalidSignature)
}
