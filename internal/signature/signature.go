package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrInvalidSignature is returned whenever a supplied signature does not
// match the expected HMAC digest. Callers must treat it as an
// authentication failure and leave all state untouched.
var ErrInvalidSignature = errors.New("invalid signature")

// Verifier checks HMAC-SHA256 signatures issued by the payment gateway.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// VerifyWebhook checks the signature over the raw request body exactly as
// received. The body must not be re-serialized before verification:
// whitespace or key-order changes invalidate the digest.
func (v *Verifier) VerifyWebhook(body []byte, signature string) error {
	return v.verify(body, signature)
}

// VerifyCheckout checks the client-side confirmation signature. The gateway
// signs the concatenation orderID + "|" + paymentID; the order is part of
// its contract.
func (v *Verifier) VerifyCheckout(orderID, paymentID, signature string) error {
	return v.verify([]byte(orderID+"|"+paymentID), signature)
}

func (v *Verifier) verify(payload []byte, signature string) error {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)

	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	return nil
}
