// internal/domain/payment/signature.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature returns the hex HMAC-SHA256 of
// "<gatewayOrderID>|<paymentID>" under the shared gateway secret.
// This is the signature scheme Razorpay uses for checkout callbacks.
func ComputeSignature(gatewayOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a supplied signature against the expected
// one. The comparison is constant-time and byte-exact; prefixes or
// case variants never match.
func VerifySignature(gatewayOrderID, paymentID, supplied, secret string) bool {
	expected := ComputeSignature(gatewayOrderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(supplied))
}
