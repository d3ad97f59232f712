package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	const secret = "rzp_test_secret"
	valid := sign("order_123", "pay_456", secret)

	require.True(t, VerifySignature("order_123", "pay_456", valid, secret))
	require.False(t, VerifySignature("order_123", "pay_456", valid, "other_secret"))
	require.False(t, VerifySignature("order_999", "pay_456", valid, secret))
	require.False(t, VerifySignature("order_123", "pay_999", valid, secret))
	require.False(t, VerifySignature("order_123", "pay_456", valid[:len(valid)-2]+"ff", secret))
	require.False(t, VerifySignature("order_123", "pay_456", "", secret))
}
