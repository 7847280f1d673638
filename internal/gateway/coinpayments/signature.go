package coinpayments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA512 of body keyed with secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the received signature against the expected one in
// constant time. An empty signature never verifies.
func Verify(body []byte, secret, received string) bool {
	if received == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(received))
}
