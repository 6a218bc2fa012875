package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// AuthTokenSize is the byte length of a movement auth token.
const AuthTokenSize = sha256.Size

// ComputeAuthToken returns the HMAC-SHA256 of message under secret.
// Clients sign each movement packet's canonical message with the session
// secret; the server recomputes and compares.
func ComputeAuthToken(secret, message []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(message)
	return mac.Sum(nil)
}

// VerifyAuthToken reports whether token is the valid MAC for message under
// secret. The comparison is constant-time.
func VerifyAuthToken(secret, message, token []byte) bool {
	return hmac.Equal(token, ComputeAuthToken(secret, message))
}
