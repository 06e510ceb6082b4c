package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// SignaturePrefix is prepended to the hex HMAC in X-Signature headers.
const SignaturePrefix = "sha256="

var (
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrTimestampExpired  = errors.New("signed timestamp outside tolerance")
)

// Sign computes an HMAC-SHA256 over "<ts>.<payload>". The timestamp is part
// of the signed input so receivers can enforce a replay window; it travels
// alongside the signature in the X-Timestamp header.
func Sign(secret string, payload []byte, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares it in constant time. A
// timestamp older than tolerance (or from the future beyond tolerance) is
// rejected before the comparison.
func Verify(secret string, payload []byte, signature string, ts int64, tolerance time.Duration) error {
	if d := time.Since(time.Unix(ts, 0)); d > tolerance || d < -tolerance {
		return ErrTimestampExpired
	}
	expected := Sign(secret, payload, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// PayloadDigest returns the hex SHA-256 of a payload, recorded in delivery
// logs instead of the payload itself.
func PayloadDigest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// HashKey returns the hex SHA-256 digest under which raw API keys are
// persisted. The raw key itself is never stored.
func HashKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}
