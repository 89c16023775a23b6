package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestLength is the length of a hex-encoded SHA-256 digest
const DigestLength = sha256.Size * 2

// HashValue returns the lowercase hex SHA-256 digest of value.
// Every Wompi signature (integrity and event checksum) is built on this.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
