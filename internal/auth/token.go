package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewToken generates an opaque API token. Only the digest of the token is
// persisted; the clear token is returned to the client exactly once.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// DigestToken - hex sha-256 digest of a token, the form stored in auth_tokens.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
