package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SessionToken is an opaque login token handed to the client in the
// session_token cookie.  Raw goes to the client; only the SHA-256 hash
// of Raw is persisted, so a leaked sessions table cannot be replayed.
type SessionToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// NewSessionToken returns a fresh random session token valid for
// ttlHours from now.
func NewSessionToken(ttlHours int) SessionToken {
	return SessionToken{
		Raw: uuid.NewString(),
		Exp: time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour),
	}
}

// HashSessionRaw returns the SHA-256 hash of the raw session token as a
// hex string, the form stored in the sessions table.
func HashSessionRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
