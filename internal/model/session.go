package model

import "time"

// Session is a persisted login session.  The client holds the raw
// token in the session_token cookie; the database stores only its
// SHA-256 hash.  Sessions expire a fixed interval after creation and
// are never extended (no sliding expiration).
//
// Fields:
//  ID        - primary key identifier.
//  UserID    - owning user.
//  TokenHash - SHA-256 hex of the raw session token.
//  ExpiresAt - hard expiry (created_at + session TTL).
//  CreatedAt - creation timestamp.
type Session struct {
    ID        uint64    // sessions.id
    UserID    uint64    // sessions.user_id
    TokenHash string    // sessions.token_hash
    ExpiresAt time.Time // sessions.expires_at
    CreatedAt time.Time // sessions.created_at
}
