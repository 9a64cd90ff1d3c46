package interfaces

import (
	"time"

	"cookalong/pkg/types"
)

// TokenVerifier turns a presented bearer token into a verified identity.
// Verification happens once at connection admission; failure rejects the
// connection before any event is processed.
type TokenVerifier interface {
	Verify(token string) (types.Identity, error)
}

// TokenIssuer mints a signed bearer token for an authenticated user.
type TokenIssuer interface {
	Issue(userID, username string, ttl time.Duration) (string, error)
}
