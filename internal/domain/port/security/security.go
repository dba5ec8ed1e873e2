package security

import (
	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// PasswordHasher hashes and verifies account secrets
type PasswordHasher interface {
	// Hash returns a salted hash of password
	Hash(password string) (string, error)
	// Compare returns nil if password matches hash and ErrAuth otherwise
	Compare(hash, password string) error
	// NeedsUpgrade reports whether a stored hash should be replaced after a successful login
	NeedsUpgrade(hash string) bool
}

// SessionIssuer signs and verifies session tokens
type SessionIssuer interface {
	// Issue creates a signed session for user
	Issue(user *entity.User) (*entity.Session, error)
	// Verify checks a token and returns the session it carries
	//
	// Possible errors:
	// - ErrAuth: If the token is malformed, expired or badly signed
	Verify(token string) (*entity.Session, error)
}
