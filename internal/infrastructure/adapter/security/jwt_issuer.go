package security

import (
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/security"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// sessionClaims is the payload of a session token. Most use cases re-read the
// current role from the store; only store repair trusts the role in the token.
type sessionClaims struct {
	Role       string `json:"role"`
	AdminLevel int    `json:"admin_level,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 session tokens
type JWTIssuer struct {
	secret       []byte
	issuer       string
	ttl          coreport.Duration
	timeProvider coreport.TimeProvider
}

// NewJWTIssuer creates a session issuer
func NewJWTIssuer(secret, issuer string, ttl coreport.Duration, timeProvider coreport.TimeProvider) (security.SessionIssuer, error) {
	if len(secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &JWTIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, timeProvider: timeProvider}, nil
}

func (j *JWTIssuer) Issue(user *entity.User) (*entity.Session, error) {
	now := j.timeProvider.Now()
	expires := now.Add(j.ttl.Std())

	claims := sessionClaims{
		Role:       string(user.Role.Kind()),
		AdminLevel: user.Role.Level(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &entity.Session{
		Token:     token,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: expires,
	}, nil
}

func (j *JWTIssuer) Verify(token string) (*entity.Session, error) {
	var claims sessionClaims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	parsed, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errs.ErrAuth
	}

	// jwt/v4 validates exp against the wall clock; check it against the injected clock too
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(j.timeProvider.Now()) {
		return nil, errs.ErrAuth
	}
	if claims.Subject == "" || (j.issuer != "" && claims.Issuer != j.issuer) {
		return nil, errs.ErrAuth
	}

	role, err := entity.NewRole(claims.Role, claims.AdminLevel)
	if err != nil {
		return nil, errs.ErrAuth
	}

	return &entity.Session{
		Token:     token,
		Username:  claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
