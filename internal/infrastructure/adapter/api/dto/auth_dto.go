package dto

import (
	"time"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is returned after a successful login
type SessionResponse struct {
	Token      string    `json:"token"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	AdminLevel int       `json:"adminLevel,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// NewSessionResponse maps a session to its API form
func NewSessionResponse(s *entity.Session) SessionResponse {
	return SessionResponse{
		Token:      s.Token,
		Username:   s.Username,
		Role:       string(s.Role.Kind()),
		AdminLevel: s.Role.Level(),
		ExpiresAt:  s.ExpiresAt,
	}
}
