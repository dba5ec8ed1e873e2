package middleware

import (
	"net/http"
	"strings"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key of the verified session
const SessionKey = "session"

// RequireSession rejects requests without a valid bearer token.
// Role checks are left to the use cases, which re-read the current role.
func RequireSession(accounts usecase.AccountUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		session, err := accounts.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Error(err) //nolint:errcheck
			abortUnauthorized(c)
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// CurrentSession returns the session set by RequireSession, or nil
func CurrentSession(c *gin.Context) *entity.Session {
	value, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*entity.Session)
	return session
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="marketplace"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Code:    errs.ErrorCode(errs.ErrAuth),
		Message: "Authentication required",
	})
}
