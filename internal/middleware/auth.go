package middleware

import (
	"net/http"
	"strings"

	"clicker-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthCookie carries the JWT so the websocket upgrade request
// authenticates without a custom handshake payload.
const AuthCookie = "auth_token"

// Authenticator resolves an inbound request to a stable user id. The
// websocket layer depends on this interface only, never on the concrete
// credential mechanism.
type Authenticator interface {
	Resolve(r *http.Request) (uint, bool)
}

// SessionResolver authenticates from the auth cookie, falling back to a
// Bearer header for non-browser clients.
type SessionResolver struct {
	authService *services.AuthService
}

func NewSessionResolver(authService *services.AuthService) *SessionResolver {
	return &SessionResolver{authService: authService}
}

func (s *SessionResolver) Resolve(r *http.Request) (uint, bool) {
	if cookie, err := r.Cookie(AuthCookie); err == nil && cookie.Value != "" {
		if userID, err := s.authService.ValidateToken(cookie.Value); err == nil {
			return userID, true
		}
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		if userID, err := s.authService.ValidateToken(parts[1]); err == nil {
			return userID, true
		}
	}

	return 0, false
}

func JWTAuth(resolver Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolver.Resolve(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
