package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostel-server/sessions"
)

const sessionKey = "session"

// Authenticator resolves a session token into a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*sessions.Session, error)
}

// SessionAuth requires a valid session, read from the session cookie or
// an "Authorization: Bearer" header. Browser WebSocket clients may pass it
// as the "token" query parameter.
func SessionAuth(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			unauthorized(c, "Login required")
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, "Session is invalid or expired")
			return
		}

		c.Set(sessionKey, sess)
		c.Set("worker_id", sess.WorkerID)
		c.Next()
	}
}

// CurrentSession returns the session set by SessionAuth.
func CurrentSession(c *gin.Context) *sessions.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*sessions.Session)
	return sess
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    "Unauthorized",
		"message":  message,
		"redirect": "/login",
	})
}
