package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

const (
	contextSessionKey   = "session"
	contextSessionIDKey = "session_id"
	contextUserIDKey    = "user_id"
)

// CookieSettings carries what the handlers need to issue auth cookies.
type CookieSettings struct {
	Domain string
	MaxAge int
	Secure bool
}

// SessionMiddleware resolves the session cookie into a live session and
// attaches it to the request context. Unauthenticated requests get a 401
// with cleared cookies so stale browsers recover on their own.
func SessionMiddleware(store *session.Store, cookies CookieSettings, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(session.SessionCookie)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authentication required",
			})
			return
		}

		sess, err := store.Current(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrNotAuthenticated) {
				session.ClearCookies(c, cookies.Domain, cookies.Secure)
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "Session expired, please sign in again",
				})
				return
			}
			logger.LogError(err, "session lookup failed", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Internal server error",
			})
			return
		}

		c.Set(contextSessionKey, sess)
		c.Set(contextSessionIDKey, sess.ID)
		c.Set(contextUserIDKey, sess.User.ID)
		c.Next()
	}
}

// AdminMiddleware rejects non-admin sessions. The advisory role cookie
// is checked first so browsers that plainly are not admins fail fast,
// but it only ever denies; granting always requires the stored session.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := session.RoleFromCookie(c); role != "" && role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Admin access required",
			})
			return
		}

		sess := CurrentSession(c)
		if sess == nil || sess.User.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Admin access required",
			})
			return
		}
		c.Next()
	}
}
