package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
)

const (
	// SessionCookie carries the opaque session ID.
	SessionCookie = "qm_session"
	// RoleCookie mirrors the user role so route guards can branch
	// without a session lookup. Advisory only; authorization is always
	// re-checked against the stored session.
	RoleCookie = "qm_role"
)

// SetCookies installs the session and role cookies after login/register.
func SetCookies(c *gin.Context, sess *Session, domain string, maxAgeSeconds int, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Domain:   domain,
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RoleCookie,
		Value:    string(sess.User.Role),
		Path:     "/",
		Domain:   domain,
		MaxAge:   maxAgeSeconds,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookies expires both cookies on logout or invalidation.
func ClearCookies(c *gin.Context, domain string, secure bool) {
	for _, name := range []string{SessionCookie, RoleCookie} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   domain,
			MaxAge:   -1,
			HttpOnly: name == SessionCookie,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// RoleFromCookie reads the advisory role cookie.
func RoleFromCookie(c *gin.Context) models.UserRole {
	value, err := c.Cookie(RoleCookie)
	if err != nil {
		return ""
	}
	return models.UserRole(value)
}
