package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/config"
	"fintrack/logger"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

const (
	contextSession = "session"

	// LoginRequiredMessage shown when an anonymous visitor hits a gated page
	LoginRequiredMessage = "Please log in to access this page"
)

// SessionGetter looks up a live session by its cookie token
type SessionGetter interface {
	Get(ctx context.Context, id string) (*models.Session, error)
}

// SessionCookie session cookie attributes
type SessionCookie struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// NewSessionCookie builds cookie attributes from config. Secure is only set
// in release mode so plain-http development still works.
func NewSessionCookie(cfg *config.Config) SessionCookie {
	return SessionCookie{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.MaxAge,
		Secure: cfg.IsRelease(),
	}
}

// Set writes the session token cookie.
func (sc SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, token, int(sc.MaxAge.Seconds()), "/", "", sc.Secure, true)
}

// Clear expires the session cookie in the browser.
func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// Token session token from the request cookie, or "".
func (sc SessionCookie) Token(c *gin.Context) string {
	token, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return token
}

// LoadSession resolves the session cookie on every request. A live session
// is stored in the context; a stale cookie is cleared. Lookup failures leave
// the request anonymous.
func LoadSession(store SessionGetter, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Token(c)
		if token == "" {
			c.Next()
			return
		}

		sess, err := store.Get(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(contextSession, sess)
			c.Set(ContextUserID, sess.UserID)
		case errors.Is(err, service.ErrSessionNotFound):
			cookie.Clear(c)
		default:
			logger.FromContext(c).Error("session lookup failed", "error", err)
		}
		c.Next()
	}
}

// RequireSession gates a route group: anonymous requests get the login page
// with 401 and never reach the handler.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsLoggedIn(c) {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"error": LoginRequiredMessage,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession session loaded for this request, or nil.
func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(contextSession); ok {
		if sess, ok := v.(*models.Session); ok {
			return sess
		}
	}
	return nil
}

// IsLoggedIn reports whether the request carries a live session.
func IsLoggedIn(c *gin.Context) bool {
	return CurrentSession(c) != nil
}
