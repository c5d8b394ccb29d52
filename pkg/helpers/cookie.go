package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// Manager writes the session cookie. In production the cookie must travel
// cross-site from the frontend, so it is Secure with SameSite=None; locally
// it is plain HTTP with SameSite=Strict.
type Manager struct {
	Domain     string
	Production bool
}

func NewCookie(domain string, production bool) *Manager {
	return &Manager{Domain: domain, Production: production}
}

func (m *Manager) sameSite() http.SameSite {
	if m.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

// SetSession stores the token until exp.
func (m *Manager) SetSession(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(SessionCookie, token, maxAgeFrom(exp), "/", m.Domain, m.Production, true)
}

// Clear expires the session cookie with the same attributes it was set with.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(SessionCookie, "", -1, "/", m.Domain, m.Production, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
