package http

import (
	"net/http"
	"time"
)

const (
	// DefaultSessionCookieName is used when the deployment does not
	// override the cookie name.
	DefaultSessionCookieName = "session_token"

	stateCookieName = "oauth_state"
	nonceCookieName = "oauth_nonce"

	// handshakeCookieTTL bounds how long an OAuth state/nonce pair stays
	// redeemable.
	handshakeCookieTTL = 10 * time.Minute
)

// CookieConfig describes how the session cookie is written. Secure should be
// true everywhere except local development over plain HTTP.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultSessionCookieName
	}
	return c.Name
}

// write sets the session cookie alongside the JSON token response. The
// cookie is a convenience for browser clients; the bearer header remains the
// canonical transport and wins when both are present.
func (c CookieConfig) write(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clear expires the session cookie immediately.
func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeHandshakeCookie(w http.ResponseWriter, name, value string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(handshakeCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearHandshakeCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
