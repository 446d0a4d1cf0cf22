package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cowork-booking/internal/session"
)

// SessionCookie names the cookie carrying the booking session id.
const SessionCookie = "booking_session"

const sessionKey = "booking_session"

// SessionCookieTTL is how long the cookie outlives the last request.
const SessionCookieTTL = 24 * time.Hour

// Session binds every request to a booking session, creating one when the
// request carries none or an invalid id.  The cookie is re-issued on every
// request so its expiry slides with activity.
func Session(reg *session.Registry, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if ck, err := c.Cookie(SessionCookie); err == nil {
				id = ck.Value
			}
			s := reg.GetOrCreate(id)
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(SessionCookieTTL / time.Second),
				Expires:  time.Now().Add(SessionCookieTTL),
			})
			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// SessionFrom returns the session bound by Session.
func SessionFrom(c echo.Context) (*session.Session, bool) {
	s, ok := c.Get(sessionKey).(*session.Session)
	return s, ok
}

func sessionID(c echo.Context) string {
	if s, ok := SessionFrom(c); ok {
		return s.ID
	}
	return "none"
}
