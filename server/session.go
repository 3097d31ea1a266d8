package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/makoyyylouie/tomato-ai/store"
)

const (
	sessionName        = "tomato-ai-session"
	sessionKeyUsername = "username"
)

// Session is the per-request view of the logged-in user. It is built from
// the cookie at request start; handlers never touch the cookie store
// directly.
type Session struct {
	LoggedIn bool
	Username string
	// CachedHistory is populated lazily by the handlers that need it.
	CachedHistory []store.Scan
}

// session extracts the Session for the current request.
func (s *Server) session(c echo.Context) *Session {
	cookie, err := s.cookies.Get(c.Request(), sessionName)
	if err != nil {
		// A stale or tampered cookie is treated as logged out.
		return &Session{}
	}
	username, _ := cookie.Values[sessionKeyUsername].(string)
	if username == "" {
		return &Session{}
	}
	return &Session{LoggedIn: true, Username: username}
}

// setSessionUser writes the username into the session cookie. An empty
// username logs the user out.
func (s *Server) setSessionUser(c echo.Context, username string) error {
	cookie, _ := s.cookies.Get(c.Request(), sessionName)
	if username == "" {
		cookie.Options.MaxAge = -1
	} else {
		cookie.Values[sessionKeyUsername] = username
	}
	return cookie.Save(c.Request(), c.Response())
}

// requireLogin rejects requests without a valid session.
func (s *Server) requireLogin(next func(echo.Context, *Session) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := s.session(c)
		if !sess.LoggedIn {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		return next(c, sess)
	}
}
