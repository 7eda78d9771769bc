package handlers

import (
	"encoding/gob"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/pastalink/pastalink/internal/model"
	"github.com/pastalink/pastalink/pkg/token"
)

const (
	sessionName       = "pastalink_session"
	sessionKeyUserID  = "userID"
	sessionKeyUnlocks = "authorizedPastes"
	sessionMaxAge     = 60 * 60 * 24 * 7

	bearerContextKey = "bearerSubject"
)

func init() {
	gob.Register([]string{})
}

// CurrentSession builds the explicit session state the core operations take:
// the authenticated identity (cookie session first, bearer token as a
// fallback) and the paste unlock grants, which only ever live in the cookie
// session.
func CurrentSession(c echo.Context) *model.Session {
	state := &model.Session{Unlocks: map[string]bool{}}

	sess, err := session.Get(sessionName, c)
	if err == nil {
		if id, ok := sess.Values[sessionKeyUserID].(string); ok {
			state.UserID = model.UserID(id)
		}
		if unlocks, ok := sess.Values[sessionKeyUnlocks].([]string); ok {
			for _, pasteID := range unlocks {
				state.Unlocks[pasteID] = true
			}
		}
	}

	if !state.IsAuthenticated() {
		if subject, ok := c.Get(bearerContextKey).(string); ok {
			state.UserID = model.UserID(subject)
		}
	}
	return state
}

func signIn(c echo.Context, id model.UserID) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.Path = "/"
	sess.Options.MaxAge = sessionMaxAge
	sess.Options.HttpOnly = true
	sess.Values[sessionKeyUserID] = string(id)
	return sess.Save(c.Request(), c.Response())
}

func signOut(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	return sess.Save(c.Request(), c.Response())
}

// grantUnlock records that this session has unlocked a password-protected
// paste. The grant lives for the session's lifetime, not the paste's.
func grantUnlock(c echo.Context, pasteID string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	unlocks, _ := sess.Values[sessionKeyUnlocks].([]string)
	for _, id := range unlocks {
		if id == pasteID {
			return nil
		}
	}
	sess.Values[sessionKeyUnlocks] = append(unlocks, pasteID)
	return sess.Save(c.Request(), c.Response())
}

// BearerIdentity lets API clients authenticate with a token from /api/token
// instead of the session cookie.
func BearerIdentity(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				if subject, err := token.Parse(secret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
					c.Set(bearerContextKey, subject)
				}
			}
			return next(c)
		}
	}
}

func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !CurrentSession(c).IsAuthenticated() {
			return errorJSON(c, http.StatusUnauthorized, "login required")
		}
		return next(c)
	}
}
