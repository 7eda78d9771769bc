package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pastalink/pastalink/internal/model"
	"github.com/pastalink/pastalink/pkg/token"
)

const apiTokenLifetime = time.Hour

func Register(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.CreateUserParams{}
		if err := c.Bind(params); err != nil {
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_input")
		}
		_, err := users.Register(params)
		switch {
		case errors.Is(err, model.ErrorValidation):
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_input")
		case errors.Is(err, model.ErrorUsernameTaken):
			return errorKeyJSON(c, http.StatusConflict, "username_taken")
		case errors.Is(err, model.ErrorEmailTaken):
			return errorKeyJSON(c, http.StatusConflict, "email_taken")
		case errors.Is(err, model.ErrorMailDelivery):
			return errorKeyJSON(c, http.StatusInternalServerError, "email_fail")
		case err != nil:
			return err
		}
		return c.JSON(http.StatusCreated, echo.Map{"success": true})
	}
}

func VerifyEmail(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := users.VerifyEmail(c.QueryParam("token"))
		if errors.Is(err, model.ErrorInvalidToken) {
			return c.Redirect(http.StatusFound, "/login?error=invalid_token")
		}
		if err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/login?success=verified")
	}
}

func Login(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := struct {
			Username string `json:"username" form:"username"`
			Password string `json:"password" form:"password"`
		}{}
		if err := c.Bind(&params); err != nil {
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_input")
		}

		user, err := users.Login(params.Username, params.Password)
		switch {
		case errors.Is(err, model.ErrorInvalidCredentials):
			return errorKeyJSON(c, http.StatusUnauthorized, "invalid")
		case errors.Is(err, model.ErrorNotVerified):
			return errorKeyJSON(c, http.StatusForbidden, "not_verified")
		case err != nil:
			return err
		}

		if err := signIn(c, user.ID); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "redirectUrl": "/"})
	}
}

func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := signOut(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/")
	}
}

func ForgotPassword(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := struct {
			Email string `json:"email" form:"email"`
		}{}
		if err := c.Bind(&params); err != nil {
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_input")
		}
		err := users.RequestPasswordReset(params.Email)
		if errors.Is(err, model.ErrorMailDelivery) {
			return errorKeyJSON(c, http.StatusInternalServerError, "email_fail")
		}
		if err != nil {
			return err
		}
		// Unknown addresses succeed too, so the endpoint cannot be used to
		// probe for accounts.
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func ResetPassword(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := struct {
			Token    string `json:"token" form:"token"`
			Password string `json:"password" form:"password"`
		}{}
		if err := c.Bind(&params); err != nil {
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_input")
		}
		err := users.ResetPassword(params.Token, params.Password)
		switch {
		case errors.Is(err, model.ErrorValidation):
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_input")
		case errors.Is(err, model.ErrorInvalidToken):
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_token")
		case err != nil:
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

// IssueToken hands a session-authenticated caller a bearer token for API
// use.
func IssueToken(secret []byte) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := CurrentSession(c)
		signed, err := token.Issue(secret, string(sess.UserID), apiTokenLifetime)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"token": signed})
	}
}
