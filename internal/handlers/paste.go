package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pastalink/pastalink/internal/model"
)

func CreatePaste(users UserService, pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		owner, err := users.Fetch(CurrentSession(c).UserID)
		if err != nil {
			return err
		}

		params := &model.CreatePasteParams{}
		if err := c.Bind(params); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid request")
		}

		paste, err := pastes.Create(owner, params)
		if errors.Is(err, model.ErrorValidation) {
			return errorJSON(c, http.StatusBadRequest, "content must not be empty")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "redirectUrl": "/" + paste.ID})
	}
}

func GetPaste(pastes PasteService) echo.HandlerFunc {
	type pasteWithContent struct {
		*model.Paste
		Content string `json:"content"`
	}
	return func(c echo.Context) error {
		paste, author, content, err := pastes.Get(CurrentSession(c), c.Param("id"))
		switch {
		case errors.Is(err, model.ErrorNotFound):
			return errorJSON(c, http.StatusNotFound, "paste not found")
		case errors.Is(err, model.ErrorForbidden):
			return errorJSON(c, http.StatusForbidden, "access denied")
		case errors.Is(err, model.ErrorPasswordRequired):
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error":            "password required",
				"requiresPassword": true,
			})
		case err != nil:
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{
			"paste":  pasteWithContent{paste, content},
			"author": author,
		})
	}
}

func VerifyPastePassword(pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := struct {
			Password string `json:"password" form:"password"`
		}{}
		if err := c.Bind(&params); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid request")
		}

		paste, err := pastes.Find(c.Param("id"))
		if errors.Is(err, model.ErrorNotFound) {
			return errorJSON(c, http.StatusNotFound, "paste not found")
		}
		if err != nil {
			return err
		}

		err = pastes.VerifyPassword(paste, params.Password)
		switch {
		case errors.Is(err, model.ErrorNotFound):
			return errorJSON(c, http.StatusNotFound, "paste not found")
		case errors.Is(err, model.ErrorPasswordRejected):
			return errorJSON(c, http.StatusUnauthorized, "incorrect password")
		case err != nil:
			return err
		}

		if err := grantUnlock(c, paste.ID); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func PasteEditData(pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		paste, content, err := pastes.EditData(CurrentSession(c), c.Param("id"))
		if errors.Is(err, model.ErrorNotFound) || errors.Is(err, model.ErrorForbidden) {
			return errorJSON(c, http.StatusForbidden, "access denied")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{
			"title":   paste.Title,
			"content": content,
			"privacy": paste.Privacy,
		})
	}
}

func UpdatePaste(pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.UpdatePasteParams{}
		if err := c.Bind(params); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid request")
		}

		paste, err := pastes.Update(CurrentSession(c), c.Param("id"), params)
		switch {
		case errors.Is(err, model.ErrorValidation):
			return errorJSON(c, http.StatusBadRequest, "content must not be empty")
		case errors.Is(err, model.ErrorNotFound), errors.Is(err, model.ErrorForbidden):
			return errorJSON(c, http.StatusForbidden, "access denied")
		case err != nil:
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "redirectUrl": "/" + paste.ID})
	}
}

func DeletePaste(pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := pastes.Delete(CurrentSession(c), c.Param("id"))
		if errors.Is(err, model.ErrorNotFound) || errors.Is(err, model.ErrorForbidden) {
			return errorJSON(c, http.StatusForbidden, "access denied")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func LikePaste(pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		hasLiked, likeCount, err := pastes.ToggleLike(CurrentSession(c).UserID, c.Param("id"))
		if errors.Is(err, model.ErrorNotFound) {
			return errorJSON(c, http.StatusNotFound, "paste not found")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"hasLiked": hasLiked, "likeCount": likeCount})
	}
}

func ReportPaste(pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := struct {
			Reason string `json:"reason" form:"reason"`
		}{}
		if err := c.Bind(&params); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid request")
		}
		err := pastes.Report(CurrentSession(c).UserID, c.Param("id"), params.Reason)
		if errors.Is(err, model.ErrorValidation) {
			return errorJSON(c, http.StatusBadRequest, "reason required")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func LatestPastes(pastes PasteService) echo.HandlerFunc {
	return func(c echo.Context) error {
		feed, err := pastes.Latest()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, feed)
	}
}
