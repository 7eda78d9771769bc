package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/pastalink/pastalink/internal/model"
	"github.com/pastalink/pastalink/internal/service/paste"
)

type UserService interface {
	Register(params *model.CreateUserParams) (*model.User, error)
	VerifyEmail(token string) error
	Login(username string, password string) (*model.User, error)
	RequestPasswordReset(email string) error
	ResetPassword(token string, password string) error
	Fetch(id model.UserID) (*model.User, error)
	FetchByUsername(username string) (*model.User, error)
	UpdateProfile(id model.UserID, bio string, profilePicture *string) (*model.User, error)
	ChangePassword(id model.UserID, current string, updated string) error
	ToggleFollow(actorID model.UserID, targetUsername string) (bool, error)
	FollowCounts(id model.UserID) (int, int, error)
	Notifications(id model.UserID) ([]model.Notification, error)
	UnreadNotificationCount(id model.UserID) (int, error)
	MarkNotificationsRead(id model.UserID) error
	Leaderboard() ([]model.User, error)
}

type PasteService interface {
	Create(owner *model.User, params *model.CreatePasteParams) (*model.Paste, error)
	Find(id string) (*model.Paste, error)
	Get(sess *model.Session, id string) (*model.Paste, *model.User, string, error)
	VerifyPassword(p *model.Paste, submitted string) error
	EditData(sess *model.Session, id string) (*model.Paste, string, error)
	Update(sess *model.Session, id string, params *model.UpdatePasteParams) (*model.Paste, error)
	Delete(sess *model.Session, id string) error
	ToggleLike(userID model.UserID, id string) (bool, int, error)
	Report(reporterID model.UserID, id string, reason string) error
	Latest() ([]paste.Summary, error)
	UserPastes(owner *model.User, sess *model.Session) ([]paste.WithContent, error)
	TotalViews(userID model.UserID) (int, error)
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"error": message})
}

func errorKeyJSON(c echo.Context, status int, key string) error {
	return c.JSON(status, echo.Map{"errorKey": key})
}

// HTTPErrorHandler catches anything the handlers did not map themselves.
// Storage failures land here and must never be silently absorbed.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if httpError, ok := err.(*echo.HTTPError); ok {
		c.JSON(httpError.Code, echo.Map{"error": httpError.Message})
		return
	}
	log.Errorf("request failed: %+v", err)
	errorJSON(c, http.StatusInternalServerError, "internal server error")
}
