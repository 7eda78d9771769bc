package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pastalink/pastalink/internal/model"
)

func FollowUser(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		isFollowing, err := users.ToggleFollow(CurrentSession(c).UserID, c.Param("username"))
		switch {
		case errors.Is(err, model.ErrorNotFound):
			return errorJSON(c, http.StatusNotFound, "user not found")
		case errors.Is(err, model.ErrorSelfAction):
			return errorJSON(c, http.StatusBadRequest, "cannot follow yourself")
		case err != nil:
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"isFollowing": isFollowing})
	}
}

// followerCount renders the admin follower count as the original UI expects.
func followerCount(user *model.User, followers int) interface{} {
	if user.IsAdmin {
		return "∞"
	}
	return followers
}

func Me(users UserService) echo.HandlerFunc {
	type meResponse struct {
		*model.User
		UnreadNotifications int         `json:"unreadNotifications"`
		FollowerCount       interface{} `json:"followerCount"`
		FollowingCount      int         `json:"followingCount"`
	}
	return func(c echo.Context) error {
		sess := CurrentSession(c)
		if !sess.IsAuthenticated() {
			return c.JSON(http.StatusOK, nil)
		}
		user, err := users.Fetch(sess.UserID)
		if err != nil {
			if errors.Is(err, model.ErrorNotFound) {
				signOut(c)
				return c.JSON(http.StatusOK, nil)
			}
			return err
		}

		unread, err := users.UnreadNotificationCount(user.ID)
		if err != nil {
			return err
		}
		followers, following, err := users.FollowCounts(user.ID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, meResponse{
			User:                user,
			UnreadNotifications: unread,
			FollowerCount:       followerCount(user, followers),
			FollowingCount:      following,
		})
	}
}

func UserProfile(users UserService, pastes PasteService) echo.HandlerFunc {
	type profileResponse struct {
		*model.User
		TotalViews     int         `json:"totalViews"`
		FollowerCount  interface{} `json:"followerCount"`
		FollowingCount int         `json:"followingCount"`
	}
	return func(c echo.Context) error {
		user, err := users.FetchByUsername(c.Param("username"))
		if errors.Is(err, model.ErrorNotFound) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		if err != nil {
			return err
		}

		userPastes, err := pastes.UserPastes(user, CurrentSession(c))
		if err != nil {
			return err
		}
		totalViews, err := pastes.TotalViews(user.ID)
		if err != nil {
			return err
		}
		followers, following, err := users.FollowCounts(user.ID)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, echo.Map{
			"user": profileResponse{
				User:           user,
				TotalViews:     totalViews,
				FollowerCount:  followerCount(user, followers),
				FollowingCount: following,
			},
			"pastes": userPastes,
		})
	}
}

func Leaderboard(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		leaders, err := users.Leaderboard()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, leaders)
	}
}

func Notifications(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		notifications, err := users.Notifications(CurrentSession(c).UserID)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, notifications)
	}
}

func MarkNotificationsRead(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := users.MarkNotificationsRead(CurrentSession(c).UserID); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func UpdateProfile(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := struct {
			Bio            string  `json:"bio" form:"bio"`
			ProfilePicture *string `json:"profilePicture" form:"profilePicture"`
		}{}
		if err := c.Bind(&params); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid request")
		}
		_, err := users.UpdateProfile(CurrentSession(c).UserID, params.Bio, params.ProfilePicture)
		if errors.Is(err, model.ErrorNotFound) {
			return errorJSON(c, http.StatusNotFound, "user not found")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}

func ChangePassword(users UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := struct {
			CurrentPassword string `json:"currentPassword" form:"currentPassword"`
			NewPassword     string `json:"newPassword" form:"newPassword"`
		}{}
		if err := c.Bind(&params); err != nil {
			return errorKeyJSON(c, http.StatusBadRequest, "invalid_input")
		}
		err := users.ChangePassword(CurrentSession(c).UserID, params.CurrentPassword, params.NewPassword)
		if errors.Is(err, model.ErrorInvalidCredentials) {
			return errorKeyJSON(c, http.StatusForbidden, "current_password_invalid")
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
}
