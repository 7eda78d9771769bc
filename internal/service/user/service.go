package user

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pastalink/pastalink/internal/boot"
	"github.com/pastalink/pastalink/internal/mail"
	"github.com/pastalink/pastalink/internal/model"
	"github.com/pastalink/pastalink/internal/store"
)

const (
	accountPasswordCost = 12
	tokenLifetime       = time.Hour
	maxBioLength        = 150
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

type service struct {
	config *boot.Config
	store  *store.Store
	mailer mail.Sender
}

func New(config *boot.Config, store *store.Store, mailer mail.Sender) *service {
	return &service{config, store, mailer}
}

// Register creates a pending account and mails the verification link. The
// account is only persisted once the mail has been handed off, mirroring the
// fact that an unverifiable account cannot ever log in.
func (s *service) Register(params *model.CreateUserParams) (*model.User, error) {
	if params.Username == "" || params.Email == "" || params.Password == "" ||
		!usernamePattern.MatchString(params.Username) {
		return nil, model.ErrorValidation
	}

	if _, err := s.store.FindUserByUsername(params.Username); err == nil {
		return nil, model.ErrorUsernameTaken
	} else if !errors.Is(err, model.ErrorNotFound) {
		return nil, err
	}
	if _, err := s.store.FindUserByEmail(params.Email); err == nil {
		return nil, model.ErrorEmailTaken
	} else if !errors.Is(err, model.ErrorNotFound) {
		return nil, err
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(params.Password), accountPasswordCost)
	if err != nil {
		return nil, fmt.Errorf("generating encoded password: %w", err)
	}

	verificationToken := model.CreateToken()
	expires := time.Now().UTC().Add(tokenLifetime)
	user := &model.User{
		ID:                       model.UserID(model.CreateID()),
		CreatedAt:                time.Now().UTC(),
		Username:                 params.Username,
		Email:                    params.Email,
		Password:                 string(passwordBytes),
		EmailVerificationToken:   &verificationToken,
		EmailVerificationExpires: &expires,
	}

	url := fmt.Sprintf("%s/verify-email?token=%s", s.config.BaseURL, verificationToken)
	if err := s.mailer.SendVerification(user, url); err != nil {
		return nil, model.ErrorMailDelivery
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *service) VerifyEmail(token string) error {
	if token == "" {
		return model.ErrorInvalidToken
	}
	user, err := s.store.FindUserByVerificationToken(token)
	if err != nil {
		if errors.Is(err, model.ErrorNotFound) {
			return model.ErrorInvalidToken
		}
		return err
	}
	if user.EmailVerificationExpires == nil || time.Now().After(*user.EmailVerificationExpires) {
		return model.ErrorInvalidToken
	}

	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpires = nil
	if err := s.store.UpdateUser(user); err != nil {
		return fmt.Errorf("verifying email: %w", err)
	}
	return nil
}

func (s *service) Login(username string, password string) (*model.User, error) {
	user, err := s.store.FindUserByUsername(username)
	if err != nil {
		if errors.Is(err, model.ErrorNotFound) {
			return nil, model.ErrorInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, model.ErrorInvalidCredentials
	}
	if !user.IsEmailVerified {
		return nil, model.ErrorNotVerified
	}
	return user, nil
}

// RequestPasswordReset always succeeds for unknown addresses so the endpoint
// cannot be used to enumerate accounts.
func (s *service) RequestPasswordReset(email string) error {
	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, model.ErrorNotFound) {
			return nil
		}
		return err
	}

	resetToken := model.CreateToken()
	expires := time.Now().UTC().Add(tokenLifetime)
	user.PasswordResetToken = &resetToken
	user.PasswordResetExpires = &expires

	url := fmt.Sprintf("%s/reset-password?token=%s", s.config.BaseURL, resetToken)
	if err := s.mailer.SendPasswordReset(user, url); err != nil {
		return model.ErrorMailDelivery
	}
	if err := s.store.UpdateUser(user); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}
	return nil
}

func (s *service) ResetPassword(token string, password string) error {
	if token == "" || password == "" {
		return model.ErrorValidation
	}
	user, err := s.store.FindUserByResetToken(token)
	if err != nil {
		if errors.Is(err, model.ErrorNotFound) {
			return model.ErrorInvalidToken
		}
		return err
	}
	if user.PasswordResetExpires == nil || time.Now().After(*user.PasswordResetExpires) {
		return model.ErrorInvalidToken
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(password), accountPasswordCost)
	if err != nil {
		return fmt.Errorf("generating encoded password: %w", err)
	}
	user.Password = string(passwordBytes)
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	if err := s.store.UpdateUser(user); err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}
	return nil
}

func (s *service) Fetch(id model.UserID) (*model.User, error) {
	return s.store.FindUserByID(id)
}

func (s *service) FetchByUsername(username string) (*model.User, error) {
	return s.store.FindUserByUsername(username)
}

func (s *service) UpdateProfile(id model.UserID, bio string, profilePicture *string) (*model.User, error) {
	user, err := s.store.FindUserByID(id)
	if err != nil {
		return nil, err
	}
	if bio != "" {
		if runes := []rune(bio); len(runes) > maxBioLength {
			bio = string(runes[:maxBioLength])
		}
		user.Bio = bio
	}
	if profilePicture != nil {
		user.ProfilePicture = profilePicture
	}
	if err := s.store.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

func (s *service) ChangePassword(id model.UserID, current string, updated string) error {
	user, err := s.store.FindUserByID(id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return model.ErrorInvalidCredentials
	}
	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(updated), accountPasswordCost)
	if err != nil {
		return fmt.Errorf("generating encoded password: %w", err)
	}
	user.Password = string(passwordBytes)
	if err := s.store.UpdateUser(user); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}
	return nil
}

// ToggleFollow flips the follow edge from actor to the named target and
// reports whether the actor is following afterwards.
func (s *service) ToggleFollow(actorID model.UserID, targetUsername string) (bool, error) {
	actor, err := s.store.FindUserByID(actorID)
	if err != nil {
		return false, err
	}
	target, err := s.store.FindUserByUsername(targetUsername)
	if err != nil {
		return false, err
	}
	if actor.ID == target.ID {
		return false, model.ErrorSelfAction
	}
	return s.store.ToggleFollow(actor, target)
}

func (s *service) FollowCounts(id model.UserID) (int, int, error) {
	followers, err := s.store.FollowerIDs(id)
	if err != nil {
		return 0, 0, err
	}
	following, err := s.store.FollowingIDs(id)
	if err != nil {
		return 0, 0, err
	}
	return len(followers), len(following), nil
}

func (s *service) IsFollowing(actor model.UserID, target model.UserID) (bool, error) {
	return s.store.IsFollowing(actor, target)
}

func (s *service) Notifications(id model.UserID) ([]model.Notification, error) {
	return s.store.Notifications(id)
}

func (s *service) UnreadNotificationCount(id model.UserID) (int, error) {
	return s.store.UnreadNotificationCount(id)
}

func (s *service) MarkNotificationsRead(id model.UserID) error {
	return s.store.MarkNotificationsRead(id)
}

func (s *service) Leaderboard() ([]model.User, error) {
	return s.store.Leaderboard(100)
}

// ResetWeeklyScores runs the weekly batch pass: verify the top three
// eligible users, zero every score.
func (s *service) ResetWeeklyScores() ([]model.UserID, error) {
	return s.store.ResetWeeklyScores()
}

// EnsureAdmin creates the configured administrator account on first boot.
func (s *service) EnsureAdmin() error {
	if s.config.AdminUsername == "" {
		return nil
	}
	_, err := s.store.FindUserByUsername(s.config.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrorNotFound) {
		return err
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(s.config.AdminPassword), accountPasswordCost)
	if err != nil {
		return fmt.Errorf("generating encoded password: %w", err)
	}
	admin := &model.User{
		ID:              model.UserID(model.CreateID()),
		CreatedAt:       time.Now().UTC(),
		Username:        s.config.AdminUsername,
		Email:           s.config.AdminEmail,
		Password:        string(passwordBytes),
		Bio:             "Site administrator.",
		IsAdmin:         true,
		IsTrusted:       true,
		IsVerified:      true,
		IsEmailVerified: true,
	}
	if err := s.store.CreateUser(admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	return nil
}

// SyncTrusted applies a roster of trusted-group usernames to the user store.
func (s *service) SyncTrusted(usernames []string) error {
	cleaned := make([]string, 0, len(usernames))
	for _, username := range usernames {
		username = strings.TrimSpace(username)
		if username != "" {
			cleaned = append(cleaned, username)
		}
	}
	return s.store.SyncTrusted(cleaned)
}
