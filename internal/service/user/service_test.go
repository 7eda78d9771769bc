package user

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/pastalink/pastalink/internal/boot"
	"github.com/pastalink/pastalink/internal/model"
	"github.com/pastalink/pastalink/internal/store"
)

type captureSender struct {
	verificationURLs []string
	resetURLs        []string
	fail             bool
}

func (s *captureSender) SendVerification(user *model.User, url string) error {
	if s.fail {
		return errors.New("smtp down")
	}
	s.verificationURLs = append(s.verificationURLs, url)
	return nil
}

func (s *captureSender) SendPasswordReset(user *model.User, url string) error {
	if s.fail {
		return errors.New("smtp down")
	}
	s.resetURLs = append(s.resetURLs, url)
	return nil
}

func newTestService(t *testing.T) (*service, *captureSender, *store.Store) {
	t.Helper()

	config := &boot.Config{
		DataDirectory: t.TempDir(),
		BaseURL:       "http://localhost:8080",
	}
	records, err := store.New(config)
	if err != nil {
		t.Fatalf("creating test store: %+v", err)
	}
	t.Cleanup(func() { records.Close() })

	sender := &captureSender{}
	return New(config, records, sender), sender, records
}

func register(t *testing.T, s *service, username string) *model.User {
	t.Helper()

	user, err := s.Register(&model.CreateUserParams{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("registering %s: %+v", username, err)
	}
	if err := s.VerifyEmail(*user.EmailVerificationToken); err != nil {
		t.Fatalf("verifying %s: %+v", username, err)
	}
	return user
}

func TestRegister(t *testing.T) {
	assert := assert.New(t)
	service, sender, _ := newTestService(t)

	t.Run("Creates an unverified account and mails the link", func(t *testing.T) {
		user, err := service.Register(&model.CreateUserParams{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password",
		})
		assert.Nil(err)
		assert.False(user.IsEmailVerified)
		assert.NotEqual("password", user.Password)
		if assert.Len(sender.verificationURLs, 1) {
			assert.Contains(sender.verificationURLs[0], *user.EmailVerificationToken)
		}
	})

	t.Run("Rejects malformed usernames", func(t *testing.T) {
		for _, username := range []string{"ab", "has space", "way_too_long_username_here", "bad!char"} {
			_, err := service.Register(&model.CreateUserParams{
				Username: username,
				Email:    "x@example.com",
				Password: "password",
			})
			assert.ErrorIs(err, model.ErrorValidation, username)
		}
	})

	t.Run("Rejects duplicates case-insensitively", func(t *testing.T) {
		_, err := service.Register(&model.CreateUserParams{
			Username: "ALICE",
			Email:    "fresh@example.com",
			Password: "password",
		})
		assert.ErrorIs(err, model.ErrorUsernameTaken)

		_, err = service.Register(&model.CreateUserParams{
			Username: "alice2",
			Email:    "ALICE@example.com",
			Password: "password",
		})
		assert.ErrorIs(err, model.ErrorEmailTaken)
	})

	t.Run("Mail failure leaves no account behind", func(t *testing.T) {
		sender.fail = true
		defer func() { sender.fail = false }()

		_, err := service.Register(&model.CreateUserParams{
			Username: "ghost",
			Email:    "ghost@example.com",
			Password: "password",
		})
		assert.ErrorIs(err, model.ErrorMailDelivery)

		_, err = service.FetchByUsername("ghost")
		assert.ErrorIs(err, model.ErrorNotFound)
	})
}

func TestVerifyEmail(t *testing.T) {
	assert := assert.New(t)
	service, _, records := newTestService(t)

	user, err := service.Register(&model.CreateUserParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password",
	})
	assert.Nil(err)

	assert.ErrorIs(service.VerifyEmail("bogus"), model.ErrorInvalidToken)

	assert.Nil(service.VerifyEmail(*user.EmailVerificationToken))

	reloaded, err := records.FindUserByID(user.ID)
	assert.Nil(err)
	assert.True(reloaded.IsEmailVerified)
	assert.Nil(reloaded.EmailVerificationToken)

	t.Run("Token is single-use", func(t *testing.T) {
		assert.ErrorIs(service.VerifyEmail(*user.EmailVerificationToken), model.ErrorInvalidToken)
	})
}

func TestLogin(t *testing.T) {
	assert := assert.New(t)
	service, _, _ := newTestService(t)
	register(t, service, "alice")

	t.Run("Succeeds case-insensitively", func(t *testing.T) {
		user, err := service.Login("ALICE", "password")
		assert.Nil(err)
		assert.Equal("alice", user.Username)
	})

	t.Run("Rejects bad credentials", func(t *testing.T) {
		_, err := service.Login("alice", "wrong")
		assert.ErrorIs(err, model.ErrorInvalidCredentials)

		_, err = service.Login("nobody", "password")
		assert.ErrorIs(err, model.ErrorInvalidCredentials)
	})

	t.Run("Rejects unverified accounts", func(t *testing.T) {
		_, err := service.Register(&model.CreateUserParams{
			Username: "pending",
			Email:    "pending@example.com",
			Password: "password",
		})
		assert.Nil(err)

		_, err = service.Login("pending", "password")
		assert.ErrorIs(err, model.ErrorNotVerified)
	})
}

func TestPasswordReset(t *testing.T) {
	assert := assert.New(t)
	service, sender, records := newTestService(t)
	user := register(t, service, "alice")

	t.Run("Unknown address still succeeds", func(t *testing.T) {
		assert.Nil(service.RequestPasswordReset("stranger@example.com"))
		assert.Empty(sender.resetURLs)
	})

	t.Run("Round trip", func(t *testing.T) {
		assert.Nil(service.RequestPasswordReset("alice@example.com"))
		assert.Len(sender.resetURLs, 1)

		reloaded, err := records.FindUserByID(user.ID)
		assert.Nil(err)
		assert.NotNil(reloaded.PasswordResetToken)

		assert.ErrorIs(service.ResetPassword("bogus", "updated"), model.ErrorInvalidToken)
		assert.Nil(service.ResetPassword(*reloaded.PasswordResetToken, "updated"))

		_, err = service.Login("alice", "password")
		assert.ErrorIs(err, model.ErrorInvalidCredentials)
		_, err = service.Login("alice", "updated")
		assert.Nil(err)
	})
}

func TestToggleFollow(t *testing.T) {
	assert := assert.New(t)
	service, _, _ := newTestService(t)
	alice := register(t, service, "alice")
	register(t, service, "bob")

	t.Run("Self-follow is rejected", func(t *testing.T) {
		_, err := service.ToggleFollow(alice.ID, "alice")
		assert.ErrorIs(err, model.ErrorSelfAction)
	})

	t.Run("Unknown target is rejected", func(t *testing.T) {
		_, err := service.ToggleFollow(alice.ID, "stranger")
		assert.ErrorIs(err, model.ErrorNotFound)
	})

	t.Run("Toggle pair restores the original state", func(t *testing.T) {
		following, err := service.ToggleFollow(alice.ID, "bob")
		assert.Nil(err)
		assert.True(following)

		followers, followed, err := service.FollowCounts(alice.ID)
		assert.Nil(err)
		assert.Equal(0, followers)
		assert.Equal(1, followed)

		following, err = service.ToggleFollow(alice.ID, "bob")
		assert.Nil(err)
		assert.False(following)

		followers, followed, err = service.FollowCounts(alice.ID)
		assert.Nil(err)
		assert.Equal(0, followers)
		assert.Equal(0, followed)
	})
}

func TestChangePassword(t *testing.T) {
	assert := assert.New(t)
	service, _, _ := newTestService(t)
	alice := register(t, service, "alice")

	assert.ErrorIs(service.ChangePassword(alice.ID, "wrong", "updated"), model.ErrorInvalidCredentials)
	assert.Nil(service.ChangePassword(alice.ID, "password", "updated"))

	_, err := service.Login("alice", "updated")
	assert.Nil(err)
}

func TestUpdateProfile(t *testing.T) {
	assert := assert.New(t)
	service, _, _ := newTestService(t)
	alice := register(t, service, "alice")

	longBio := strings.Repeat("x", 200)
	updated, err := service.UpdateProfile(alice.ID, longBio, nil)
	assert.Nil(err)
	assert.Len(updated.Bio, 150)

	t.Run("Truncates on rune boundaries", func(t *testing.T) {
		updated, err := service.UpdateProfile(alice.ID, strings.Repeat("é", 200), nil)
		assert.Nil(err)
		assert.True(utf8.ValidString(updated.Bio))
		assert.Equal(150, utf8.RuneCountInString(updated.Bio))
	})

	picture := "/uploads/alice.png"
	updated, err = service.UpdateProfile(alice.ID, "", &picture)
	assert.Nil(err)
	assert.Equal(150, utf8.RuneCountInString(updated.Bio))
	if assert.NotNil(updated.ProfilePicture) {
		assert.Equal(picture, *updated.ProfilePicture)
	}
}

func TestEnsureAdmin(t *testing.T) {
	assert := assert.New(t)

	config := &boot.Config{
		DataDirectory: t.TempDir(),
		AdminUsername: "root",
		AdminEmail:    "root@example.com",
		AdminPassword: "password",
	}
	records, err := store.New(config)
	assert.Nil(err)
	defer records.Close()

	service := New(config, records, &captureSender{})
	assert.Nil(service.EnsureAdmin())

	admin, err := service.FetchByUsername("root")
	assert.Nil(err)
	assert.True(admin.IsAdmin)
	assert.True(admin.IsTrusted)
	assert.True(admin.IsEmailVerified)

	t.Run("Second boot is a no-op", func(t *testing.T) {
		assert.Nil(service.EnsureAdmin())
	})
}
