package store

import (
	"testing"
	"time"

	"github.com/pastalink/pastalink/internal/boot"
	"github.com/pastalink/pastalink/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	config := &boot.Config{DataDirectory: t.TempDir()}
	store, err := New(config)
	if err != nil {
		t.Fatalf("creating test store: %+v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()

	user := &model.User{
		ID:              model.UserID(model.CreateID()),
		CreatedAt:       time.Now().UTC(),
		Username:        username,
		Email:           username + "@example.com",
		Password:        "x",
		IsEmailVerified: true,
	}
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("creating test user: %+v", err)
	}
	return user
}

func newTestPaste(t *testing.T, s *Store, owner *model.User, privacy model.Privacy) *model.Paste {
	t.Helper()

	paste := &model.Paste{
		ID:        model.CreatePasteID(),
		UserID:    owner.ID,
		Title:     model.DefaultPasteTitle,
		Privacy:   privacy,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreatePaste(paste); err != nil {
		t.Fatalf("creating test paste: %+v", err)
	}
	return paste
}
