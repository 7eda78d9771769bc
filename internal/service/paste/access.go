package paste

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/pastalink/pastalink/internal/model"
)

type Access int

const (
	AccessAllowed Access = iota
	AccessForbidden
	AccessPasswordRequired
)

// ResolveReadAccess decides whether the caller may read a paste. The privacy
// check runs strictly before the password check: a private paste owned by
// someone else is forbidden outright, never offered a password prompt.
// Ownership short-circuits both checks. On Allow the paste's view counter is
// incremented by exactly one, with no deduplication by viewer.
func (s *service) ResolveReadAccess(sess *model.Session, paste *model.Paste) (Access, error) {
	isOwner := sess.IsAuthenticated() && sess.UserID == paste.UserID

	if paste.Privacy == model.PrivacyPrivate && !isOwner {
		return AccessForbidden, nil
	}
	if paste.HasPassword() && !isOwner && !sess.HasUnlock(paste.ID) {
		return AccessPasswordRequired, nil
	}

	views, err := s.store.IncrementViews(paste.ID)
	if err != nil {
		return AccessForbidden, err
	}
	paste.Views = views
	return AccessAllowed, nil
}

// VerifyPassword checks a submitted password against the paste's stored
// hash. On success the caller must record an unlock grant in the session;
// nothing durable changes either way.
func (s *service) VerifyPassword(paste *model.Paste, submitted string) error {
	if !paste.HasPassword() {
		// Nothing to verify. Treated as absent rather than unlocked.
		return model.ErrorNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(*paste.Password), []byte(submitted)) != nil {
		return model.ErrorPasswordRejected
	}
	return nil
}

// CanMutate reports whether the caller may edit, delete, or re-tier the
// paste. Only the authenticated owner may.
func (s *service) CanMutate(sess *model.Session, paste *model.Paste) bool {
	return sess.IsAuthenticated() && sess.UserID == paste.UserID
}
