package model

// Session is the per-request view of the caller's browser session: who they
// are (if anyone) and which password-protected pastes they have already
// unlocked. Unlock grants live only as long as the session and are never
// written to the durable store.
type Session struct {
	UserID  UserID
	Unlocks map[string]bool
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

func (s *Session) HasUnlock(pasteID string) bool {
	return s != nil && s.Unlocks[pasteID]
}

func (s *Session) Grant(pasteID string) {
	if s.Unlocks == nil {
		s.Unlocks = map[string]bool{}
	}
	s.Unlocks[pasteID] = true
}
