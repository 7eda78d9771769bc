package paste

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pastalink/pastalink/internal/model"
	"github.com/pastalink/pastalink/internal/store"
)

const (
	pastePasswordCost = 10
	creationScore     = 10
	latestFeedLimit   = 50
)

var mentionPattern = regexp.MustCompile(`@([a-zA-Z0-9_]{3,20})`)

type service struct {
	store   *store.Store
	content *store.ContentStore
}

func New(store *store.Store, content *store.ContentStore) *service {
	return &service{store, content}
}

// Create stores a new paste, awards the owner the creation score and fans
// out mention notifications.
func (s *service) Create(owner *model.User, params *model.CreatePasteParams) (*model.Paste, error) {
	if params.Content == "" {
		return nil, model.ErrorValidation
	}
	privacy := params.Privacy
	if !privacy.Valid() {
		privacy = model.PrivacyPublic
	}
	title := params.Title
	if title == "" {
		title = model.DefaultPasteTitle
	}

	var passwordHash *string
	if params.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), pastePasswordCost)
		if err != nil {
			return nil, fmt.Errorf("hashing paste password: %w", err)
		}
		hash := string(hashed)
		passwordHash = &hash
	}

	paste := &model.Paste{
		ID:        model.CreatePasteID(),
		UserID:    owner.ID,
		Title:     title,
		Privacy:   privacy,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
		Likes:     []model.UserID{},
	}

	if err := s.content.Write(paste.ID, params.Content); err != nil {
		return nil, err
	}
	if err := s.store.CreatePaste(paste); err != nil {
		return nil, err
	}
	if err := s.store.AddScore(owner.ID, creationScore); err != nil {
		return nil, err
	}
	if err := s.fanOutMentions(owner, paste, params.Content); err != nil {
		return nil, err
	}
	return paste, nil
}

// fanOutMentions scans the content for @username tokens and notifies each
// distinct resolved user once. Self-mentions are skipped.
func (s *service) fanOutMentions(owner *model.User, paste *model.Paste, content string) error {
	notified := map[model.UserID]bool{}
	for _, match := range mentionPattern.FindAllStringSubmatch(content, -1) {
		mentioned, err := s.store.FindUserByUsername(match[1])
		if err != nil {
			if errors.Is(err, model.ErrorNotFound) {
				continue
			}
			return err
		}
		if mentioned.ID == owner.ID || notified[mentioned.ID] {
			continue
		}
		notified[mentioned.ID] = true

		pasteID := paste.ID
		err = s.store.AppendNotification(&model.Notification{
			ID:        model.CreateID(),
			UserID:    mentioned.ID,
			Type:      model.NotificationMention,
			From:      owner.Username,
			PasteID:   &pasteID,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Find(id string) (*model.Paste, error) {
	return s.store.FindPasteByID(id)
}

// Get resolves read access and, when allowed, returns the paste with its
// content and author. Maps resolver outcomes onto the error taxonomy.
func (s *service) Get(sess *model.Session, id string) (*model.Paste, *model.User, string, error) {
	paste, err := s.store.FindPasteByID(id)
	if err != nil {
		return nil, nil, "", err
	}
	author, err := s.store.FindUserByID(paste.UserID)
	if err != nil {
		return nil, nil, "", err
	}

	access, err := s.ResolveReadAccess(sess, paste)
	if err != nil {
		return nil, nil, "", err
	}
	switch access {
	case AccessForbidden:
		return nil, nil, "", model.ErrorForbidden
	case AccessPasswordRequired:
		return nil, nil, "", model.ErrorPasswordRequired
	}

	content, err := s.content.Read(paste.ID)
	if err != nil {
		return nil, nil, "", err
	}
	return paste, author, content, nil
}

// EditData returns the editable fields to the owner only.
func (s *service) EditData(sess *model.Session, id string) (*model.Paste, string, error) {
	paste, err := s.store.FindPasteByID(id)
	if err != nil {
		return nil, "", err
	}
	if !s.CanMutate(sess, paste) {
		return nil, "", model.ErrorForbidden
	}
	content, err := s.content.Read(paste.ID)
	if err != nil {
		return nil, "", err
	}
	return paste, content, nil
}

func (s *service) Update(sess *model.Session, id string, params *model.UpdatePasteParams) (*model.Paste, error) {
	if params.Content == "" {
		return nil, model.ErrorValidation
	}
	paste, err := s.store.FindPasteByID(id)
	if err != nil {
		return nil, err
	}
	if !s.CanMutate(sess, paste) {
		return nil, model.ErrorForbidden
	}

	paste.Title = params.Title
	if paste.Title == "" {
		paste.Title = model.DefaultPasteTitle
	}
	if params.Privacy.Valid() {
		paste.Privacy = params.Privacy
	}
	if params.Password != nil {
		if *params.Password == "" {
			paste.Password = nil
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(*params.Password), pastePasswordCost)
			if err != nil {
				return nil, fmt.Errorf("hashing paste password: %w", err)
			}
			hash := string(hashed)
			paste.Password = &hash
		}
	}

	if err := s.content.Write(paste.ID, params.Content); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePaste(paste); err != nil {
		return nil, err
	}
	return paste, nil
}

func (s *service) Delete(sess *model.Session, id string) error {
	paste, err := s.store.FindPasteByID(id)
	if err != nil {
		return err
	}
	if !s.CanMutate(sess, paste) {
		return model.ErrorForbidden
	}
	if err := s.content.Remove(paste.ID); err != nil {
		return err
	}
	return s.store.DeletePaste(paste.ID)
}

func (s *service) ToggleLike(userID model.UserID, id string) (bool, int, error) {
	paste, err := s.store.FindPasteByID(id)
	if err != nil {
		return false, 0, err
	}
	return s.store.ToggleLike(paste.ID, userID)
}

func (s *service) Report(reporterID model.UserID, id string, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return model.ErrorValidation
	}
	return s.store.CreateReport(&model.Report{
		ID:         model.CreateID(),
		PasteID:    id,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	})
}

// Summary is a feed entry: paste metadata plus the author fields the feed
// shows.
type Summary struct {
	model.Paste
	Author SummaryAuthor `json:"author"`
}

type SummaryAuthor struct {
	Username       string  `json:"username"`
	IsTrusted      bool    `json:"isTrusted"`
	IsVerified     bool    `json:"isVerified"`
	ProfilePicture *string `json:"profilePicture"`
}

// Latest returns the newest public pastes, hydrated with their authors.
func (s *service) Latest() ([]Summary, error) {
	pastes, err := s.store.LatestPublic(latestFeedLimit)
	if err != nil {
		return nil, err
	}

	feed := make([]Summary, 0, len(pastes))
	for _, p := range pastes {
		author, err := s.store.FindUserByID(p.UserID)
		if err != nil {
			if errors.Is(err, model.ErrorNotFound) {
				continue
			}
			return nil, err
		}
		feed = append(feed, Summary{
			Paste: p,
			Author: SummaryAuthor{
				Username:       author.Username,
				IsTrusted:      author.IsTrusted,
				IsVerified:     author.IsVerified,
				ProfilePicture: author.ProfilePicture,
			},
		})
	}
	return feed, nil
}

// WithContent is a profile-page entry: paste metadata plus its body.
type WithContent struct {
	model.Paste
	Content string `json:"content"`
}

// UserPastes lists a user's pastes for their profile page. The owner sees
// everything; everyone else sees public pastes only. A password-protected
// paste is listed without its body unless the caller owns it or holds an
// unlock grant, the same gate ResolveReadAccess applies.
func (s *service) UserPastes(owner *model.User, sess *model.Session) ([]WithContent, error) {
	pastes, err := s.store.PastesByUser(owner.ID)
	if err != nil {
		return nil, err
	}

	isOwner := sess.IsAuthenticated() && sess.UserID == owner.ID
	result := make([]WithContent, 0, len(pastes))
	for _, p := range pastes {
		if !isOwner && p.Privacy != model.PrivacyPublic {
			continue
		}
		content := ""
		if isOwner || !p.HasPassword() || sess.HasUnlock(p.ID) {
			if content, err = s.content.Read(p.ID); err != nil {
				content = ""
			}
		}
		result = append(result, WithContent{Paste: p, Content: content})
	}
	return result, nil
}

func (s *service) TotalViews(userID model.UserID) (int, error) {
	return s.store.TotalViews(userID)
}
