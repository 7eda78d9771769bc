package model

import "time"

type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
)

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyUnlisted, PrivacyPrivate:
		return true
	}
	return false
}

const DefaultPasteTitle = "Untitled Paste"

type Paste struct {
	ID        string    `db:"ID" json:"id"`
	UserID    UserID    `db:"UserID" json:"userId"`
	Title     string    `db:"Title" json:"title"`
	Privacy   Privacy   `db:"Privacy" json:"privacy"`
	Password  *string   `db:"Password" json:"-"`
	CreatedAt time.Time `db:"CreatedAt" json:"createdAt"`
	Views     int       `db:"Views" json:"views"`

	// Hydrated from the like relation, not a column.
	Likes []UserID `db:"-" json:"likes"`
}

func (p *Paste) HasPassword() bool {
	return p.Password != nil && *p.Password != ""
}

type CreatePasteParams struct {
	Title    string  `json:"title" form:"title"`
	Content  string  `json:"content" form:"content"`
	Privacy  Privacy `json:"privacy" form:"privacy"`
	Password string  `json:"pastePassword" form:"pastePassword"`
}

type UpdatePasteParams struct {
	Title   string  `json:"title" form:"title"`
	Content string  `json:"content" form:"content"`
	Privacy Privacy `json:"privacy" form:"privacy"`
	// nil keeps the current password, empty string clears it, anything else
	// replaces it.
	Password *string `json:"pastePassword" form:"pastePassword"`
}
