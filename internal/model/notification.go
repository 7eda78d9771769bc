package model

import "time"

type NotificationType string

const (
	NotificationMention NotificationType = "mention"
	NotificationFollow  NotificationType = "follow"
)

type Notification struct {
	ID        string           `db:"ID" json:"id"`
	UserID    UserID           `db:"UserID" json:"-"`
	Type      NotificationType `db:"Type" json:"type"`
	From      string           `db:"FromUsername" json:"from"`
	PasteID   *string          `db:"PasteID" json:"pasteId"`
	Read      bool             `db:"IsRead" json:"read"`
	CreatedAt time.Time        `db:"CreatedAt" json:"createdAt"`
}

type Report struct {
	ID         string    `db:"ID" json:"reportId"`
	PasteID    string    `db:"PasteID" json:"pasteId"`
	ReporterID UserID    `db:"ReporterID" json:"reporterId"`
	Reason     string    `db:"Reason" json:"reason"`
	CreatedAt  time.Time `db:"CreatedAt" json:"createdAt"`
}
