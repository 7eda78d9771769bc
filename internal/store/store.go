package store

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pastalink/pastalink/internal/boot"
)

// Store is the single application record store. Every multi-record mutation
// runs inside one sqlite transaction so concurrent callers touching the same
// records see either the whole update or none of it.
type Store struct {
	db *sqlx.DB
}

func New(config *boot.Config) (*Store, error) {
	if err := os.MkdirAll(config.DataDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", "file:"+config.DatabasePath()+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`create table if not exists user(
		ID                       text not null primary key,
		CreatedAt                DATETIME not null,
		Username                 text not null collate nocase unique,
		Email                    text not null collate nocase unique,
		Password                 text not null,
		Bio                      text not null default '',
		ProfilePicture           text null,
		IsAdmin                  boolean not null default 0,
		IsTrusted                boolean not null default 0,
		IsVerified               boolean not null default 0,
		IsEmailVerified          boolean not null default 0,
		EmailVerificationToken   text null,
		EmailVerificationExpires DATETIME null,
		PasswordResetToken       text null,
		PasswordResetExpires     DATETIME null,
		WeeklyScore              integer not null default 0
	)`)
	if err != nil {
		return fmt.Errorf("creating user table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists follow(
		FollowerID text not null references user(ID),
		FolloweeID text not null references user(ID),
		CreatedAt  DATETIME not null,
		primary key (FollowerID, FolloweeID)
	)`)
	if err != nil {
		return fmt.Errorf("creating follow table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists notification(
		ID           text not null primary key,
		UserID       text not null references user(ID),
		Type         text not null,
		FromUsername text not null,
		PasteID      text null,
		IsRead       boolean not null default 0,
		CreatedAt    DATETIME not null
	)`)
	if err != nil {
		return fmt.Errorf("creating notification table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists paste(
		ID        text not null primary key,
		UserID    text not null references user(ID),
		Title     text not null,
		Privacy   text not null,
		Password  text null,
		CreatedAt DATETIME not null,
		Views     integer not null default 0
	)`)
	if err != nil {
		return fmt.Errorf("creating paste table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists paste_like(
		PasteID text not null references paste(ID),
		UserID  text not null references user(ID),
		primary key (PasteID, UserID)
	)`)
	if err != nil {
		return fmt.Errorf("creating paste_like table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists report(
		ID         text not null primary key,
		PasteID    text not null,
		ReporterID text not null references user(ID),
		Reason     text not null,
		CreatedAt  DATETIME not null
	)`)
	if err != nil {
		return fmt.Errorf("creating report table: %w", err)
	}

	return nil
}
