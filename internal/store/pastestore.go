package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pastalink/pastalink/internal/model"
)

func (s *Store) CreatePaste(paste *model.Paste) error {
	res, err := s.db.NamedExec(`insert into paste
		(ID, UserID, Title, Privacy, Password, CreatedAt, Views)
		values(:ID, :UserID, :Title, :Privacy, :Password, :CreatedAt, :Views)`, paste)
	if err != nil {
		return fmt.Errorf("inserting paste: %w", err)
	}
	if rows, err := res.RowsAffected(); rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	} else if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	return nil
}

func (s *Store) FindPasteByID(id string) (*model.Paste, error) {
	paste := &model.Paste{}
	err := s.db.Get(paste, `select * from paste where ID = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorNotFound
		}
		return nil, fmt.Errorf("fetching paste: %w", err)
	}
	if err := s.hydrateLikes(paste); err != nil {
		return nil, err
	}
	return paste, nil
}

func (s *Store) hydrateLikes(paste *model.Paste) error {
	likes := []model.UserID{}
	err := s.db.Select(&likes, `select UserID from paste_like where PasteID = ? order by rowid`, paste.ID)
	if err != nil {
		return fmt.Errorf("fetching likes: %w", err)
	}
	paste.Likes = likes
	return nil
}

func (s *Store) UpdatePaste(paste *model.Paste) error {
	_, err := s.db.NamedExec(`update paste set
		Title = :Title, Privacy = :Privacy, Password = :Password
		where ID = :ID`, paste)
	if err != nil {
		return fmt.Errorf("updating paste: %w", err)
	}
	return nil
}

func (s *Store) DeletePaste(id string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`delete from paste_like where PasteID = ?`, id); err != nil {
		return fmt.Errorf("deleting likes: %w", err)
	}
	if _, err := tx.Exec(`delete from paste where ID = ?`, id); err != nil {
		return fmt.Errorf("deleting paste: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing paste delete: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter by exactly one and returns the new
// count. A single UPDATE keeps concurrent viewers from losing increments.
func (s *Store) IncrementViews(id string) (int, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`update paste set Views = Views + 1 where ID = ?`, id); err != nil {
		return 0, fmt.Errorf("incrementing views: %w", err)
	}
	var views int
	if err := tx.Get(&views, `select Views from paste where ID = ?`, id); err != nil {
		return 0, fmt.Errorf("fetching view count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing view increment: %w", err)
	}
	return views, nil
}

// ToggleLike flips the caller's membership of the paste's like set and
// returns the new membership state plus the like count.
func (s *Store) ToggleLike(pasteID string, userID model.UserID) (bool, int, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return false, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.Get(&count, `select count(*) from paste_like where PasteID = ? and UserID = ?`,
		pasteID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("checking like: %w", err)
	}

	hasLiked := count == 0
	if hasLiked {
		_, err = tx.Exec(`insert into paste_like (PasteID, UserID) values (?, ?)`, pasteID, userID)
	} else {
		_, err = tx.Exec(`delete from paste_like where PasteID = ? and UserID = ?`, pasteID, userID)
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggling like: %w", err)
	}

	var likeCount int
	if err := tx.Get(&likeCount, `select count(*) from paste_like where PasteID = ?`, pasteID); err != nil {
		return false, 0, fmt.Errorf("counting likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("committing like toggle: %w", err)
	}
	return hasLiked, likeCount, nil
}

func (s *Store) PastesByUser(userID model.UserID) ([]model.Paste, error) {
	pastes := []model.Paste{}
	err := s.db.Select(&pastes,
		`select * from paste where UserID = ? order by CreatedAt desc, rowid desc`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching user pastes: %w", err)
	}
	for i := range pastes {
		if err := s.hydrateLikes(&pastes[i]); err != nil {
			return nil, err
		}
	}
	return pastes, nil
}

func (s *Store) LatestPublic(limit int) ([]model.Paste, error) {
	pastes := []model.Paste{}
	err := s.db.Select(&pastes,
		`select * from paste where Privacy = ? order by CreatedAt desc, rowid desc limit ?`,
		model.PrivacyPublic, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching latest pastes: %w", err)
	}
	for i := range pastes {
		if err := s.hydrateLikes(&pastes[i]); err != nil {
			return nil, err
		}
	}
	return pastes, nil
}

func (s *Store) TotalViews(userID model.UserID) (int, error) {
	var total int
	err := s.db.Get(&total,
		`select coalesce(sum(Views), 0) from paste where UserID = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("summing views: %w", err)
	}
	return total, nil
}

func (s *Store) CreateReport(report *model.Report) error {
	_, err := s.db.NamedExec(`insert into report
		(ID, PasteID, ReporterID, Reason, CreatedAt)
		values(:ID, :PasteID, :ReporterID, :Reason, :CreatedAt)`, report)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}
