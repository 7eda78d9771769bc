package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pastalink/pastalink/internal/model"
)

func (s *Store) CreateUser(user *model.User) error {
	res, err := s.db.NamedExec(`insert into user
		(ID, CreatedAt, Username, Email, Password, Bio, ProfilePicture,
		 IsAdmin, IsTrusted, IsVerified, IsEmailVerified,
		 EmailVerificationToken, EmailVerificationExpires,
		 PasswordResetToken, PasswordResetExpires, WeeklyScore)
		values(:ID, :CreatedAt, :Username, :Email, :Password, :Bio, :ProfilePicture,
		 :IsAdmin, :IsTrusted, :IsVerified, :IsEmailVerified,
		 :EmailVerificationToken, :EmailVerificationExpires,
		 :PasswordResetToken, :PasswordResetExpires, :WeeklyScore)`, user)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	if rows, err := res.RowsAffected(); rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	} else if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(user *model.User) error {
	_, err := s.db.NamedExec(`update user set
		Username = :Username, Email = :Email, Password = :Password,
		Bio = :Bio, ProfilePicture = :ProfilePicture,
		IsAdmin = :IsAdmin, IsTrusted = :IsTrusted, IsVerified = :IsVerified,
		IsEmailVerified = :IsEmailVerified,
		EmailVerificationToken = :EmailVerificationToken,
		EmailVerificationExpires = :EmailVerificationExpires,
		PasswordResetToken = :PasswordResetToken,
		PasswordResetExpires = :PasswordResetExpires,
		WeeklyScore = :WeeklyScore
		where ID = :ID`, user)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

func (s *Store) findUser(query string, args ...interface{}) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

func (s *Store) FindUserByID(id model.UserID) (*model.User, error) {
	return s.findUser(`select * from user where ID = ?`, id)
}

func (s *Store) FindUserByUsername(username string) (*model.User, error) {
	return s.findUser(`select * from user where Username = ? collate nocase`, username)
}

func (s *Store) FindUserByEmail(email string) (*model.User, error) {
	return s.findUser(`select * from user where Email = ? collate nocase`, email)
}

func (s *Store) FindUserByVerificationToken(token string) (*model.User, error) {
	return s.findUser(`select * from user where EmailVerificationToken = ?`, token)
}

func (s *Store) FindUserByResetToken(token string) (*model.User, error) {
	return s.findUser(`select * from user where PasswordResetToken = ?`, token)
}

func (s *Store) AddScore(id model.UserID, delta int) error {
	_, err := s.db.Exec(`update user set WeeklyScore = WeeklyScore + ? where ID = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("updating score: %w", err)
	}
	return nil
}

// ToggleFollow flips the directed follow edge between two users. Both sides
// of the relation and the follow notification land in one transaction, so a
// concurrent reader never sees a half-applied edge.
func (s *Store) ToggleFollow(actor *model.User, target *model.User) (bool, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.Get(&count, `select count(*) from follow where FollowerID = ? and FolloweeID = ?`,
		actor.ID, target.ID)
	if err != nil {
		return false, fmt.Errorf("checking follow edge: %w", err)
	}

	nowFollowing := count == 0
	if nowFollowing {
		_, err = tx.Exec(`insert into follow (FollowerID, FolloweeID, CreatedAt) values (?, ?, ?)`,
			actor.ID, target.ID, time.Now().UTC())
		if err != nil {
			return false, fmt.Errorf("inserting follow edge: %w", err)
		}
		err = insertNotification(tx, &model.Notification{
			ID:        model.CreateID(),
			UserID:    target.ID,
			Type:      model.NotificationFollow,
			From:      actor.Username,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return false, err
		}
	} else {
		_, err = tx.Exec(`delete from follow where FollowerID = ? and FolloweeID = ?`,
			actor.ID, target.ID)
		if err != nil {
			return false, fmt.Errorf("deleting follow edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing follow toggle: %w", err)
	}
	return nowFollowing, nil
}

func (s *Store) IsFollowing(actor model.UserID, target model.UserID) (bool, error) {
	var count int
	err := s.db.Get(&count, `select count(*) from follow where FollowerID = ? and FolloweeID = ?`,
		actor, target)
	if err != nil {
		return false, fmt.Errorf("checking follow edge: %w", err)
	}
	return count > 0, nil
}

func (s *Store) FollowingIDs(id model.UserID) ([]model.UserID, error) {
	ids := []model.UserID{}
	err := s.db.Select(&ids, `select FolloweeID from follow where FollowerID = ? order by CreatedAt`, id)
	if err != nil {
		return nil, fmt.Errorf("fetching following: %w", err)
	}
	return ids, nil
}

func (s *Store) FollowerIDs(id model.UserID) ([]model.UserID, error) {
	ids := []model.UserID{}
	err := s.db.Select(&ids, `select FollowerID from follow where FolloweeID = ? order by CreatedAt`, id)
	if err != nil {
		return nil, fmt.Errorf("fetching followers: %w", err)
	}
	return ids, nil
}

type sqlxExecer interface {
	NamedExec(query string, arg interface{}) (sql.Result, error)
}

func insertNotification(e sqlxExecer, n *model.Notification) error {
	_, err := e.NamedExec(`insert into notification
		(ID, UserID, Type, FromUsername, PasteID, IsRead, CreatedAt)
		values(:ID, :UserID, :Type, :FromUsername, :PasteID, :IsRead, :CreatedAt)`, n)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (s *Store) AppendNotification(n *model.Notification) error {
	return insertNotification(s.db, n)
}

// Notifications returns the user's notifications newest first.
func (s *Store) Notifications(id model.UserID) ([]model.Notification, error) {
	notifications := []model.Notification{}
	err := s.db.Select(&notifications,
		`select * from notification where UserID = ? order by rowid desc`, id)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	return notifications, nil
}

func (s *Store) UnreadNotificationCount(id model.UserID) (int, error) {
	var count int
	err := s.db.Get(&count, `select count(*) from notification where UserID = ? and IsRead = 0`, id)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) MarkNotificationsRead(id model.UserID) error {
	_, err := s.db.Exec(`update notification set IsRead = 1 where UserID = ?`, id)
	if err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

// Leaderboard returns users with a positive weekly score, highest first.
func (s *Store) Leaderboard(limit int) ([]model.User, error) {
	users := []model.User{}
	err := s.db.Select(&users,
		`select * from user where WeeklyScore > 0 order by WeeklyScore desc, CreatedAt asc limit ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching leaderboard: %w", err)
	}
	return users, nil
}

// ResetWeeklyScores marks the top three non-admin, non-trusted users as
// verified and zeroes every score, all in one transaction. Ties break by
// account age. Returns the winners' IDs.
func (s *Store) ResetWeeklyScores() ([]model.UserID, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	winners := []model.UserID{}
	err = tx.Select(&winners, `select ID from user
		where IsAdmin = 0 and IsTrusted = 0
		order by WeeklyScore desc, CreatedAt asc, rowid asc limit 3`)
	if err != nil {
		return nil, fmt.Errorf("selecting weekly winners: %w", err)
	}

	for _, id := range winners {
		if _, err := tx.Exec(`update user set IsVerified = 1 where ID = ?`, id); err != nil {
			return nil, fmt.Errorf("verifying weekly winner: %w", err)
		}
	}

	if _, err := tx.Exec(`update user set WeeklyScore = 0`); err != nil {
		return nil, fmt.Errorf("resetting scores: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing weekly reset: %w", err)
	}
	return winners, nil
}

// SyncTrusted reconciles trusted-group membership against a roster of
// usernames. Listed users gain the trusted flag (and admin, which trusted
// membership implies); everyone else loses the trusted flag only.
func (s *Store) SyncTrusted(usernames []string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`update user set IsTrusted = 0`); err != nil {
		return fmt.Errorf("clearing trusted flags: %w", err)
	}
	for _, username := range usernames {
		_, err := tx.Exec(`update user set IsTrusted = 1, IsAdmin = 1
			where Username = ? collate nocase`, username)
		if err != nil {
			return fmt.Errorf("setting trusted flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing trusted sync: %w", err)
	}
	return nil
}
