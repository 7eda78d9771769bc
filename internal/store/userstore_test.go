package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pastalink/pastalink/internal/model"
)

func TestFindUserCaseInsensitive(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	user := newTestUser(t, store, "Alice")

	found, err := store.FindUserByUsername("aLiCe")
	assert.Nil(err)
	assert.Equal(user.ID, found.ID)

	found, err = store.FindUserByEmail("ALICE@example.com")
	assert.Nil(err)
	assert.Equal(user.ID, found.ID)

	_, err = store.FindUserByUsername("nobody")
	assert.ErrorIs(err, model.ErrorNotFound)
}

func TestUsernameUniquenessCaseInsensitive(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	newTestUser(t, store, "alice")

	duplicate := &model.User{
		ID:        model.UserID(model.CreateID()),
		CreatedAt: time.Now().UTC(),
		Username:  "ALICE",
		Email:     "other@example.com",
		Password:  "x",
	}
	assert.NotNil(store.CreateUser(duplicate))
}

func TestToggleFollow(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	t.Run("Follow", func(t *testing.T) {
		following, err := store.ToggleFollow(alice, bob)
		assert.Nil(err)
		assert.True(following)

		followers, err := store.FollowerIDs(bob.ID)
		assert.Nil(err)
		assert.Equal([]model.UserID{alice.ID}, followers)

		followed, err := store.FollowingIDs(alice.ID)
		assert.Nil(err)
		assert.Equal([]model.UserID{bob.ID}, followed)

		notifications, err := store.Notifications(bob.ID)
		assert.Nil(err)
		if assert.Len(notifications, 1) {
			assert.Equal(model.NotificationFollow, notifications[0].Type)
			assert.Equal("alice", notifications[0].From)
		}
	})

	t.Run("Unfollow restores the original state", func(t *testing.T) {
		following, err := store.ToggleFollow(alice, bob)
		assert.Nil(err)
		assert.False(following)

		followers, err := store.FollowerIDs(bob.ID)
		assert.Nil(err)
		assert.Empty(followers)

		followed, err := store.FollowingIDs(alice.ID)
		assert.Nil(err)
		assert.Empty(followed)
	})

	t.Run("Unfollow emits no notification", func(t *testing.T) {
		notifications, err := store.Notifications(bob.ID)
		assert.Nil(err)
		assert.Len(notifications, 1)
	})
}

func TestNotificationsNewestFirst(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	user := newTestUser(t, store, "alice")

	first := &model.Notification{
		ID:        model.CreateID(),
		UserID:    user.ID,
		Type:      model.NotificationFollow,
		From:      "bob",
		CreatedAt: time.Now().UTC(),
	}
	second := &model.Notification{
		ID:        model.CreateID(),
		UserID:    user.ID,
		Type:      model.NotificationMention,
		From:      "carol",
		CreatedAt: time.Now().UTC(),
	}
	assert.Nil(store.AppendNotification(first))
	assert.Nil(store.AppendNotification(second))

	notifications, err := store.Notifications(user.ID)
	assert.Nil(err)
	if assert.Len(notifications, 2) {
		assert.Equal(second.ID, notifications[0].ID)
		assert.Equal(first.ID, notifications[1].ID)
	}
}

func TestMarkNotificationsRead(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)
	user := newTestUser(t, store, "alice")

	for i := 0; i < 3; i++ {
		assert.Nil(store.AppendNotification(&model.Notification{
			ID:        model.CreateID(),
			UserID:    user.ID,
			Type:      model.NotificationFollow,
			From:      "bob",
			CreatedAt: time.Now().UTC(),
		}))
	}

	unread, err := store.UnreadNotificationCount(user.ID)
	assert.Nil(err)
	assert.Equal(3, unread)

	assert.Nil(store.MarkNotificationsRead(user.ID))

	unread, err = store.UnreadNotificationCount(user.ID)
	assert.Nil(err)
	assert.Equal(0, unread)

	notifications, err := store.Notifications(user.ID)
	assert.Nil(err)
	for _, n := range notifications {
		assert.True(n.Read)
	}
}

func TestResetWeeklyScores(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)

	scores := []int{50, 30, 30, 10}
	users := make([]*model.User, len(scores))
	for i, score := range scores {
		users[i] = newTestUser(t, store, "user"+string(rune('a'+i)))
		assert.Nil(store.AddScore(users[i].ID, score))
	}

	winners, err := store.ResetWeeklyScores()
	assert.Nil(err)
	assert.Equal([]model.UserID{users[0].ID, users[1].ID, users[2].ID}, winners)

	for i, u := range users {
		reloaded, err := store.FindUserByID(u.ID)
		assert.Nil(err)
		assert.Equal(0, reloaded.WeeklyScore)
		assert.Equal(i < 3, reloaded.IsVerified)
	}
}

func TestResetWeeklyScoresSkipsPrivilegedUsers(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)

	admin := newTestUser(t, store, "admin")
	admin.IsAdmin = true
	assert.Nil(store.UpdateUser(admin))
	assert.Nil(store.AddScore(admin.ID, 100))

	regular := newTestUser(t, store, "regular")
	assert.Nil(store.AddScore(regular.ID, 10))

	winners, err := store.ResetWeeklyScores()
	assert.Nil(err)
	assert.Equal([]model.UserID{regular.ID}, winners)

	reloaded, err := store.FindUserByID(admin.ID)
	assert.Nil(err)
	assert.False(reloaded.IsVerified)
	assert.Equal(0, reloaded.WeeklyScore)
}

func TestLeaderboardExcludesZeroScores(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)

	alice := newTestUser(t, store, "alice")
	newTestUser(t, store, "bob")
	assert.Nil(store.AddScore(alice.ID, 10))

	leaders, err := store.Leaderboard(100)
	assert.Nil(err)
	if assert.Len(leaders, 1) {
		assert.Equal(alice.ID, leaders[0].ID)
	}
}

func TestSyncTrusted(t *testing.T) {
	assert := assert.New(t)
	store := newTestStore(t)

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	assert.Nil(store.SyncTrusted([]string{"ALICE"}))

	reloaded, err := store.FindUserByID(alice.ID)
	assert.Nil(err)
	assert.True(reloaded.IsTrusted)
	assert.True(reloaded.IsAdmin)

	reloaded, err = store.FindUserByID(bob.ID)
	assert.Nil(err)
	assert.False(reloaded.IsTrusted)

	t.Run("Delisting clears the trusted flag only", func(t *testing.T) {
		assert.Nil(store.SyncTrusted([]string{"bob"}))

		reloaded, err := store.FindUserByID(alice.ID)
		assert.Nil(err)
		assert.False(reloaded.IsTrusted)
		assert.True(reloaded.IsAdmin)
	})
}
