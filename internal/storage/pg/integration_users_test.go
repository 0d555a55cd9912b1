package pg

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skobelevs/gochat/internal/domain"
	internal_errors "github.com/skobelevs/gochat/internal/errors"
)

// mustSaveUser creates a user and fails the test on error. Tests share one
// database, so every test uses its own emails.
func mustSaveUser(t *testing.T, email domain.Email) domain.UserId {
	t.Helper()
	id, err := storage.SaveUser(domain.User{Email: email, PassHash: "hash"})
	require.NoError(t, err, "SaveUser should not return an error")
	return id
}

func requireStatusCode(t *testing.T, err error, expected int) {
	t.Helper()
	require.Error(t, err)
	e, ok := err.(*internal_errors.ErrorWithStatusCode)
	require.True(t, ok, "expected ErrorWithStatusCode, got %T", err)
	assert.Equal(t, expected, e.StatusCode)
}

func TestSaveUser(t *testing.T) {
	id := mustSaveUser(t, "save@example.com")
	assert.Greater(t, id, int64(0), "Expected ID > 0")

	_, err := storage.SaveUser(domain.User{Email: "save@example.com", PassHash: "hash"})
	requireStatusCode(t, err, http.StatusConflict)
}

func TestUserByEmail(t *testing.T) {
	id := mustSaveUser(t, "byemail@example.com")

	user, err := storage.User("byemail@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.Id)
	assert.Equal(t, "byemail@example.com", user.Email)
	assert.Equal(t, "hash", user.PassHash)
	assert.Empty(t, user.Friends, "fresh user starts with no friends")

	_, err = storage.User("nonexistent@example.com")
	requireStatusCode(t, err, http.StatusNotFound)
}

func TestUserById(t *testing.T) {
	id := mustSaveUser(t, "byid@example.com")

	user, err := storage.UserById(id)
	require.NoError(t, err)
	assert.Equal(t, "byid@example.com", user.Email)

	_, err = storage.UserById(999999)
	requireStatusCode(t, err, http.StatusNotFound)
}

func TestAppendFriendAndFriendsOf(t *testing.T) {
	aliceId := mustSaveUser(t, "alice.friends@example.com")
	bobId := mustSaveUser(t, "bob.friends@example.com")

	require.NoError(t, storage.AppendFriend(aliceId, bobId))
	require.NoError(t, storage.AppendFriend(bobId, aliceId))

	aliceFriends, err := storage.FriendsOf(aliceId)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bobId, aliceFriends[0].Id)
	assert.Equal(t, "bob.friends@example.com", aliceFriends[0].Email)

	bobFriends, err := storage.FriendsOf(bobId)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, aliceId, bobFriends[0].Id)

	err = storage.AppendFriend(999999, aliceId)
	requireStatusCode(t, err, http.StatusNotFound)

	_, err = storage.FriendsOf(999999)
	requireStatusCode(t, err, http.StatusNotFound)
}

func TestFriendsOfEmpty(t *testing.T) {
	id := mustSaveUser(t, "loner@example.com")

	friends, err := storage.FriendsOf(id)
	require.NoError(t, err)
	assert.NotNil(t, friends)
	assert.Empty(t, friends)
}

func TestSearchUsers(t *testing.T) {
	aliceId := mustSaveUser(t, "alice.probe@example.com")
	bobId := mustSaveUser(t, "bob.probe@example.com")

	t.Run("matches case-insensitively", func(t *testing.T) {
		users, err := storage.SearchUsers("BOB.PROBE", aliceId)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, bobId, users[0].Id)
	})

	t.Run("excludes the requester", func(t *testing.T) {
		users, err := storage.SearchUsers("probe@example", aliceId)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, bobId, users[0].Id)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		users, err := storage.SearchUsers("zzz-no-such-user", aliceId)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}
