package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, time.Hour), mr
}

func TestSessionIssueAndLookup(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Issue(ctx, 42, "owner")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	got, err := sm.Lookup(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "owner", got.Username)
	assert.Equal(t, sess.Token, got.Token)
}

func TestSessionLookupUnknownToken(t *testing.T) {
	sm, _ := newTestSessionManager(t)

	_, err := sm.Lookup(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionLookupExpired(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Issue(ctx, 7, "clerk")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = sm.Lookup(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionRevoke(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Issue(ctx, 7, "clerk")
	require.NoError(t, err)

	require.NoError(t, sm.Revoke(ctx, sess.Token))

	_, err = sm.Lookup(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionRevokeAllForUser(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()

	first, err := sm.Issue(ctx, 9, "clerk")
	require.NoError(t, err)
	second, err := sm.Issue(ctx, 9, "clerk")
	require.NoError(t, err)
	other, err := sm.Issue(ctx, 10, "owner")
	require.NoError(t, err)

	require.NoError(t, sm.RevokeAllForUser(ctx, 9))

	_, err = sm.Lookup(ctx, first.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = sm.Lookup(ctx, second.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = sm.Lookup(ctx, other.Token)
	assert.NoError(t, err)
}
