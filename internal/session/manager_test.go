package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestCreateAndLookup registers a session and reads it back.
func TestCreateAndLookup(t *testing.T) {
	mgr := NewManager(time.Minute, zaptest.NewLogger(t))

	sess := mgr.CreateSession("", "10.0.0.7")
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "10.0.0.7", sess.Host())

	got, ok := mgr.GetSession(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, mgr.Count())
}

// TestCreateWithExplicitIDReplaces creates two sessions under one id; the
// second replaces the first.
func TestCreateWithExplicitIDReplaces(t *testing.T) {
	mgr := NewManager(time.Minute, zaptest.NewLogger(t))

	first := mgr.CreateSession("sess-1", "hostA")
	second := mgr.CreateSession("sess-1", "hostB")
	require.NotSame(t, first, second)

	got, ok := mgr.GetSession("sess-1")
	require.True(t, ok)
	assert.Equal(t, "hostB", got.Host())
	assert.Equal(t, 1, mgr.Count())
}

// TestSessionBindsUserAndRun exercises the user/run/admin accessors.
func TestSessionBindsUserAndRun(t *testing.T) {
	mgr := NewManager(time.Minute, zaptest.NewLogger(t))
	sess := mgr.CreateSession("", "h")

	assert.Empty(t, sess.GetUserID())
	sess.SetUserID("alice")
	sess.SetRunID("run-9")
	sess.SetAdmin(true)

	assert.Equal(t, "alice", sess.GetUserID())
	assert.Equal(t, "run-9", sess.RunID())
	assert.True(t, sess.IsAdminSession())
}

// TestRemoveSessionForgetsIt removes a session and checks the lookup and
// activity paths both miss.
func TestRemoveSessionForgetsIt(t *testing.T) {
	mgr := NewManager(time.Minute, zaptest.NewLogger(t))
	sess := mgr.CreateSession("", "h")

	mgr.RemoveSession(sess.ID)
	_, ok := mgr.GetSession(sess.ID)
	assert.False(t, ok)
	assert.False(t, mgr.UpdateActivity(sess.ID))
	assert.Equal(t, 0, mgr.Count())

	// Removing again is a no-op.
	mgr.RemoveSession(sess.ID)
}

// TestExpiryHonorsTheLease fakes the clock: a quiet session dies at the
// lease boundary while a renewed one survives.
func TestExpiryHonorsTheLease(t *testing.T) {
	mgr := NewManager(time.Minute, zaptest.NewLogger(t))

	base := time.Now()
	mgr.now = func() time.Time { return base }

	quiet := mgr.CreateSession("quiet", "h")
	busy := mgr.CreateSession("busy", "h")

	// 45 seconds in, the busy session pings.
	mgr.now = func() time.Time { return base.Add(45 * time.Second) }
	require.True(t, mgr.UpdateActivity(busy.ID))

	// 90 seconds in, only the quiet session has exceeded the lease.
	mgr.now = func() time.Time { return base.Add(90 * time.Second) }
	expired := mgr.removeExpired()
	require.Len(t, expired, 1)
	assert.Equal(t, quiet.ID, expired[0])

	_, ok := mgr.GetSession(busy.ID)
	assert.True(t, ok)
}

// TestCloseAllDropsEverything mass-closes and expects an empty manager.
func TestCloseAllDropsEverything(t *testing.T) {
	mgr := NewManager(time.Minute, zaptest.NewLogger(t))
	mgr.CreateSession("", "a")
	mgr.CreateSession("", "b")
	mgr.CreateSession("", "c")
	require.Equal(t, 3, mgr.Count())

	mgr.CloseAll()
	assert.Equal(t, 0, mgr.Count())
	assert.Empty(t, mgr.GetActiveSessions())
}
