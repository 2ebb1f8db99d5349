package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/chat"
	"github.com/kymoh/darasa/core/engine"
	testutil "github.com/kymoh/darasa/tests"
)

// clockAt pins the engine's wall clock; the seeded chat window is 08:00-18:00.
func clockAt(hour, min int) engine.Option {
	return engine.WithClock(func() time.Time {
		return time.Date(2026, time.March, 2, hour, min, 0, 0, time.Local)
	})
}

func TestSendMessage_insideWindowAppendsBothSides(t *testing.T) {
	s := testutil.NewStack(t, clockAt(10, 0))
	s.LoginTeacher(t)

	reply, err := s.Engine.SendMessage(context.Background(), "general", "cls-1", "when is the OS midterm?")
	require.NoError(t, err)
	assert.Equal(t, chat.RoleAssistant, reply.Role)
	assert.Equal(t, "re: when is the OS midterm?", reply.Text)
	assert.Equal(t, "cls-1", reply.ClassID)

	msgs := s.State.Chat.Channel("general", "cls-1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "grace", msgs[0].Author)
	assert.Equal(t, "when is the OS midterm?", msgs[0].Text)
	assert.Equal(t, reply.ID, msgs[1].ID)
}

func TestSendMessage_closedWindowNeverReachesStoreOrNetwork(t *testing.T) {
	s := testutil.NewStack(t, clockAt(20, 0))
	s.LoginTeacher(t)
	baseline := s.Server.Hits("POST /api/chat/ask")

	_, err := s.Engine.SendMessage(context.Background(), "general", "cls-1", "anyone awake?")
	require.Error(t, err)
	assert.Equal(t, chat.ErrWindowClosed, err)
	assert.Empty(t, s.State.Chat.Channel("general", "cls-1"))
	assert.Equal(t, baseline, s.Server.Hits("POST /api/chat/ask"))
}

func TestSendMessage_windowBoundsAreInclusive(t *testing.T) {
	for _, tc := range []struct{ hour, min int }{{8, 0}, {18, 0}} {
		s := testutil.NewStack(t, clockAt(tc.hour, tc.min))
		s.LoginTeacher(t)
		_, err := s.Engine.SendMessage(context.Background(), "general", "cls-1", "hello")
		assert.NoError(t, err, "window bound %02d:%02d must be open", tc.hour, tc.min)
	}
}

func TestSendMessage_serverFailureYieldsSystemMessage(t *testing.T) {
	s := testutil.NewStack(t, clockAt(10, 0))
	s.LoginTeacher(t)

	s.Server.ForceStatus(500, 1)
	msg, err := s.Engine.SendMessage(context.Background(), "general", "cls-1", "is the lab open?")
	require.NoError(t, err, "a delivery failure is reported in-band, not as an error")
	assert.Equal(t, chat.RoleSystem, msg.Role)
	assert.Contains(t, msg.Text, "message could not be delivered")

	// the optimistic entry was rolled back; only the system notice remains
	msgs := s.State.Chat.Channel("general", "cls-1")
	require.Len(t, msgs, 1)
	assert.Equal(t, msg.ID, msgs[0].ID)
}

func TestSendMessage_authFailurePropagates(t *testing.T) {
	s := testutil.NewStack(t, clockAt(10, 0))
	s.LoginTeacher(t)

	s.Server.ForceStatus(401, 1)
	_, err := s.Engine.SendMessage(context.Background(), "general", "cls-1", "hello")
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err), "auth failures must not be converted to system messages")
	assert.Empty(t, s.State.Chat.Channel("general", "cls-1"), "the optimistic entry is rolled back")
	assert.False(t, s.Session.Authenticated())
}

func TestSendMessage_requiresAuth(t *testing.T) {
	s := testutil.NewStack(t, clockAt(10, 0))

	_, err := s.Engine.SendMessage(context.Background(), "general", "cls-1", "hello")
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.Zero(t, s.Server.TotalHits())
}
