package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/engine"
	testutil "github.com/kymoh/darasa/tests"
)

func drainStates(ch <-chan engine.LifecycleState) []engine.LifecycleState {
	var seen []engine.LifecycleState
	for {
		select {
		case s := <-ch:
			seen = append(seen, s)
		default:
			return seen
		}
	}
}

func TestEngine_loginRunsBulkFetch(t *testing.T) {
	s := testutil.NewStack(t)
	watch := s.Engine.WatchState()

	usr := s.LoginTeacher(t)
	assert.Equal(t, "grace", usr.Username)
	assert.True(t, s.Session.Authenticated())
	assert.Equal(t, engine.StateReady, s.Engine.State())

	states := drainStates(watch)
	assert.Contains(t, states, engine.StateLoading)
	assert.Contains(t, states, engine.StateReady)

	// every section of the mirror is populated from the single bulk read
	assert.NotEmpty(t, s.State.Classes.Snapshot())
	assert.NotEmpty(t, s.State.Students.Snapshot())
	assert.NotEmpty(t, s.State.Users.Snapshot())
	assert.True(t, s.State.Constraints.Get().ChatWindow.IsSet())
}

func TestEngine_loginValidatesCredentialsLocally(t *testing.T) {
	s := testutil.NewStack(t)

	_, err := s.Engine.Login(context.Background(), "", "pwd", catalog.RoleTeacher)
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err), "want ValidationError, got %T", err)
	assert.Zero(t, s.Server.TotalHits(), "invalid credentials must not reach the network")
}

func TestEngine_loginRejectedKeepsSessionEmpty(t *testing.T) {
	s := testutil.NewStack(t)

	_, err := s.Engine.Login(context.Background(), "grace", "wrong", catalog.RoleTeacher)
	require.Error(t, err)
	assert.False(t, s.Session.Authenticated())
	assert.Equal(t, engine.StateIdle, s.Engine.State())
}

func TestEngine_protectedCallsRequireAuth(t *testing.T) {
	s := testutil.NewStack(t)

	_, err := s.Engine.SaveClass(context.Background(), catalog.Class{Name: "CSE-B"})
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err), "want AuthError, got %T", err)
	assert.Zero(t, s.Server.TotalHits())
}

func TestEngine_createAppendsWithServerID(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	before := len(s.State.Classes.Snapshot())

	saved, err := s.Engine.SaveClass(context.Background(), catalog.Class{Name: "CSE-B", Year: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID, "create must adopt the server-assigned id")

	snap := s.State.Classes.Snapshot()
	require.Len(t, snap, before+1)
	assert.Equal(t, saved, snap[len(snap)-1], "new records append at the end")
}

func TestEngine_updateReplacesInPlace(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	snap := s.State.Classes.Snapshot()
	require.NotEmpty(t, snap)
	target := snap[0]
	target.Name = "CSE-A (renamed)"

	saved, err := s.Engine.SaveClass(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target.ID, saved.ID)

	after := s.State.Classes.Snapshot()
	require.Len(t, after, len(snap), "update must not grow the collection")
	assert.Equal(t, "CSE-A (renamed)", after[0].Name)
}

func TestEngine_saveValidationFailsBeforeNetwork(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	baseline := s.Server.TotalHits()
	before := s.State.Classes.Snapshot()

	_, err := s.Engine.SaveClass(context.Background(), catalog.Class{Name: ""})
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Equal(t, baseline, s.Server.TotalHits(), "validation failures must not reach the network")
	assert.Equal(t, before, s.State.Classes.Snapshot())
}

func TestEngine_failedSaveLeavesMirrorUntouched(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	before := s.State.Classes.Snapshot()

	s.Server.ForceStatus(500, 1)
	_, err := s.Engine.SaveClass(context.Background(), catalog.Class{Name: "CSE-B"})
	require.Error(t, err)
	assert.True(t, core.IsServerError(err))
	assert.Equal(t, before, s.State.Classes.Snapshot(), "pessimistic writes never apply on failure")
}

func TestEngine_deleteIsIdempotent(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	ctx := context.Background()

	require.NoError(t, s.Engine.DeleteEntity(ctx, catalog.KindClass, "cls-1"))
	assert.Empty(t, s.State.Classes.Snapshot())

	assert.NoError(t, s.Engine.DeleteEntity(ctx, catalog.KindClass, "cls-1"), "repeat delete is a success")
}

func TestEngine_authFailureBlocksFollowUpCallsLocally(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)

	s.Server.ForceStatus(401, 1)
	_, err := s.Engine.SaveClass(context.Background(), catalog.Class{Name: "CSE-B"})
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.False(t, s.Session.Authenticated(), "an auth failure invalidates the session")

	baseline := s.Server.TotalHits()
	_, err = s.Engine.SaveClass(context.Background(), catalog.Class{Name: "CSE-C"})
	require.Error(t, err)
	assert.True(t, core.IsAuthError(err))
	assert.Equal(t, baseline, s.Server.TotalHits(), "once invalidated, calls fail before the network")
}

func TestEngine_fetchFailureSetsFailedState(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)

	s.Server.ForceStatus(500, 1)
	err := s.Engine.FetchAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, engine.StateFailed, s.Engine.State())

	// a later successful fetch recovers
	require.NoError(t, s.Engine.FetchAll(context.Background()))
	assert.Equal(t, engine.StateReady, s.Engine.State())
}

func TestEngine_logoutClearsEverything(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	require.NotEmpty(t, s.State.Classes.Snapshot())

	require.NoError(t, s.Engine.Logout())
	assert.False(t, s.Session.Authenticated())
	assert.Equal(t, engine.StateIdle, s.Engine.State())
	assert.Empty(t, s.State.Classes.Snapshot())
	assert.Empty(t, s.State.Users.Snapshot())
	assert.False(t, s.State.Constraints.Get().ChatWindow.IsSet())
}

func TestEngine_resetAllDataRestoresSeed(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	ctx := context.Background()

	_, err := s.Engine.SaveClass(ctx, catalog.Class{Name: "CSE-B"})
	require.NoError(t, err)
	require.Len(t, s.State.Classes.Snapshot(), 2)

	require.NoError(t, s.Engine.ResetAllData(ctx))
	assert.Len(t, s.State.Classes.Snapshot(), 1, "reset restores the seeded dataset")
	assert.Equal(t, engine.StateReady, s.Engine.State())
}

func TestEngine_replaceConstraints(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)

	next := s.State.Constraints.Get()
	next.ChatWindow = catalog.ChatWindow{Start: "09:00", End: "17:00"}
	saved, err := s.Engine.ReplaceConstraints(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, "09:00", saved.ChatWindow.Start)
	assert.Equal(t, next, s.State.Constraints.Get())
}

func TestEngine_saveTimetableReplacesBoard(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)

	entries := []catalog.TimetableEntry{
		{Day: "Monday", Time: "09:00", ClassName: "CSE-A", Subject: "Operating Systems", Faculty: "Grace Achieng", Room: "B-204"},
	}
	require.NoError(t, s.Engine.SaveTimetable(context.Background(), entries))
	assert.Equal(t, entries, s.State.Timetable.Snapshot())
}

func TestEngine_cancelledContextDiscardsResponse(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginAdmin(t)
	before := s.State.Classes.Snapshot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Engine.SaveClass(ctx, catalog.Class{Name: "CSE-B"})
	require.Error(t, err)
	assert.Equal(t, before, s.State.Classes.Snapshot(), "a cancelled write must not land in the mirror")
}
