package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
	testutil "github.com/kymoh/darasa/tests"
)

const attendanceDate = "2026-03-02"

func TestSaveClassAttendance_appliesOptimisticallyAndPersists(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)

	desired := attendance.Record{
		"stu-1": attendance.StatusPresent,
		"stu-2": attendance.StatusAbsent,
	}
	require.NoError(t, s.Engine.SaveClassAttendance(context.Background(), "cls-1", attendanceDate, desired))

	rec := s.State.Attendance.Record("cls-1", attendanceDate)
	assert.Equal(t, attendance.StatusPresent, rec.Status("stu-1"))
	assert.Equal(t, attendance.StatusAbsent, rec.Status("stu-2"))
	assert.Equal(t, 1, s.Server.Hits("PUT /api/attendance/class"))

	// the server holds the same record
	srvRec := s.Server.Dataset().Attendance["cls-1"][attendanceDate]
	assert.Equal(t, attendance.StatusPresent, srvRec.Status("stu-1"))
}

func TestSaveClassAttendance_rollsBackOnServerFailure(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	ctx := context.Background()

	require.NoError(t, s.Engine.SaveClassAttendance(ctx, "cls-1", attendanceDate, attendance.Record{
		"stu-1": attendance.StatusPresent,
	}))

	s.Server.ForceStatus(500, 1)
	err := s.Engine.SaveClassAttendance(ctx, "cls-1", attendanceDate, attendance.Record{
		"stu-1": attendance.StatusAbsent,
		"stu-2": attendance.StatusAbsent,
	})
	require.Error(t, err)
	assert.True(t, core.IsServerError(err))

	rec := s.State.Attendance.Record("cls-1", attendanceDate)
	assert.Equal(t, attendance.StatusPresent, rec.Status("stu-1"), "failed write must restore the previous record")
	assert.Equal(t, attendance.StatusUnmarked, rec.Status("stu-2"))
}

func TestSaveClassAttendance_lockedEntriesRejectTeachersBeforeNetwork(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	s.State.Attendance.ReplaceDate("cls-1", attendanceDate, attendance.Record{
		"stu-1": attendance.StatusPresentLocked,
	})
	baseline := s.Server.Hits("PUT /api/attendance/class")

	err := s.Engine.SaveClassAttendance(context.Background(), "cls-1", attendanceDate, attendance.Record{
		"stu-1": attendance.StatusAbsent,
	})
	require.Error(t, err)
	assert.True(t, core.IsPermissionError(err), "want PermissionError, got %T", err)
	assert.Equal(t, baseline, s.Server.Hits("PUT /api/attendance/class"), "rejected batches never reach the network")
	assert.Equal(t, attendance.StatusPresentLocked, s.State.Attendance.Record("cls-1", attendanceDate).Status("stu-1"))
}

func TestSaveClassAttendance_restatingALockedValueIsANoOp(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	s.State.Attendance.ReplaceDate("cls-1", attendanceDate, attendance.Record{
		"stu-1": attendance.StatusPresentLocked,
	})

	// re-submitting the locked value alongside a fresh mark is allowed
	require.NoError(t, s.Engine.SaveClassAttendance(context.Background(), "cls-1", attendanceDate, attendance.Record{
		"stu-1": attendance.StatusPresentLocked,
		"stu-2": attendance.StatusPresent,
	}))
	rec := s.State.Attendance.Record("cls-1", attendanceDate)
	assert.Equal(t, attendance.StatusPresentLocked, rec.Status("stu-1"))
	assert.Equal(t, attendance.StatusPresent, rec.Status("stu-2"))
}

func TestUpdateAttendance_mergesSingleField(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	ctx := context.Background()

	require.NoError(t, s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-1", attendance.StatusPresent))
	require.NoError(t, s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-2", attendance.StatusAbsent))

	rec := s.State.Attendance.Record("cls-1", attendanceDate)
	assert.Equal(t, attendance.StatusPresent, rec.Status("stu-1"))
	assert.Equal(t, attendance.StatusAbsent, rec.Status("stu-2"))
	assert.Equal(t, 2, s.Server.Hits("PUT /api/attendance"))
}

func TestUpdateAttendance_unmarkRemovesTheEntry(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	ctx := context.Background()

	require.NoError(t, s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-1", attendance.StatusPresent))
	require.NoError(t, s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-1", attendance.StatusUnmarked))

	rec := s.State.Attendance.Record("cls-1", attendanceDate)
	_, ok := rec["stu-1"]
	assert.False(t, ok, "unmarked entries are deleted, not stored")
}

func TestUpdateAttendance_studentsAreRejected(t *testing.T) {
	s := testutil.NewStack(t)
	s.Login(t, "amina", catalog.RoleStudent)
	baseline := s.Server.TotalHits()

	err := s.Engine.UpdateAttendance(context.Background(), "cls-1", attendanceDate, "stu-1", attendance.StatusPresent)
	require.Error(t, err)
	assert.True(t, core.IsPermissionError(err))
	assert.Equal(t, baseline, s.Server.TotalHits())
}

func TestUpdateAttendance_teacherCannotSuggest(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	baseline := s.Server.TotalHits()

	err := s.Engine.UpdateAttendance(context.Background(), "cls-1", attendanceDate, "stu-1", attendance.StatusPresentSuggested)
	require.Error(t, err)
	assert.True(t, core.IsPermissionError(err))
	assert.Equal(t, baseline, s.Server.TotalHits())
}

func TestUpdateAttendance_teacherConfirmsSuggestionAsPlainPresent(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	s.State.Attendance.ReplaceDate("cls-1", attendanceDate, attendance.Record{
		"stu-1": attendance.StatusPresentSuggested,
	})

	require.NoError(t, s.Engine.UpdateAttendance(context.Background(), "cls-1", attendanceDate, "stu-1", attendance.StatusPresent))
	assert.Equal(t, attendance.StatusPresent, s.State.Attendance.Record("cls-1", attendanceDate).Status("stu-1"))
}

func TestUpdateAttendance_adminLocksThenTeacherIsBlocked(t *testing.T) {
	s := testutil.NewStack(t)
	ctx := context.Background()

	s.LoginAdmin(t)
	require.NoError(t, s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-1", attendance.StatusAbsentLocked))

	s.LoginTeacher(t)
	// the teacher's bulk fetch brings the locked mark in
	require.Equal(t, attendance.StatusAbsentLocked, s.State.Attendance.Record("cls-1", attendanceDate).Status("stu-1"))

	err := s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-1", attendance.StatusPresent)
	require.Error(t, err)
	assert.True(t, core.IsPermissionError(err))
}

func TestUpdateAttendance_rollsBackOnServerFailure(t *testing.T) {
	s := testutil.NewStack(t)
	s.LoginTeacher(t)
	ctx := context.Background()

	require.NoError(t, s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-1", attendance.StatusPresent))

	s.Server.ForceStatus(503, 1)
	err := s.Engine.UpdateAttendance(ctx, "cls-1", attendanceDate, "stu-1", attendance.StatusAbsent)
	require.Error(t, err)
	assert.Equal(t, attendance.StatusPresent, s.State.Attendance.Record("cls-1", attendanceDate).Status("stu-1"))
}
