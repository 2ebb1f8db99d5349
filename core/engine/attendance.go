package engine

import (
	"context"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
)

func (eng *Engine) actor() (attendance.Actor, error) {
	usr, ok := eng.sess.User()
	if !ok {
		return "", core.NewAuthError("not authenticated")
	}
	switch usr.Role {
	case catalog.RoleAdmin:
		return attendance.ActorAdmin, nil
	case catalog.RoleTeacher:
		return attendance.ActorTeacher, nil
	}
	return "", core.NewPermissionError("students may not mark attendance")
}

// SaveClassAttendance applies a full per-date record map optimistically and
// persists it. The reconciler vets every transition first: an illegal batch
// never reaches the mirror or the network. When persistence fails, the
// pre-mutation record is restored and the failure reported.
func (eng *Engine) SaveClassAttendance(ctx context.Context, classID, date string, desired attendance.Record) error {
	actor, err := eng.actor()
	if err != nil {
		return err
	}
	prev := eng.mirror.Attendance.Record(classID, date)
	next, err := attendance.ReconcileRecord(prev, desired, actor)
	if err != nil {
		return err
	}
	return eng.runOptimistic(ctx, mutation{
		apply:   func() { eng.mirror.Attendance.ReplaceDate(classID, date, next) },
		persist: func(ctx context.Context) error { return eng.gw.SaveClassAttendance(ctx, classID, date, next) },
		restore: func() { eng.mirror.Attendance.ReplaceDate(classID, date, prev) },
	})
}

// UpdateAttendance is the single-field write path: one (class, date, student)
// status, merged into the nested map via structural copy so subscribers
// observing referential identity see the change.
func (eng *Engine) UpdateAttendance(ctx context.Context, classID, date, studentID string, desired attendance.Status) error {
	actor, err := eng.actor()
	if err != nil {
		return err
	}
	prev := eng.mirror.Attendance.Record(classID, date)
	status, err := attendance.Reconcile(prev.Status(studentID), desired, actor)
	if err != nil {
		return err
	}

	next := prev.Clone()
	if status == attendance.StatusUnmarked {
		delete(next, studentID)
	} else {
		next[studentID] = status
	}
	return eng.runOptimistic(ctx, mutation{
		apply:   func() { eng.mirror.Attendance.ReplaceDate(classID, date, next) },
		persist: func(ctx context.Context) error { return eng.gw.SaveAttendance(ctx, classID, date, studentID, status) },
		restore: func() { eng.mirror.Attendance.ReplaceDate(classID, date, prev) },
	})
}
