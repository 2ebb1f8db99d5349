package attendance

import (
	"fmt"

	"github.com/kymoh/darasa/core"
)

// Reconcile decides the next status for a single (class, date, student) key.
// It is a pure function; rejected transitions return a PermissionError and
// the caller must not touch the network.
//
// Teachers move freely between unmarked, present and absent, and resolve an
// administrator suggestion the same way (confirming yields a plain, editable
// present). Locked states are terminal for teachers: any attempt to change
// one is rejected. Administrators may set any status, but a suggestion can
// only be placed on an unmarked record.
func Reconcile(current, desired Status, actor Actor) (Status, error) {
	current = current.Normalize()
	desired = desired.Normalize()
	if !desired.Valid() {
		return current, core.NewValidationError(fmt.Errorf("invalid attendance status %q", desired))
	}

	switch actor {
	case ActorAdmin:
		if desired == StatusPresentSuggested && current != StatusUnmarked {
			return current, core.NewPermissionError("a suggestion requires an unmarked record")
		}
		return desired, nil

	case ActorTeacher:
		if current.Locked() {
			if desired == current {
				return current, nil // no-op, e.g. a batch echoing the locked value back
			}
			return current, core.NewPermissionError("locked by administrator")
		}
		switch desired {
		case StatusPresentLocked, StatusAbsentLocked, StatusPresentSuggested:
			return current, core.NewPermissionError("status reserved for administrators")
		}
		return desired, nil
	}
	return current, core.NewPermissionError(fmt.Sprintf("role %q may not mark attendance", actor))
}

// ReconcileRecord applies a full desired record against the current one,
// student by student. Students missing from desired are treated as unmarked.
// The whole batch is rejected on the first illegal transition; the returned
// record is always a fresh map, never an alias of either input.
func ReconcileRecord(current, desired Record, actor Actor) (Record, error) {
	next := make(Record, len(desired))
	for studentID := range union(current, desired) {
		st, err := Reconcile(current.Status(studentID), desired.Status(studentID), actor)
		if err != nil {
			return nil, err
		}
		if st != StatusUnmarked {
			next[studentID] = st
		}
	}
	return next, nil
}

func union(a, b Record) map[string]struct{} {
	ids := make(map[string]struct{}, len(a)+len(b))
	for id := range a {
		ids[id] = struct{}{}
	}
	for id := range b {
		ids[id] = struct{}{}
	}
	return ids
}
