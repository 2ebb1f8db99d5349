package attendance

// Status is the per (class, date, student) attendance state.
type Status string

const (
	StatusUnmarked         Status = "unmarked"
	StatusPresent          Status = "present"
	StatusAbsent           Status = "absent"
	StatusPresentLocked    Status = "present_locked"
	StatusAbsentLocked     Status = "absent_locked"
	StatusPresentSuggested Status = "present_suggested"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnmarked, StatusPresent, StatusAbsent, StatusPresentLocked, StatusAbsentLocked, StatusPresentSuggested:
		return true
	}
	return false
}

// Locked reports whether the status is an administrator lock, terminal with
// respect to teacher-initiated transitions.
func (s Status) Locked() bool {
	return s == StatusPresentLocked || s == StatusAbsentLocked
}

// Normalize maps a missing/zero status to unmarked: a record is total over
// the class roster, absent keys simply read as unmarked.
func (s Status) Normalize() Status {
	if s == "" {
		return StatusUnmarked
	}
	return s
}

// Actor is the role on whose behalf a transition is attempted.
type Actor string

const (
	ActorTeacher Actor = "teacher"
	ActorAdmin   Actor = "admin"
)

// Record maps studentID to status for one (classId, date). Missing students
// read as unmarked; unmarked entries are not stored.
type Record map[string]Status

func (r Record) Status(studentID string) Status {
	return r[studentID].Normalize()
}

func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for id, st := range r {
		out[id] = st
	}
	return out
}

// Book is the two-level attendance index: classID -> date -> Record.
type Book map[string]map[string]Record

func (b Book) Record(classID, date string) Record {
	if dates, ok := b[classID]; ok {
		return dates[date].Clone()
	}
	return Record{}
}

// Clone copies the book structurally at every level.
func (b Book) Clone() Book {
	if b == nil {
		return Book{}
	}
	out := make(Book, len(b))
	for classID, dates := range b {
		cp := make(map[string]Record, len(dates))
		for date, rec := range dates {
			cp[date] = rec.Clone()
		}
		out[classID] = cp
	}
	return out
}
