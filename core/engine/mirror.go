package engine

import (
	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/chat"
)

type (
	// Collection is one ordered, id-keyed kind collection of the local mirror.
	// It is written only by the Engine; snapshots are defensive copies.
	Collection[T catalog.Entity] interface {
		Upsert(item T)
		Remove(id string)
		Get(id string) (T, bool)
		Snapshot() []T
		Replace(items []T)
		Clear()
	}

	// TimetableBoard holds the immutable timetable snapshot, replaced wholesale.
	TimetableBoard interface {
		Replace(entries []catalog.TimetableEntry)
		Snapshot() []catalog.TimetableEntry
		Clear()
	}

	// ConstraintsBox holds the Constraints singleton, replaced wholesale.
	ConstraintsBox interface {
		Replace(c catalog.Constraints)
		Get() catalog.Constraints
		Clear()
	}

	// AttendanceBook is the two-level attendance index. Every write replaces
	// maps structurally at both levels so subscribers observing referential
	// identity see the change.
	AttendanceBook interface {
		Load(book attendance.Book)
		Record(classID, date string) attendance.Record
		ReplaceDate(classID, date string, rec attendance.Record)
		Snapshot() attendance.Book
		Clear()
	}

	// ChatLog is the append-only message store. Remove exists solely so the
	// optimistic primitive can roll back an unconfirmed append.
	ChatLog interface {
		Load(msgs []chat.Message)
		Append(msg chat.Message)
		Remove(id string)
		Channel(channel, classID string) []chat.Message
		Clear()
	}
)

// Mirror bundles the typed sections of the Entity Store the Engine writes to.
type Mirror struct {
	Classes      Collection[catalog.Class]
	Faculty      Collection[catalog.Faculty]
	Subjects     Collection[catalog.Subject]
	Rooms        Collection[catalog.Room]
	Students     Collection[catalog.Student]
	Institutions Collection[catalog.Institution]
	Users        Collection[catalog.User]
	Timetable    TimetableBoard
	Constraints  ConstraintsBox
	Attendance   AttendanceBook
	Chat         ChatLog
}

func (m Mirror) load(ds *Dataset) {
	m.Classes.Replace(ds.Classes)
	m.Faculty.Replace(ds.Faculty)
	m.Subjects.Replace(ds.Subjects)
	m.Rooms.Replace(ds.Rooms)
	m.Students.Replace(ds.Students)
	m.Institutions.Replace(ds.Institutions)
	m.Users.Replace(ds.Users)
	m.Timetable.Replace(ds.Timetable)
	m.Constraints.Replace(ds.Constraints)
	m.Attendance.Load(ds.Attendance)
	m.Chat.Load(ds.Messages)
}

func (m Mirror) clear() {
	m.Classes.Clear()
	m.Faculty.Clear()
	m.Subjects.Clear()
	m.Rooms.Clear()
	m.Students.Clear()
	m.Institutions.Clear()
	m.Users.Clear()
	m.Timetable.Clear()
	m.Constraints.Clear()
	m.Attendance.Clear()
	m.Chat.Clear()
}

func (m Mirror) remove(kind catalog.Kind, id string) error {
	switch kind {
	case catalog.KindClass:
		m.Classes.Remove(id)
	case catalog.KindFaculty:
		m.Faculty.Remove(id)
	case catalog.KindSubject:
		m.Subjects.Remove(id)
	case catalog.KindRoom:
		m.Rooms.Remove(id)
	case catalog.KindStudent:
		m.Students.Remove(id)
	case catalog.KindInstitution:
		m.Institutions.Remove(id)
	case catalog.KindUser:
		m.Users.Remove(id)
	default:
		return catalog.ErrUnknownKind
	}
	return nil
}
