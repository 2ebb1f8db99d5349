package inmemstate

import (
	"sync"

	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/engine"
)

// State is the in-memory Entity Store: one section per entity kind plus the
// timetable board, the constraints singleton, the attendance book and the
// chat log. It is written only by the Sync Engine and read by everyone.
type State struct {
	Classes      *Collection[catalog.Class]
	Faculty      *Collection[catalog.Faculty]
	Subjects     *Collection[catalog.Subject]
	Rooms        *Collection[catalog.Room]
	Students     *Collection[catalog.Student]
	Institutions *Collection[catalog.Institution]
	Users        *Collection[catalog.User]
	Timetable    *TimetableBoard
	Constraints  *ConstraintsBox
	Attendance   *AttendanceBook
	Chat         *ChatLog
}

func New() *State {
	return &State{
		Classes:      NewCollection[catalog.Class](),
		Faculty:      NewCollection[catalog.Faculty](),
		Subjects:     NewCollection[catalog.Subject](),
		Rooms:        NewCollection[catalog.Room](),
		Students:     NewCollection[catalog.Student](),
		Institutions: NewCollection[catalog.Institution](),
		Users:        NewCollection[catalog.User](),
		Timetable:    &TimetableBoard{},
		Constraints:  &ConstraintsBox{},
		Attendance:   &AttendanceBook{book: attendance.Book{}},
		Chat:         &ChatLog{},
	}
}

// Mirror wires the store's sections into the engine's Mirror contract.
func (st *State) Mirror() engine.Mirror {
	return engine.Mirror{
		Classes:      st.Classes,
		Faculty:      st.Faculty,
		Subjects:     st.Subjects,
		Rooms:        st.Rooms,
		Students:     st.Students,
		Institutions: st.Institutions,
		Users:        st.Users,
		Timetable:    st.Timetable,
		Constraints:  st.Constraints,
		Attendance:   st.Attendance,
		Chat:         st.Chat,
	}
}

var (
	_ engine.Collection[catalog.Class] = (*Collection[catalog.Class])(nil)
	_ engine.TimetableBoard            = (*TimetableBoard)(nil)
	_ engine.ConstraintsBox            = (*ConstraintsBox)(nil)
	_ engine.AttendanceBook            = (*AttendanceBook)(nil)
	_ engine.ChatLog                   = (*ChatLog)(nil)
)

// TimetableBoard holds the immutable timetable snapshot.
type TimetableBoard struct {
	mu       sync.RWMutex
	entries  []catalog.TimetableEntry
	watchers []chan struct{}
}

func (b *TimetableBoard) Replace(entries []catalog.TimetableEntry) {
	cp := make([]catalog.TimetableEntry, len(entries))
	copy(cp, entries)
	b.mu.Lock()
	b.entries = cp
	b.mu.Unlock()
	b.notify()
}

func (b *TimetableBoard) Snapshot() []catalog.TimetableEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]catalog.TimetableEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *TimetableBoard) Clear() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
	b.notify()
}

func (b *TimetableBoard) Watch() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{}, 1)
	b.watchers = append(b.watchers, ch)
	return ch
}

func (b *TimetableBoard) notify() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// ConstraintsBox holds the Constraints singleton; updates replace it
// wholesale, never partially.
type ConstraintsBox struct {
	mu          sync.RWMutex
	constraints catalog.Constraints
	watchers    []chan struct{}
}

func (b *ConstraintsBox) Replace(c catalog.Constraints) {
	b.mu.Lock()
	b.constraints = c
	b.mu.Unlock()
	b.notify()
}

func (b *ConstraintsBox) Get() catalog.Constraints {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.constraints
}

func (b *ConstraintsBox) Clear() {
	b.mu.Lock()
	b.constraints = catalog.Constraints{}
	b.mu.Unlock()
	b.notify()
}

func (b *ConstraintsBox) Watch() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{}, 1)
	b.watchers = append(b.watchers, ch)
	return ch
}

func (b *ConstraintsBox) notify() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
