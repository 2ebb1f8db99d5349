package catalog

import "github.com/pkg/errors"

// Kind identifies one of the uniform CRUD entity categories. It is a closed
// enum: dispatch on it is always a switch, never a lookup table.
type Kind int

const (
	KindClass Kind = iota
	KindFaculty
	KindSubject
	KindRoom
	KindStudent
	KindInstitution
	KindUser
)

var Kinds = []Kind{KindClass, KindFaculty, KindSubject, KindRoom, KindStudent, KindInstitution, KindUser}

var ErrUnknownKind = errors.New("unknown entity kind")

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindFaculty:
		return "faculty"
	case KindSubject:
		return "subject"
	case KindRoom:
		return "room"
	case KindStudent:
		return "student"
	case KindInstitution:
		return "institution"
	case KindUser:
		return "user"
	}
	return "unknown"
}

// Path is the kind's URL segment on the campus API.
func (k Kind) Path() string {
	switch k {
	case KindClass:
		return "classes"
	case KindFaculty:
		return "faculty"
	case KindSubject:
		return "subjects"
	case KindRoom:
		return "rooms"
	case KindStudent:
		return "students"
	case KindInstitution:
		return "institutions"
	case KindUser:
		return "users"
	}
	return ""
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if s == k.String() || s == k.Path() {
			return k, nil
		}
	}
	return 0, errors.Wrap(ErrUnknownKind, s)
}

// Entity is implemented by every record that lives in a kind collection.
type Entity interface {
	EntityID() string
	EntityKind() Kind
}

// Roles
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Role     Role   `json:"role" validate:"required,role"`
	// ProfileID links the account to its Faculty or Student record.
	ProfileID string `json:"profileId,omitempty"`
}

func (u User) EntityID() string { return u.ID }
func (u User) EntityKind() Kind { return KindUser }
func (u User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool  { return u.Role == RoleTeacher }
func (u User) IsStudent() bool  { return u.Role == RoleStudent }

type Class struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Year    int    `json:"year,omitempty"`
	Section string `json:"section,omitempty"`
}

func (c Class) EntityID() string { return c.ID }
func (c Class) EntityKind() Kind { return KindClass }

type Faculty struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name" validate:"required"`
	Email      string   `json:"email,omitempty" validate:"omitempty,email"`
	SubjectIDs []string `json:"subjectIds,omitempty"`
}

func (f Faculty) EntityID() string { return f.ID }
func (f Faculty) EntityKind() Kind { return KindFaculty }

type Subject struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" validate:"required"`
	Code string `json:"code,omitempty"`
}

func (s Subject) EntityID() string { return s.ID }
func (s Subject) EntityKind() Kind { return KindSubject }

type Room struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity,omitempty"`
}

func (r Room) EntityID() string { return r.ID }
func (r Room) EntityKind() Kind { return KindRoom }

type Student struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	RollNo  string `json:"rollNo,omitempty"`
	ClassID string `json:"classId,omitempty"`
}

func (s Student) EntityID() string { return s.ID }
func (s Student) EntityKind() Kind { return KindStudent }

type Institution struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address,omitempty"`
}

func (i Institution) EntityID() string { return i.ID }
func (i Institution) EntityKind() Kind { return KindInstitution }

// ChatWindow is the daily wall-clock interval during which the class channel
// accepts messages. Both bounds are inclusive; an unset window keeps the
// channel closed.
type ChatWindow struct {
	Start string `json:"start,omitempty" validate:"omitempty,hhmm"`
	End   string `json:"end,omitempty" validate:"omitempty,hhmm"`
}

func (w ChatWindow) IsSet() bool { return w.Start != "" && w.End != "" }

type FacultyPreference struct {
	FacultyID string   `json:"facultyId" validate:"required"`
	Days      []string `json:"days,omitempty"`
	Slots     []string `json:"slots,omitempty"`
}

// Constraints is a per-tenant singleton; updates replace it wholesale.
type Constraints struct {
	FacultyPreferences []FacultyPreference `json:"facultyPreferences,omitempty" validate:"omitempty,dive"`
	ChatWindow         ChatWindow          `json:"chatWindow,omitempty"`
	CustomConstraints  []string            `json:"customConstraints,omitempty"`
}

// TimetableEntry is an immutable snapshot row produced by the external
// timetable generator; the board is only ever replaced as a whole.
type TimetableEntry struct {
	Day       string `json:"day"`
	Time      string `json:"time"`
	ClassName string `json:"className"`
	Subject   string `json:"subject"`
	Faculty   string `json:"faculty"`
	Room      string `json:"room"`
	Type      string `json:"type,omitempty"`
}
