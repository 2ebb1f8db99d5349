package engine

import (
	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/chat"
)

// Credentials is the login payload, validated before it leaves the client.
type Credentials struct {
	Username string       `json:"username" validate:"required"`
	Password string       `json:"password" validate:"required"`
	Role     catalog.Role `json:"role" validate:"required,role"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  catalog.User `json:"user"`
}

// Dataset is the bulk read returned by GET /all-data; it seeds every mirror
// section at session start and after a reset.
type Dataset struct {
	Classes      []catalog.Class          `json:"classes"`
	Faculty      []catalog.Faculty        `json:"faculty"`
	Subjects     []catalog.Subject        `json:"subjects"`
	Rooms        []catalog.Room           `json:"rooms"`
	Students     []catalog.Student        `json:"students"`
	Institutions []catalog.Institution    `json:"institutions"`
	Users        []catalog.User           `json:"users"`
	Constraints  catalog.Constraints      `json:"constraints"`
	Timetable    []catalog.TimetableEntry `json:"timetable"`
	Attendance   attendance.Book          `json:"attendance"`
	Messages     []chat.Message           `json:"messages"`
}
