// Package apitest provides an in-process campus API double for tests: every
// route of the real server over an in-memory dataset, plus failure injection
// (forced statuses and dropped connections) for exercising the client's retry
// and classification paths.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/chat"
	"github.com/kymoh/darasa/core/engine"
	"github.com/kymoh/darasa/core/session"
)

const DefaultPassword = "Str0ngPass!"

var testSecret = []byte("darasa.apitest.signing.key")

type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	data      engine.Dataset
	seed      engine.Dataset
	passwords map[string]string
	seq       int
	hits      map[string]int

	forceStatus int
	forceCount  int
	dropCount   int
}

func New() *Server {
	s := &Server{
		passwords: make(map[string]string),
		hits:      make(map[string]int),
	}
	s.Seed(DefaultDataset())

	e := echo.New()
	e.HideBanner = true
	e.Use(s.countHits, s.injectFailures)

	pub := e.Group("/api")
	pub.POST("/auth/login", s.login)

	auth := e.Group("/api", middleware.JWTWithConfig(middleware.JWTConfig{SigningKey: testSecret}))
	auth.GET("/all-data", s.allData)
	auth.PUT("/constraints", s.putConstraints)
	auth.POST("/timetable", s.postTimetable)
	auth.PUT("/attendance/class", s.putClassAttendance)
	auth.PUT("/attendance", s.putAttendance)
	auth.POST("/chat/ask", s.chatAsk)
	auth.POST("/reset-data", s.resetData)
	auth.POST("/:kind", s.saveEntity)
	auth.PUT("/:kind/:id", s.saveEntity)
	auth.DELETE("/:kind/:id", s.deleteEntity)

	s.srv = httptest.NewServer(e)
	return s
}

func (s *Server) URL() string { return s.srv.URL }
func (s *Server) Close()      { s.srv.Close() }

// Seed replaces both the live dataset and the snapshot restored by
// /reset-data; every seeded user gets DefaultPassword.
func (s *Server) Seed(ds engine.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = cloneDataset(ds)
	s.data = cloneDataset(ds)
	for _, usr := range ds.Users {
		if _, ok := s.passwords[usr.Username]; !ok {
			s.passwords[usr.Username] = DefaultPassword
		}
	}
}

func (s *Server) SetPassword(username, pwd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords[username] = pwd
}

// TokenFor mints a valid bearer token for usr, bypassing the login route.
func (s *Server) TokenFor(usr catalog.User) string {
	claims := &session.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   usr.ID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		Username:  usr.Username,
		Role:      string(usr.Role),
		ProfileID: usr.ProfileID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		panic(err)
	}
	return token
}

// ForceStatus makes the next n authenticated requests fail with the given
// HTTP status.
func (s *Server) ForceStatus(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceStatus = status
	s.forceCount = n
}

// DropConnections makes the next n requests die at the transport level: the
// connection is closed before any response bytes are written.
func (s *Server) DropConnections(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropCount = n
}

// Hits reports how many requests matched a route, keyed as "METHOD /path"
// with the echo route pattern, e.g. "PUT /api/attendance/class".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, v := range s.hits {
		n += v
	}
	return n
}

func (s *Server) Dataset() engine.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDataset(s.data)
}

func (s *Server) countHits(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.hits[c.Request().Method+" "+c.Path()]++
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) injectFailures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		if s.dropCount > 0 {
			s.dropCount--
			s.mu.Unlock()
			if hj, ok := c.Response().Writer.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					conn.Close()
					return nil
				}
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "drop requested but hijack unsupported")
		}
		if s.forceCount > 0 && c.Path() != "/api/auth/login" {
			s.forceCount--
			status := s.forceStatus
			s.mu.Unlock()
			return echo.NewHTTPError(status, "injected failure")
		}
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) nextID() string {
	s.seq++
	return "srv-" + strconv.Itoa(s.seq)
}

func (s *Server) login(c echo.Context) error {
	var creds engine.Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, usr := range s.data.Users {
		if usr.Username == creds.Username && usr.Role == creds.Role {
			if s.passwords[usr.Username] != creds.Password {
				break
			}
			return c.JSON(http.StatusOK, engine.LoginResult{Token: s.TokenFor(usr), User: usr})
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
}

func (s *Server) allData(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.data)
}

func (s *Server) resetData(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = cloneDataset(s.seed)
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (s *Server) putConstraints(c echo.Context) error {
	var cons catalog.Constraints
	if err := c.Bind(&cons); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s.mu.Lock()
	s.data.Constraints = cons
	s.mu.Unlock()
	return c.JSON(http.StatusOK, cons)
}

func (s *Server) postTimetable(c echo.Context) error {
	var entries []catalog.TimetableEntry
	if err := c.Bind(&entries); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s.mu.Lock()
	s.data.Timetable = entries
	s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (s *Server) putClassAttendance(c echo.Context) error {
	var req struct {
		ClassID string            `json:"classId"`
		Date    string            `json:"date"`
		Records attendance.Record `json:"records"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s.mu.Lock()
	if s.data.Attendance == nil {
		s.data.Attendance = attendance.Book{}
	}
	if s.data.Attendance[req.ClassID] == nil {
		s.data.Attendance[req.ClassID] = make(map[string]attendance.Record)
	}
	s.data.Attendance[req.ClassID][req.Date] = req.Records.Clone()
	s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (s *Server) putAttendance(c echo.Context) error {
	var req struct {
		ClassID   string            `json:"classId"`
		Date      string            `json:"date"`
		StudentID string            `json:"studentId"`
		Status    attendance.Status `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s.mu.Lock()
	if s.data.Attendance == nil {
		s.data.Attendance = attendance.Book{}
	}
	if s.data.Attendance[req.ClassID] == nil {
		s.data.Attendance[req.ClassID] = make(map[string]attendance.Record)
	}
	rec := s.data.Attendance[req.ClassID][req.Date].Clone()
	rec[req.StudentID] = req.Status
	s.data.Attendance[req.ClassID][req.Date] = rec
	s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (s *Server) chatAsk(c echo.Context) error {
	var req struct {
		MessageText string `json:"messageText"`
		ClassID     string `json:"classId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s.mu.Lock()
	reply := chat.Message{
		ID:        s.nextID(),
		ClassID:   req.ClassID,
		Author:    "assistant",
		Role:      chat.RoleAssistant,
		Text:      "re: " + req.MessageText,
		Timestamp: time.Now().UTC(),
	}
	s.data.Messages = append(s.data.Messages, reply)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, reply)
}

func (s *Server) saveEntity(c echo.Context) error {
	kind, err := catalog.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown entity kind")
	}
	id := c.Param("id")
	switch kind {
	case catalog.KindClass:
		return save(s, c, &s.data.Classes, id)
	case catalog.KindFaculty:
		return save(s, c, &s.data.Faculty, id)
	case catalog.KindSubject:
		return save(s, c, &s.data.Subjects, id)
	case catalog.KindRoom:
		return save(s, c, &s.data.Rooms, id)
	case catalog.KindStudent:
		return save(s, c, &s.data.Students, id)
	case catalog.KindInstitution:
		return save(s, c, &s.data.Institutions, id)
	case catalog.KindUser:
		return save(s, c, &s.data.Users, id)
	}
	return echo.NewHTTPError(http.StatusNotFound, "unknown entity kind")
}

func (s *Server) deleteEntity(c echo.Context) error {
	kind, err := catalog.ParseKind(c.Param("kind"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown entity kind")
	}
	id := c.Param("id")
	var found bool
	switch kind {
	case catalog.KindClass:
		found = remove(s, &s.data.Classes, id)
	case catalog.KindFaculty:
		found = remove(s, &s.data.Faculty, id)
	case catalog.KindSubject:
		found = remove(s, &s.data.Subjects, id)
	case catalog.KindRoom:
		found = remove(s, &s.data.Rooms, id)
	case catalog.KindStudent:
		found = remove(s, &s.data.Students, id)
	case catalog.KindInstitution:
		found = remove(s, &s.data.Institutions, id)
	case catalog.KindUser:
		found = remove(s, &s.data.Users, id)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func save[T catalog.Entity](s *Server, c echo.Context, list *[]T, id string) error {
	var item T
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		setID(&item, s.nextID())
		*list = append(*list, item)
		return c.JSON(http.StatusOK, item)
	}
	setID(&item, id)
	for i := range *list {
		if (*list)[i].EntityID() == id {
			(*list)[i] = item
			return c.JSON(http.StatusOK, item)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "not found")
}

func remove[T catalog.Entity](s *Server, list *[]T, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range *list {
		if (*list)[i].EntityID() == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

func setID[T any](item *T, id string) {
	reflect.ValueOf(item).Elem().FieldByName("ID").SetString(id)
}

func cloneDataset(ds engine.Dataset) engine.Dataset {
	out := ds
	out.Classes = append([]catalog.Class(nil), ds.Classes...)
	out.Faculty = append([]catalog.Faculty(nil), ds.Faculty...)
	out.Subjects = append([]catalog.Subject(nil), ds.Subjects...)
	out.Rooms = append([]catalog.Room(nil), ds.Rooms...)
	out.Students = append([]catalog.Student(nil), ds.Students...)
	out.Institutions = append([]catalog.Institution(nil), ds.Institutions...)
	out.Users = append([]catalog.User(nil), ds.Users...)
	out.Timetable = append([]catalog.TimetableEntry(nil), ds.Timetable...)
	out.Messages = append([]chat.Message(nil), ds.Messages...)
	out.Attendance = ds.Attendance.Clone()
	return out
}

// DefaultDataset is the fixture restored by /reset-data unless a test seeds
// its own.
func DefaultDataset() engine.Dataset {
	return engine.Dataset{
		Classes: []catalog.Class{{ID: "cls-1", Name: "CSE-A", Year: 3}},
		Faculty: []catalog.Faculty{{ID: "fac-1", Name: "Grace Achieng", Email: "grace@campus.test"}},
		Subjects: []catalog.Subject{
			{ID: "sub-1", Name: "Operating Systems", Code: "CS301"},
			{ID: "sub-2", Name: "Databases", Code: "CS302"},
		},
		Rooms: []catalog.Room{{ID: "rm-1", Name: "B-204", Capacity: 60}},
		Students: []catalog.Student{
			{ID: "stu-1", Name: "Amina Yusuf", RollNo: "CSE-A-01", ClassID: "cls-1"},
			{ID: "stu-2", Name: "Brian Otieno", RollNo: "CSE-A-02", ClassID: "cls-1"},
		},
		Institutions: []catalog.Institution{{ID: "inst-1", Name: "Lakeview Institute of Technology"}},
		Users: []catalog.User{
			{ID: "usr-1", Username: "admin", Role: catalog.RoleAdmin},
			{ID: "usr-2", Username: "grace", Role: catalog.RoleTeacher, ProfileID: "fac-1"},
			{ID: "usr-3", Username: "amina", Role: catalog.RoleStudent, ProfileID: "stu-1"},
		},
		Constraints: catalog.Constraints{
			ChatWindow: catalog.ChatWindow{Start: "08:00", End: "18:00"},
		},
		Attendance: attendance.Book{},
	}
}
