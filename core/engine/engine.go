package engine

import (
	"context"
	"sync"
	"time"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/attendance"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/chat"
	"github.com/kymoh/darasa/core/session"
)

// Gateway is the Engine's view of the campus API. services/api implements it.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	FetchAll(ctx context.Context) (*Dataset, error)
	SaveEntity(ctx context.Context, kind catalog.Kind, id string, body, out interface{}) error
	DeleteEntity(ctx context.Context, kind catalog.Kind, id string) error
	ReplaceConstraints(ctx context.Context, c catalog.Constraints) (catalog.Constraints, error)
	SaveTimetable(ctx context.Context, entries []catalog.TimetableEntry) error
	SaveClassAttendance(ctx context.Context, classID, date string, rec attendance.Record) error
	SaveAttendance(ctx context.Context, classID, date, studentID string, st attendance.Status) error
	AskChat(ctx context.Context, text, classID string) (chat.Message, error)
	ResetData(ctx context.Context) error
}

// Engine orchestrates create/update/delete/list against the Gateway and
// reconciles results into the mirror: pessimistic for structural entities,
// optimistic for attendance and chat.
type Engine struct {
	gw     Gateway
	mirror Mirror
	sess   session.Manager
	log    core.Logger
	now    func() time.Time

	mu            sync.Mutex
	state         LifecycleState
	stateWatchers []chan LifecycleState

	fences *fences
}

type Option func(*Engine)

// WithClock overrides the engine's wall clock.
func WithClock(now func() time.Time) Option {
	return func(eng *Engine) { eng.now = now }
}

func New(gw Gateway, mirror Mirror, sess session.Manager, logger core.Logger, opts ...Option) *Engine {
	eng := &Engine{
		gw:     gw,
		mirror: mirror,
		sess:   sess,
		log:    logger,
		now:    time.Now,
		state:  StateIdle,
		fences: newFences(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// Mirror exposes the engine's store sections for read-only consumption by
// views and tests.
func (eng *Engine) Mirror() Mirror { return eng.mirror }

func (eng *Engine) requireAuth() error {
	if !eng.sess.Authenticated() {
		return core.NewAuthError("not authenticated")
	}
	return nil
}

// Login authenticates, persists the returned token and identity, then runs
// the bulk fetch. The token change is what forces the re-fetch.
func (eng *Engine) Login(ctx context.Context, username, password string, role catalog.Role) (catalog.User, error) {
	creds := Credentials{
		Username: core.CleanString(username, true /* lower */),
		Password: password,
		Role:     role,
	}
	if err := core.CheckStruct(creds); err != nil {
		return catalog.User{}, err
	}
	res, err := eng.gw.Login(ctx, creds)
	if err != nil {
		return catalog.User{}, err
	}
	if err := eng.sess.Set(res.Token, res.User); err != nil {
		return catalog.User{}, err
	}
	if err := eng.FetchAll(ctx); err != nil {
		return res.User, err
	}
	return res.User, nil
}

// Logout drops the session and the mirror. Protected calls return an
// AuthError until the next Login.
func (eng *Engine) Logout() error {
	eng.mirror.clear()
	eng.setState(StateIdle)
	return eng.sess.Invalidate()
}

// FetchAll repopulates every mirror section from a single bulk read,
// driving the lifecycle loading -> ready | failed.
func (eng *Engine) FetchAll(ctx context.Context) error {
	if err := eng.requireAuth(); err != nil {
		return err
	}
	eng.setState(StateLoading)
	ds, err := eng.gw.FetchAll(ctx)
	if err != nil {
		eng.setState(StateFailed)
		return err
	}
	if err := ctx.Err(); err != nil {
		eng.setState(StateFailed)
		return err
	}
	eng.mirror.load(ds)
	eng.setState(StateReady)
	return nil
}

// ResetAllData triggers the server-side reset then re-runs the bulk fetch.
// Callers block on the loading state for the whole duration.
func (eng *Engine) ResetAllData(ctx context.Context) error {
	if err := eng.requireAuth(); err != nil {
		return err
	}
	eng.setState(StateLoading)
	if err := eng.gw.ResetData(ctx); err != nil {
		eng.setState(StateFailed)
		return err
	}
	return eng.FetchAll(ctx)
}

// ReplaceConstraints replaces the Constraints singleton wholesale,
// pessimistically.
func (eng *Engine) ReplaceConstraints(ctx context.Context, c catalog.Constraints) (catalog.Constraints, error) {
	if err := eng.requireAuth(); err != nil {
		return catalog.Constraints{}, err
	}
	if err := core.CheckStruct(c); err != nil {
		return catalog.Constraints{}, err
	}
	saved, err := eng.gw.ReplaceConstraints(ctx, c)
	if err != nil {
		return catalog.Constraints{}, err
	}
	if err := ctx.Err(); err != nil {
		return catalog.Constraints{}, err
	}
	eng.mirror.Constraints.Replace(saved)
	return saved, nil
}

// SaveTimetable persists a freshly generated timetable snapshot and replaces
// the local board once the server confirms.
func (eng *Engine) SaveTimetable(ctx context.Context, entries []catalog.TimetableEntry) error {
	if err := eng.requireAuth(); err != nil {
		return err
	}
	if err := eng.gw.SaveTimetable(ctx, entries); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	eng.mirror.Timetable.Replace(entries)
	return nil
}
