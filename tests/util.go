package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/kymoh/darasa/core"
	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/engine"
	"github.com/kymoh/darasa/services/api"
	"github.com/kymoh/darasa/services/api/apitest"
	logsvc "github.com/kymoh/darasa/services/logger"
	inmemsession "github.com/kymoh/darasa/storage/session/inmem"
	inmemstate "github.com/kymoh/darasa/storage/state/inmem"
)

// Stack is a fully wired client stack talking to a fresh fake campus server.
type Stack struct {
	Engine  *engine.Engine
	Server  *apitest.Server
	State   *inmemstate.State
	Session *inmemsession.Store
}

func NewStack(t *testing.T, opts ...engine.Option) *Stack {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	conf := &core.Config{
		AppName:     "darasa-test",
		SessionFile: "unused",
		API: core.APIConfig{
			BaseURL:        srv.URL(),
			RequestTimeout: 5 * time.Second,
			RetryDelay:     10 * time.Millisecond,
		},
	}
	sess := inmemsession.New()
	state := inmemstate.New()
	client := api.NewClient(conf, sess, logsvc.NewNopLogger())
	eng := engine.New(client, state.Mirror(), sess, logsvc.NewNopLogger(), opts...)
	return &Stack{Engine: eng, Server: srv, State: state, Session: sess}
}

func (s *Stack) Login(t *testing.T, username string, role catalog.Role) catalog.User {
	t.Helper()
	usr, err := s.Engine.Login(context.Background(), username, apitest.DefaultPassword, role)
	if err != nil {
		t.Fatalf("Login(%s) failed: %v", username, err)
	}
	return usr
}

func (s *Stack) LoginAdmin(t *testing.T) catalog.User {
	return s.Login(t, "admin", catalog.RoleAdmin)
}

func (s *Stack) LoginTeacher(t *testing.T) catalog.User {
	return s.Login(t, "grace", catalog.RoleTeacher)
}
