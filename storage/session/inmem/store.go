package inmemsession

import (
	"sync"

	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/session"
)

var _ session.Manager = (*Store)(nil)

// Store keeps the session in memory only; used by tests and short-lived
// tooling that must not leave credentials on disk.
type Store struct {
	mu    sync.RWMutex
	token string
	user  catalog.User
}

func New() *Store { return &Store{} }

func (st *Store) Token() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.token
}

func (st *Store) User() (catalog.User, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.user, st.token != ""
}

func (st *Store) Authenticated() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.token != ""
}

func (st *Store) Set(token string, usr catalog.User) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.token = token
	st.user = usr
	return nil
}

func (st *Store) Invalidate() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.token = ""
	st.user = catalog.User{}
	return nil
}
