package filesession

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/kymoh/darasa/core/catalog"
	"github.com/kymoh/darasa/core/session"
)

var _ session.Manager = (*Store)(nil)

type persisted struct {
	Token string       `json:"token"`
	User  catalog.User `json:"user"`
}

// Store persists the session token and identity as a JSON file, readable only
// by the owner. A missing file simply means "unauthenticated".
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
	user  catalog.User
}

func Open(path string) (*Store, error) {
	st := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, errors.Wrapf(err, "reading session file %s", path)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		// A corrupt session file is treated as no session.
		return st, nil
	}
	st.token = p.Token
	st.user = p.User
	return st, nil
}

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

	data, err := json.Marshal(persisted{Token: token, User: usr})
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	if err := os.WriteFile(st.path, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing session file %s", st.path)
	}
	return nil
}

func (st *Store) Invalidate() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.token = ""
	st.user = catalog.User{}
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing session file %s", st.path)
	}
	return nil
}
