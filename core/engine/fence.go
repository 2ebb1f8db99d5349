package engine

import (
	"sync"

	"github.com/kymoh/darasa/core/catalog"
)

type fenceKey struct {
	kind catalog.Kind
	id   string
}

// fences orders racing writes per (kind, id): every request is issued a
// monotonically increasing token, and a response may only commit if no
// younger request has committed before it. Responses that lose the race are
// discarded instead of clobbering newer state.
type fences struct {
	mu        sync.Mutex
	issued    map[fenceKey]uint64
	committed map[fenceKey]uint64
}

func newFences() *fences {
	return &fences{
		issued:    make(map[fenceKey]uint64),
		committed: make(map[fenceKey]uint64),
	}
}

func (f *fences) issue(key fenceKey) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued[key]++
	return f.issued[key]
}

// commit reports whether the response holding `token` is still the freshest
// writer for its key; stale responses return false and must not be applied.
func (f *fences) commit(key fenceKey, token uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token <= f.committed[key] {
		return false
	}
	f.committed[key] = token
	return true
}
