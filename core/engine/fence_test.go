package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kymoh/darasa/core/catalog"
)

func TestFences(t *testing.T) {
	f := newFences()
	key := fenceKey{kind: catalog.KindClass, id: "cls-1"}

	first := f.issue(key)
	second := f.issue(key)
	assert.Greater(t, second, first)

	// the younger write commits first; the older response is stale
	assert.True(t, f.commit(key, second))
	assert.False(t, f.commit(key, first), "an older response must not clobber a younger committed write")

	// a fresh token may commit again
	third := f.issue(key)
	assert.True(t, f.commit(key, third))
}

func TestFences_keysAreIndependent(t *testing.T) {
	f := newFences()
	a := fenceKey{kind: catalog.KindClass, id: "cls-1"}
	b := fenceKey{kind: catalog.KindClass, id: "cls-2"}

	ta := f.issue(a)
	tb := f.issue(b)
	assert.True(t, f.commit(a, ta))
	assert.True(t, f.commit(b, tb))
}
