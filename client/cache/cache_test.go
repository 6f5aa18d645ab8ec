package cache

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir(), "loopdesk", zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestSetGetRoundtrip(t *testing.T) {
	c := newTestCache(t)

	c.Set("projects", payload{Name: "Website", Count: 3})

	got, ok := Get[payload](c, "projects")
	require.True(t, ok)
	assert.Equal(t, "Website", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetAbsentKey(t *testing.T) {
	c := newTestCache(t)

	got, ok := Get[payload](c, "nothing")
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestGetCorruptEntry(t *testing.T) {
	c := newTestCache(t)
	c.Set("projects", payload{Name: "Website"})

	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "projects.json"), []byte("{not json"), 0o644))

	got, ok := Get[payload](c, "projects")
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestSetSkipsUnserializableValue(t *testing.T) {
	c := newTestCache(t)
	c.Set("projects", payload{Name: "Kept"})

	// NaN cannot be marshaled; the previous value must survive.
	c.Set("projects", math.NaN())

	got, ok := Get[payload](c, "projects")
	require.True(t, ok)
	assert.Equal(t, "Kept", got.Name)
}

func TestLastSetWins(t *testing.T) {
	c := newTestCache(t)

	c.Set("projects", payload{Count: 1})
	c.Set("projects", payload{Count: 2})

	got, ok := Get[payload](c, "projects")
	require.True(t, ok)
	assert.Equal(t, 2, got.Count)
}

func TestClearRemovesNamespace(t *testing.T) {
	c := newTestCache(t)
	c.Set("projects", payload{Count: 1})
	c.Set("tasks", payload{Count: 2})

	c.Clear()

	_, ok := Get[payload](c, "projects")
	assert.False(t, ok)
	_, ok = Get[payload](c, "tasks")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	c.Set("projects", payload{Count: 1})

	c.Delete("projects")
	_, ok := Get[payload](c, "projects")
	assert.False(t, ok)

	// Deleting a missing key is a no-op.
	c.Delete("projects")
}

func TestKeySanitization(t *testing.T) {
	c := newTestCache(t)

	c.Set("../escape", payload{Count: 1})

	entries, err := os.ReadDir(c.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "..")
}
