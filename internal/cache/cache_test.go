package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	Name  string
	Count int
	Items []string
}

func TestRoundTrip(t *testing.T) {
	c := New(t.TempDir())
	key := Key([]byte("program"), "pta")

	var missing payload
	assert.False(t, c.Load(key, &missing), "empty cache misses")

	in := payload{Name: "pta", Count: 3, Items: []string{"a", "b"}}
	require.NoError(t, c.Store(key, in))

	var out payload
	require.True(t, c.Load(key, &out))
	assert.Equal(t, in, out)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestKeyDistinguishesInputs(t *testing.T) {
	base := Key([]byte("program"), "pta")
	assert.NotEqual(t, base, Key([]byte("program2"), "pta"), "program changes change the key")
	assert.NotEqual(t, base, Key([]byte("program"), "cha"), "analysis changes change the key")
	assert.Equal(t, base, Key([]byte("program"), "pta"), "keys are deterministic")
}

func TestVersionMismatchMisses(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	key := Key([]byte("program"), "pta")
	require.NoError(t, c.Store(key, payload{Name: "x"}))

	stale, err := msgpack.Marshal(envelope{Version: "0.0.1", Payload: []byte{}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".msgpack"), stale, 0o644))

	var out payload
	assert.False(t, c.Load(key, &out))
}

func TestCorruptEntryMisses(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	key := Key([]byte("program"), "pta")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".msgpack"), []byte("garbage"), 0o644))

	var out payload
	assert.False(t, c.Load(key, &out))
}
