package module

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the registry is process global, so these tests do not run in parallel

type portSet struct {
	Name string
	ID   int
}

func TestRegistry_RegisterAndPortsAs(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	want := portSet{Name: "signals", ID: 1}
	Register("signals", want)

	got, ok := PortsAs[portSet]("signals")
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = PortsAs[int]("signals")
	assert.False(t, ok, "type mismatch")

	got, ok = PortsAs[portSet]("missing")
	assert.False(t, ok)
	assert.Equal(t, portSet{}, got)
}

func TestRegistry_OverwriteAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("meta", portSet{Name: "a", ID: 1})
	Register("meta", portSet{Name: "b", ID: 2})
	got, ok := PortsAs[portSet]("meta")
	require.True(t, ok)
	assert.Equal(t, "b", got.Name)

	Reset()
	_, ok = PortsAs[portSet]("meta")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentRegisterAndRead(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			Register("concurrent", portSet{Name: "k", ID: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, _ = PortsAs[portSet]("concurrent")
		}
	}()
	wg.Wait()

	got, ok := PortsAs[portSet]("concurrent")
	require.True(t, ok)
	assert.Equal(t, n-1, got.ID)
}
