package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/verity/internal/engine"
)

func TestFixedSessionGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedSessionGenerator("session-123")

	assert.Equal(t, "session-123", gen.Generate())
	assert.Equal(t, "session-123", gen.Generate())
}

func TestFixedSessionGenerator_EmptyDefault(t *testing.T) {
	assert.Equal(t, DefaultSession, NewFixedSessionGenerator("").Generate())
}

func TestFixedSessionGenerator_EngineSession(t *testing.T) {
	e := engine.New(engine.WithSessionIDs(NewFixedSessionGenerator("golden")))
	assert.Equal(t, "golden", e.Session())
}

func TestFixedSessionGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionGenerator("thread-safe")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe", gen.Generate())
			}
		}()
	}
	wg.Wait()
}
