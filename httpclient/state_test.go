package httpclient

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseURLState(t *testing.T) {
	t.Run("given no learned base, then resolves to configured", func(t *testing.T) {
		s := NewBaseURLState()
		assert.Equal(t, "http://localhost:4000", s.resolve("http://localhost:4000"))
		assert.Empty(t, s.Learned())
	})

	t.Run("given learned base, then resolves to it while configured is unchanged", func(t *testing.T) {
		s := NewBaseURLState()
		s.resolve("http://localhost:4000")

		assert.True(t, s.learn("http://localhost:4000", "http://localhost:4003"))
		assert.Equal(t, "http://localhost:4003", s.resolve("http://localhost:4000"))
		assert.Equal(t, "http://localhost:4003", s.resolve("http://localhost:4000"))
	})

	t.Run("given configured base changes, then learned base is dropped", func(t *testing.T) {
		s := NewBaseURLState()
		s.resolve("http://localhost:4000")
		s.learn("http://localhost:4000", "http://localhost:4003")

		assert.Equal(t, "http://api.test", s.resolve("http://api.test"))
		assert.Empty(t, s.Learned())

		// Switching back does not resurrect the old learned base.
		assert.Equal(t, "http://localhost:4000", s.resolve("http://localhost:4000"))
	})

	t.Run("given configured base changed mid-request, then learn is ignored", func(t *testing.T) {
		s := NewBaseURLState()
		s.resolve("http://localhost:4000")
		s.resolve("http://api.test")

		assert.False(t, s.learn("http://localhost:4000", "http://localhost:4001"))
		assert.Empty(t, s.Learned())
	})

	t.Run("given reset, then state is empty", func(t *testing.T) {
		s := NewBaseURLState()
		s.resolve("http://localhost:4000")
		s.learn("http://localhost:4000", "http://localhost:4001")

		s.Reset()

		assert.Empty(t, s.Learned())
		assert.Equal(t, "http://localhost:4000", s.resolve("http://localhost:4000"))
	})

	t.Run("given zero value, then ready to use", func(t *testing.T) {
		var s BaseURLState
		assert.Equal(t, "http://x", s.resolve("http://x"))
	})

	t.Run("given concurrent use, then no race", func(t *testing.T) {
		s := NewBaseURLState()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.resolve("http://localhost:4000")
				s.learn("http://localhost:4000", "http://localhost:4002")
				_ = s.Learned()
			}()
		}
		wg.Wait()
		assert.Equal(t, "http://localhost:4002", s.Learned())
	})
}
