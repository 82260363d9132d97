package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	userID int64
	connID string
}

func (f *fakeHandle) UserID() int64          { return f.userID }
func (f *fakeHandle) ConnID() string         { return f.connID }
func (f *fakeHandle) Emit(string, any) error { return nil }

func TestRegistry(t *testing.T) {
	t.Run("lookup reflects register", func(t *testing.T) {
		r := NewRegistry()
		h := &fakeHandle{userID: 1, connID: "a"}
		r.Register(h)

		handles := r.Lookup(1)
		require.Len(t, handles, 1)
		assert.Equal(t, "a", handles[0].ConnID())
	})

	t.Run("multiple connections per user", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&fakeHandle{userID: 1, connID: "a"})
		r.Register(&fakeHandle{userID: 1, connID: "b"})

		assert.Len(t, r.Lookup(1), 2)
		assert.Equal(t, []int64{1}, r.Snapshot())
	})

	t.Run("entry removed with last connection", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&fakeHandle{userID: 1, connID: "a"})
		r.Register(&fakeHandle{userID: 1, connID: "b"})

		r.Unregister(1, "a")
		assert.Len(t, r.Lookup(1), 1)
		assert.Len(t, r.Snapshot(), 1)

		r.Unregister(1, "b")
		assert.Empty(t, r.Lookup(1))
		assert.Empty(t, r.Snapshot())
	})

	t.Run("unregister is idempotent", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&fakeHandle{userID: 1, connID: "a"})

		r.Unregister(1, "a")
		first := r.Snapshot()
		r.Unregister(1, "a")
		assert.Equal(t, first, r.Snapshot())

		// Unknown user is a no-op too.
		r.Unregister(99, "zzz")
	})

	t.Run("lookup of offline user is empty", func(t *testing.T) {
		r := NewRegistry()
		assert.Empty(t, r.Lookup(7))
	})

	t.Run("all returns every handle", func(t *testing.T) {
		r := NewRegistry()
		r.Register(&fakeHandle{userID: 1, connID: "a"})
		r.Register(&fakeHandle{userID: 2, connID: "b"})
		r.Register(&fakeHandle{userID: 2, connID: "c"})
		assert.Len(t, r.All(), 3)
	})
}

// Hammers the registry from many goroutines; the final state must reflect
// exactly the connections left open, with no leaks across users.
func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()

	const users = 8
	const connsPerUser = 20

	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		for i := 0; i < connsPerUser; i++ {
			wg.Add(1)
			go func(uid int64, n int) {
				defer wg.Done()
				id := fmt.Sprintf("%d-%d", uid, n)
				r.Register(&fakeHandle{userID: uid, connID: id})
				if n%2 == 0 {
					r.Unregister(uid, id)
					r.Unregister(uid, id) // double disconnect race
				}
			}(u, i)
		}
	}
	wg.Wait()

	assert.Len(t, r.Snapshot(), users)
	for u := int64(1); u <= users; u++ {
		assert.Len(t, r.Lookup(u), connsPerUser/2, "user %d", u)
	}
}
