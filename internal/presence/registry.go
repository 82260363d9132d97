package presence

import "sync"

// Handle is one live push channel for one user. The chat client implements
// it; tests substitute fakes.
type Handle interface {
	UserID() int64
	ConnID() string

	// Emit pushes a named event best-effort. It reports failure instead of
	// panicking or blocking when the peer is gone or too slow.
	Emit(event string, payload any) error
}

// Registry maps user ids to their open connections. A user may hold several
// handles at once (multiple tabs or devices); the entry disappears when the
// last one unregisters.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[int64]map[string]Handle),
	}
}

func (r *Registry) Register(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[h.UserID()]
	if !ok {
		set = make(map[string]Handle)
		r.conns[h.UserID()] = set
	}
	set[h.ConnID()] = h
}

// Unregister removes the named connection. Removing one that is already
// gone is a no-op, which makes double-disconnect races harmless.
func (r *Registry) Unregister(userID int64, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.conns, userID)
	}
}

// Lookup returns every open handle for the user, or nil if they are offline.
func (r *Registry) Lookup(userID int64) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.conns[userID]
	if !ok {
		return nil
	}
	handles := make([]Handle, 0, len(set))
	for _, h := range set {
		handles = append(handles, h)
	}
	return handles
}

// Snapshot returns the ids of every user with at least one open connection.
func (r *Registry) Snapshot() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]int64, 0, len(r.conns))
	for uid := range r.conns {
		users = append(users, uid)
	}
	return users
}

// All returns every registered handle across all users, for events that go
// to everyone.
func (r *Registry) All() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var handles []Handle
	for _, set := range r.conns {
		for _, h := range set {
			handles = append(handles, h)
		}
	}
	return handles
}
