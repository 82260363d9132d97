package messages

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Srujan253/Gupshup/internal/chat"
	"github.com/Srujan253/Gupshup/internal/presence"
	"github.com/Srujan253/Gupshup/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	msgs    []storage.Message
	nextID  int64
	failure error
}

func (f *fakeStore) Append(m storage.Message) (storage.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return storage.Message{}, f.failure
	}
	f.nextID++
	m.ID = f.nextID
	m.CreatedAt = time.Now().UTC()
	f.msgs = append(f.msgs, m)
	return m, nil
}

func (f *fakeStore) Conversation(a, b int64) ([]storage.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.Message
	for _, m := range f.msgs {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeConn struct {
	mu     sync.Mutex
	userID int64
	connID string
	events []storage.Message
	fail   error
}

func (f *fakeConn) UserID() int64  { return f.userID }
func (f *fakeConn) ConnID() string { return f.connID }

func (f *fakeConn) Emit(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if event == chat.EventNewMessage {
		f.events = append(f.events, payload.(storage.Message))
	}
	return nil
}

func (f *fakeConn) received() []storage.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.Message(nil), f.events...)
}

func TestDispatcherSend(t *testing.T) {
	t.Run("offline receiver still succeeds", func(t *testing.T) {
		store := &fakeStore{}
		d := NewDispatcher(store, presence.NewRegistry())

		msg, err := d.Send(1, 2, "hi", "")
		require.NoError(t, err)
		assert.Equal(t, "hi", msg.Text)
		assert.NotZero(t, msg.ID)

		conv, err := store.Conversation(1, 2)
		require.NoError(t, err)
		require.Len(t, conv, 1)
		assert.Equal(t, int64(1), conv[0].SenderID)
	})

	t.Run("online receiver gets the push", func(t *testing.T) {
		store := &fakeStore{}
		registry := presence.NewRegistry()
		conn := &fakeConn{userID: 2, connID: "a"}
		registry.Register(conn)

		d := NewDispatcher(store, registry)
		msg, err := d.Send(1, 2, "hey", "")
		require.NoError(t, err)

		got := conn.received()
		require.Len(t, got, 1)
		assert.Equal(t, msg.ID, got[0].ID)
		assert.Equal(t, "hey", got[0].Text)
	})

	t.Run("every device of the receiver gets the push", func(t *testing.T) {
		store := &fakeStore{}
		registry := presence.NewRegistry()
		phone := &fakeConn{userID: 2, connID: "phone"}
		laptop := &fakeConn{userID: 2, connID: "laptop"}
		registry.Register(phone)
		registry.Register(laptop)

		d := NewDispatcher(store, registry)
		_, err := d.Send(1, 2, "hi both", "")
		require.NoError(t, err)

		assert.Len(t, phone.received(), 1)
		assert.Len(t, laptop.received(), 1)
	})

	t.Run("empty body is rejected before the store", func(t *testing.T) {
		store := &fakeStore{}
		d := NewDispatcher(store, presence.NewRegistry())

		_, err := d.Send(1, 2, "", "")
		assert.ErrorIs(t, err, ErrInvalidMessage)
		assert.Empty(t, store.msgs)
	})

	t.Run("image-only message is valid", func(t *testing.T) {
		d := NewDispatcher(&fakeStore{}, presence.NewRegistry())
		msg, err := d.Send(1, 2, "", "https://cdn.example.com/cat.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/cat.png", msg.Image)
	})

	t.Run("store failure means no delivery", func(t *testing.T) {
		storeErr := &storage.StoreError{Op: "append message", Err: errors.New("disk full")}
		store := &fakeStore{failure: storeErr}
		registry := presence.NewRegistry()
		conn := &fakeConn{userID: 2, connID: "a"}
		registry.Register(conn)

		d := NewDispatcher(store, registry)
		_, err := d.Send(1, 2, "hi", "")

		var se *storage.StoreError
		require.ErrorAs(t, err, &se)
		assert.Empty(t, conn.received(), "nothing undurable may be pushed")
	})

	t.Run("push failure does not fail the send or other sends", func(t *testing.T) {
		store := &fakeStore{}
		registry := presence.NewRegistry()
		broken := &fakeConn{userID: 2, connID: "x", fail: chat.ErrConnClosed}
		healthy := &fakeConn{userID: 3, connID: "y"}
		registry.Register(broken)
		registry.Register(healthy)

		d := NewDispatcher(store, registry)

		_, err := d.Send(1, 2, "to broken", "")
		require.NoError(t, err, "send succeeds once persisted")

		_, err = d.Send(1, 3, "to healthy", "")
		require.NoError(t, err)
		assert.Len(t, healthy.received(), 1)
	})

	t.Run("sends from one sender keep their order", func(t *testing.T) {
		store := &fakeStore{}
		d := NewDispatcher(store, presence.NewRegistry())

		m1, err := d.Send(1, 2, "first", "")
		require.NoError(t, err)
		m2, err := d.Send(1, 2, "second", "")
		require.NoError(t, err)

		conv, err := store.Conversation(1, 2)
		require.NoError(t, err)
		require.Len(t, conv, 2)
		assert.Equal(t, m1.ID, conv[0].ID)
		assert.Equal(t, m2.ID, conv[1].ID)
	})
}
