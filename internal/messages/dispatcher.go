package messages

import (
	"errors"
	"log/slog"

	"github.com/Srujan253/Gupshup/internal/chat"
	"github.com/Srujan253/Gupshup/internal/presence"
	"github.com/Srujan253/Gupshup/internal/storage"
)

// ErrInvalidMessage rejects a send with neither text nor an image.
var ErrInvalidMessage = errors.New("message needs text or an image")

// Dispatcher persists a message and then tries to push it to the receiver's
// open connections. Persistence is the success criterion; the push is
// best-effort.
type Dispatcher struct {
	store    storage.MessageStore
	registry *presence.Registry
}

func NewDispatcher(store storage.MessageStore, registry *presence.Registry) *Dispatcher {
	return &Dispatcher{store: store, registry: registry}
}

// Send validates, persists, then pushes. A failed append aborts before any
// delivery attempt, so nothing undurable is ever pushed. Push failures and
// offline receivers are logged and swallowed: the message is safe in the
// store and a history fetch will return it.
func (d *Dispatcher) Send(senderID, receiverID int64, text, image string) (storage.Message, error) {
	if text == "" && image == "" {
		return storage.Message{}, ErrInvalidMessage
	}

	msg, err := d.store.Append(storage.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Image:      image,
	})
	if err != nil {
		return storage.Message{}, err
	}

	handles := d.registry.Lookup(receiverID)
	if len(handles) == 0 {
		// Receiver is offline; they'll pick the message up from history.
		return msg, nil
	}
	for _, h := range handles {
		if err := h.Emit(chat.EventNewMessage, msg); err != nil {
			slog.Warn("message push failed",
				"message_id", msg.ID,
				"receiver_id", receiverID,
				"conn_id", h.ConnID(),
				"err", err)
		}
	}
	return msg, nil
}
