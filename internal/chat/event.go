package chat

// Event names pushed over the websocket.
const (
	// EventNewMessage goes to the receiver's connections only; the payload
	// is the persisted message.
	EventNewMessage = "new-message"

	// EventOnlineUsersChanged goes to every connection on each
	// connect/disconnect; the payload is the full online-user snapshot.
	EventOnlineUsersChanged = "online-users-changed"
)

// Event is the wire envelope for every push.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
