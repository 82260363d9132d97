package storage

import (
	"errors"
	"fmt"
	"time"
)

// User is a registered account. PasswordHash never leaves the storage layer
// except for login verification.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	ProfilePic   string    `json:"profilePic"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Message is immutable once appended. At least one of Text or Image is set.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// StoreError wraps a persistence failure so callers can tell it apart from
// validation or auth errors.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// MessageStore is what the dispatcher needs from persistence. Append assigns
// the identifier and timestamp; it either durably stores the message or
// fails with a *StoreError, never partially.
type MessageStore interface {
	Append(m Message) (Message, error)

	// Conversation returns every message exchanged between the two users,
	// oldest first. Equal timestamps are broken by insertion order.
	Conversation(userA, userB int64) ([]Message, error)
}

type UserStore interface {
	CreateUser(email, fullName, passwordHash string) (User, error)
	UserByEmail(email string) (User, error)
	UserByID(id int64) (User, error)
	Users(excludeID int64) ([]User, error)
	UpdateProfilePic(id int64, pic string) (User, error)
	UpdateFullName(id int64, name string) (User, error)
}

type OTPStore interface {
	SaveOTP(email, code, purpose string, expiresAt time.Time) error
	ConsumeOTP(email, purpose, code string) (bool, error)
}

// Store is the full persistence surface, implemented by the sqlite and
// postgres adapters.
type Store interface {
	MessageStore
	UserStore
	OTPStore
	Migrate() error
	Close() error
}
