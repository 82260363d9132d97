package sqlite

import (
	"time"

	"github.com/Srujan253/Gupshup/internal/storage"
)

func (s *Sqlite) Append(m storage.Message) (storage.Message, error) {
	m.CreatedAt = time.Now().UTC()
	res, err := s.Db.Exec(
		`INSERT INTO messages (sender_id, receiver_id, text, image, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.SenderID, m.ReceiverID, m.Text, m.Image, m.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return storage.Message{}, &storage.StoreError{Op: "append message", Err: err}
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return storage.Message{}, &storage.StoreError{Op: "append message", Err: err}
	}
	return m, nil
}

func (s *Sqlite) Conversation(userA, userB int64) ([]storage.Message, error) {
	// id breaks ties between equal timestamps; ids are assigned in
	// insertion order.
	rows, err := s.Db.Query(
		`SELECT id, sender_id, receiver_id, text, image, created_at
		 FROM messages
		 WHERE (sender_id=? AND receiver_id=?) OR (sender_id=? AND receiver_id=?)
		 ORDER BY created_at ASC, id ASC`,
		userA, userB, userB, userA)
	if err != nil {
		return nil, &storage.StoreError{Op: "fetch conversation", Err: err}
	}
	defer rows.Close()

	var msgs []storage.Message
	for rows.Next() {
		var m storage.Message
		var created string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &created); err != nil {
			return nil, &storage.StoreError{Op: "fetch conversation", Err: err}
		}
		m.CreatedAt = parseTime(created)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StoreError{Op: "fetch conversation", Err: err}
	}
	return msgs, nil
}
