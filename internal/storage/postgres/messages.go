package postgres

import (
	"time"

	"github.com/Srujan253/Gupshup/internal/storage"
)

func (s *Postgres) Append(m storage.Message) (storage.Message, error) {
	row := s.Db.QueryRow(
		`INSERT INTO messages (sender_id, receiver_id, text, image)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		m.SenderID, m.ReceiverID, m.Text, m.Image,
	)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return storage.Message{}, &storage.StoreError{Op: "append message", Err: err}
	}
	return m, nil
}

func (s *Postgres) Conversation(userA, userB int64) ([]storage.Message, error) {
	rows, err := s.Db.Query(
		`SELECT id, sender_id, receiver_id, text, image, created_at
		 FROM messages
		 WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
		 ORDER BY created_at ASC, id ASC`,
		userA, userB)
	if err != nil {
		return nil, &storage.StoreError{Op: "fetch conversation", Err: err}
	}
	defer rows.Close()

	var msgs []storage.Message
	for rows.Next() {
		var m storage.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Image, &m.CreatedAt); err != nil {
			return nil, &storage.StoreError{Op: "fetch conversation", Err: err}
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StoreError{Op: "fetch conversation", Err: err}
	}
	return msgs, nil
}

// SaveOTP and ConsumeOTP mirror the sqlite adapter with $n placeholders.

func (s *Postgres) SaveOTP(email, code, purpose string, expiresAt time.Time) error {
	if _, err := s.Db.Exec(`DELETE FROM otp_codes WHERE email=$1 AND purpose=$2`, email, purpose); err != nil {
		return &storage.StoreError{Op: "save otp", Err: err}
	}
	if _, err := s.Db.Exec(
		`INSERT INTO otp_codes (email, code, purpose, expires_at) VALUES ($1, $2, $3, $4)`,
		email, code, purpose, expiresAt.UTC(),
	); err != nil {
		return &storage.StoreError{Op: "save otp", Err: err}
	}
	return nil
}

func (s *Postgres) ConsumeOTP(email, purpose, code string) (bool, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return false, &storage.StoreError{Op: "consume otp", Err: err}
	}
	defer tx.Rollback()

	_, _ = tx.Exec(`DELETE FROM otp_codes WHERE expires_at <= CURRENT_TIMESTAMP`)

	var n int
	row := tx.QueryRow(
		`SELECT COUNT(1) FROM otp_codes
		 WHERE email=$1 AND purpose=$2 AND code=$3 AND expires_at > CURRENT_TIMESTAMP`,
		email, purpose, code,
	)
	if err := row.Scan(&n); err != nil {
		return false, &storage.StoreError{Op: "consume otp", Err: err}
	}
	if n == 0 {
		return false, tx.Commit()
	}

	if _, err := tx.Exec(
		`DELETE FROM otp_codes WHERE email=$1 AND purpose=$2 AND code=$3`,
		email, purpose, code,
	); err != nil {
		return false, &storage.StoreError{Op: "consume otp", Err: err}
	}
	return true, tx.Commit()
}
