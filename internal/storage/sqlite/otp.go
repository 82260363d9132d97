package sqlite

import (
	"time"

	"github.com/Srujan253/Gupshup/internal/storage"
)

func (s *Sqlite) SaveOTP(email, code, purpose string, expiresAt time.Time) error {
	// One live code per (email, purpose); a resend replaces the old one.
	_, err := s.Db.Exec(`DELETE FROM otp_codes WHERE email=? AND purpose=?`, email, purpose)
	if err != nil {
		return &storage.StoreError{Op: "save otp", Err: err}
	}
	_, err = s.Db.Exec(
		`INSERT INTO otp_codes (email, code, purpose, expires_at) VALUES (?, ?, ?, ?)`,
		email, code, purpose, expiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return &storage.StoreError{Op: "save otp", Err: err}
	}
	return nil
}

func (s *Sqlite) ConsumeOTP(email, purpose, code string) (bool, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return false, &storage.StoreError{Op: "consume otp", Err: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, _ = tx.Exec(`DELETE FROM otp_codes WHERE expires_at <= ?`, now)

	var n int
	row := tx.QueryRow(
		`SELECT COUNT(1) FROM otp_codes WHERE email=? AND purpose=? AND code=? AND expires_at > ?`,
		email, purpose, code, now,
	)
	if err := row.Scan(&n); err != nil {
		return false, &storage.StoreError{Op: "consume otp", Err: err}
	}
	if n == 0 {
		return false, tx.Commit()
	}

	if _, err := tx.Exec(
		`DELETE FROM otp_codes WHERE email=? AND purpose=? AND code=?`,
		email, purpose, code,
	); err != nil {
		return false, &storage.StoreError{Op: "consume otp", Err: err}
	}
	return true, tx.Commit()
}
