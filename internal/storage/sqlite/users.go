package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Srujan253/Gupshup/internal/storage"
)

func (s *Sqlite) CreateUser(email, fullName, passwordHash string) (storage.User, error) {
	now := time.Now().UTC()
	res, err := s.Db.Exec(
		`INSERT INTO users (email, full_name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		email, fullName, passwordHash, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return storage.User{}, &storage.StoreError{Op: "create user", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storage.User{}, &storage.StoreError{Op: "create user", Err: err}
	}
	return storage.User{
		ID:        id,
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
	}, nil
}

func (s *Sqlite) UserByEmail(email string) (storage.User, error) {
	return s.scanUser(s.Db.QueryRow(
		`SELECT id, email, full_name, password_hash, COALESCE(profile_pic, ''), created_at
		 FROM users WHERE email=?`, email))
}

func (s *Sqlite) UserByID(id int64) (storage.User, error) {
	return s.scanUser(s.Db.QueryRow(
		`SELECT id, email, full_name, password_hash, COALESCE(profile_pic, ''), created_at
		 FROM users WHERE id=?`, id))
}

func (s *Sqlite) Users(excludeID int64) ([]storage.User, error) {
	rows, err := s.Db.Query(
		`SELECT id, email, full_name, password_hash, COALESCE(profile_pic, ''), created_at
		 FROM users WHERE id<>? ORDER BY full_name`, excludeID)
	if err != nil {
		return nil, &storage.StoreError{Op: "list users", Err: err}
	}
	defer rows.Close()

	var users []storage.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, &storage.StoreError{Op: "list users", Err: err}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StoreError{Op: "list users", Err: err}
	}
	return users, nil
}

func (s *Sqlite) UpdateProfilePic(id int64, pic string) (storage.User, error) {
	if _, err := s.Db.Exec(`UPDATE users SET profile_pic=? WHERE id=?`, pic, id); err != nil {
		return storage.User{}, &storage.StoreError{Op: "update profile pic", Err: err}
	}
	return s.UserByID(id)
}

func (s *Sqlite) UpdateFullName(id int64, name string) (storage.User, error) {
	if _, err := s.Db.Exec(`UPDATE users SET full_name=? WHERE id=?`, name, id); err != nil {
		return storage.User{}, &storage.StoreError{Op: "update full name", Err: err}
	}
	return s.UserByID(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Sqlite) scanUser(row *sql.Row) (storage.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.User{}, &storage.StoreError{Op: "fetch user", Err: err}
	}
	return u, nil
}

func scanUserRow(r rowScanner) (storage.User, error) {
	var u storage.User
	var created string
	if err := r.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &created); err != nil {
		return storage.User{}, err
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

// parseTime handles both our RFC3339 writes and CURRENT_TIMESTAMP defaults.
func parseTime(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
