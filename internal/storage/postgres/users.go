package postgres

import (
	"database/sql"
	"errors"

	"github.com/Srujan253/Gupshup/internal/storage"
)

func (s *Postgres) CreateUser(email, fullName, passwordHash string) (storage.User, error) {
	row := s.Db.QueryRow(
		`INSERT INTO users (email, full_name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, full_name, password_hash, COALESCE(profile_pic, ''), created_at`,
		email, fullName, passwordHash,
	)
	u, err := scanUser(row)
	if err != nil {
		return storage.User{}, &storage.StoreError{Op: "create user", Err: err}
	}
	return u, nil
}

func (s *Postgres) UserByEmail(email string) (storage.User, error) {
	return s.fetchUser(s.Db.QueryRow(
		`SELECT id, email, full_name, password_hash, COALESCE(profile_pic, ''), created_at
		 FROM users WHERE email=$1`, email))
}

func (s *Postgres) UserByID(id int64) (storage.User, error) {
	return s.fetchUser(s.Db.QueryRow(
		`SELECT id, email, full_name, password_hash, COALESCE(profile_pic, ''), created_at
		 FROM users WHERE id=$1`, id))
}

func (s *Postgres) Users(excludeID int64) ([]storage.User, error) {
	rows, err := s.Db.Query(
		`SELECT id, email, full_name, password_hash, COALESCE(profile_pic, ''), created_at
		 FROM users WHERE id<>$1 ORDER BY full_name`, excludeID)
	if err != nil {
		return nil, &storage.StoreError{Op: "list users", Err: err}
	}
	defer rows.Close()

	var users []storage.User
	for rows.Next() {
		u, err := scanUser(rows)
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

func (s *Postgres) UpdateProfilePic(id int64, pic string) (storage.User, error) {
	if _, err := s.Db.Exec(`UPDATE users SET profile_pic=$1 WHERE id=$2`, pic, id); err != nil {
		return storage.User{}, &storage.StoreError{Op: "update profile pic", Err: err}
	}
	return s.UserByID(id)
}

func (s *Postgres) UpdateFullName(id int64, name string) (storage.User, error) {
	if _, err := s.Db.Exec(`UPDATE users SET full_name=$1 WHERE id=$2`, name, id); err != nil {
		return storage.User{}, &storage.StoreError{Op: "update full name", Err: err}
	}
	return s.UserByID(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) fetchUser(row *sql.Row) (storage.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.User{}, &storage.StoreError{Op: "fetch user", Err: err}
	}
	return u, nil
}

func scanUser(r rowScanner) (storage.User, error) {
	var u storage.User
	if err := r.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ProfilePic, &u.CreatedAt); err != nil {
		return storage.User{}, err
	}
	return u, nil
}
