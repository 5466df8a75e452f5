package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"relogio-be/internal/models"
)

// ErrEmailTaken is returned by CreateUser when the email is already registered.
var ErrEmailTaken = fmt.Errorf("email already registered")

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateUser registers a new account. The caller passes an already hashed
// password. Phone and address may be empty for admin accounts. The users
// email unique constraint arbitrates concurrent registrations; the loser
// gets ErrEmailTaken, never a raw constraint error.
func (s *Store) CreateUser(name, email, passwordHash, phone, address string, isAdmin bool) (models.User, error) {
	var user models.User

	id := uuid.New().String()
	_, err := s.db.Exec(`
        INSERT INTO users (id, name, email, password_hash, phone, address, is_admin, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NOW(), NOW())`,
		id, name, email, passwordHash, phone, address, isAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return user, ErrEmailTaken
		}
		log.Printf("CreateUser: error inserting user %s: %v", email, err)
		return user, err
	}
	log.Printf("Registered new user %s (%s)", id, email)

	return s.GetUserByID(id)
}

// GetUserByID retrieves a user by primary key.
func (s *Store) GetUserByID(id string) (models.User, error) {
	var u models.User
	err := s.db.QueryRow(`
        SELECT id, name, email, password_hash, phone, address, is_admin, created_at, updated_at
        FROM users WHERE id=$1`, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, err
		}
		log.Printf("GetUserByID: error fetching user %s: %v", id, err)
		return u, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email for login.
func (s *Store) GetUserByEmail(email string) (models.User, error) {
	var u models.User
	err := s.db.QueryRow(`
        SELECT id, name, email, password_hash, phone, address, is_admin, created_at, updated_at
        FROM users WHERE email=$1`, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Address, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, err
		}
		log.Printf("GetUserByEmail: error fetching user %s: %v", email, err)
		return u, err
	}
	return u, nil
}

// UpdateUserProfile updates the delivery-relevant fields of an account
// (the checkout page's "change delivery data" flow).
func (s *Store) UpdateUserProfile(id, name, phone, address string) error {
	_, err := s.db.Exec(`
        UPDATE users SET name=$1, phone=NULLIF($2, ''), address=NULLIF($3, ''), updated_at=NOW()
        WHERE id=$4`, name, phone, address, id)
	if err != nil {
		log.Printf("UpdateUserProfile: error updating user %s: %v", id, err)
		return err
	}
	log.Printf("Profile of user %s updated", id)
	return nil
}
