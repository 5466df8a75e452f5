package models

import (
	"database/sql"
	"time"
)

// User represents a customer or administrator account.
// Admins are regular accounts with the is_admin flag set; the customer
// portal refuses them and the admin portal requires them.
type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Phone        sql.NullString `json:"-"`
	Address      sql.NullString `json:"-"`
	IsAdmin      bool           `json:"is_admin"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Profile is the public shape of a user returned by the API.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	IsAdmin bool   `json:"is_admin"`
}

// Profile flattens the sql.Null* columns for JSON responses.
func (u User) Profile() Profile {
	return Profile{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone.String,
		Address: u.Address.String,
		IsAdmin: u.IsAdmin,
	}
}
