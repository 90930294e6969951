package domain

import (
	"strings"
	"time"
)

// User is a board member who can be assigned cards and sign in.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Position     string    `json:"position"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedBy    string    `json:"created_by"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserInput holds the editable fields of a user.
type UserInput struct {
	Name     string
	Email    string
	Position string
	IsAdmin  bool
}

// NewUser validates input and builds a user without credentials.
func NewUser(id, createdBy string, in UserInput, now time.Time) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidID
	}
	u := User{
		ID:        id,
		CreatedBy: strings.TrimSpace(createdBy),
		CreatedAt: now.UTC(),
	}
	if err := u.Update(in); err != nil {
		return User{}, err
	}
	return u, nil
}

// Update replaces the editable fields.
func (u *User) Update(in UserInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrInvalidName
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return err
	}
	u.Name = name
	u.Email = email
	u.Position = strings.TrimSpace(in.Position)
	u.IsAdmin = in.IsAdmin
	return nil
}

// Ref returns the assignee projection.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Matches reports whether query occurs in the name or email, ignoring case.
func (u User) Matches(query string) bool {
	return containsFold(query, u.Name, u.Email)
}

// NormalizeEmail lowercases and trims an address and checks its basic shape.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
