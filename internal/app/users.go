package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/taskcollab/internal/auth"
	"github.com/hylla/taskcollab/internal/domain"
)

// CreateUserInput holds input values for create user operations.
type CreateUserInput struct {
	domain.UserInput
	Password  string
	CreatedBy string
}

// ListUsers returns users in creation order, optionally narrowed by search.
func (s *Service) ListUsers(ctx context.Context, query string) ([]domain.User, error) {
	records, err := s.store.Query(ctx, CollectionUsers, Query{OrderBy: []Order{{Field: fieldCreatedAt}}})
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(records))
	for _, r := range records {
		u := userFromRecord(r)
		if u.Matches(query) {
			out = append(out, u)
		}
	}
	return out, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	r, err := s.store.Get(ctx, CollectionUsers, id)
	if err != nil {
		return domain.User{}, err
	}
	return userFromRecord(r), nil
}

// CreateUser registers a user with a hashed password. Emails are unique.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	u, err := domain.NewUser(s.newID(""), in.CreatedBy, in.UserInput, s.clock())
	if err != nil {
		return domain.User{}, err
	}
	if _, err := s.userByEmail(ctx, u.Email); err == nil {
		return domain.User{}, fmt.Errorf("user %q: %w", u.Email, ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return domain.User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = hash
	if err := s.store.Set(ctx, CollectionUsers, u.ID, userFields(u)); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UpdateUser replaces a user's profile fields. An empty password keeps the current one.
func (s *Service) UpdateUser(ctx context.Context, id string, in domain.UserInput, password string) (domain.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if err := u.Update(in); err != nil {
		return domain.User{}, err
	}
	if other, err := s.userByEmail(ctx, u.Email); err == nil && other.ID != u.ID {
		return domain.User{}, fmt.Errorf("user %q: %w", u.Email, ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.User{}, err
	}
	fields := Fields{
		fieldUserName:     u.Name,
		fieldUserEmail:    u.Email,
		fieldUserPosition: u.Position,
		fieldUserIsAdmin:  u.IsAdmin,
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return domain.User{}, err
		}
		u.PasswordHash = hash
		fields[fieldUserPassword] = hash
	}
	if err := s.store.Update(ctx, CollectionUsers, id, fields); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, CollectionUsers, id)
}

// Authenticate returns the user matching email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	u, err := s.userByEmail(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and issues a signed token valid for ttl. A zero ttl never expires.
func (s *Service) Login(ctx context.Context, email, password string, secret []byte, ttl time.Duration) (string, auth.Identity, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", auth.Identity{}, err
	}
	identity := IdentityFor(u)
	if ttl > 0 {
		identity.ExpiresAt = s.clock().Add(ttl).Unix()
	}
	token, err := auth.Encode(identity, secret)
	if err != nil {
		return "", auth.Identity{}, err
	}
	return token, identity, nil
}

// IdentityFor projects a user into a token identity.
func IdentityFor(u domain.User) auth.Identity {
	return auth.Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedBy: u.CreatedBy,
		IsAdmin:   u.IsAdmin,
		Position:  u.Position,
	}
}

func (s *Service) userByEmail(ctx context.Context, email string) (domain.User, error) {
	records, err := s.store.Query(ctx, CollectionUsers, Query{
		Where: []Predicate{Where(fieldUserEmail, strings.ToLower(strings.TrimSpace(email)))},
		Limit: 1,
	})
	if err != nil {
		return domain.User{}, err
	}
	if len(records) == 0 {
		return domain.User{}, ErrNotFound
	}
	return userFromRecord(records[0]), nil
}
