package domain

import (
	"strings"
	"time"
)

// Project owns one board together with its sprints.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject constructs a new value for this package.
func NewProject(id, name, description, createdBy string, now time.Time) (Project, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Project{}, ErrInvalidID
	}
	if name == "" {
		return Project{}, ErrInvalidName
	}
	return Project{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   strings.TrimSpace(createdBy),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// UpdateDetails updates name and description.
func (p *Project) UpdateDetails(name, description string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.UpdatedAt = now.UTC()
	return nil
}

// Matches reports whether query occurs in the name, description or creator, ignoring case.
// An empty query matches everything.
func (p Project) Matches(query string) bool {
	return containsFold(query, p.Name, p.Description, p.CreatedBy)
}

func containsFold(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
