package domain

import (
	"slices"
	"strings"
	"time"
)

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
	SprintOnHold    SprintStatus = "on hold"
)

var validSprintStatuses = []SprintStatus{SprintPlanned, SprintActive, SprintCompleted, SprintOnHold}

// SprintStatuses returns the built-in sprint statuses.
func SprintStatuses() []SprintStatus {
	return slices.Clone(validSprintStatuses)
}

// ParseSprintStatus resolves a status case-insensitively. Blank input yields SprintPlanned.
func ParseSprintStatus(raw string) (SprintStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SprintPlanned, nil
	}
	for _, s := range validSprintStatuses {
		if strings.EqualFold(string(s), raw) {
			return s, nil
		}
	}
	return "", ErrInvalidSprintStatus
}

// Sprint is a time box that groups cards within a project.
type Sprint struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Status    SprintStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SprintInput holds values for creating or updating a sprint.
type SprintInput struct {
	Name      string
	Goal      string
	StartDate string
	EndDate   string
	Status    string
}

// NewSprint validates input and builds a sprint.
func NewSprint(id, projectID string, in SprintInput, now time.Time) (Sprint, error) {
	id = strings.TrimSpace(id)
	projectID = strings.TrimSpace(projectID)
	if id == "" || projectID == "" {
		return Sprint{}, ErrInvalidID
	}
	s := Sprint{
		ID:        id,
		ProjectID: projectID,
		CreatedAt: now.UTC(),
	}
	if err := s.Update(in, now); err != nil {
		return Sprint{}, err
	}
	return s, nil
}

// Update replaces the sprint's editable fields.
func (s *Sprint) Update(in SprintInput, now time.Time) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrInvalidName
	}
	status, err := ParseSprintStatus(in.Status)
	if err != nil {
		return err
	}
	s.Name = name
	s.Goal = strings.TrimSpace(in.Goal)
	s.StartDate = strings.TrimSpace(in.StartDate)
	s.EndDate = strings.TrimSpace(in.EndDate)
	s.Status = status
	s.UpdatedAt = now.UTC()
	return nil
}

// Ref returns the card-facing reference to the sprint.
func (s Sprint) Ref() SprintRef {
	return SprintRef{ID: s.ID, Name: s.Name}
}
