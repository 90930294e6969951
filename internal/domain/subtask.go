package domain

import (
	"strings"
	"time"
)

// Subtask is a checklist item attached to a card.
type Subtask struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	CardID    string    `json:"card_id"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSubtask constructs a new value for this package.
func NewSubtask(id, projectID, cardID, name string, now time.Time) (Subtask, error) {
	id = strings.TrimSpace(id)
	projectID = strings.TrimSpace(projectID)
	cardID = strings.TrimSpace(cardID)
	if id == "" || projectID == "" || cardID == "" {
		return Subtask{}, ErrInvalidID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Subtask{}, ErrInvalidName
	}
	return Subtask{
		ID:        id,
		ProjectID: projectID,
		CardID:    cardID,
		Name:      name,
		CreatedAt: now.UTC(),
	}, nil
}
