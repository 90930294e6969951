package tui

import "github.com/hylla/taskcollab/internal/board"

type Option func(*Model)

// WithClipboard replaces the clipboard writer used by the copy action.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}

// WithActor names the user recorded as creator of new projects.
func WithActor(name string) Option {
	return func(m *Model) {
		m.actor = name
	}
}

func WithAttachmentEncoder(enc board.Encoder) Option {
	return func(m *Model) {
		m.encoder = enc
	}
}

// WithProject opens projectID instead of the first listed project.
func WithProject(projectID string) Option {
	return func(m *Model) {
		m.pendingProjectID = projectID
	}
}
