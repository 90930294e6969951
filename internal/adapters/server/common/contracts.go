// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"time"

	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/auth"
	"github.com/hylla/taskcollab/internal/domain"
)

// ProjectService manages projects.
type ProjectService interface {
	ListProjects(ctx context.Context, query string) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	CreateProject(ctx context.Context, name, description, createdBy string) (domain.Project, error)
	UpdateProject(ctx context.Context, id, name, description string) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// BoardService reads and mutates one project's board.
type BoardService interface {
	LoadBoard(ctx context.Context, projectID string) (domain.Board, error)
	AddColumn(ctx context.Context, projectID, title, description string) (domain.Column, app.BoardResult, error)
	EditColumn(ctx context.Context, projectID, columnID string, patch domain.ColumnPatch) (app.BoardResult, error)
	DeleteColumn(ctx context.Context, projectID, columnID string) (app.BoardResult, error)
	AddCard(ctx context.Context, projectID, columnID string, overrides domain.CardPatch) (domain.Card, app.BoardResult, error)
	EditCard(ctx context.Context, projectID, columnID, cardID string, patch domain.CardPatch) (app.BoardResult, error)
	DeleteCard(ctx context.Context, projectID, columnID, cardID string) (app.BoardResult, error)
	MoveCard(ctx context.Context, projectID string, mv domain.Move) (app.BoardResult, error)
}

// SprintService manages sprints and subtasks.
type SprintService interface {
	ListSprints(ctx context.Context, projectID string) ([]app.SprintSummary, error)
	GetSprint(ctx context.Context, projectID, sprintID string) (domain.Sprint, error)
	CreateSprint(ctx context.Context, projectID string, in domain.SprintInput) (domain.Sprint, error)
	UpdateSprint(ctx context.Context, projectID, sprintID string, in domain.SprintInput) (domain.Sprint, error)
	DeleteSprint(ctx context.Context, projectID, sprintID string, mode app.SprintDeleteMode) (int, error)
	SprintStatusCatalog(ctx context.Context) ([]app.SprintStatusOption, error)
	ListSubtasks(ctx context.Context, projectID, cardID string) ([]domain.Subtask, error)
	AddSubtask(ctx context.Context, projectID, cardID, name string) (domain.Subtask, error)
	ToggleSubtask(ctx context.Context, projectID, subtaskID string) (domain.Subtask, error)
	DeleteSubtask(ctx context.Context, projectID, subtaskID string) error
}

// UserService manages users and sessions.
type UserService interface {
	ListUsers(ctx context.Context, query string) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	CreateUser(ctx context.Context, in app.CreateUserInput) (domain.User, error)
	UpdateUser(ctx context.Context, id string, in domain.UserInput, password string) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	Login(ctx context.Context, email, password string, secret []byte, ttl time.Duration) (string, auth.Identity, error)
}

// BackupService exports and restores boards.
type BackupService interface {
	ExportBoard(ctx context.Context, projectID string) (app.BoardDocument, error)
	BackupBoard(ctx context.Context, projectID string) (string, error)
	RestoreBoard(ctx context.Context, projectID string) error
}

// AssistantService answers chat prompts.
type AssistantService interface {
	Ask(ctx context.Context, history []domain.ChatMessage, prompt string) ([]domain.ChatMessage, error)
}

// Service is the full application surface served over HTTP and MCP. *app.Service satisfies it.
type Service interface {
	ProjectService
	BoardService
	SprintService
	UserService
	BackupService
	AssistantService
}

// MailDeliverer renders and sends one notification email.
type MailDeliverer interface {
	Deliver(ctx context.Context, req app.EmailRequest) error
}

// Logger receives request logs. *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Info(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}
