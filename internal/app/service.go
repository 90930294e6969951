package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/taskcollab/internal/domain"
)

// ColumnTemplate describes one column created for every new project.
type ColumnTemplate struct {
	Title       string
	Description string
}

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultColumns []ColumnTemplate
	SprintStatuses []domain.SprintStatus
	// TaskLinkBase prefixes task links in notification emails.
	TaskLinkBase string
	// BackupPrefix prefixes blob keys written by BackupBoard.
	BackupPrefix string
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ServiceOption wires an optional collaborator.
type ServiceOption func(*Service)

// WithNotifier sets the notification collaborator.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// WithBlobStore sets the backup store.
func WithBlobStore(b BlobStore) ServiceOption {
	return func(s *Service) { s.blobs = b }
}

// WithResponder sets the assistant collaborator.
func WithResponder(r Responder) ServiceOption {
	return func(s *Service) { s.responder = r }
}

// Service coordinates persistence and collaborators for every board operation.
type Service struct {
	store          DocumentStore
	idGen          IDGenerator
	clock          Clock
	defaultColumns []ColumnTemplate
	sprintStatuses []domain.SprintStatus
	taskLinkBase   string
	backupPrefix   string
	notifier       Notifier
	blobs          BlobStore
	responder      Responder
}

// NewService constructs a new value for this package.
func NewService(store DocumentStore, idGen IDGenerator, clock Clock, cfg ServiceConfig, opts ...ServiceOption) *Service {
	if idGen == nil {
		idGen = func() string { return domain.NewID("") }
	}
	if clock == nil {
		clock = time.Now
	}
	columns := sanitizeColumnTemplates(cfg.DefaultColumns)
	if cfg.DefaultColumns == nil {
		columns = defaultColumnTemplates()
	}
	statuses := slices.Clone(cfg.SprintStatuses)
	if len(statuses) == 0 {
		statuses = domain.SprintStatuses()
	}
	s := &Service{
		store:          store,
		idGen:          idGen,
		clock:          clock,
		defaultColumns: columns,
		sprintStatuses: statuses,
		taskLinkBase:   strings.TrimRight(strings.TrimSpace(cfg.TaskLinkBase), "/"),
		backupPrefix:   strings.TrimSpace(cfg.BackupPrefix),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID returns a prefixed identifier from the configured generator.
func (s *Service) newID(prefix string) string {
	return prefix + s.idGen()
}

// ListProjects lists projects, optionally narrowed by a case-insensitive search.
func (s *Service) ListProjects(ctx context.Context, query string) ([]domain.Project, error) {
	records, err := s.store.Query(ctx, CollectionProjects, Query{OrderBy: []Order{{Field: fieldCreatedAt}}})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(records))
	for _, r := range records {
		p := projectFromRecord(r)
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, id string) (domain.Project, error) {
	r, err := s.store.Get(ctx, CollectionProjects, id)
	if err != nil {
		return domain.Project{}, err
	}
	return projectFromRecord(r), nil
}

// CreateProject creates a project together with the configured default columns.
func (s *Service) CreateProject(ctx context.Context, name, description, createdBy string) (domain.Project, error) {
	project, err := domain.NewProject(s.newID(""), name, description, createdBy, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.store.Set(ctx, CollectionProjects, project.ID, projectFields(project)); err != nil {
		return domain.Project{}, err
	}
	for i, tpl := range s.defaultColumns {
		col, err := domain.NewColumn(s.newID(domain.ColumnIDPrefix), tpl.Title, tpl.Description)
		if err != nil {
			return domain.Project{}, err
		}
		if err := s.store.Set(ctx, CollectionColumns, col.ID, columnFields(project.ID, col, i)); err != nil {
			return domain.Project{}, fmt.Errorf("create default column %q: %w", col.Title, err)
		}
	}
	return project, nil
}

// UpdateProject updates name and description.
func (s *Service) UpdateProject(ctx context.Context, id, name, description string) (domain.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if err := project.UpdateDetails(name, description, s.clock()); err != nil {
		return domain.Project{}, err
	}
	if err := s.store.Update(ctx, CollectionProjects, id, Fields{
		fieldProjectName:        project.Name,
		fieldProjectDescription: project.Description,
		fieldUpdatedAt:          ts(project.UpdatedAt),
	}); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// DeleteProject removes a project and everything stored under it.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	scope := []Predicate{Where(fieldProjectID, id)}
	for _, collection := range []string{CollectionSubtasks, CollectionEntries, CollectionColumns, CollectionSprints} {
		if _, err := s.store.DeleteByQuery(ctx, collection, scope); err != nil {
			return fmt.Errorf("delete %s for project %q: %w", collection, id, err)
		}
	}
	return s.store.Delete(ctx, CollectionProjects, id)
}

// Ask appends the prompt and the assistant reply to history.
func (s *Service) Ask(ctx context.Context, history []domain.ChatMessage, prompt string) ([]domain.ChatMessage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return history, errors.New("prompt is required")
	}
	if s.responder == nil {
		return history, fmt.Errorf("assistant: %w", ErrUnavailable)
	}
	out := append(slices.Clone(history), domain.ChatMessage{Role: domain.ChatRoleUser, Text: prompt, At: s.clock()})
	reply, err := s.responder.Reply(ctx, history, prompt)
	if err != nil {
		return out, fmt.Errorf("assistant reply: %w", err)
	}
	return append(out, domain.ChatMessage{Role: domain.ChatRoleAssistant, Text: reply, At: s.clock()}), nil
}

func defaultColumnTemplates() []ColumnTemplate {
	return []ColumnTemplate{
		{Title: "To Do"},
		{Title: "In Progress"},
		{Title: "Done"},
	}
}

func sanitizeColumnTemplates(in []ColumnTemplate) []ColumnTemplate {
	out := make([]ColumnTemplate, 0, len(in))
	for _, tpl := range in {
		tpl.Title = strings.TrimSpace(tpl.Title)
		if tpl.Title == "" {
			continue
		}
		tpl.Description = strings.TrimSpace(tpl.Description)
		out = append(out, tpl)
	}
	return out
}
