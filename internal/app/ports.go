package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hylla/taskcollab/internal/domain"
)

// Collection names in the document store.
const (
	CollectionProjects       = "projects"
	CollectionColumns        = "project_columns"
	CollectionEntries        = "project_entry"
	CollectionSprints        = "project_sprints"
	CollectionSprintStatuses = "sprint_status"
	CollectionSubtasks       = "project_subtasks"
	CollectionUsers          = "users"
)

// Fields holds one document's persisted values keyed by storage field name.
type Fields map[string]any

// Record is one stored document.
type Record struct {
	ID     string
	Fields Fields
}

// Op is a predicate comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Valid reports whether op is supported.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		return true
	default:
		return false
	}
}

// Predicate is one field condition. A nil Value with OpEq matches missing or null fields.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Where builds an equality predicate.
func Where(field string, value any) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// Order sorts query results by one field.
type Order struct {
	Field string
	Desc  bool
}

// Query selects documents from one collection. Limit <= 0 means no limit.
type Query struct {
	Where   []Predicate
	OrderBy []Order
	Limit   int
}

// RecordUpdate is one entry of a bulk update.
type RecordUpdate struct {
	ID     string
	Fields Fields
}

// DocumentStore is the persistence collaborator.
type DocumentStore interface {
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	Set(ctx context.Context, collection, id string, fields Fields) error
	Get(ctx context.Context, collection, id string) (Record, error)
	Query(ctx context.Context, collection string, q Query) ([]Record, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	BulkUpdate(ctx context.Context, collection string, updates []RecordUpdate) error
	BulkDelete(ctx context.Context, collection string, ids []string) error
	DeleteByQuery(ctx context.Context, collection string, where []Predicate) (int, error)
}

// Recipients is a list of email addresses. It decodes from a JSON array or from
// one comma-separated string.
type Recipients []string

// UnmarshalJSON implements json.Unmarshaler.
func (r *Recipients) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*r = normalizeRecipients(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("recipients must be a string or list of strings: %w", err)
	}
	*r = normalizeRecipients(strings.Split(single, ","))
	return nil
}

func normalizeRecipients(in []string) Recipients {
	out := make(Recipients, 0, len(in))
	for _, addr := range in {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// EmailRequest is a task notification.
type EmailRequest struct {
	To              Recipients `json:"to"`
	Subject         string     `json:"subject"`
	Name            string     `json:"name,omitempty"`
	InnerSubject    string     `json:"innerSubject,omitempty"`
	UpdateType      string     `json:"update_type,omitempty"`
	UpdatedBy       string     `json:"updated_by,omitempty"`
	TaskStatus      string     `json:"task_status,omitempty"`
	TaskPriority    string     `json:"task_priority,omitempty"`
	OptionalMessage string     `json:"optional_message,omitempty"`
	TaskLink        string     `json:"task_link,omitempty"`
}

// EmailResult reports the outcome of a notification.
type EmailResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Notifier sends task notifications. Failures are reported in the result.
type Notifier interface {
	SendEmail(ctx context.Context, req EmailRequest) EmailResult
}

// BlobStore keeps opaque objects such as board backups.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Responder produces assistant replies.
type Responder interface {
	Reply(ctx context.Context, history []domain.ChatMessage, prompt string) (string, error)
}
