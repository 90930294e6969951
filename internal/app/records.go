package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hylla/taskcollab/internal/domain"
)

// Storage field names. Board entities are stored under the names used by the
// existing collections, so "entry_name" holds a card title and "entry_sprint_id"
// holds the id of the card's sprint.
const (
	fieldProjectID = "project_id"

	fieldColumnUUID        = "column_uuid"
	fieldColumnName        = "column_name"
	fieldColumnDescription = "column_description"
	fieldColumnPosition    = "column_position"

	fieldEntryUUID        = "entry_uuid"
	fieldEntryName        = "entry_name"
	fieldEntryDescription = "entry_description"
	fieldEntryAssignees   = "entry_assignees"
	fieldEntryAttachments = "entry_attachments"
	fieldEntryDueDate     = "entry_due_date"
	fieldEntryEstimate    = "entry_estimation_hours"
	fieldEntryPriority    = "entry_priority"
	fieldEntryStatus      = "entry_status"
	fieldEntryTags        = "entry_tags"
	fieldEntrySprintID    = "entry_sprint_id"
	fieldEntryColumnID    = "column_id"
	fieldEntryPosition    = "entry_position"
	fieldEntryCreatedAt   = "entry_created_at"
	fieldEntryUpdatedAt   = "entry_updated_at"

	fieldSprintName      = "name"
	fieldSprintGoal      = "goal"
	fieldSprintStartDate = "start_date"
	fieldSprintEndDate   = "end_date"
	fieldSprintStatus    = "sprint_status"

	fieldProjectName        = "project_name"
	fieldProjectDescription = "project_description"
	fieldProjectUUID        = "project_uuid"
	fieldCreatedBy          = "created_by"
	fieldCreatedAt          = "created_at"
	fieldUpdatedAt          = "updated_at"

	fieldUserName     = "name"
	fieldUserEmail    = "email"
	fieldUserPassword = "password"
	fieldUserPosition = "position"
	fieldUserIsAdmin  = "is_admin"
	fieldUserUUID     = "uuid"

	fieldSubtaskName   = "name"
	fieldSubtaskTaskID = "task_id"
	fieldSubtaskDone   = "done"

	fieldStatusValue = "value"
	fieldStatusLabel = "label"
)

func columnFields(projectID string, col domain.Column, position int) Fields {
	return Fields{
		fieldProjectID:         projectID,
		fieldColumnUUID:        col.ID,
		fieldColumnName:        col.Title,
		fieldColumnDescription: col.Description,
		fieldColumnPosition:    position,
	}
}

func columnPatchFields(patch domain.ColumnPatch) Fields {
	out := Fields{}
	if patch.Title != nil {
		out[fieldColumnName] = *patch.Title
	}
	if patch.Description != nil {
		out[fieldColumnDescription] = *patch.Description
	}
	return out
}

func columnFromRecord(r Record) domain.Column {
	return domain.Column{
		ID:          r.ID,
		Title:       fieldString(r.Fields, fieldColumnName),
		Description: fieldString(r.Fields, fieldColumnDescription),
	}
}

func cardFields(projectID, columnID string, card domain.Card, position int) (Fields, error) {
	assignees, err := jsonString(card.Assignees)
	if err != nil {
		return nil, fmt.Errorf("encode assignees: %w", err)
	}
	attachments, err := jsonString(card.Attachments)
	if err != nil {
		return nil, fmt.Errorf("encode attachments: %w", err)
	}
	tags, err := jsonString(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	var sprintID any
	if card.Sprint != nil {
		sprintID = card.Sprint.ID
	}
	return Fields{
		fieldProjectID:        projectID,
		fieldEntryColumnID:    columnID,
		fieldEntryPosition:    position,
		fieldEntryUUID:        card.ID,
		fieldEntryName:        card.Title,
		fieldEntryDescription: card.Description,
		fieldEntryAssignees:   assignees,
		fieldEntryAttachments: attachments,
		fieldEntryDueDate:     card.DueDate,
		fieldEntryEstimate:    card.Estimate,
		fieldEntryPriority:    string(card.Priority),
		fieldEntryStatus:      card.Status,
		fieldEntryTags:        tags,
		fieldEntrySprintID:    sprintID,
		fieldEntryCreatedAt:   ts(card.CreatedAt),
		fieldEntryUpdatedAt:   ts(card.UpdatedAt),
	}, nil
}

// storedCard is a card together with its placement.
type storedCard struct {
	Card     domain.Card
	ColumnID string
	Position int
}

func cardFromRecord(r Record, sprintNames map[string]string) (storedCard, error) {
	card := domain.Card{
		ID:          r.ID,
		Title:       fieldString(r.Fields, fieldEntryName),
		Description: fieldString(r.Fields, fieldEntryDescription),
		Status:      fieldString(r.Fields, fieldEntryStatus),
		Estimate:    fieldString(r.Fields, fieldEntryEstimate),
		DueDate:     fieldString(r.Fields, fieldEntryDueDate),
		CreatedAt:   parseTS(fieldString(r.Fields, fieldEntryCreatedAt)),
		UpdatedAt:   parseTS(fieldString(r.Fields, fieldEntryUpdatedAt)),
		Assignees:   []domain.UserRef{},
		Tags:        []string{},
		Attachments: []domain.Attachment{},
	}
	priority, err := domain.ParsePriority(fieldString(r.Fields, fieldEntryPriority))
	if err != nil {
		priority = domain.PriorityMedium
	}
	card.Priority = priority
	if err := decodeJSONField(r.Fields, fieldEntryAssignees, &card.Assignees); err != nil {
		return storedCard{}, err
	}
	if err := decodeJSONField(r.Fields, fieldEntryAttachments, &card.Attachments); err != nil {
		return storedCard{}, err
	}
	if err := decodeJSONField(r.Fields, fieldEntryTags, &card.Tags); err != nil {
		return storedCard{}, err
	}
	if sprintID := fieldString(r.Fields, fieldEntrySprintID); sprintID != "" {
		card.Sprint = &domain.SprintRef{ID: sprintID, Name: sprintNames[sprintID]}
	}
	return storedCard{
		Card:     card,
		ColumnID: fieldString(r.Fields, fieldEntryColumnID),
		Position: fieldInt(r.Fields, fieldEntryPosition),
	}, nil
}

func sprintFields(s domain.Sprint) Fields {
	return Fields{
		fieldProjectID:       s.ProjectID,
		fieldSprintName:      s.Name,
		fieldSprintGoal:      s.Goal,
		fieldSprintStartDate: s.StartDate,
		fieldSprintEndDate:   s.EndDate,
		fieldSprintStatus:    string(s.Status),
		fieldCreatedAt:       ts(s.CreatedAt),
		fieldUpdatedAt:       ts(s.UpdatedAt),
	}
}

func sprintFromRecord(r Record) domain.Sprint {
	status, err := domain.ParseSprintStatus(fieldString(r.Fields, fieldSprintStatus))
	if err != nil {
		status = domain.SprintPlanned
	}
	return domain.Sprint{
		ID:        r.ID,
		ProjectID: fieldString(r.Fields, fieldProjectID),
		Name:      fieldString(r.Fields, fieldSprintName),
		Goal:      fieldString(r.Fields, fieldSprintGoal),
		StartDate: fieldString(r.Fields, fieldSprintStartDate),
		EndDate:   fieldString(r.Fields, fieldSprintEndDate),
		Status:    status,
		CreatedAt: parseTS(fieldString(r.Fields, fieldCreatedAt)),
		UpdatedAt: parseTS(fieldString(r.Fields, fieldUpdatedAt)),
	}
}

func projectFields(p domain.Project) Fields {
	return Fields{
		fieldProjectName:        p.Name,
		fieldProjectDescription: p.Description,
		fieldProjectUUID:        p.ID,
		fieldCreatedBy:          p.CreatedBy,
		fieldCreatedAt:          ts(p.CreatedAt),
		fieldUpdatedAt:          ts(p.UpdatedAt),
	}
}

func projectFromRecord(r Record) domain.Project {
	return domain.Project{
		ID:          r.ID,
		Name:        fieldString(r.Fields, fieldProjectName),
		Description: fieldString(r.Fields, fieldProjectDescription),
		CreatedBy:   fieldString(r.Fields, fieldCreatedBy),
		CreatedAt:   parseTS(fieldString(r.Fields, fieldCreatedAt)),
		UpdatedAt:   parseTS(fieldString(r.Fields, fieldUpdatedAt)),
	}
}

func userFields(u domain.User) Fields {
	return Fields{
		fieldUserName:     u.Name,
		fieldUserEmail:    u.Email,
		fieldUserPassword: u.PasswordHash,
		fieldUserPosition: u.Position,
		fieldUserIsAdmin:  u.IsAdmin,
		fieldUserUUID:     u.ID,
		fieldCreatedBy:    u.CreatedBy,
		fieldCreatedAt:    ts(u.CreatedAt),
	}
}

func userFromRecord(r Record) domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         fieldString(r.Fields, fieldUserName),
		Email:        fieldString(r.Fields, fieldUserEmail),
		Position:     fieldString(r.Fields, fieldUserPosition),
		IsAdmin:      fieldBool(r.Fields, fieldUserIsAdmin),
		CreatedBy:    fieldString(r.Fields, fieldCreatedBy),
		PasswordHash: fieldString(r.Fields, fieldUserPassword),
		CreatedAt:    parseTS(fieldString(r.Fields, fieldCreatedAt)),
	}
}

func subtaskFields(st domain.Subtask) Fields {
	return Fields{
		fieldProjectID:     st.ProjectID,
		fieldSubtaskTaskID: st.CardID,
		fieldSubtaskName:   st.Name,
		fieldSubtaskDone:   st.Done,
		fieldCreatedAt:     ts(st.CreatedAt),
	}
}

func subtaskFromRecord(r Record) domain.Subtask {
	return domain.Subtask{
		ID:        r.ID,
		ProjectID: fieldString(r.Fields, fieldProjectID),
		CardID:    fieldString(r.Fields, fieldSubtaskTaskID),
		Name:      fieldString(r.Fields, fieldSubtaskName),
		Done:      fieldBool(r.Fields, fieldSubtaskDone),
		CreatedAt: parseTS(fieldString(r.Fields, fieldCreatedAt)),
	}
}

func fieldString(f Fields, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func fieldInt(f Fields, key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

func fieldBool(f Fields, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}

// decodeJSONField decodes a list stored as a JSON string. Missing or blank values leave out untouched.
func decodeJSONField(f Fields, key string, out any) error {
	raw := fieldString(f, key)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func jsonString(v any) (string, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// ts formats timestamps for storage.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses stored timestamps; invalid input yields the zero time.
func parseTS(v string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
