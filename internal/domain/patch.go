package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeColumnPatch parses a JSON column patch, rejecting unknown fields.
func DecodeColumnPatch(data []byte) (ColumnPatch, error) {
	var patch ColumnPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return ColumnPatch{}, err
	}
	return patch, nil
}

// DecodeCardPatch parses a JSON card patch, rejecting unknown fields.
// A null "sprint" clears the card's sprint.
func DecodeCardPatch(data []byte) (CardPatch, error) {
	var patch CardPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return CardPatch{}, err
	}
	return patch, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ColumnPatch) UnmarshalJSON(data []byte) error {
	type plain ColumnPatch
	var out plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	*p = ColumnPatch(out)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *CardPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	var out CardPatch
	for field, value := range raw {
		var err error
		switch field {
		case "title":
			out.Title, err = decodeField[string](value)
		case "description":
			out.Description, err = decodeField[string](value)
		case "assignees":
			out.Assignees, err = decodeField[[]UserRef](value)
		case "priority":
			var raw *string
			raw, err = decodeField[string](value)
			if err == nil && raw != nil {
				var priority Priority
				priority, err = ParsePriority(*raw)
				out.Priority = &priority
			}
		case "status":
			out.Status, err = decodeField[string](value)
		case "estimate":
			out.Estimate, err = decodeField[string](value)
		case "due_date":
			out.DueDate, err = decodeField[string](value)
		case "tags":
			out.Tags, err = decodeField[[]string](value)
		case "attachments":
			out.Attachments, err = decodeField[[]Attachment](value)
		case "sprint":
			var ref *SprintRef
			ref, err = decodeField[SprintRef](value)
			out.Sprint = &SprintChange{Ref: ref}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
		if err != nil {
			return fmt.Errorf("%w: field %q: %w", ErrInvalidPatch, field, err)
		}
	}
	*p = out
	return nil
}

// MarshalJSON implements json.Marshaler, emitting only the set fields.
func (p CardPatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	if p.Assignees != nil {
		out["assignees"] = *p.Assignees
	}
	if p.Priority != nil {
		out["priority"] = *p.Priority
	}
	if p.Status != nil {
		out["status"] = *p.Status
	}
	if p.Estimate != nil {
		out["estimate"] = *p.Estimate
	}
	if p.DueDate != nil {
		out["due_date"] = *p.DueDate
	}
	if p.Tags != nil {
		out["tags"] = *p.Tags
	}
	if p.Attachments != nil {
		out["attachments"] = *p.Attachments
	}
	if p.Sprint != nil {
		out["sprint"] = p.Sprint.Ref
	}
	return json.Marshal(out)
}

// decodeField decodes one raw value. JSON null yields nil.
func decodeField[T any](raw json.RawMessage) (*T, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
