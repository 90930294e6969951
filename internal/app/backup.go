package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hylla/taskcollab/internal/domain"
)

// BoardDocumentVersion identifies the backup document format.
const BoardDocumentVersion = "taskcollab.board.v1"

// BoardDocument is a portable copy of one project's board.
type BoardDocument struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Project    domain.Project  `json:"project"`
	Board      domain.Board    `json:"board"`
	Sprints    []domain.Sprint `json:"sprints"`
}

// Validate checks the document before it is imported.
func (d BoardDocument) Validate() error {
	if d.Version != BoardDocumentVersion {
		return fmt.Errorf("unsupported board document version %q", d.Version)
	}
	if d.Project.ID == "" {
		return errors.New("board document: project id is required")
	}
	seen := map[string]struct{}{}
	for _, col := range d.Board.Columns {
		if col.ID == "" {
			return errors.New("board document: column id is required")
		}
		for _, card := range d.Board.Cards[col.ID] {
			if card.ID == "" {
				return fmt.Errorf("board document: card in column %q has no id", col.ID)
			}
			if _, dup := seen[card.ID]; dup {
				return fmt.Errorf("board document: duplicate card id %q", card.ID)
			}
			seen[card.ID] = struct{}{}
		}
	}
	return nil
}

// ExportBoard builds the portable document for a project.
func (s *Service) ExportBoard(ctx context.Context, projectID string) (BoardDocument, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return BoardDocument{}, err
	}
	b, err := s.LoadBoard(ctx, projectID)
	if err != nil {
		return BoardDocument{}, err
	}
	summaries, err := s.ListSprints(ctx, projectID)
	if err != nil {
		return BoardDocument{}, err
	}
	sprints := make([]domain.Sprint, 0, len(summaries))
	for _, sp := range summaries {
		sprints = append(sprints, sp.Sprint)
	}
	return BoardDocument{
		Version:    BoardDocumentVersion,
		ExportedAt: s.clock().UTC(),
		Project:    project,
		Board:      b,
		Sprints:    sprints,
	}, nil
}

// ImportBoard replaces the project's columns, cards and sprints with the document's.
// The project is created when missing.
func (s *Service) ImportBoard(ctx context.Context, doc BoardDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	projectID := doc.Project.ID
	if _, err := s.GetProject(ctx, projectID); errors.Is(err, ErrNotFound) {
		if err := s.store.Set(ctx, CollectionProjects, projectID, projectFields(doc.Project)); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	scope := []Predicate{Where(fieldProjectID, projectID)}
	for _, collection := range []string{CollectionEntries, CollectionColumns, CollectionSprints} {
		if _, err := s.store.DeleteByQuery(ctx, collection, scope); err != nil {
			return fmt.Errorf("clear %s: %w", collection, err)
		}
	}
	for _, sp := range doc.Sprints {
		sp.ProjectID = projectID
		if err := s.store.Set(ctx, CollectionSprints, sp.ID, sprintFields(sp)); err != nil {
			return fmt.Errorf("import sprint %q: %w", sp.ID, err)
		}
	}
	for i, col := range doc.Board.Columns {
		if err := s.store.Set(ctx, CollectionColumns, col.ID, columnFields(projectID, col, i)); err != nil {
			return fmt.Errorf("import column %q: %w", col.ID, err)
		}
		for j, card := range doc.Board.Cards[col.ID] {
			fields, err := cardFields(projectID, col.ID, card, j)
			if err != nil {
				return err
			}
			if err := s.store.Set(ctx, CollectionEntries, card.ID, fields); err != nil {
				return fmt.Errorf("import card %q: %w", card.ID, err)
			}
		}
	}
	return nil
}

// BackupKey returns the blob key used for a project's backup.
func (s *Service) BackupKey(projectID string) string {
	return s.backupPrefix + "boards/" + projectID + ".json"
}

// BackupBoard writes the project's board document to the blob store and returns its key.
func (s *Service) BackupBoard(ctx context.Context, projectID string) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("backup: %w", ErrUnavailable)
	}
	doc, err := s.ExportBoard(ctx, projectID)
	if err != nil {
		return "", err
	}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode board document: %w", err)
	}
	key := s.BackupKey(projectID)
	if err := s.blobs.Put(ctx, key, "application/json", bytes.NewReader(encoded)); err != nil {
		return "", fmt.Errorf("upload backup %q: %w", key, err)
	}
	return key, nil
}

// RestoreBoard reads the project's backup and imports it.
func (s *Service) RestoreBoard(ctx context.Context, projectID string) error {
	if s.blobs == nil {
		return fmt.Errorf("restore: %w", ErrUnavailable)
	}
	key := s.BackupKey(projectID)
	body, err := s.blobs.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("download backup %q: %w", key, err)
	}
	defer body.Close()
	doc, err := DecodeBoardDocument(body)
	if err != nil {
		return err
	}
	if doc.Project.ID != projectID {
		return fmt.Errorf("backup %q belongs to project %q", key, doc.Project.ID)
	}
	return s.ImportBoard(ctx, doc)
}

// DecodeBoardDocument reads a board document.
func DecodeBoardDocument(r io.Reader) (BoardDocument, error) {
	var doc BoardDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return BoardDocument{}, fmt.Errorf("decode board document: %w", err)
	}
	return doc, nil
}
