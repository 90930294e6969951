package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/domain"
	"github.com/spf13/cobra"
)

// withRuntime opens the runtime for one command invocation and closes it afterwards.
func withRuntime(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *runtimeEnv) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := openRuntime(ctx, opts, cmd.CommandPath(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, env.Close())
	}()
	if err := fn(ctx, env); err != nil {
		env.logger.Error("command failed", "command", cmd.CommandPath(), "err", err)
		return err
	}
	return nil
}

// resolveProject finds a project by id or case-insensitive name. A blank ref
// selects the first project.
func resolveProject(ctx context.Context, svc *app.Service, ref string) (domain.Project, error) {
	projects, err := svc.ListProjects(ctx, "")
	if err != nil {
		return domain.Project{}, err
	}
	if len(projects) == 0 {
		return domain.Project{}, errors.New("no projects yet; create one with `taskcollab project create <name>`")
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return projects[0], nil
	}
	for _, p := range projects {
		if p.ID == ref || strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return domain.Project{}, fmt.Errorf("project %q: %w", ref, app.ErrNotFound)
}

// resolveColumn finds a column by id or case-insensitive title. A blank ref
// selects the first column.
func resolveColumn(b domain.Board, ref string) (domain.Column, error) {
	if len(b.Columns) == 0 {
		return domain.Column{}, errors.New("board has no columns")
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return b.Columns[0], nil
	}
	for _, col := range b.Columns {
		if col.ID == ref || strings.EqualFold(col.Title, ref) {
			return col, nil
		}
	}
	return domain.Column{}, fmt.Errorf("column %q: %w", ref, app.ErrNotFound)
}

// resolveSprintRef maps a sprint id or name onto a card sprint change. "none"
// clears the sprint.
func resolveSprintRef(ctx context.Context, svc *app.Service, projectID, ref string) (*domain.SprintChange, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, "none") {
		return &domain.SprintChange{}, nil
	}
	sprints, err := svc.ListSprints(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, s := range sprints {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return &domain.SprintChange{Ref: &domain.SprintRef{ID: s.ID, Name: s.Name}}, nil
		}
	}
	return nil, fmt.Errorf("sprint %q: %w", ref, app.ErrNotFound)
}

// resolveAssignees maps user ids or emails onto assignee refs.
func resolveAssignees(ctx context.Context, svc *app.Service, refs []string) ([]domain.UserRef, error) {
	out := make([]domain.UserRef, 0, len(refs))
	if len(refs) == 0 {
		return out, nil
	}
	users, err := svc.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		found := false
		for _, u := range users {
			if u.ID == ref || strings.EqualFold(u.Email, ref) {
				out = append(out, domain.UserRef{ID: u.ID, Name: u.Name, Email: u.Email})
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown assignee %q", ref)
		}
	}
	return out, nil
}

// printNotices reports persistence side effects that did not fail the command.
func printNotices(w io.Writer, notices []app.Notice) {
	for _, n := range notices {
		fmt.Fprintf(w, "notice: %s: %s\n", n.Source, n.Message)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitCSV splits comma-separated flag values, dropping blanks.
func splitCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// uniqueStrings drops repeated values, keeping first occurrences in order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
