package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/domain"
)

var testNow = time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewService(store, sequentialIDs(), fixedClock(testNow), ServiceConfig{
		TaskLinkBase: "https://tasks.example.com/",
	}, opts...)
	return svc, store
}

func createProject(t *testing.T, svc *Service) domain.Project {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), "Launch", "Q3 launch", "admin@example.com")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return p
}

func columnTitles(b domain.Board) []string {
	out := make([]string, 0, len(b.Columns))
	for _, c := range b.Columns {
		out = append(out, c.Title)
	}
	return out
}

func cardTitles(b domain.Board, columnID string) []string {
	out := []string{}
	for _, c := range b.CardsIn(columnID) {
		out = append(out, c.Title)
	}
	return out
}

func strPtr(v string) *string { return &v }

func TestCreateProjectAddsDefaultColumns(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)

	if got := store.field(CollectionProjects, p.ID, "project_name"); got != "Launch" {
		t.Fatalf("expected project_name stored, got %v", got)
	}
	b, err := svc.LoadBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if diff := cmp.Diff([]string{"To Do", "In Progress", "Done"}, columnTitles(b)); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	for _, col := range b.Columns {
		if !strings.HasPrefix(col.ID, domain.ColumnIDPrefix) {
			t.Fatalf("unexpected column id %q", col.ID)
		}
	}
}

func TestCreateProjectWithoutDefaultColumns(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, sequentialIDs(), fixedClock(testNow), ServiceConfig{DefaultColumns: []ColumnTemplate{}})
	p := createProject(t, svc)
	if got := store.count(CollectionColumns); got != 0 {
		t.Fatalf("expected no columns for project %s, got %d", p.ID, got)
	}
}

func TestListProjectsSearch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createProject(t, svc)
	if _, err := svc.CreateProject(ctx, "Website", "marketing site", "ops@example.com"); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	got, err := svc.ListProjects(ctx, "MARKETING")
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Website" {
		t.Fatalf("unexpected search result %#v", got)
	}
	all, err := svc.ListProjects(ctx, "")
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(all))
	}
}

func TestLoadBoardTranslatesStoredFields(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	sprint, err := svc.CreateSprint(ctx, p.ID, domain.SprintInput{Name: "Sprint 1"})
	if err != nil {
		t.Fatalf("CreateSprint() error = %v", err)
	}
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID

	seed := map[string]Fields{
		"e2": {
			"project_id": p.ID, "column_id": todo, "entry_position": 1,
			"entry_name": "second", "entry_priority": "high",
			"entry_tags": `["api"]`, "entry_sprint_id": sprint.ID,
			"entry_assignees": `[{"id":"u1","name":"Ada","email":"ada@example.com"}]`,
		},
		"e1": {
			"project_id": p.ID, "column_id": todo, "entry_position": 0,
			"entry_name": "first", "entry_estimation_hours": "3",
		},
		"orphan": {"project_id": p.ID, "column_id": "col-gone", "entry_name": "lost"},
	}
	for id, fields := range seed {
		if err := store.Set(ctx, CollectionEntries, id, fields); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	b, err = svc.LoadBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, cardTitles(b, todo)); diff != "" {
		t.Fatalf("cards mismatch (-want +got):\n%s", diff)
	}
	if b.CardCount() != 2 {
		t.Fatalf("expected orphan card dropped, got %d cards", b.CardCount())
	}
	first, second := b.CardsIn(todo)[0], b.CardsIn(todo)[1]
	if first.Estimate != "3" || first.Priority != domain.PriorityMedium || first.Sprint != nil {
		t.Fatalf("unexpected first card %#v", first)
	}
	want := &domain.SprintRef{ID: sprint.ID, Name: "Sprint 1"}
	if diff := cmp.Diff(want, second.Sprint); diff != "" {
		t.Fatalf("sprint mismatch (-want +got):\n%s", diff)
	}
	if second.Priority != domain.PriorityHigh || len(second.Assignees) != 1 || second.Tags[0] != "api" {
		t.Fatalf("unexpected second card %#v", second)
	}
}

func TestAddCardPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, store := newTestService(t, WithNotifier(notifier))
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID

	assignees := []domain.UserRef{{ID: "u1", Name: "Ada", Email: "ada@example.com"}}
	high := domain.PriorityHigh
	card, res, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{
		Title:     strPtr("Ship it"),
		Assignees: &assignees,
		Priority:  &high,
	})
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	if got := store.field(CollectionEntries, card.ID, "entry_name"); got != "Ship it" {
		t.Fatalf("expected entry_name stored, got %v", got)
	}
	if got := store.field(CollectionEntries, card.ID, "entry_sprint_id"); got != nil {
		t.Fatalf("expected nil sprint id, got %v", got)
	}
	if diff := cmp.Diff([]string{"Ship it"}, cardTitles(res.Board, todo)); diff != "" {
		t.Fatalf("reloaded board mismatch (-want +got):\n%s", diff)
	}
	if len(res.Notices) != 0 {
		t.Fatalf("unexpected notices %#v", res.Notices)
	}
	if len(notifier.requests) != 1 {
		t.Fatalf("expected one email, got %d", len(notifier.requests))
	}
	want := EmailRequest{
		To:              Recipients{"ada@example.com"},
		Subject:         "A new task assigned to you.",
		Name:            "Ada",
		InnerSubject:    "Task Alloted",
		UpdateType:      "Task",
		UpdatedBy:       "Project Admin",
		TaskStatus:      "High",
		TaskPriority:    "High",
		OptionalMessage: "Please check the task details ASAP.",
		TaskLink:        "https://tasks.example.com/projects/" + p.ID,
	}
	if diff := cmp.Diff(want, notifier.requests[0]); diff != "" {
		t.Fatalf("email mismatch (-want +got):\n%s", diff)
	}
}

func TestAddCardNotificationFailureBecomesNotice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, WithNotifier(&fakeNotifier{fail: true}))
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)

	assignees := []domain.UserRef{{Email: "ada@example.com"}}
	_, res, err := svc.AddCard(ctx, p.ID, b.Columns[0].ID, domain.CardPatch{Assignees: &assignees})
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	if len(res.Notices) != 1 || !strings.Contains(res.Notices[0].Message, "smtp down") {
		t.Fatalf("expected notification notice, got %#v", res.Notices)
	}
	if res.Board.CardCount() != 1 {
		t.Fatalf("expected card kept despite email failure, got %d", res.Board.CardCount())
	}
}

func TestAddCardUnknownColumn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := createProject(t, svc)
	_, _, err := svc.AddCard(ctx, p.ID, "col-missing", domain.CardPatch{})
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, board.ErrSyncFailed) {
		t.Fatalf("expected sync-wrapped ErrNotFound, got %v", err)
	}
}

func TestEditCardNotifiesOnlyNewAssignees(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, store := newTestService(t, WithNotifier(notifier))
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID

	ada := domain.UserRef{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	first := []domain.UserRef{ada}
	card, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{Title: strPtr("Task"), Assignees: &first})
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	created := store.field(CollectionEntries, card.ID, "entry_created_at")

	both := []domain.UserRef{ada, {ID: "u2", Name: "Lin", Email: "LIN@example.com"}}
	res, err := svc.EditCard(ctx, p.ID, todo, card.ID, domain.CardPatch{
		Title:     strPtr("Task v2"),
		Assignees: &both,
		Sprint:    &domain.SprintChange{Ref: &domain.SprintRef{ID: "s9"}},
	})
	if err != nil {
		t.Fatalf("EditCard() error = %v", err)
	}
	if len(notifier.requests) != 2 {
		t.Fatalf("expected two emails, got %d", len(notifier.requests))
	}
	if diff := cmp.Diff(Recipients{"LIN@example.com"}, notifier.requests[1].To); diff != "" {
		t.Fatalf("recipients mismatch (-want +got):\n%s", diff)
	}
	if got := store.field(CollectionEntries, card.ID, "entry_sprint_id"); got != "s9" {
		t.Fatalf("expected sprint stored, got %v", got)
	}
	if got := store.field(CollectionEntries, card.ID, "entry_created_at"); got != created {
		t.Fatalf("created at changed from %v to %v", created, got)
	}
	edited, ok := res.Board.Card(todo, card.ID)
	if !ok || edited.Title != "Task v2" {
		t.Fatalf("unexpected edited card %#v", edited)
	}

	res, err = svc.EditCard(ctx, p.ID, todo, card.ID, domain.CardPatch{Sprint: &domain.SprintChange{}})
	if err != nil {
		t.Fatalf("EditCard() error = %v", err)
	}
	if got := store.field(CollectionEntries, card.ID, "entry_sprint_id"); got != nil {
		t.Fatalf("expected sprint cleared, got %v", got)
	}
	if len(notifier.requests) != 2 {
		t.Fatalf("expected no email without new assignees, got %d", len(notifier.requests))
	}
}

func TestMoveCardRewritesPositions(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo, doing := b.Columns[0].ID, b.Columns[1].ID

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		card, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{Title: strPtr(title)})
		if err != nil {
			t.Fatalf("AddCard() error = %v", err)
		}
		ids = append(ids, card.ID)
	}
	if _, _, err := svc.AddCard(ctx, p.ID, doing, domain.CardPatch{Title: strPtr("x")}); err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}

	res, err := svc.MoveCard(ctx, p.ID, domain.Move{
		Source:      domain.Position{ColumnID: todo, Index: 0},
		Destination: &domain.Position{ColumnID: todo, Index: 2},
	})
	if err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c", "a"}, cardTitles(res.Board, todo)); diff != "" {
		t.Fatalf("same-column move mismatch (-want +got):\n%s", diff)
	}

	res, err = svc.MoveCard(ctx, p.ID, domain.Move{
		CardID:      ids[1],
		Source:      domain.Position{ColumnID: todo, Index: 0},
		Destination: &domain.Position{ColumnID: doing, Index: 0},
	})
	if err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if diff := cmp.Diff([]string{"c", "a"}, cardTitles(res.Board, todo)); diff != "" {
		t.Fatalf("source column mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "x"}, cardTitles(res.Board, doing)); diff != "" {
		t.Fatalf("destination column mismatch (-want +got):\n%s", diff)
	}
	if got := store.field(CollectionEntries, ids[1], "column_id"); got != doing {
		t.Fatalf("expected column_id updated, got %v", got)
	}

	before := res.Board
	res, err = svc.MoveCard(ctx, p.ID, domain.Move{Source: domain.Position{ColumnID: todo, Index: 0}})
	if err != nil {
		t.Fatalf("cancelled MoveCard() error = %v", err)
	}
	if diff := cmp.Diff(before, res.Board); diff != "" {
		t.Fatalf("cancelled move changed board (-want +got):\n%s", diff)
	}
}

func TestMoveCardRejectsStaleMoves(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID
	if _, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{}); err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}

	tests := map[string]domain.Move{
		"index out of range": {Source: domain.Position{ColumnID: todo, Index: 5}, Destination: &domain.Position{ColumnID: todo}},
		"card mismatch":      {CardID: "card-other", Source: domain.Position{ColumnID: todo}, Destination: &domain.Position{ColumnID: todo}},
		"unknown column":     {Source: domain.Position{ColumnID: todo}, Destination: &domain.Position{ColumnID: "col-nope"}},
	}
	for name, mv := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.MoveCard(ctx, p.ID, mv); !errors.Is(err, ErrInvalidMove) {
				t.Fatalf("expected ErrInvalidMove, got %v", err)
			}
		})
	}
}

func TestDeleteColumnCascades(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID
	card, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{})
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	if _, err := svc.AddSubtask(ctx, p.ID, card.ID, "write tests"); err != nil {
		t.Fatalf("AddSubtask() error = %v", err)
	}

	res, err := svc.DeleteColumn(ctx, p.ID, todo)
	if err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	if _, ok := res.Board.Column(todo); ok {
		t.Fatal("expected column removed")
	}
	if store.count(CollectionEntries) != 0 || store.count(CollectionSubtasks) != 0 {
		t.Fatalf("expected cascade, entries=%d subtasks=%d", store.count(CollectionEntries), store.count(CollectionSubtasks))
	}
}

func TestEditAndAddColumn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := createProject(t, svc)
	col, res, err := svc.AddColumn(ctx, p.ID, "  ", "later")
	if err != nil {
		t.Fatalf("AddColumn() error = %v", err)
	}
	if diff := cmp.Diff([]string{"To Do", "In Progress", "Done", "Untitled"}, columnTitles(res.Board)); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	res, err = svc.EditColumn(ctx, p.ID, col.ID, domain.ColumnPatch{Title: strPtr("Backlog")})
	if err != nil {
		t.Fatalf("EditColumn() error = %v", err)
	}
	edited, _ := res.Board.Column(col.ID)
	if edited.Title != "Backlog" || edited.Description != "later" {
		t.Fatalf("unexpected edited column %#v", edited)
	}
	if _, err := svc.EditColumn(ctx, "other-project", col.ID, domain.ColumnPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestDeleteSprintModes(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID

	keep, err := svc.CreateSprint(ctx, p.ID, domain.SprintInput{Name: "keep"})
	if err != nil {
		t.Fatalf("CreateSprint() error = %v", err)
	}
	drop, err := svc.CreateSprint(ctx, p.ID, domain.SprintInput{Name: "drop", Status: "Active"})
	if err != nil {
		t.Fatalf("CreateSprint() error = %v", err)
	}
	for _, sp := range []domain.Sprint{keep, keep, drop} {
		ref := sp.Ref()
		if _, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{Sprint: &domain.SprintChange{Ref: &ref}}); err != nil {
			t.Fatalf("AddCard() error = %v", err)
		}
	}

	summaries, err := svc.ListSprints(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListSprints() error = %v", err)
	}
	counts := map[string]int{}
	for _, s := range summaries {
		counts[s.Name] = s.TaskCount
	}
	if diff := cmp.Diff(map[string]int{"keep": 2, "drop": 1}, counts); diff != "" {
		t.Fatalf("task counts mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.DeleteSprint(ctx, p.ID, keep.ID, SprintDeleteMode("archive")); !errors.Is(err, ErrInvalidDeleteMode) {
		t.Fatalf("expected ErrInvalidDeleteMode, got %v", err)
	}
	n, err := svc.DeleteSprint(ctx, p.ID, keep.ID, SprintKeepTasks)
	if err != nil || n != 2 {
		t.Fatalf("DeleteSprint(keep) = %d, %v", n, err)
	}
	if store.count(CollectionEntries) != 3 {
		t.Fatalf("expected cards kept, got %d", store.count(CollectionEntries))
	}
	b, _ = svc.LoadBoard(ctx, p.ID)
	unassigned := domain.FilterBySprint(b.Cards, domain.SprintUnassigned)
	if len(unassigned[todo]) != 2 {
		t.Fatalf("expected 2 unassigned cards, got %d", len(unassigned[todo]))
	}

	n, err = svc.DeleteSprint(ctx, p.ID, drop.ID, SprintWithTasks)
	if err != nil || n != 1 {
		t.Fatalf("DeleteSprint(with tasks) = %d, %v", n, err)
	}
	if store.count(CollectionEntries) != 2 || store.count(CollectionSprints) != 0 {
		t.Fatalf("unexpected remaining entries=%d sprints=%d", store.count(CollectionEntries), store.count(CollectionSprints))
	}
}

func TestSprintStatusCatalogSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	got, err := svc.SprintStatusCatalog(ctx)
	if err != nil {
		t.Fatalf("SprintStatusCatalog() error = %v", err)
	}
	want := []SprintStatusOption{
		{Value: "planned", Label: "Planned"},
		{Value: "active", Label: "Active"},
		{Value: "completed", Label: "Completed"},
		{Value: "on hold", Label: "On Hold"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
	if store.count(CollectionSprintStatuses) != 4 {
		t.Fatalf("expected catalog seeded, got %d", store.count(CollectionSprintStatuses))
	}
	again, err := svc.SprintStatusCatalog(ctx)
	if err != nil {
		t.Fatalf("SprintStatusCatalog() error = %v", err)
	}
	if diff := cmp.Diff(want, again); diff != "" {
		t.Fatalf("stored catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestSubtasks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	card, _, err := svc.AddCard(ctx, p.ID, b.Columns[0].ID, domain.CardPatch{})
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	st, err := svc.AddSubtask(ctx, p.ID, card.ID, " draft ")
	if err != nil {
		t.Fatalf("AddSubtask() error = %v", err)
	}
	toggled, err := svc.ToggleSubtask(ctx, p.ID, st.ID)
	if err != nil || !toggled.Done {
		t.Fatalf("ToggleSubtask() = %#v, %v", toggled, err)
	}
	list, err := svc.ListSubtasks(ctx, p.ID, card.ID)
	if err != nil {
		t.Fatalf("ListSubtasks() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "draft" || !list[0].Done {
		t.Fatalf("unexpected subtasks %#v", list)
	}
	if _, err := svc.AddSubtask(ctx, p.ID, "card-missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteSubtask(ctx, p.ID, st.ID); err != nil {
		t.Fatalf("DeleteSubtask() error = %v", err)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	if _, _, err := svc.AddCard(ctx, p.ID, b.Columns[0].ID, domain.CardPatch{}); err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	if _, err := svc.CreateSprint(ctx, p.ID, domain.SprintInput{Name: "s"}); err != nil {
		t.Fatalf("CreateSprint() error = %v", err)
	}
	if err := svc.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	for _, c := range []string{CollectionProjects, CollectionColumns, CollectionEntries, CollectionSprints} {
		if n := store.count(c); n != 0 {
			t.Fatalf("expected %s empty, got %d", c, n)
		}
	}
	if err := svc.DeleteProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	u, err := svc.CreateUser(ctx, CreateUserInput{
		UserInput: domain.UserInput{Name: "Ada", Email: " Ada@Example.com ", Position: "Lead", IsAdmin: true},
		Password:  "hunter2",
		CreatedBy: "root",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if hash, _ := store.field(CollectionUsers, u.ID, "password").(string); !strings.HasPrefix(hash, "argon2id$") {
		t.Fatalf("expected argon2id hash stored, got %q", hash)
	}
	_, err = svc.CreateUser(ctx, CreateUserInput{
		UserInput: domain.UserInput{Name: "Dup", Email: "ada@example.com"},
		Password:  "x",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, CreateUserInput{UserInput: domain.UserInput{Name: "Bad", Email: "nope"}, Password: "x"}); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong", []byte("k"), time.Hour); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost@example.com", "hunter2", []byte("k"), time.Hour); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	token, identity, err := svc.Login(ctx, "ADA@example.com", "hunter2", []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" || identity.ID != u.ID || !identity.IsAdmin || identity.ExpiresAt != testNow.Add(time.Hour).Unix() {
		t.Fatalf("unexpected identity %#v", identity)
	}

	updated, err := svc.UpdateUser(ctx, u.ID, domain.UserInput{Name: "Ada L", Email: "ada@example.com"}, "")
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Name != "Ada L" || updated.IsAdmin {
		t.Fatalf("unexpected updated user %#v", updated)
	}
	if _, _, err := svc.Login(ctx, "ada@example.com", "hunter2", []byte("k"), 0); err != nil {
		t.Fatalf("expected password kept, got %v", err)
	}
	found, err := svc.ListUsers(ctx, "ada l")
	if err != nil || len(found) != 1 {
		t.Fatalf("ListUsers() = %#v, %v", found, err)
	}
	if err := svc.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
}

func TestBackupAndRestore(t *testing.T) {
	ctx := context.Background()
	blobs := &fakeBlobs{}
	svc, store := newTestService(t, WithBlobStore(blobs))
	svc.backupPrefix = "team/"
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID
	if _, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{Title: strPtr("keep me")}); err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}

	key, err := svc.BackupBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("BackupBoard() error = %v", err)
	}
	if key != "team/boards/"+p.ID+".json" {
		t.Fatalf("unexpected key %q", key)
	}
	saved, _ := svc.LoadBoard(ctx, p.ID)

	if _, err := store.DeleteByQuery(ctx, CollectionEntries, nil); err != nil {
		t.Fatalf("DeleteByQuery() error = %v", err)
	}
	if err := svc.RestoreBoard(ctx, p.ID); err != nil {
		t.Fatalf("RestoreBoard() error = %v", err)
	}
	restored, err := svc.LoadBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if diff := cmp.Diff(saved, restored); diff != "" {
		t.Fatalf("restored board mismatch (-want +got):\n%s", diff)
	}

	bare, _ := newTestService(t)
	if _, err := bare.BackupBoard(ctx, p.ID); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	responder := &fakeResponder{reply: "Use the + button."}
	svc, _ := newTestService(t, WithResponder(responder))
	history, err := svc.Ask(ctx, nil, "  how do I add a card? ")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(history) != 2 || history[0].Role != domain.ChatRoleUser || history[1].Text != "Use the + button." {
		t.Fatalf("unexpected history %#v", history)
	}
	if responder.prompts[0] != "how do I add a card?" {
		t.Fatalf("unexpected prompt %q", responder.prompts[0])
	}
	if _, err := svc.Ask(ctx, history, " "); err == nil {
		t.Fatal("expected error for blank prompt")
	}
	bare, _ := newTestService(t)
	if _, err := bare.Ask(ctx, nil, "hi"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestStoreFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	store.failOn = CollectionSprints
	if _, err := svc.LoadBoard(ctx, p.ID); err == nil {
		t.Fatal("expected load failure")
	}
}

func TestEditAndDeleteMissingTargetsAreNoOps(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	p := createProject(t, svc)
	before, err := svc.LoadBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	todo := before.Columns[0].ID

	ops := map[string]func() (BoardResult, error){
		"edit card": func() (BoardResult, error) {
			return svc.EditCard(ctx, p.ID, todo, "card-gone", domain.CardPatch{Title: strPtr("x")})
		},
		"delete card": func() (BoardResult, error) { return svc.DeleteCard(ctx, p.ID, todo, "card-gone") },
		"edit column": func() (BoardResult, error) {
			return svc.EditColumn(ctx, p.ID, "col-gone", domain.ColumnPatch{Title: strPtr("x")})
		},
		"delete column": func() (BoardResult, error) { return svc.DeleteColumn(ctx, p.ID, "col-gone") },
	}
	for name, op := range ops {
		res, err := op()
		if err != nil {
			t.Fatalf("%s error = %v", name, err)
		}
		if diff := cmp.Diff(before, res.Board); diff != "" {
			t.Fatalf("%s changed board (-want +got):\n%s", name, diff)
		}
	}

	if _, err := svc.DeleteCard(ctx, "project-gone", todo, "card-gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestDeleteColumnFailureHidesColumnFirst(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo, done := b.Columns[0].ID, b.Columns[2].ID
	card, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{Title: strPtr("doomed")})
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	if _, _, err := svc.AddCard(ctx, p.ID, done, domain.CardPatch{Title: strPtr("kept")}); err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}
	if _, err := svc.AddSubtask(ctx, p.ID, card.ID, "step"); err != nil {
		t.Fatalf("AddSubtask() error = %v", err)
	}

	store.failDeletesOn = CollectionEntries
	if _, err := svc.DeleteColumn(ctx, p.ID, todo); !errors.Is(err, board.ErrSyncFailed) {
		t.Fatalf("expected sync failure, got %v", err)
	}
	store.failDeletesOn = ""

	after, err := svc.LoadBoard(ctx, p.ID)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if _, ok := after.Column(todo); ok {
		t.Fatal("expected column gone after partial cascade")
	}
	if _, _, ok := after.LocateCard(card.ID); ok {
		t.Fatal("expected card of deleted column to be unreachable")
	}
	if diff := cmp.Diff([]string{"kept"}, cardTitles(after, done)); diff != "" {
		t.Fatalf("other column changed (-want +got):\n%s", diff)
	}
}

func TestEditCardUpdatedAtNeverRegresses(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	p := createProject(t, svc)
	b, _ := svc.LoadBoard(ctx, p.ID)
	todo := b.Columns[0].ID
	card, _, err := svc.AddCard(ctx, p.ID, todo, domain.CardPatch{Title: strPtr("Task")})
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}

	behind := NewService(store, sequentialIDs(), fixedClock(testNow.Add(-time.Hour)), ServiceConfig{})
	res, err := behind.EditCard(ctx, p.ID, todo, card.ID, domain.CardPatch{Title: strPtr("Task v2")})
	if err != nil {
		t.Fatalf("EditCard() error = %v", err)
	}
	edited, ok := res.Board.Card(todo, card.ID)
	if !ok || edited.Title != "Task v2" {
		t.Fatalf("unexpected edited card %#v", edited)
	}
	if !edited.UpdatedAt.Equal(testNow) {
		t.Fatalf("updated_at = %s, want %s", edited.UpdatedAt, testNow)
	}
}
