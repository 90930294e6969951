package tui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/exp/teatest/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/hylla/taskcollab/internal/adapters/storage/sqlite"
	"github.com/hylla/taskcollab/internal/app"
)

// newSteppingService is newTestService with a clock that advances a minute per
// read, so projects list in creation order.
func newSteppingService(t *testing.T) *app.Service {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "tui.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	var mu sync.Mutex
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Minute)
		return now
	}
	return app.NewService(repo, nil, clock, app.ServiceConfig{})
}

func waitForText(t *testing.T, tm *teatest.TestModel, text string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), text)
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))
}

func finalModel(t *testing.T, tm *teatest.TestModel) Model {
	t.Helper()
	raw := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second))
	fm, ok := raw.(Model)
	if !ok {
		t.Fatalf("FinalModel() type = %T, want Model", raw)
	}
	return fm
}

func TestProgramRendersBoardAndQuits(t *testing.T) {
	svc := newTestService(t)
	project, b := newTestProject(t, svc, "Roadmap")
	addTestCard(t, svc, project.ID, b.Columns[0].ID, "Write launch notes", nil)

	tm := teatest.NewTestModel(t, NewModel(svc), teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	waitForText(t, tm, "Write launch notes")
	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})

	fm := finalModel(t, tm)
	if got, _ := fm.currentProject(); got.ID != project.ID {
		t.Fatalf("final project = %q, want %q", got.ID, project.ID)
	}
	if fm.mode != modeNone {
		t.Fatalf("final mode = %d, want modeNone", fm.mode)
	}
}

func TestProgramHelpAndProjectPicker(t *testing.T) {
	svc := newSteppingService(t)
	first, _ := newTestProject(t, svc, "Inbox")
	side, sideBoard := newTestProject(t, svc, "Side")
	addTestCard(t, svc, side.ID, sideBoard.Columns[0].ID, "Side quest", nil)

	tm := teatest.NewTestModel(t, NewModel(svc), teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	waitForText(t, tm, "Inbox")

	tm.Send(tea.KeyPressMsg{Code: '?', Text: "?"})
	waitForText(t, tm, "delete column")

	tm.Send(tea.KeyPressMsg{Code: 'p', Text: "p"})
	waitForText(t, tm, "enter open")

	tm.Send(tea.KeyPressMsg{Code: tea.KeyDown})
	tm.Send(tea.KeyPressMsg{Code: tea.KeyEnter})
	waitForText(t, tm, "Side quest")

	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	fm := finalModel(t, tm)
	got, ok := fm.currentProject()
	if !ok || got.ID != side.ID {
		t.Fatalf("final project = %q, want %q (started on %q)", got.ID, side.ID, first.ID)
	}
	if !fm.help.ShowAll {
		t.Fatal("expected full help to stay open")
	}
}

func TestProgramAddCardPersists(t *testing.T) {
	svc := newTestService(t)
	project, b := newTestProject(t, svc, "Roadmap")
	addTestCard(t, svc, project.ID, b.Columns[0].ID, "Existing", nil)

	tm := teatest.NewTestModel(t, NewModel(svc), teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	waitForText(t, tm, "Existing")
	tm.Send(tea.KeyPressMsg{Code: 'n', Text: "n"})
	tm.Type("Ship beta")
	tm.Send(tea.KeyPressMsg{Code: tea.KeyEnter})
	// Only changed cells are repainted, so the "To Do (2)" header never
	// reaches the output in one piece; the status line does.
	waitForText(t, tm, "card saved")

	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	fm := finalModel(t, tm)
	if diff := cmp.Diff([]string{"Existing", "Ship beta"}, cardTitles(fm.visibleCards(0))); diff != "" {
		t.Fatalf("final board cards mismatch (-want +got):\n%s", diff)
	}

	stored, err := svc.LoadBoard(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("LoadBoard() error = %v", err)
	}
	if got := cardTitles(stored.Cards[b.Columns[0].ID]); len(got) != 2 || got[1] != "Ship beta" {
		t.Fatalf("stored titles = %v, want [Existing Ship beta]", got)
	}
}
