package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/domain"
)

// Service is the application surface the board drives.
type Service interface {
	ListProjects(ctx context.Context, query string) ([]domain.Project, error)
	CreateProject(ctx context.Context, name, description, createdBy string) (domain.Project, error)
	OpenBoard(ctx context.Context, projectID string) (*board.Store, *app.BoardSyncer, error)
	Reload(ctx context.Context, projectID string, store *board.Store) error
	ListSprints(ctx context.Context, projectID string) ([]app.SprintSummary, error)
	ListUsers(ctx context.Context, query string) ([]domain.User, error)
}

// inputMode represents the active modal.
type inputMode int

const (
	modeNone inputMode = iota
	modeCardForm
	modeColumnForm
	modeProjectForm
	modeConfirmDelete
	modeProjectPicker
	modeCardInfo
)

// card-form field indexes in display order.
const (
	cardFieldTitle = iota
	cardFieldDescription
	cardFieldPriority
	cardFieldStatus
	cardFieldEstimate
	cardFieldDue
	cardFieldTags
	cardFieldAssignees
	cardFieldSprint
	cardFieldAttach
)

// Model is the Bubble Tea model of the terminal board.
type Model struct {
	svc Service
	ctx context.Context

	ready  bool
	width  int
	height int
	err    error
	status string

	help help.Model
	keys keyMap
	md   *markdownRenderer

	projects         []domain.Project
	selectedProject  int
	pendingProjectID string
	store            *board.Store
	syncer           *app.BoardSyncer
	sprints          []app.SprintSummary
	sprint           domain.SprintSelector

	selectedColumn int
	selectedCard   int
	// busy blocks new mutations until the previous one has reloaded the board.
	busy bool

	mode         inputMode
	formInputs   []textinput.Model
	formFocus    int
	columnDialog board.ColumnDialog
	cardDialog   board.CardDialog
	deleteDialog board.DeleteDialog
	pickerIndex  int
	infoCard     domain.Card

	actor          string
	encoder        board.Encoder
	writeClipboard func(string) error
}

// loadedMsg carries a freshly opened board.
type loadedMsg struct {
	projects        []domain.Project
	selectedProject int
	store           *board.Store
	syncer          *app.BoardSyncer
	sprints         []app.SprintSummary
	err             error
}

// actionMsg reports a finished mutation.
type actionMsg struct {
	err     error
	status  string
	notices []app.Notice
	// focusCardID selects a card once the board is reloaded.
	focusCardID string
	// focusColumnEnd selects the last card of a column, used after adds.
	focusColumnEnd string
	lastColumn     bool
	// reload re-opens the board, optionally switching to projectID.
	reload    bool
	projectID string
}

// NewModel constructs the board model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:            svc,
		ctx:            context.Background(),
		status:         "loading...",
		help:           h,
		keys:           newKeyMap(),
		md:             &markdownRenderer{},
		sprint:         domain.SprintAll,
		writeClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.cardDialog = *board.NewCardDialog(m.encoder)
	return m
}

// Init loads the first board.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.projects = msg.projects
		m.pendingProjectID = ""
		if len(m.projects) == 0 {
			m.store, m.syncer, m.sprints = nil, nil, nil
			m.selectedProject, m.selectedColumn, m.selectedCard = 0, 0, 0
			if m.mode == modeNone {
				m.status = "create your first project"
				m.startProjectForm()
			}
			return m, nil
		}
		m.selectedProject = msg.selectedProject
		m.store = msg.store
		m.syncer = msg.syncer
		m.sprints = msg.sprints
		if !m.sprintKnown(m.sprint) {
			m.sprint = domain.SprintAll
		}
		m.clampSelections()
		if m.status == "" || m.status == "loading..." || m.status == "reloading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		for _, n := range msg.notices {
			m.status += " • " + n.Source + ": " + n.Message
		}
		if msg.reload {
			m.pendingProjectID = msg.projectID
			m.busy = true
			return m, m.loadData
		}
		m.applyFocus(msg)
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleModeKey(msg)
		}
		return m.handleBoardKey(msg)

	default:
		return m, nil
	}
}

// loadData opens the selected (or pending) project's board.
func (m Model) loadData() tea.Msg {
	projects, err := m.svc.ListProjects(m.ctx, "")
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(projects) == 0 {
		return loadedMsg{projects: projects}
	}
	idx := clamp(m.selectedProject, 0, len(projects)-1)
	if m.pendingProjectID != "" {
		for i, p := range projects {
			if p.ID == m.pendingProjectID {
				idx = i
				break
			}
		}
	}
	projectID := projects[idx].ID
	store, syncer, err := m.svc.OpenBoard(m.ctx, projectID)
	if err != nil {
		return loadedMsg{err: err}
	}
	sprints, err := m.svc.ListSprints(m.ctx, projectID)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{
		projects:        projects,
		selectedProject: idx,
		store:           store,
		syncer:          syncer,
		sprints:         sprints,
	}
}

// mutate runs op against the store, then reloads the board. Sync failures are
// reported as status and still reload; other errors leave the board untouched.
func (m *Model) mutate(done string, op func(ctx context.Context, store *board.Store) (actionMsg, error)) tea.Cmd {
	if m.store == nil {
		return nil
	}
	m.busy = true
	ctx, svc, store, syncer := m.ctx, m.svc, m.store, m.syncer
	projectID := m.currentProjectID()
	return func() tea.Msg {
		before := 0
		if syncer != nil {
			before = len(syncer.Notices())
		}
		msg, err := op(ctx, store)
		if err != nil && !errors.Is(err, board.ErrSyncFailed) {
			return actionMsg{err: err}
		}
		if reloadErr := svc.Reload(ctx, projectID, store); reloadErr != nil {
			return actionMsg{err: reloadErr}
		}
		if msg.status == "" {
			msg.status = done
		}
		if err != nil {
			msg.status = err.Error()
		}
		if syncer != nil {
			msg.notices = syncer.Notices()[before:]
		}
		return msg
	}
}

// handleBoardKey handles keys while no modal is open.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		m.busy = true
		return m, m.loadData
	case key.Matches(msg, m.keys.newProject):
		m.startProjectForm()
		return m, nil
	case key.Matches(msg, m.keys.projects):
		if len(m.projects) == 0 {
			return m, nil
		}
		m.mode = modeProjectPicker
		m.pickerIndex = m.selectedProject
		return m, nil
	}
	if m.store == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.focusLeft):
		m.selectedColumn = clamp(m.selectedColumn-1, 0, len(m.columns())-1)
		m.selectedCard = clamp(m.selectedCard, 0, len(m.visibleCards(m.selectedColumn))-1)
	case key.Matches(msg, m.keys.focusRight):
		m.selectedColumn = clamp(m.selectedColumn+1, 0, len(m.columns())-1)
		m.selectedCard = clamp(m.selectedCard, 0, len(m.visibleCards(m.selectedColumn))-1)
	case key.Matches(msg, m.keys.focusUp):
		m.selectedCard = clamp(m.selectedCard-1, 0, len(m.visibleCards(m.selectedColumn))-1)
	case key.Matches(msg, m.keys.focusDown):
		m.selectedCard = clamp(m.selectedCard+1, 0, len(m.visibleCards(m.selectedColumn))-1)
	case key.Matches(msg, m.keys.nextSprint):
		m.cycleSprint(1)
	case key.Matches(msg, m.keys.prevSprint):
		m.cycleSprint(-1)
	case key.Matches(msg, m.keys.copyRef):
		m.copySelectedCard()
	case key.Matches(msg, m.keys.cardInfo):
		if card, _, ok := m.selectedCardRef(); ok {
			m.infoCard = card
			m.mode = modeCardInfo
		}
	case key.Matches(msg, m.keys.addColumn):
		m.columnDialog.OpenAdd()
		m.startColumnForm()
	case key.Matches(msg, m.keys.editColumn):
		if col, ok := m.selectedColumnRef(); ok {
			m.columnDialog.OpenEdit(col)
			m.startColumnForm()
		}
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveLeft):
		cmd := m.moveSelected(-1, 0)
		return m, cmd
	case key.Matches(msg, m.keys.moveRight):
		cmd := m.moveSelected(1, 0)
		return m, cmd
	case key.Matches(msg, m.keys.moveUp):
		cmd := m.moveSelected(0, -1)
		return m, cmd
	case key.Matches(msg, m.keys.moveDown):
		cmd := m.moveSelected(0, 1)
		return m, cmd
	case key.Matches(msg, m.keys.addCard):
		if col, ok := m.selectedColumnRef(); ok {
			m.cardDialog.OpenAdd(col.ID)
			m.startCardForm()
		}
	case key.Matches(msg, m.keys.editCard):
		if card, columnID, ok := m.selectedCardRef(); ok {
			m.cardDialog.OpenEdit(columnID, card)
			m.startCardForm()
		}
	case key.Matches(msg, m.keys.deleteCard):
		if card, columnID, ok := m.selectedCardRef(); ok {
			m.deleteDialog.OpenForCard(columnID, card)
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, m.keys.deleteColumn):
		if col, ok := m.selectedColumnRef(); ok {
			m.deleteDialog.OpenForColumn(col)
			m.mode = modeConfirmDelete
		}
	}
	return m, nil
}

// handleModeKey routes keys to the open modal.
func (m Model) handleModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCardInfo:
		switch msg.String() {
		case "esc", "q", "i", "enter":
			m.mode = modeNone
		}
		return m, nil

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := m.confirmDelete()
			return m, cmd
		case "n", "N", "esc":
			m.deleteDialog.Cancel()
			m.mode = modeNone
			m.status = "delete cancelled"
		}
		return m, nil

	case modeProjectPicker:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
		case "j", "down":
			m.pickerIndex = clamp(m.pickerIndex+1, 0, len(m.projects)-1)
		case "k", "up":
			m.pickerIndex = clamp(m.pickerIndex-1, 0, len(m.projects)-1)
		case "enter":
			m.mode = modeNone
			if m.pickerIndex == m.selectedProject {
				return m, nil
			}
			m.pendingProjectID = m.projects[m.pickerIndex].ID
			m.sprint = domain.SprintAll
			m.selectedColumn, m.selectedCard = 0, 0
			m.status = "loading..."
			m.busy = true
			return m, m.loadData
		}
		return m, nil
	}

	// text forms
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.status = "cancelled"
		return m, nil
	case "tab", "down":
		m.focusFormField(m.formFocus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusFormField(m.formFocus - 1)
		return m, nil
	case "enter":
		return m.submitForm()
	}
	// Cursor blink commands are dropped.
	m.formInputs[m.formFocus], _ = m.formInputs[m.formFocus].Update(msg)
	return m, nil
}

// submitForm commits the open form.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeColumnForm:
		m.columnDialog.Title = m.formValue(0)
		m.columnDialog.Description = m.formValue(1)
		dialog := m.columnDialog
		adding := dialog.Mode == board.ModeAdd
		m.closeForm()
		cmd := m.mutate("column saved", func(ctx context.Context, store *board.Store) (actionMsg, error) {
			return actionMsg{lastColumn: adding}, dialog.Save(ctx, store)
		})
		return m, cmd

	case modeProjectForm:
		name := strings.TrimSpace(m.formValue(0))
		if name == "" {
			m.status = "project name is required"
			return m, nil
		}
		description := m.formValue(1)
		m.closeForm()
		ctx, svc, actor := m.ctx, m.svc, m.actor
		m.busy = true
		return m, func() tea.Msg {
			project, err := svc.CreateProject(ctx, name, description, actor)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "project created", reload: true, projectID: project.ID}
		}

	case modeCardForm:
		return m.submitCardForm()
	}
	return m, nil
}

// submitCardForm copies the form into the card dialog and saves it. Assignee
// lookup and attachment encoding run in the command.
func (m Model) submitCardForm() (tea.Model, tea.Cmd) {
	d := &m.cardDialog
	d.Draft.Title = m.formValue(cardFieldTitle)
	if strings.TrimSpace(d.Draft.Title) == "" {
		m.status = "title is required"
		m.focusFormField(cardFieldTitle)
		return m, nil
	}
	priority, err := domain.ParsePriority(m.formValue(cardFieldPriority))
	if err != nil {
		m.status = "priority must be one of Low, Medium, High, Critical"
		m.focusFormField(cardFieldPriority)
		return m, nil
	}
	sprint, err := m.resolveSprint(m.formValue(cardFieldSprint))
	if err != nil {
		m.status = err.Error()
		m.focusFormField(cardFieldSprint)
		return m, nil
	}
	d.Draft.Description = m.formValue(cardFieldDescription)
	d.Draft.Priority = priority
	d.Draft.Status = strings.TrimSpace(m.formValue(cardFieldStatus))
	d.Draft.Estimate = strings.TrimSpace(m.formValue(cardFieldEstimate))
	d.Draft.DueDate = strings.TrimSpace(m.formValue(cardFieldDue))
	d.Draft.Tags = nil
	d.TagsInput = m.formValue(cardFieldTags)
	d.ApplyTags()
	d.SetSprint(sprint)

	emails := splitList(m.formValue(cardFieldAssignees))
	paths := splitList(m.formValue(cardFieldAttach))
	dialog := m.cardDialog
	svc := m.svc
	m.closeForm()
	cmd := m.mutate("card saved", func(ctx context.Context, store *board.Store) (actionMsg, error) {
		refs, err := resolveAssignees(ctx, svc, emails)
		if err != nil {
			return actionMsg{}, err
		}
		dialog.SetAssignees(refs)
		var attachErr error
		if len(paths) > 0 {
			files := make([]board.FileSource, 0, len(paths))
			for _, p := range paths {
				files = append(files, board.PathFile(p))
			}
			_, attachErr = dialog.AttachFiles(ctx, files)
		}
		out := actionMsg{focusCardID: dialog.CardID}
		if dialog.Mode == board.ModeAdd {
			out.focusColumnEnd = dialog.ColumnID
		}
		if attachErr != nil {
			out.status = "card saved, some attachments were skipped: " + attachErr.Error()
		}
		return out, dialog.Save(ctx, store)
	})
	return m, cmd
}

// confirmDelete runs the pending deletion.
func (m *Model) confirmDelete() tea.Cmd {
	dialog := m.deleteDialog
	m.deleteDialog.Cancel()
	m.mode = modeNone
	if m.busy {
		return nil
	}
	return m.mutate("deleted "+dialog.Title, func(ctx context.Context, store *board.Store) (actionMsg, error) {
		return actionMsg{}, dialog.Confirm(ctx, store)
	})
}

// moveSelected moves the selected card by dCol columns or dIdx visible slots.
// Indexes are translated from the sprint-filtered view to the full board.
func (m *Model) moveSelected(dCol, dIdx int) tea.Cmd {
	card, columnID, ok := m.selectedCardRef()
	if !ok {
		return nil
	}
	full := m.store.Snapshot()
	_, srcIdx, found := full.LocateCard(card.ID)
	if !found {
		return nil
	}
	columns := m.columns()
	var dest domain.Position
	switch {
	case dCol != 0:
		target := m.selectedColumn + dCol
		if target < 0 || target >= len(columns) {
			return nil
		}
		dest.ColumnID = columns[target].ID
		dest.Index = fullIndexAt(full, m.visibleCards(target), dest.ColumnID, m.selectedCard)
	default:
		visible := m.visibleCards(m.selectedColumn)
		neighbour := m.selectedCard + dIdx
		if neighbour < 0 || neighbour >= len(visible) {
			return nil
		}
		_, idx, _ := full.LocateCard(visible[neighbour].ID)
		dest = domain.Position{ColumnID: columnID, Index: idx}
	}
	mv := domain.Move{
		CardID:      card.ID,
		Source:      domain.Position{ColumnID: columnID, Index: srcIdx},
		Destination: &dest,
	}
	return m.mutate("moved "+card.Title, func(ctx context.Context, store *board.Store) (actionMsg, error) {
		return actionMsg{focusCardID: card.ID}, store.Move(ctx, mv)
	})
}

// fullIndexAt maps a visible slot in a column to its index on the full board.
// Slots past the visible cards map to the end of the column.
func fullIndexAt(full domain.Board, visible []domain.Card, columnID string, slot int) int {
	if slot < len(visible) {
		if _, idx, ok := full.LocateCard(visible[slot].ID); ok {
			return idx
		}
	}
	return len(full.CardsIn(columnID))
}

// cycleSprint steps through all, unassigned and every sprint.
func (m *Model) cycleSprint(delta int) {
	options := m.sprintOptions()
	current := 0
	for i, opt := range options {
		if opt == m.sprint {
			current = i
			break
		}
	}
	m.sprint = options[wrapIndex(current, delta, len(options))]
	m.selectedCard = 0
	m.clampSelections()
	m.status = "sprint: " + m.sprintLabel()
}

func (m Model) sprintOptions() []domain.SprintSelector {
	out := []domain.SprintSelector{domain.SprintAll, domain.SprintUnassigned}
	for _, sp := range m.sprints {
		out = append(out, domain.SprintSelector(sp.ID))
	}
	return out
}

func (m Model) sprintKnown(sel domain.SprintSelector) bool {
	for _, opt := range m.sprintOptions() {
		if opt == sel {
			return true
		}
	}
	return false
}

// sprintLabel names the active selector.
func (m Model) sprintLabel() string {
	switch m.sprint {
	case domain.SprintAll:
		return "all"
	case domain.SprintUnassigned:
		return "unassigned"
	}
	for _, sp := range m.sprints {
		if sp.ID == string(m.sprint) {
			return sp.Name
		}
	}
	return string(m.sprint)
}

// resolveSprint matches raw against sprint names and ids. Blank clears the sprint.
func (m Model) resolveSprint(raw string) (*domain.SprintRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, sp := range m.sprints {
		if sp.ID == raw || strings.EqualFold(sp.Name, raw) {
			ref := sp.Ref()
			return &ref, nil
		}
	}
	return nil, fmt.Errorf("unknown sprint %q", raw)
}

// resolveAssignees maps emails to user refs.
func resolveAssignees(ctx context.Context, svc Service, emails []string) ([]domain.UserRef, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	users, err := svc.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	refs := make([]domain.UserRef, 0, len(emails))
	for _, email := range emails {
		found := false
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				refs = append(refs, u.Ref())
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown assignee %q", email)
		}
	}
	return refs, nil
}

// copySelectedCard writes "#<id> <title>" to the clipboard.
func (m *Model) copySelectedCard() {
	card, _, ok := m.selectedCardRef()
	if !ok {
		return
	}
	if err := m.writeClipboard(cardReference(card)); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + card.ID
}

func cardReference(card domain.Card) string {
	return "#" + card.ID + " " + card.Title
}

// applyFocus moves the selection after a reload.
func (m *Model) applyFocus(msg actionMsg) {
	columns := m.columns()
	switch {
	case msg.lastColumn:
		m.selectedColumn = len(columns) - 1
		m.selectedCard = 0
	case msg.focusColumnEnd != "" && msg.focusCardID == "":
		for i, col := range columns {
			if col.ID == msg.focusColumnEnd {
				m.selectedColumn = i
				m.selectedCard = len(m.visibleCards(i)) - 1
			}
		}
	case msg.focusCardID != "":
		for i := range columns {
			for j, card := range m.visibleCards(i) {
				if card.ID == msg.focusCardID {
					m.selectedColumn, m.selectedCard = i, j
				}
			}
		}
	}
	m.clampSelections()
}

func (m *Model) clampSelections() {
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.columns())-1)
	m.selectedCard = clamp(m.selectedCard, 0, len(m.visibleCards(m.selectedColumn))-1)
}

// view returns the board narrowed to the active sprint.
func (m Model) view() domain.Board {
	if m.store == nil {
		return domain.Board{}
	}
	return m.store.View(m.sprint)
}

func (m Model) columns() []domain.Column {
	return m.view().Columns
}

func (m Model) visibleCards(columnIdx int) []domain.Card {
	b := m.view()
	if columnIdx < 0 || columnIdx >= len(b.Columns) {
		return nil
	}
	return b.Cards[b.Columns[columnIdx].ID]
}

func (m Model) selectedColumnRef() (domain.Column, bool) {
	columns := m.columns()
	if m.selectedColumn < 0 || m.selectedColumn >= len(columns) {
		return domain.Column{}, false
	}
	return columns[m.selectedColumn], true
}

func (m Model) selectedCardRef() (domain.Card, string, bool) {
	col, ok := m.selectedColumnRef()
	if !ok {
		return domain.Card{}, "", false
	}
	cards := m.visibleCards(m.selectedColumn)
	if m.selectedCard < 0 || m.selectedCard >= len(cards) {
		return domain.Card{}, "", false
	}
	return cards[m.selectedCard], col.ID, true
}

func (m Model) currentProject() (domain.Project, bool) {
	if len(m.projects) == 0 {
		return domain.Project{}, false
	}
	return m.projects[clamp(m.selectedProject, 0, len(m.projects)-1)], true
}

func (m Model) currentProjectID() string {
	p, _ := m.currentProject()
	return p.ID
}

// splitList splits comma-separated input, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// wrapIndex wraps current+delta into [0,total).
func wrapIndex(current, delta, total int) int {
	if total <= 0 {
		return 0
	}
	return ((current+delta)%total + total) % total
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	return min(max(v, minV), maxV)
}
