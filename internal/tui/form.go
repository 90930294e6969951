package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
)

var (
	cardFormLabels    = []string{"title", "description", "priority", "status", "estimate", "due", "tags", "assignees", "sprint", "attach"}
	columnFormLabels  = []string{"title", "description"}
	projectFormLabels = []string{"name", "description"}
)

// startCardForm fills the form from the open card dialog.
func (m *Model) startCardForm() {
	draft := m.cardDialog.Draft
	assignees := make([]string, 0, len(draft.Assignees))
	for _, a := range draft.Assignees {
		assignees = append(assignees, a.Email)
	}
	sprint := ""
	if draft.Sprint != nil {
		sprint = draft.Sprint.Name
	}
	m.formInputs = []textinput.Model{
		newModalInput("", "short summary", draft.Title, 120),
		newModalInput("", "details", draft.Description, 500),
		newModalInput("", "Low | Medium | High | Critical", string(draft.Priority), 10),
		newModalInput("", "free-form status", draft.Status, 60),
		newModalInput("", "e.g. 3d", draft.Estimate, 30),
		newModalInput("", "YYYY-MM-DD", draft.DueDate, 30),
		newModalInput("", "comma separated", strings.Join(draft.Tags, ", "), 200),
		newModalInput("", "emails, comma separated", strings.Join(assignees, ", "), 300),
		newModalInput("", "sprint name, blank for none", sprint, 80),
		newModalInput("", "file paths to attach", "", 500),
	}
	m.mode = modeCardForm
	m.focusFormField(cardFieldTitle)
}

// startColumnForm fills the form from the open column dialog.
func (m *Model) startColumnForm() {
	m.formInputs = []textinput.Model{
		newModalInput("", "column title", m.columnDialog.Title, 80),
		newModalInput("", "description", m.columnDialog.Description, 240),
	}
	m.mode = modeColumnForm
	m.focusFormField(0)
}

func (m *Model) startProjectForm() {
	m.formInputs = []textinput.Model{
		newModalInput("", "project name", "", 80),
		newModalInput("", "description", "", 240),
	}
	m.mode = modeProjectForm
	m.focusFormField(0)
}

// closeForm drops any open form and dialog state.
func (m *Model) closeForm() {
	m.columnDialog.Cancel()
	m.cardDialog.Cancel()
	m.formInputs = nil
	m.formFocus = 0
	m.mode = modeNone
}

// focusFormField focuses field idx, wrapping around.
func (m *Model) focusFormField(idx int) {
	if len(m.formInputs) == 0 {
		return
	}
	m.formFocus = wrapIndex(idx, 0, len(m.formInputs))
	for i := range m.formInputs {
		if i == m.formFocus {
			// Blink commands are dropped; the cursor is drawn statically.
			_ = m.formInputs[i].Focus()
			continue
		}
		m.formInputs[i].Blur()
	}
}

func (m Model) formValue(idx int) string {
	if idx < 0 || idx >= len(m.formInputs) {
		return ""
	}
	return m.formInputs[idx].Value()
}

// formLabels returns labels for the open form.
func (m Model) formLabels() []string {
	switch m.mode {
	case modeCardForm:
		return cardFormLabels
	case modeColumnForm:
		return columnFormLabels
	case modeProjectForm:
		return projectFormLabels
	default:
		return nil
	}
}

func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}
