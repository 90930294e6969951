package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/domain"
)

// View renders the board and any open modal.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// render returns the full screen as text.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("taskcollab")
	if project, ok := m.currentProject(); ok {
		header += "  " + project.Name
	}
	header += statusStyle.Render("  sprint: " + m.sprintLabel())
	if m.mode != modeNone {
		header += statusStyle.Render("  [" + m.modeLabel() + "]")
	}

	var body string
	switch m.mode {
	case modeNone:
		body = m.renderBoard(accent, muted, dim)
	case modeCardInfo:
		body = m.renderCardInfo(accent, dim)
	default:
		body = m.renderModal(accent, muted, dim)
	}

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	return content + "\n" + helpLine
}

// renderBoard draws one bordered box per column.
func (m Model) renderBoard(accent, muted, dim color.Color) string {
	b := m.view()
	if len(b.Columns) == 0 {
		if m.store == nil {
			return lipgloss.NewStyle().Foreground(muted).Render("no project open • N new project")
		}
		return lipgloss.NewStyle().Foreground(muted).Render("no columns • c add column")
	}

	colWidth := m.columnWidth(len(b.Columns))
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	selColStyle := baseColStyle.BorderForeground(accent)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedCardStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)
	innerWidth := max(1, colWidth-4)
	innerHeight := m.columnHeight()

	views := make([]string, 0, len(b.Columns))
	for colIdx, col := range b.Columns {
		cards := b.Cards[col.ID]
		lines := []string{colTitle.Render(truncate(fmt.Sprintf("%s (%d)", col.Title, len(cards)), innerWidth))}
		if col.Description != "" {
			lines = append(lines, subStyle.Render(truncate(col.Description, innerWidth)))
		}
		lines = append(lines, "")
		if len(cards) == 0 {
			lines = append(lines, subStyle.Render("(empty)"))
		}
		for cardIdx, card := range cards {
			selected := colIdx == m.selectedColumn && cardIdx == m.selectedCard
			prefix := "  "
			title := truncate(card.Title, innerWidth-2)
			if selected {
				prefix = "› "
				title = selectedCardStyle.Render(title)
			}
			lines = append(lines, prefix+title)
			if meta := cardMeta(card); meta != "" {
				lines = append(lines, "  "+subStyle.Render(truncate(meta, innerWidth-2)))
			}
		}
		content := fitLines(strings.Join(lines, "\n"), innerHeight)
		if colIdx == m.selectedColumn {
			views = append(views, selColStyle.Render(content))
		} else {
			views = append(views, baseColStyle.Render(content))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// cardMeta summarizes priority, sprint, due date and tags on one line.
func cardMeta(card domain.Card) string {
	parts := []string{string(card.Priority)}
	if card.Sprint != nil {
		parts = append(parts, card.Sprint.Name)
	}
	if card.DueDate != "" {
		parts = append(parts, "due "+card.DueDate)
	}
	if len(card.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(card.Tags, " #"))
	}
	if n := len(card.Attachments); n > 0 {
		parts = append(parts, fmt.Sprintf("%d files", n))
	}
	return strings.Join(parts, " • ")
}

// renderModal draws the open form, picker or delete confirmation.
func (m Model) renderModal(accent, muted, dim color.Color) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hint := lipgloss.NewStyle().Foreground(muted)
	lines := []string{title.Render(m.modeLabel()), ""}

	switch m.mode {
	case modeConfirmDelete:
		target := "column"
		if m.deleteDialog.TargetsCard() {
			target = "card"
		}
		lines = append(lines, fmt.Sprintf("delete %s %q?", target, m.deleteDialog.Title))
		if !m.deleteDialog.TargetsCard() {
			lines = append(lines, hint.Render("all cards in the column are removed"))
		}
		lines = append(lines, "", hint.Render("y confirm • n cancel"))

	case modeProjectPicker:
		for i, p := range m.projects {
			prefix := "  "
			if i == m.pickerIndex {
				prefix = "› "
			}
			lines = append(lines, prefix+p.Name)
		}
		lines = append(lines, "", hint.Render("j/k move • enter open • esc cancel"))

	default:
		labels := m.formLabels()
		for i, in := range m.formInputs {
			label := ""
			if i < len(labels) {
				label = labels[i]
			}
			marker := "  "
			if i == m.formFocus {
				marker = "› "
			}
			lines = append(lines, fmt.Sprintf("%s%-12s %s", marker, label, in.View()))
		}
		lines = append(lines, "", hint.Render("tab next • shift+tab prev • enter save • esc cancel"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		Width(min(max(40, m.width-4), 100)).
		Render(strings.Join(lines, "\n"))
}

// renderCardInfo shows the selected card as rendered markdown.
func (m Model) renderCardInfo(accent, dim color.Color) string {
	width := min(max(40, m.width-8), 100)
	body := m.md.render(cardMarkdown(m.infoCard), width)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width+4).
		Render(body + "\n" + lipgloss.NewStyle().Foreground(dim).Render("esc close"))
}

func (m Model) modeLabel() string {
	switch m.mode {
	case modeCardForm:
		if m.cardDialog.Mode == board.ModeEdit {
			return "edit card"
		}
		return "add card"
	case modeColumnForm:
		if m.columnDialog.Mode == board.ModeEdit {
			return "edit column"
		}
		return "add column"
	case modeProjectForm:
		return "new project"
	case modeConfirmDelete:
		return "confirm delete"
	case modeProjectPicker:
		return "projects"
	case modeCardInfo:
		return "card"
	default:
		return "normal"
	}
}

// columnWidth splits the terminal width across n columns.
func (m Model) columnWidth(n int) int {
	if n <= 0 {
		return 24
	}
	return clamp((m.width-2)/n-1, 18, 42)
}

// columnHeight leaves room for header, status and help.
func (m Model) columnHeight() int {
	if m.height <= 0 {
		return 16
	}
	return max(4, m.height-8)
}

func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit == 1 {
		return string(rs[:1])
	}
	return string(rs[:limit-1]) + "…"
}
