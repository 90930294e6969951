package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hylla/taskcollab/internal/domain"
)

// markdownRenderer caches one glamour renderer per wrap width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render returns ANSI output for markdown, or the raw text when rendering fails.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	width = max(width, 24)
	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = width
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

// cardMarkdown formats the card info panel.
func cardMarkdown(card domain.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", card.Title)
	fmt.Fprintf(&b, "**Priority:** %s", card.Priority)
	if card.Status != "" {
		fmt.Fprintf(&b, "  \n**Status:** %s", card.Status)
	}
	if card.Sprint != nil {
		fmt.Fprintf(&b, "  \n**Sprint:** %s", card.Sprint.Name)
	}
	if card.DueDate != "" {
		fmt.Fprintf(&b, "  \n**Due:** %s", card.DueDate)
	}
	if card.Estimate != "" {
		fmt.Fprintf(&b, "  \n**Estimate:** %sh", card.Estimate)
	}
	if len(card.Tags) > 0 {
		fmt.Fprintf(&b, "  \n**Tags:** %s", strings.Join(card.Tags, ", "))
	}
	if len(card.Assignees) > 0 {
		names := make([]string, 0, len(card.Assignees))
		for _, a := range card.Assignees {
			names = append(names, a.Name)
		}
		fmt.Fprintf(&b, "  \n**Assignees:** %s", strings.Join(names, ", "))
	}
	if len(card.Attachments) > 0 {
		fmt.Fprintf(&b, "  \n**Attachments:** %d", len(card.Attachments))
	}
	if desc := strings.TrimSpace(card.Description); desc != "" {
		b.WriteString("\n\n")
		b.WriteString(desc)
	}
	b.WriteString("\n")
	return b.String()
}
