// Package mail renders task notification emails and delivers them over SMTP
// or through a remote mail endpoint.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/hylla/taskcollab/internal/app"
)

//go:embed templates/task.html
var templateFS embed.FS

var taskTmpl = template.Must(template.ParseFS(templateFS, "templates/task.html"))

// taskEmailData holds template data for the task notification.
type taskEmailData struct {
	Name       string
	Subject    string
	UpdateType string
	UpdatedBy  string
	Status     string
	Priority   string
	Message    string
	Link       string
}

// RenderTaskEmail renders the HTML body for req. The inner subject is the
// headline shown inside the message.
func RenderTaskEmail(req app.EmailRequest) (string, error) {
	var buf bytes.Buffer
	err := taskTmpl.Execute(&buf, taskEmailData{
		Name:       req.Name,
		Subject:    req.InnerSubject,
		UpdateType: req.UpdateType,
		UpdatedBy:  req.UpdatedBy,
		Status:     req.TaskStatus,
		Priority:   req.TaskPriority,
		Message:    req.OptionalMessage,
		Link:       req.TaskLink,
	})
	if err != nil {
		return "", fmt.Errorf("render task email: %w", err)
	}
	return buf.String(), nil
}
