package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/adapters/storage/sqlite"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/domain"
	"github.com/hylla/taskcollab/internal/help"
	"github.com/mark3labs/mcp-go/mcp"
)

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()
	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent into out.
func toolResultStructured(t *testing.T, result map[string]any, out any) {
	t.Helper()
	structured, ok := result["structuredContent"]
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	raw, err := json.Marshal(structured)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "taskcollab-test",
				"version": "1.0.0",
			},
		},
	}
}

// newTestServer starts the MCP handler over a sqlite-backed service with one project.
func newTestServer(t *testing.T) (*httptest.Server, *app.Service, domain.Project) {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "taskcollab.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := app.NewService(repo, nil, func() time.Time { return now }, app.ServiceConfig{})
	project, err := svc.CreateProject(context.Background(), "Roadmap", "Q2 plan", "seed")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	catalog, err := help.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	handler, err := NewHandler(Config{}, svc, catalog)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server, svc, project
}

func TestHandlerUsesStatelessTransport(t *testing.T) {
	server, _, _ := newTestServer(t)
	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

func TestHandlerRegistersBoardTools(t *testing.T) {
	server, _, _ := newTestServer(t)
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})
	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	names := make([]string, 0, len(toolsRaw))
	for _, raw := range toolsRaw {
		if tool, ok := raw.(map[string]any); ok {
			name, _ := tool["name"].(string)
			names = append(names, name)
		}
	}
	for _, want := range []string{
		"taskcollab.list_projects",
		"taskcollab.get_board",
		"taskcollab.add_column",
		"taskcollab.add_card",
		"taskcollab.edit_card",
		"taskcollab.move_card",
		"taskcollab.delete_card",
		"taskcollab.list_sprints",
		"taskcollab.search_help",
	} {
		if !slices.Contains(names, want) {
			t.Fatalf("tool list missing %s: %#v", want, names)
		}
	}
}

func TestHandlerBoardToolCalls(t *testing.T) {
	server, svc, project := newTestServer(t)
	client := server.Client()

	_, resp := postJSONRPC(t, client, server.URL, callToolRequest(3, "taskcollab.get_board", map[string]any{
		"project_id": project.ID,
	}))
	var view common.BoardView
	toolResultStructured(t, resp.Result, &view)
	if len(view.Columns) != 3 {
		t.Fatalf("expected default columns, got %#v", view.Columns)
	}
	todo, inProgress := view.Columns[0].ID, view.Columns[1].ID

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(4, "taskcollab.add_card", map[string]any{
		"project_id": project.ID,
		"column_id":  todo,
		"card":       map[string]any{"title": "Draft API", "priority": "critical", "tags": []string{"api"}},
	}))
	var added struct {
		Card domain.Card `json:"card"`
	}
	toolResultStructured(t, resp.Result, &added)
	if added.Card.Title != "Draft API" || added.Card.Priority != domain.PriorityCritical {
		t.Fatalf("unexpected added card %#v", added.Card)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(5, "taskcollab.edit_card", map[string]any{
		"project_id": project.ID,
		"column_id":  todo,
		"card_id":    added.Card.ID,
		"patch":      map[string]any{"description": "OpenAPI first"},
	}))
	var edited struct {
		Card domain.Card `json:"card"`
	}
	toolResultStructured(t, resp.Result, &edited)
	if edited.Card.Description != "OpenAPI first" || edited.Card.Title != "Draft API" {
		t.Fatalf("unexpected edited card %#v", edited.Card)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(6, "taskcollab.move_card", map[string]any{
		"project_id":   project.ID,
		"card_id":      added.Card.ID,
		"to_column_id": inProgress,
		"index":        5,
	}))
	toolResultStructured(t, resp.Result, &view)
	if len(view.Columns[0].Cards) != 0 || len(view.Columns[1].Cards) != 1 {
		t.Fatalf("unexpected board after move %#v", view.Columns)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(7, "taskcollab.delete_card", map[string]any{
		"project_id": project.ID,
		"column_id":  inProgress,
		"card_id":    added.Card.ID,
	}))
	var deleted struct {
		CardCount int `json:"card_count"`
	}
	toolResultStructured(t, resp.Result, &deleted)
	if deleted.CardCount != 0 {
		t.Fatalf("card_count = %d, want 0", deleted.CardCount)
	}

	if _, err := svc.CreateSprint(context.Background(), project.ID, domain.SprintInput{Name: "Sprint A"}); err != nil {
		t.Fatalf("CreateSprint() error = %v", err)
	}
	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(8, "taskcollab.list_sprints", map[string]any{
		"project_id": project.ID,
	}))
	var sprints struct {
		Sprints []app.SprintSummary `json:"sprints"`
	}
	toolResultStructured(t, resp.Result, &sprints)
	if len(sprints.Sprints) != 1 || sprints.Sprints[0].Name != "Sprint A" {
		t.Fatalf("unexpected sprints %#v", sprints.Sprints)
	}
}

func TestHandlerToolErrors(t *testing.T) {
	server, _, project := newTestServer(t)
	client := server.Client()

	cases := []struct {
		name      string
		tool      string
		args      map[string]any
		wantLabel string
	}{
		{name: "missing project", tool: "taskcollab.get_board", args: map[string]any{}, wantLabel: "project_id"},
		{name: "unknown project", tool: "taskcollab.get_board", args: map[string]any{"project_id": "nope"}, wantLabel: "not_found"},
		{name: "unknown card", tool: "taskcollab.move_card", args: map[string]any{"project_id": project.ID, "card_id": "c-x", "to_column_id": "x"}, wantLabel: "not_found"},
		{name: "bad patch", tool: "taskcollab.add_card", args: map[string]any{"project_id": project.ID, "column_id": "x", "card": map[string]any{"owner": "me"}}, wantLabel: "invalid_request"},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, resp := postJSONRPC(t, client, server.URL, callToolRequest(10+i, tc.tool, tc.args))
			if isErr, _ := resp.Result["isError"].(bool); !isErr {
				t.Fatalf("expected tool error, got %#v", resp.Result)
			}
			if text := toolResultText(t, resp.Result); !strings.Contains(text, tc.wantLabel) {
				t.Fatalf("error text = %q, want %q", text, tc.wantLabel)
			}
		})
	}
}

func TestHandlerSearchHelpAndProjects(t *testing.T) {
	server, _, project := newTestServer(t)
	client := server.Client()

	_, resp := postJSONRPC(t, client, server.URL, callToolRequest(3, "taskcollab.search_help", map[string]any{"query": "invoice"}))
	var found struct {
		Categories help.Catalog `json:"categories"`
	}
	toolResultStructured(t, resp.Result, &found)
	if len(found.Categories) != 1 || found.Categories[0].ID != "billing" {
		t.Fatalf("unexpected help results %#v", found.Categories)
	}

	_, resp = postJSONRPC(t, client, server.URL, callToolRequest(4, "taskcollab.list_projects", map[string]any{"query": "road"}))
	var listed struct {
		Projects []domain.Project `json:"projects"`
	}
	toolResultStructured(t, resp.Result, &listed)
	if len(listed.Projects) != 1 || listed.Projects[0].ID != project.ID {
		t.Fatalf("unexpected projects %#v", listed.Projects)
	}
}

func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil, nil); err == nil {
		t.Fatal("expected missing service error")
	}
}

func TestNormalizeConfig(t *testing.T) {
	got := normalizeConfig(Config{EndpointPath: " tools/ "})
	if got.ServerName != "taskcollab" || got.ServerVersion != "dev" || got.EndpointPath != "/tools" {
		t.Fatalf("unexpected normalized config %#v", got)
	}
}

func TestToolResultFromErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: nil, want: "unknown error"},
		{err: fmt.Errorf("x: %w", app.ErrNotFound), want: "not_found: "},
		{err: fmt.Errorf("%w: %w", board.ErrSyncFailed, app.ErrInvalidMove), want: "invalid_move: "},
		{err: common.ErrInvalidRequest, want: "invalid_request: "},
		{err: app.ErrUnavailable, want: "not_implemented: "},
		{err: board.ErrSyncFailed, want: "sync_failed: "},
		{err: errors.New("boom"), want: "internal_error: boom"},
	}
	for _, tc := range cases {
		result := toolResultFromError(tc.err)
		if !result.IsError {
			t.Fatalf("expected error result for %v", tc.err)
		}
		text, ok := result.Content[0].(mcp.TextContent)
		if !ok || !strings.HasPrefix(text.Text, tc.want) {
			t.Fatalf("toolResultFromError(%v) = %#v, want prefix %q", tc.err, result.Content, tc.want)
		}
	}
}
