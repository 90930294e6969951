package mcpapi

import (
	"context"
	"fmt"

	"github.com/hylla/taskcollab/internal/adapters/server/common"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/domain"
	"github.com/hylla/taskcollab/internal/help"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerProjectTools registers `taskcollab.list_projects`.
func registerProjectTools(srv *mcpserver.MCPServer, projects common.ProjectService) {
	srv.AddTool(
		mcp.NewTool(
			"taskcollab.list_projects",
			mcp.WithDescription("List projects, optionally filtered by a search query."),
			mcp.WithString("query", mcp.Description("Case-insensitive name or description search")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := projects.ListProjects(ctx, req.GetString("query", ""))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_projects", map[string]any{"projects": rows})
		},
	)
}

// registerBoardTools registers board read and mutation tools.
func registerBoardTools(srv *mcpserver.MCPServer, boards common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"taskcollab.get_board",
			mcp.WithDescription("Return a project's board, optionally narrowed to one sprint."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("sprint", mcp.Description("all, unassigned, or a sprint id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			b, err := boards.LoadBoard(ctx, projectID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			sel := domain.ParseSprintSelector(req.GetString("sprint", ""))
			return jsonResult("get_board", common.NewBoardView(projectID, b, sel, nil))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskcollab.add_column",
			mcp.WithDescription("Append a column to a project's board."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("title", mcp.Description("Column title (defaults to Untitled)")),
			mcp.WithString("description", mcp.Description("Column description")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			col, res, err := boards.AddColumn(ctx, projectID, req.GetString("title", ""), req.GetString("description", ""))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_column", map[string]any{
				"column":  col,
				"notices": res.Notices,
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskcollab.add_card",
			mcp.WithDescription("Create a card in a column. Omitted fields take card defaults."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
			mcp.WithObject("card", mcp.Description("Card fields: title, description, priority, status, estimate, due_date, tags, assignees, sprint")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				ProjectID string           `json:"project_id"`
				ColumnID  string           `json:"column_id"`
				Card      domain.CardPatch `json:"card"`
			}
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if args.ProjectID == "" || args.ColumnID == "" {
				return invalidRequestToolResult(fmt.Errorf("project_id and column_id are required")), nil
			}
			card, res, err := boards.AddCard(ctx, args.ProjectID, args.ColumnID, args.Card)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_card", map[string]any{
				"card":    card,
				"notices": res.Notices,
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskcollab.edit_card",
			mcp.WithDescription("Patch one card. Only the fields present in patch change; a null sprint clears it."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column holding the card")),
			mcp.WithString("card_id", mcp.Required(), mcp.Description("Card identifier")),
			mcp.WithObject("patch", mcp.Required(), mcp.Description("Card fields to change")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				ProjectID string           `json:"project_id"`
				ColumnID  string           `json:"column_id"`
				CardID    string           `json:"card_id"`
				Patch     domain.CardPatch `json:"patch"`
			}
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			res, err := boards.EditCard(ctx, args.ProjectID, args.ColumnID, args.CardID, args.Patch)
			if err != nil {
				return toolResultFromError(err), nil
			}
			card, _ := res.Board.Card(args.ColumnID, args.CardID)
			return jsonResult("edit_card", map[string]any{
				"card":    card,
				"notices": res.Notices,
			})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskcollab.move_card",
			mcp.WithDescription("Move a card to a column and index. The card's current position is looked up."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("card_id", mcp.Required(), mcp.Description("Card identifier")),
			mcp.WithString("to_column_id", mcp.Required(), mcp.Description("Destination column identifier")),
			mcp.WithNumber("index", mcp.Description("Destination index; clamped to the column length")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			cardID, err := req.RequireString("card_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			toColumnID, err := req.RequireString("to_column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			b, err := boards.LoadBoard(ctx, projectID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			fromColumnID, index, ok := b.LocateCard(cardID)
			if !ok {
				return toolResultFromError(fmt.Errorf("card %q: %w", cardID, app.ErrNotFound)), nil
			}
			res, err := boards.MoveCard(ctx, projectID, domain.Move{
				CardID:      cardID,
				Source:      domain.Position{ColumnID: fromColumnID, Index: index},
				Destination: &domain.Position{ColumnID: toColumnID, Index: req.GetInt("index", 0)},
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_card", common.NewBoardView(projectID, res.Board, domain.SprintAll, res.Notices))
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskcollab.delete_card",
			mcp.WithDescription("Delete one card and its subtasks."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column holding the card")),
			mcp.WithString("card_id", mcp.Required(), mcp.Description("Card identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			cardID, err := req.RequireString("card_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			res, err := boards.DeleteCard(ctx, projectID, columnID, cardID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("delete_card", map[string]any{
				"deleted":    cardID,
				"card_count": res.Board.CardCount(),
			})
		},
	)
}

// registerSprintTools registers `taskcollab.list_sprints`.
func registerSprintTools(srv *mcpserver.MCPServer, sprints common.SprintService) {
	srv.AddTool(
		mcp.NewTool(
			"taskcollab.list_sprints",
			mcp.WithDescription("List a project's sprints with task counts."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := req.RequireString("project_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			rows, err := sprints.ListSprints(ctx, projectID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_sprints", map[string]any{"sprints": rows})
		},
	)
}

// registerHelpTools registers `taskcollab.search_help`.
func registerHelpTools(srv *mcpserver.MCPServer, catalog help.Catalog) {
	srv.AddTool(
		mcp.NewTool(
			"taskcollab.search_help",
			mcp.WithDescription("Search help articles by question and answer text."),
			mcp.WithString("query", mcp.Description("Search text; empty returns every article")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return jsonResult("search_help", map[string]any{
				"categories": catalog.Search(req.GetString("query", "")),
			})
		},
	)
}
