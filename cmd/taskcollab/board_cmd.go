package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Short:   "Manage projects",
		Aliases: []string{"projects"},
		GroupID: "board",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:     "list [query]",
		Short:   "List projects",
		Aliases: []string{"ls"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				projects, err := env.svc.ListProjects(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, projects)
				}
				if len(projects) == 0 {
					fmt.Fprintln(out, "No projects found")
					return nil
				}
				for _, p := range projects {
					fmt.Fprintf(out, "%s  %s\n", p.ID, p.Name)
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var createDesc, createdBy string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project with the default columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := env.svc.CreateProject(ctx, args[0], createDesc, createdBy)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "CREATED %s %s\n", p.ID, p.Name)
				return nil
			})
		},
	}
	create.Flags().StringVar(&createDesc, "description", "", "project description")
	create.Flags().StringVar(&createdBy, "created-by", "", "creator name")

	var updateName, updateDesc string
	update := &cobra.Command{
		Use:   "update <project>",
		Short: "Rename a project or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, args[0])
				if err != nil {
					return err
				}
				name, desc := p.Name, p.Description
				if cmd.Flags().Changed("name") {
					name = updateName
				}
				if cmd.Flags().Changed("description") {
					desc = updateDesc
				}
				p, err = env.svc.UpdateProject(ctx, p.ID, name, desc)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "UPDATED %s %s\n", p.ID, p.Name)
				return nil
			})
		},
	}
	update.Flags().StringVar(&updateName, "name", "", "new name")
	update.Flags().StringVar(&updateDesc, "description", "", "new description")

	remove := &cobra.Command{
		Use:     "delete <project>",
		Short:   "Delete a project with its board, sprints and subtasks",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, args[0])
				if err != nil {
					return err
				}
				if err := env.svc.DeleteProject(ctx, p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "DELETED %s %s\n", p.ID, p.Name)
				return nil
			})
		},
	}

	cmd.AddCommand(list, create, update, remove)
	return cmd
}

func newBoardCommand(opts *rootOptions) *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:     "board",
		Short:   "Show and edit a project board",
		GroupID: "board",
	}
	cmd.PersistentFlags().StringVarP(&projectRef, "project", "p", "", "project id or name (default: first project)")

	var sprintRef string
	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the board columns and cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				b, err := env.svc.LoadBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				sel := domain.ParseSprintSelector(sprintRef)
				if sel != domain.SprintAll && sel != domain.SprintUnassigned {
					change, err := resolveSprintRef(ctx, env.svc, p.ID, string(sel))
					if err != nil {
						return err
					}
					sel = domain.SprintUnassigned
					if change.Ref != nil {
						sel = domain.SprintSelector(change.Ref.ID)
					}
				}
				b.Cards = domain.FilterBySprint(b.Cards, sel)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), b)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderBoardText(p, b))
				return nil
			})
		},
	}
	show.Flags().StringVar(&sprintRef, "sprint", "all", "sprint filter: all, unassigned, or a sprint id or name")
	show.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var columnDesc string
	addColumn := &cobra.Command{
		Use:   "add-column <title>",
		Short: "Append a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				col, res, err := env.svc.AddColumn(ctx, p.ID, args[0], columnDesc)
				if err != nil {
					return err
				}
				printNotices(cmd.ErrOrStderr(), res.Notices)
				fmt.Fprintf(cmd.OutOrStdout(), "CREATED %s %s\n", col.ID, col.Title)
				return nil
			})
		},
	}
	addColumn.Flags().StringVar(&columnDesc, "description", "", "column description")

	var renameTitle, renameDesc string
	editColumn := &cobra.Command{
		Use:   "edit-column <column>",
		Short: "Change a column title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				b, err := env.svc.LoadBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				col, err := resolveColumn(b, args[0])
				if err != nil {
					return err
				}
				var patch domain.ColumnPatch
				if cmd.Flags().Changed("title") {
					patch.Title = &renameTitle
				}
				if cmd.Flags().Changed("description") {
					patch.Description = &renameDesc
				}
				if patch.IsEmpty() {
					return errors.New("nothing to change; pass --title or --description")
				}
				res, err := env.svc.EditColumn(ctx, p.ID, col.ID, patch)
				if err != nil {
					return err
				}
				printNotices(cmd.ErrOrStderr(), res.Notices)
				fmt.Fprintf(cmd.OutOrStdout(), "UPDATED %s\n", col.ID)
				return nil
			})
		},
	}
	editColumn.Flags().StringVar(&renameTitle, "title", "", "new title")
	editColumn.Flags().StringVar(&renameDesc, "description", "", "new description")

	deleteColumn := &cobra.Command{
		Use:   "delete-column <column>",
		Short: "Delete a column and every card in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				b, err := env.svc.LoadBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				col, err := resolveColumn(b, args[0])
				if err != nil {
					return err
				}
				res, err := env.svc.DeleteColumn(ctx, p.ID, col.ID)
				if err != nil {
					return err
				}
				printNotices(cmd.ErrOrStderr(), res.Notices)
				fmt.Fprintf(cmd.OutOrStdout(), "DELETED %s %s\n", col.ID, col.Title)
				return nil
			})
		},
	}

	var cf cardFlags
	addCard := &cobra.Command{
		Use:   "add-card <title>",
		Short: "Append a card to a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				b, err := env.svc.LoadBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				col, err := resolveColumn(b, cf.column)
				if err != nil {
					return err
				}
				title := args[0]
				patch, err := cf.patch(ctx, cmd, env, p.ID)
				if err != nil {
					return err
				}
				patch.Title = &title
				card, res, err := env.svc.AddCard(ctx, p.ID, col.ID, patch)
				if err != nil {
					return err
				}
				printNotices(cmd.ErrOrStderr(), res.Notices)
				fmt.Fprintf(cmd.OutOrStdout(), "CREATED %s %s\n", card.ID, card.Title)
				return nil
			})
		},
	}
	cf.register(addCard, true)

	var ef cardFlags
	var editTitle string
	editCard := &cobra.Command{
		Use:   "edit-card <card-id>",
		Short: "Change card fields; only flags that are set are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				b, err := env.svc.LoadBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				columnID, idx, ok := b.LocateCard(args[0])
				if !ok {
					return fmt.Errorf("card %q: %w", args[0], app.ErrNotFound)
				}
				patch, err := ef.patch(ctx, cmd, env, p.ID)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("title") {
					patch.Title = &editTitle
				}
				if cmd.Flags().Changed("attach") {
					existing := b.Cards[columnID][idx].Attachments
					merged := append(append([]domain.Attachment{}, existing...), *patch.Attachments...)
					patch.Attachments = &merged
				}
				res, err := env.svc.EditCard(ctx, p.ID, columnID, args[0], patch)
				if err != nil {
					return err
				}
				printNotices(cmd.ErrOrStderr(), res.Notices)
				fmt.Fprintf(cmd.OutOrStdout(), "UPDATED %s\n", args[0])
				return nil
			})
		},
	}
	editCard.Flags().StringVar(&editTitle, "title", "", "card title")
	ef.register(editCard, false)

	deleteCard := &cobra.Command{
		Use:   "delete-card <card-id>",
		Short: "Delete a card and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				b, err := env.svc.LoadBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				columnID, _, ok := b.LocateCard(args[0])
				if !ok {
					return fmt.Errorf("card %q: %w", args[0], app.ErrNotFound)
				}
				res, err := env.svc.DeleteCard(ctx, p.ID, columnID, args[0])
				if err != nil {
					return err
				}
				printNotices(cmd.ErrOrStderr(), res.Notices)
				fmt.Fprintf(cmd.OutOrStdout(), "DELETED %s\n", args[0])
				return nil
			})
		},
	}

	var moveTo string
	var moveIndex int
	move := &cobra.Command{
		Use:   "move <card-id>",
		Short: "Move a card to another column or position",
		Long: `Move a card to a column and index. Without --index the card goes to the end
of the destination column. Without --to it stays in its column.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				b, err := env.svc.LoadBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				srcColumn, srcIndex, ok := b.LocateCard(args[0])
				if !ok {
					return fmt.Errorf("card %q: %w", args[0], app.ErrNotFound)
				}
				dest := domain.Position{ColumnID: srcColumn}
				if strings.TrimSpace(moveTo) != "" {
					col, err := resolveColumn(b, moveTo)
					if err != nil {
						return err
					}
					dest.ColumnID = col.ID
				}
				dest.Index = moveIndex
				if moveIndex < 0 {
					// Reorder clamps to the last slot.
					dest.Index = len(b.Cards[dest.ColumnID])
				}
				res, err := env.svc.MoveCard(ctx, p.ID, domain.Move{
					CardID:      args[0],
					Source:      domain.Position{ColumnID: srcColumn, Index: srcIndex},
					Destination: &dest,
				})
				if err != nil {
					return err
				}
				printNotices(cmd.ErrOrStderr(), res.Notices)
				fmt.Fprintf(cmd.OutOrStdout(), "MOVED %s %s[%d]\n", args[0], dest.ColumnID, dest.Index)
				return nil
			})
		},
	}
	move.Flags().StringVar(&moveTo, "to", "", "destination column id or title")
	move.Flags().IntVar(&moveIndex, "index", -1, "destination index (default: end)")

	cmd.AddCommand(show, addColumn, editColumn, deleteColumn, addCard, editCard, deleteCard, move, newSubtaskCommand(opts, &projectRef))
	return cmd
}

// cardFlags are the card field flags shared by add-card and edit-card.
type cardFlags struct {
	column      string
	description string
	priority    string
	status      string
	estimate    string
	due         string
	tags        []string
	assignees   []string
	sprint      string
	attach      []string
}

func (f *cardFlags) register(cmd *cobra.Command, withColumn bool) {
	flags := cmd.Flags()
	if withColumn {
		flags.StringVar(&f.column, "column", "", "column id or title (default: first column)")
	}
	flags.StringVar(&f.description, "description", "", "card description")
	flags.StringVar(&f.priority, "priority", "", "Low, Medium, High or Critical")
	flags.StringVar(&f.status, "status", "", "free-form status")
	flags.StringVar(&f.estimate, "estimate", "", "estimate in hours")
	flags.StringVar(&f.due, "due", "", "due date (YYYY-MM-DD)")
	flags.StringSliceVar(&f.tags, "tag", nil, "tag (repeatable or comma-separated)")
	flags.StringSliceVar(&f.assignees, "assignee", nil, "assignee email or user id (repeatable)")
	flags.StringVar(&f.sprint, "sprint", "", "sprint id or name; \"none\" clears")
	flags.StringSliceVar(&f.attach, "attach", nil, "file to attach (repeatable)")
}

// patch builds a card patch from the flags the user set.
func (f *cardFlags) patch(ctx context.Context, cmd *cobra.Command, env *runtimeEnv, projectID string) (domain.CardPatch, error) {
	var patch domain.CardPatch
	changed := cmd.Flags().Changed
	if changed("description") {
		patch.Description = &f.description
	}
	if changed("priority") {
		pr, err := domain.ParsePriority(f.priority)
		if err != nil {
			return domain.CardPatch{}, fmt.Errorf("priority %q: %w", f.priority, err)
		}
		patch.Priority = &pr
	}
	if changed("status") {
		patch.Status = &f.status
	}
	if changed("estimate") {
		patch.Estimate = &f.estimate
	}
	if changed("due") {
		patch.DueDate = &f.due
	}
	if changed("tag") {
		tags := uniqueStrings(splitCSV(f.tags))
		patch.Tags = &tags
	}
	if changed("assignee") {
		refs, err := resolveAssignees(ctx, env.svc, splitCSV(f.assignees))
		if err != nil {
			return domain.CardPatch{}, err
		}
		patch.Assignees = &refs
	}
	if changed("sprint") {
		change, err := resolveSprintRef(ctx, env.svc, projectID, f.sprint)
		if err != nil {
			return domain.CardPatch{}, err
		}
		patch.Sprint = change
	}
	if changed("attach") {
		paths := splitCSV(f.attach)
		files := make([]board.FileSource, 0, len(paths))
		for _, p := range paths {
			files = append(files, board.PathFile(p))
		}
		encoder := board.Encoder{
			MaxBytes:    env.cfg.Attachments.MaxBytes,
			Concurrency: env.cfg.Attachments.Concurrency,
		}
		atts, err := encoder.Encode(ctx, files)
		if err != nil {
			if len(atts) == 0 {
				return domain.CardPatch{}, err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "some attachments were skipped: %v\n", err)
		}
		patch.Attachments = &atts
	}
	return patch, nil
}

func newSubtaskCommand(opts *rootOptions, projectRef *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtask",
		Short:   "Manage card subtasks",
		Aliases: []string{"subtasks"},
	}

	list := &cobra.Command{
		Use:     "list <card-id>",
		Short:   "List a card's subtasks",
		Aliases: []string{"ls"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, *projectRef)
				if err != nil {
					return err
				}
				subtasks, err := env.svc.ListSubtasks(ctx, p.ID, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(subtasks) == 0 {
					fmt.Fprintln(out, "No subtasks")
					return nil
				}
				for _, st := range subtasks {
					mark := " "
					if st.Done {
						mark = "x"
					}
					fmt.Fprintf(out, "[%s] %s  %s\n", mark, st.ID, st.Name)
				}
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <card-id> <name>",
		Short: "Add a subtask to a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, *projectRef)
				if err != nil {
					return err
				}
				st, err := env.svc.AddSubtask(ctx, p.ID, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "CREATED %s %s\n", st.ID, st.Name)
				return nil
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <subtask-id>",
		Short: "Flip a subtask between open and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, *projectRef)
				if err != nil {
					return err
				}
				st, err := env.svc.ToggleSubtask(ctx, p.ID, args[0])
				if err != nil {
					return err
				}
				state := "open"
				if st.Done {
					state = "done"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "UPDATED %s %s\n", st.ID, state)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:     "delete <subtask-id>",
		Short:   "Delete a subtask",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, *projectRef)
				if err != nil {
					return err
				}
				if err := env.svc.DeleteSubtask(ctx, p.ID, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "DELETED %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, toggle, remove)
	return cmd
}

func newSprintCommand(opts *rootOptions) *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:     "sprint",
		Short:   "Manage project sprints",
		Aliases: []string{"sprints"},
		GroupID: "board",
	}
	cmd.PersistentFlags().StringVarP(&projectRef, "project", "p", "", "project id or name (default: first project)")

	var asJSON bool
	list := &cobra.Command{
		Use:     "list",
		Short:   "List sprints with task counts",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				sprints, err := env.svc.ListSprints(ctx, p.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, sprints)
				}
				if len(sprints) == 0 {
					fmt.Fprintln(out, "No sprints found")
					return nil
				}
				for _, s := range sprints {
					fmt.Fprintf(out, "%s  %s  [%s] %d tasks\n", s.ID, s.Name, s.Status, s.TaskCount)
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var in domain.SprintInput
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				input := in
				input.Name = args[0]
				s, err := env.svc.CreateSprint(ctx, p.ID, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "CREATED %s %s\n", s.ID, s.Name)
				return nil
			})
		},
	}
	registerSprintFlags(create, &in)

	var up domain.SprintInput
	update := &cobra.Command{
		Use:   "update <sprint>",
		Short: "Change sprint fields; only flags that are set are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				change, err := resolveSprintRef(ctx, env.svc, p.ID, args[0])
				if err != nil {
					return err
				}
				if change.Ref == nil {
					return fmt.Errorf("sprint %q: %w", args[0], app.ErrNotFound)
				}
				current, err := env.svc.GetSprint(ctx, p.ID, change.Ref.ID)
				if err != nil {
					return err
				}
				input := domain.SprintInput{
					Name:      current.Name,
					Goal:      current.Goal,
					StartDate: current.StartDate,
					EndDate:   current.EndDate,
					Status:    string(current.Status),
				}
				changed := cmd.Flags().Changed
				if changed("name") {
					input.Name = up.Name
				}
				if changed("goal") {
					input.Goal = up.Goal
				}
				if changed("start") {
					input.StartDate = up.StartDate
				}
				if changed("end") {
					input.EndDate = up.EndDate
				}
				if changed("status") {
					input.Status = up.Status
				}
				s, err := env.svc.UpdateSprint(ctx, p.ID, current.ID, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "UPDATED %s %s\n", s.ID, s.Name)
				return nil
			})
		},
	}
	update.Flags().StringVar(&up.Name, "name", "", "new name")
	registerSprintFlags(update, &up)

	var deleteMode string
	remove := &cobra.Command{
		Use:     "delete <sprint>",
		Short:   "Delete a sprint",
		Long:    "Delete a sprint. --mode keep_tasks unassigns its tasks; --mode with_tasks deletes them too.",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := app.ParseSprintDeleteMode(deleteMode)
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				change, err := resolveSprintRef(ctx, env.svc, p.ID, args[0])
				if err != nil {
					return err
				}
				if change.Ref == nil {
					return fmt.Errorf("sprint %q: %w", args[0], app.ErrNotFound)
				}
				affected, err := env.svc.DeleteSprint(ctx, p.ID, change.Ref.ID, mode)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "DELETED %s (%d tasks affected)\n", change.Ref.ID, affected)
				return nil
			})
		},
	}
	remove.Flags().StringVar(&deleteMode, "mode", string(app.SprintKeepTasks), "keep_tasks or with_tasks")

	statuses := &cobra.Command{
		Use:   "statuses",
		Short: "List the configured sprint statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				options, err := env.svc.SprintStatusCatalog(ctx)
				if err != nil {
					return err
				}
				for _, opt := range options {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", opt.Value, opt.Label)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, create, update, remove, statuses)
	return cmd
}

func registerSprintFlags(cmd *cobra.Command, in *domain.SprintInput) {
	flags := cmd.Flags()
	flags.StringVar(&in.Goal, "goal", "", "sprint goal")
	flags.StringVar(&in.StartDate, "start", "", "start date (YYYY-MM-DD)")
	flags.StringVar(&in.EndDate, "end", "", "end date (YYYY-MM-DD)")
	flags.StringVar(&in.Status, "status", "", "sprint status")
}

var (
	boardColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1).
				Width(44)
	boardTitleStyle = lipgloss.NewStyle().Bold(true)
	boardMetaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// renderBoardText lays the board out as side-by-side bordered columns.
func renderBoardText(p domain.Project, b domain.Board) string {
	header := boardTitleStyle.Render(p.Name)
	if len(b.Columns) == 0 {
		return header + "\n(no columns)"
	}
	blocks := make([]string, 0, len(b.Columns))
	for _, col := range b.Columns {
		cards := b.CardsIn(col.ID)
		lines := []string{boardTitleStyle.Render(fmt.Sprintf("%s (%d)", col.Title, len(cards)))}
		for _, card := range cards {
			lines = append(lines, "• "+card.Title)
			meta := []string{string(card.Priority), card.ID}
			if card.Sprint != nil {
				meta = append(meta, card.Sprint.Name)
			}
			lines = append(lines, boardMetaStyle.Render("  "+strings.Join(meta, " · ")))
		}
		blocks = append(blocks, boardColumnStyle.Render(strings.Join(lines, "\n")))
	}
	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}
