package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	serveradapter "github.com/hylla/taskcollab/internal/adapters/server"
	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/auth"
	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/domain"
	"github.com/hylla/taskcollab/internal/help"
	"github.com/hylla/taskcollab/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICommand(opts *rootOptions) *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:     "tui",
		Short:   "Open the interactive board",
		GroupID: "board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts, projectRef)
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or name to open")
	return cmd
}

// runTUI starts the bubbletea board with the console logger muted.
func runTUI(cmd *cobra.Command, opts *rootOptions, projectRef string) error {
	return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
		modelOpts := []tui.Option{
			tui.WithActor(env.actorName()),
			tui.WithAttachmentEncoder(board.Encoder{
				MaxBytes:    env.cfg.Attachments.MaxBytes,
				Concurrency: env.cfg.Attachments.Concurrency,
			}),
		}
		if strings.TrimSpace(projectRef) != "" {
			p, err := resolveProject(ctx, env.svc, projectRef)
			if err != nil {
				return err
			}
			modelOpts = append(modelOpts, tui.WithProject(p.ID))
		}

		env.logger.SetConsoleEnabled(false)
		defer env.logger.SetConsoleEnabled(true)
		env.logger.Info("command flow start", "command", "tui")
		if _, err := programFactory(tui.NewModel(env.svc, modelOpts...)).Run(); err != nil {
			return fmt.Errorf("run tui program: %w", err)
		}
		env.logger.Info("command flow complete", "command", "tui")
		return nil
	})
}

// actorName names the local user: the signed-in identity, else $USER.
func (r *runtimeEnv) actorName() string {
	if identity, err := r.currentIdentity(time.Now()); err == nil && identity.Name != "" {
		return identity.Name
	}
	return strings.TrimSpace(os.Getenv("USER"))
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var bind string
	var noMCP bool
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the REST API and MCP tools over HTTP",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				cfg := env.cfg
				ttl, err := cfg.Auth.TTL()
				if err != nil {
					return err
				}
				httpBind := cfg.Server.HTTPBind
				if strings.TrimSpace(bind) != "" {
					httpBind = bind
				}
				catalog, err := help.Default()
				if err != nil {
					return err
				}
				deps := serveradapter.Dependencies{
					Service: env.svc,
					Help:    catalog,
					Logger:  env.logger,
				}
				if env.mailer != nil {
					deps.Mail = env.mailer
				}
				env.logger.Info("command flow start", "command", "serve", "bind", httpBind)
				err = serveCommandRunner(ctx, serveradapter.Config{
					HTTPBind:       httpBind,
					APIEndpoint:    cfg.Server.APIEndpoint,
					MCPEndpoint:    cfg.Server.MCPEndpoint,
					ServerName:     "taskcollab",
					ServerVersion:  version,
					DisableMCP:     noMCP,
					TokenSecret:    []byte(strings.TrimSpace(cfg.Auth.TokenSecret)),
					TokenTTL:       ttl,
					RequireAuth:    cfg.Server.RequireAuth,
					AllowedOrigins: cfg.Server.AllowedOrigins,
				}, deps)
				if err != nil {
					return fmt.Errorf("run serve command: %w", err)
				}
				env.logger.Info("command flow complete", "command", "serve")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMCP, "no-mcp", false, "serve only the REST API")
	return cmd
}

func newAskCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Chat with the board assistant",
		Long: `Send a prompt to the assistant. Without arguments, each line read from stdin
is sent as the next turn of one conversation.`,
		GroupID: "board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				out := cmd.OutOrStdout()
				if len(args) > 0 {
					history, err := env.svc.Ask(ctx, nil, strings.Join(args, " "))
					if err != nil {
						return err
					}
					return printReply(out, history)
				}
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompts from stdin: %w", err)
				}
				var history []domain.ChatMessage
				for _, line := range strings.Split(string(data), "\n") {
					prompt := strings.TrimSpace(line)
					if prompt == "" {
						continue
					}
					next, err := env.svc.Ask(ctx, history, prompt)
					if err != nil {
						return err
					}
					history = next
					if err := printReply(out, history); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func printReply(w io.Writer, history []domain.ChatMessage) error {
	if len(history) == 0 {
		return nil
	}
	reply := history[len(history)-1]
	_, err := fmt.Fprintln(w, renderMarkdown(w, reply.Text))
	return err
}

func newBackupCommand(opts *rootOptions) *cobra.Command {
	var projectRef string
	cmd := &cobra.Command{
		Use:     "backup",
		Short:   "Upload a board backup to S3",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				key, err := env.svc.BackupBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "BACKED UP %s s3://%s/%s\n", p.ID, env.cfg.Storage.S3.Bucket, key)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or name (default: first project)")
	return cmd
}

func newRestoreCommand(opts *rootOptions) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:     "restore",
		Short:   "Restore a board from its S3 backup",
		Long:    "Restore a board from its S3 backup. The project is recreated when it no longer exists locally.",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(projectID) == "" {
				return errors.New("restore needs --project <id>")
			}
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				id := projectID
				if p, err := resolveProject(ctx, env.svc, projectID); err == nil {
					id = p.ID
				}
				if err := env.svc.RestoreBoard(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "RESTORED %s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project id (or name when it exists locally)")
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var projectRef, outPath string
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write a board as a JSON document",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				p, err := resolveProject(ctx, env.svc, projectRef)
				if err != nil {
					return err
				}
				doc, err := env.svc.ExportBoard(ctx, p.ID)
				if err != nil {
					return err
				}
				if strings.TrimSpace(outPath) == "" || outPath == "-" {
					return writeJSON(cmd.OutOrStdout(), doc)
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := writeJSON(f, doc); err != nil {
					_ = f.Close()
					return fmt.Errorf("write export file: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close export file: %w", err)
				}
				env.logger.Info("board exported", "project_id", p.ID, "path", outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "project id or name (default: first project)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "import <file|->",
		Short:   "Replace a board from a JSON document",
		GroupID: "system",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				in = f
			}
			doc, err := app.DecodeBoardDocument(in)
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(ctx context.Context, env *runtimeEnv) error {
				if err := env.svc.ImportBoard(ctx, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "IMPORTED %s %s (%d cards)\n", doc.Project.ID, doc.Project.Name, doc.Board.CardCount())
				return nil
			})
		},
	}
}

func newPathsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "paths",
		Short:   "Print resolved config, data and credential paths",
		GroupID: "system",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, dbPath, _, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "app: %s\n", opts.appName)
			fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			fmt.Fprintf(out, "config: %s\n", configPath)
			fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			fmt.Fprintf(out, "db: %s\n", dbPath)
			fmt.Fprintf(out, "credentials: %s\n", paths.CredentialPath)
			return nil
		},
	}
}

// newHelpCommand shows command help for command paths and searches the help
// center for anything else.
func newHelpCommand(opts *rootOptions, root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "help [command | topic...]",
		Short: "Help about any command or board topic",
		Long: `Show help for a command, or search the help center.

Examples:
  taskcollab help board move
  taskcollab help sprint
  taskcollab help drag cards`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return root.Help()
			}
			if target, rest, err := root.Find(args); err == nil && target != root && len(rest) == 0 {
				return target.Help()
			}
			catalog, err := help.Default()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, article, ok := catalog.Article(args[0]); ok && len(args) == 1 {
				fmt.Fprintln(out, renderMarkdown(out, articleMarkdown(article)))
				return nil
			}
			matches := catalog.Search(strings.Join(args, " "))
			if len(matches) == 0 {
				return fmt.Errorf("no command or help topic matches %q", strings.Join(args, " "))
			}
			fmt.Fprintln(out, renderMarkdown(out, catalogMarkdown(matches)))
			return nil
		},
	}
}

func articleMarkdown(a help.Article) string {
	return fmt.Sprintf("## %s\n\n%s\n", a.Question, a.Answer)
}

func catalogMarkdown(c help.Catalog) string {
	var b strings.Builder
	for _, cat := range c {
		fmt.Fprintf(&b, "# %s\n\n", cat.Title)
		for _, a := range cat.Articles {
			b.WriteString(articleMarkdown(a))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderMarkdown styles markdown for terminals and leaves it plain for pipes.
func renderMarkdown(w io.Writer, markdown string) string {
	style := "notty"
	if isTerminal(w) {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// credentialsFor resolves the credential file without opening the database.
func credentialsFor(opts *rootOptions) (auth.CredentialFile, error) {
	paths, _, _, _, err := resolvePaths(opts)
	if err != nil {
		return auth.CredentialFile{}, err
	}
	return auth.CredentialFile{Path: paths.CredentialPath}, nil
}
