package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	serveradapter "github.com/hylla/taskcollab/internal/adapters/server"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the part of *tea.Program the tui command needs.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests replace it.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow; tests replace it.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes the command tree with fang's styled help and error output.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdin)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand builds the taskcollab command tree. Running it without a
// subcommand opens the board TUI.
func newRootCommand(stdin io.Reader) *cobra.Command {
	opts := &rootOptions{appName: "taskcollab", devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("TASKCOLLAB_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TASKCOLLAB_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "taskcollab",
		Short:         "Collaborative kanban boards with sprints, in the terminal and over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts, "")
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddGroup(
		&cobra.Group{ID: "board", Title: "Board Commands:"},
		&cobra.Group{ID: "account", Title: "Account Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	root.AddCommand(
		newTUICommand(opts),
		newProjectCommand(opts),
		newBoardCommand(opts),
		newSprintCommand(opts),
		newUserCommand(opts),
		newLoginCommand(opts, stdin),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newAskCommand(opts),
		newBackupCommand(opts),
		newRestoreCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newServeCommand(opts),
		newPathsCommand(opts),
	)
	root.SetHelpCommand(newHelpCommand(opts, root))
	root.SetHelpCommandGroupID("system")
	root.SetCompletionCommandGroupID("system")
	return root
}

// parseBoolEnv parses a boolean environment variable. ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
