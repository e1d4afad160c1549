// Package cli implements the taskctl command line tool. It reuses the
// service layer directly over the same SQLite file the server writes,
// so reports reflect whatever the API and admin surface have stored.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	sqliteRepo "github.com/sakif/task-tracker/internal/repository/sqlite"
)

// RootCommand is the taskctl command tree.
type RootCommand struct {
	cmd    *cobra.Command
	dbPath string
}

// NewRootCommand builds the root command with the global --db flag.
// Priority: flag, then DB_PATH, then the server's default path.
func NewRootCommand() *RootCommand {
	root := &RootCommand{}

	root.cmd = &cobra.Command{
		Use:   "taskctl",
		Short: "Task tracker command line tool",
		Long: `taskctl operates on the task tracker database from the command line.

Examples:
  taskctl report                   # Task counts per status for each user
  taskctl --db /var/lib/tasks.db report`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.cmd.PersistentFlags().StringVar(&root.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")

	root.cmd.AddCommand(root.newReportCommand())

	return root
}

// Execute runs the command tree.
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// SetArgs overrides os.Args for tests.
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetOut redirects command output for tests.
func (r *RootCommand) SetOut(w io.Writer) {
	r.cmd.SetOut(w)
}

// resolveDBPath picks the database location from the flag or the
// environment.
func (r *RootCommand) resolveDBPath() string {
	if r.dbPath != "" {
		return r.dbPath
	}
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		return envDB
	}
	return "data/tasktracker.db"
}

// openDB opens the repository for one command invocation. The caller
// closes it.
func (r *RootCommand) openDB() (*sqliteRepo.DB, error) {
	db, err := sqliteRepo.New(r.resolveDBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// discardLogger keeps service logging out of command output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
