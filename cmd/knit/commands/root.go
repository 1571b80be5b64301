// Package commands implements the CLI commands for the knit build tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/knit/internal/app"
	"go.trai.ch/knit/internal/build"
	"go.trai.ch/knit/internal/core/domain"
)

// CLI represents the command line interface for knit.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, taskNames []string, opts app.RunOptions) error
	ListTasks(opts app.RunOptions) ([]domain.Task, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "knit [tasks...]",
		Short:         "Bundle, watch and document a browser JavaScript project",
		Long:          "Run the named tasks and their dependencies. Without a task the default task runs.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Run(cmd.Context(), args, c.runOptions(cmd))
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file (default: ./"+domain.ConfigFileName+")")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newTasksCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) runOptions(cmd *cobra.Command) app.RunOptions {
	configPath, _ := cmd.Flags().GetString("config")
	return app.RunOptions{ConfigPath: configPath}
}
