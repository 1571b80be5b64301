package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the available tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.app.ListTasks(c.runOptions(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, task := range tasks {
				line := task.Name + "\t" + task.Description
				if len(task.Dependencies) > 0 {
					line += " [" + strings.Join(task.Dependencies, ", ") + "]"
				}
				_, _ = fmt.Fprintln(w, line)
			}
			return w.Flush()
		},
	}
}
