package cmd

import (
	"fmt"

	"github.com/gostdlib/maybesync/prim/maybe/check"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checks in the order run executes them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, n := range check.Names() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
