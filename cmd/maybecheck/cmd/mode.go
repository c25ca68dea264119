package cmd

import (
	"fmt"

	"github.com/gostdlib/maybesync/prim/maybe"
	"github.com/spf13/cobra"
)

// modeCmd represents the mode command
var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Print the realization compiled into this binary",
	Long: `Prints "sync" when this binary was built with "-tags sync" and "local" otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), maybe.Mode())
		return err
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)
}
