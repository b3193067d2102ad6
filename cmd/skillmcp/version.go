package main

import (
	"fmt"

	"github.com/jingkaihe/skillmcp/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of skillmcp in JSON format, or as one line with --short.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()

		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		}

		out, err := info.JSON()
		if err != nil {
			return errors.Wrap(err, "failed to format version info")
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print a single line instead of JSON")
	rootCmd.AddCommand(versionCmd)
}
