package cmd

import (
	"fmt"

	"github.com/praetorian-inc/blackcat/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of BlackCat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.FullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
