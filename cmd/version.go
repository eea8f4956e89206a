package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version, overridable at build time with
// -ldflags "-X github.com/prachya/gamesage/cmd.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gamesage version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gamesage %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
