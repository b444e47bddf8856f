package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/biji"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of biji",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("biji version %s\n", strings.TrimSpace(biji.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
