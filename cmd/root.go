package cmd

import (
	"fmt"
	"log"
	"os"

	"sentisounds/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sentisounds",
	Short: "SentiSounds turns a sentiment into song recommendations.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting SentiSounds server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
