package cmd

import (
	"sentisounds/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the SentiSounds HTTP server",
	Long:  `Start the SentiSounds HTTP server exposing the recommendation, account and playlist APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
