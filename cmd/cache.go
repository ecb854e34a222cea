package cmd

import (
	"fmt"
	"log"
	"os"

	"sentisounds/config"
	"sentisounds/core/youtube"

	"github.com/spf13/cobra"
)

var cacheClear bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the YouTube match cache",
	Long:  `Show the number of cached song-to-video matches, or remove the cache file entirely with --clear.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if cacheClear {
			if err := os.Remove(cfg.MatchCachePath); err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Match cache is already empty.")
					return
				}
				log.Fatalf("Failed to remove match cache: %v", err)
			}
			fmt.Printf("Match cache removed: %s\n", cfg.MatchCachePath)
			return
		}

		index, err := youtube.NewMatchIndex(nil, cfg.MatchCachePath, cfg.MatchWorkerCount)
		if err != nil {
			log.Fatalf("Failed to load match cache: %v", err)
		}
		fmt.Printf("Match cache: %s\n", cfg.MatchCachePath)
		fmt.Printf("Cached matches: %d\n", index.Size())
	},
}

func init() {
	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "remove the cache file")
	rootCmd.AddCommand(cacheCmd)
}
