package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tlee933/talos/internal/llm"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend and vault connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok := color.New(color.FgGreen)
		bad := color.New(color.FgRed)

		client := llm.NewClient(cfg)
		if err := client.Health(cmd.Context()); err != nil {
			bad.Printf("backend   %s down (%v)\n", cfg.BackendURL, err)
		} else {
			ok.Printf("backend   %s connected\n", cfg.BackendURL)
		}

		if cfg.ObsidianVault != "" {
			if info, err := os.Stat(cfg.ObsidianVault); err == nil && info.IsDir() {
				ok.Printf("obsidian  %s found\n", cfg.ObsidianVault)
			} else {
				bad.Printf("obsidian  %s missing\n", cfg.ObsidianVault)
			}
		} else {
			fmt.Println("obsidian  (not configured)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
