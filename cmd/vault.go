package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tlee933/talos/internal/vault"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Obsidian vault commands",
}

func openVault() (*vault.Vault, error) {
	if cfg.ObsidianVault == "" {
		return nil, fmt.Errorf("no obsidian_vault configured")
	}
	return vault.Open(cfg.ObsidianVault)
}

var vaultSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search vault notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return err
		}
		accent := color.New(color.FgCyan)
		for _, hit := range v.Search(args[0], 20) {
			accent.Printf("  %s\n", hit.Relative)
		}
		return nil
	},
}

var vaultReadCmd = &cobra.Command{
	Use:   "read <name>",
	Short: "Read a vault note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return err
		}
		content, err := v.Read(args[0])
		if err != nil {
			return err
		}
		fmt.Println(content)
		return nil
	},
}

var vaultRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently modified notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		accent := color.New(color.FgCyan)
		dim := color.New(color.FgHiBlack)
		for _, note := range v.ListRecent(limit) {
			accent.Printf("  %s", note.Name)
			dim.Printf("  %s\n", note.Relative)
		}
		return nil
	},
}

var vaultDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Open or create today's daily note",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return err
		}
		path, err := v.Daily("")
		if err != nil {
			return err
		}
		fmt.Println(path)
		return v.OpenInObsidian(path)
	},
}

var vaultTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show tag frequency across the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openVault()
		if err != nil {
			return err
		}
		accent := color.New(color.FgCyan)
		dim := color.New(color.FgHiBlack)
		for _, tc := range v.Tags() {
			accent.Printf("  #%s", tc.Tag)
			dim.Printf(" (%d)\n", tc.Count)
		}
		return nil
	},
}

func init() {
	vaultRecentCmd.Flags().IntP("limit", "n", 10, "number of notes to show")
	vaultCmd.AddCommand(vaultSearchCmd, vaultReadCmd, vaultRecentCmd, vaultDailyCmd, vaultTagsCmd)
	rootCmd.AddCommand(vaultCmd)
}
