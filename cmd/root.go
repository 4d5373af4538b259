package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tlee933/talos/internal/config"
	"github.com/tlee933/talos/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command. Running talos with no subcommand
// starts the interactive REPL.
var rootCmd = &cobra.Command{
	Use:   "talos",
	Short: "Talos is a local desktop AI assistant",
	Long: `Talos is a terminal assistant backed by a local language model.
It turns natural-language requests into shell commands and tool calls,
executed under your confirmation, and can search your Obsidian vault,
manage the clipboard, and remember facts across sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	if err := logging.Init(config.DataDir()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	defer logging.Close()

	logging.LogAppStart(version)
	defer logging.LogAppExit()

	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/talos/config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "override backend URL")
	rootCmd.PersistentFlags().String("model", "", "override model name")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		logging.LogError("failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if v, _ := rootCmd.PersistentFlags().GetString("backend"); v != "" {
		cfg.BackendURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("model"); v != "" {
		cfg.Model = v
	}
}
