package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tlee933/talos/internal/agent"
	"github.com/tlee933/talos/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>...",
	Short: "One-shot question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := llm.NewClient(cfg)
		req := client.NewRequest([]llm.Turn{
			{Role: llm.RoleSystem, Content: agent.SystemPrompt},
			{Role: llm.RoleUser, Content: strings.Join(args, " ")},
		})
		answer, err := client.Complete(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Println(llm.ExtractReasoning(answer))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
