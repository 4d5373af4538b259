package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tlee933/talos/internal/agent"
	"github.com/tlee933/talos/internal/llm"
	"github.com/tlee933/talos/internal/shell"
	"github.com/tlee933/talos/internal/ui"
)

var doCmd = &cobra.Command{
	Use:   "do <task>...",
	Short: "Turn natural language into a shell command and run it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := ui.NewRenderer()
		client := llm.NewClient(cfg)

		req := client.NewRequest([]llm.Turn{
			{Role: llm.RoleSystem, Content: agent.SystemPrompt},
			{Role: llm.RoleUser, Content: "Output only the shell command, no explanation: " + strings.Join(args, " ")},
		})
		answer, err := client.Complete(ctx, req)
		if err != nil {
			return err
		}

		command := stripFences(answer)
		if command == "" {
			return fmt.Errorf("model returned no command")
		}
		out.Command(1, command, agent.IsDangerous(command))

		fmt.Print("run? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			out.Info("skipped")
			return nil
		}

		result := shell.Run(ctx, command)
		out.Output(result.Output())
		out.Info(fmt.Sprintf("exit %d", result.ExitCode))
		return nil
	},
}

// stripFences unwraps a model reply that arrives inside a code fence.
func stripFences(text string) string {
	text = strings.TrimSpace(llm.ExtractReasoning(text))
	text = strings.TrimPrefix(text, "```bash")
	text = strings.TrimPrefix(text, "```sh")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func init() {
	rootCmd.AddCommand(doCmd)
}
