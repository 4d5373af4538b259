package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tlee933/talos/internal/agent"
	"github.com/tlee933/talos/internal/completion"
	"github.com/tlee933/talos/internal/config"
	"github.com/tlee933/talos/internal/learn"
	"github.com/tlee933/talos/internal/llm"
	"github.com/tlee933/talos/internal/logging"
	"github.com/tlee933/talos/internal/shell"
	"github.com/tlee933/talos/internal/store"
	"github.com/tlee933/talos/internal/suggest"
	"github.com/tlee933/talos/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	Long: `Start the interactive REPL. Messages are sent to the model backend;
responses with commands or tool calls run through the confirmation loop.
Type help inside the session for built-in commands.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// replCommands feed tab completion inside the session.
var replCommands = []string{
	"help", "exit", "quit", "clear", "reset",
	"remember", "recall", "facts",
	"web", "save", "sessions", "load", "export",
	"reason",
}

// session bundles everything one REPL run needs.
type session struct {
	cfg   *config.Config
	agent *agent.Agent
	exec  *agent.Executor
	out   *ui.Renderer
	rl    *readline.Instance
	store *store.Store
	queue *learn.Queue
	deps  sessionDeps
}

// Confirm implements agent.Prompter over the readline instance.
func (s *session) Confirm(prompt string) (string, error) {
	saved := s.rl.Config.Prompt
	s.rl.SetPrompt("  " + prompt)
	defer s.rl.SetPrompt(saved)
	return s.rl.Readline()
}

// ghostPainter renders inline gray suggestion text after the cursor.
type ghostPainter struct {
	lastAssistant func() string
}

func (p *ghostPainter) Paint(line []rune, pos int) []rune {
	if pos != len(line) {
		return line
	}
	ghost := suggest.Ghost(string(line), p.lastAssistant())
	if ghost == "" {
		return line
	}
	return append(line, []rune("\033[90m"+ghost+"\033[0m")...)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}

	out := ui.NewRenderer()
	a := agent.New(cfg, deps.client, deps.registry)

	convStore, err := store.OpenStore(config.DataDir())
	if err != nil {
		return err
	}
	queue, err := learn.OpenQueue(config.DataDir())
	if err != nil {
		return err
	}

	historyPath := filepath.Join(config.DataDir(), "history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "talos> ",
		HistoryFile:     historyPath,
		AutoComplete:    completion.NewReadlineCompleter(replCommands),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Painter:         &ghostPainter{lastAssistant: func() string { return a.LastAssistant() }},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize input: %w", err)
	}
	defer rl.Close()

	s := &session{
		cfg:   cfg,
		agent: a,
		out:   out,
		rl:    rl,
		store: convStore,
		queue: queue,
		deps:  deps,
	}
	s.exec = agent.NewExecutor(a, cfg, out, s)

	toolCount := 0
	if deps.registry != nil {
		toolCount = deps.registry.Len()
	}
	out.Banner(cfg.Model, cfg.BackendURL, toolCount)
	if err := deps.client.Health(ctx); err != nil {
		out.Info("backend unreachable — start it and try again, or check config")
	}

	defer s.autoSave()
	return s.loop(ctx)
}

func (s *session) loop(ctx context.Context) error {
	for {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if err != nil { // io.EOF
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if done := s.dispatch(ctx, line); done {
			return nil
		}
	}
}

// dispatch handles one REPL line. Returns true to end the session.
func (s *session) dispatch(ctx context.Context, line string) bool {
	switch {
	case line == "exit" || line == "quit" || line == "q":
		return true
	case line == "help":
		s.printHelp()
		return false
	case line == "clear":
		s.out.ClearScreen()
		toolCount := 0
		if s.deps.registry != nil {
			toolCount = s.deps.registry.Len()
		}
		s.out.Banner(s.cfg.Model, s.cfg.BackendURL, toolCount)
		return false
	case line == "reset":
		s.agent.Reset()
		s.out.Info("conversation reset")
		return false
	case strings.HasPrefix(line, "remember "):
		s.handleRemember(line[len("remember "):])
		return false
	case strings.HasPrefix(line, "recall"):
		s.handleRecall(strings.TrimSpace(line[len("recall"):]))
		return false
	case line == "facts":
		s.handleRecall("")
		return false
	case strings.HasPrefix(line, "web "):
		s.handleWeb(ctx, strings.TrimSpace(line[len("web "):]))
		return false
	case line == "save":
		s.handleSave()
		return false
	case line == "sessions":
		s.handleSessions()
		return false
	case strings.HasPrefix(line, "load "):
		s.handleLoad(strings.TrimSpace(line[len("load "):]))
		return false
	case strings.HasPrefix(line, "export "):
		s.handleExport(strings.TrimSpace(line[len("export "):]))
		return false
	case strings.HasPrefix(line, "!"):
		s.handleShell(ctx, strings.TrimSpace(line[1:]))
		return false
	}

	reasonMode := false
	if strings.HasPrefix(line, "reason ") {
		line = strings.TrimSpace(line[len("reason "):])
		reasonMode = true
		if line == "" {
			s.out.Info("usage: reason <query>")
			return false
		}
	}

	return s.runQuery(ctx, line, reasonMode)
}

// runQuery drives one full agentic exchange, including the retry-once
// policy for an unreachable backend and interaction rating. Returns true
// when an answer at the rating prompt ends the session.
func (s *session) runQuery(ctx context.Context, line string, reasonMode bool) bool {
	message, refContext := agent.ExpandReferences(ctx, line)
	if message == "" {
		message = line
	}
	if reasonMode {
		message += agent.ReasonSuffix
	}

	envContext := ""
	if s.cfg.ContextInjection {
		envContext = agent.GatherEnvironment(ctx)
	}
	if refContext != "" {
		if envContext != "" {
			envContext += "\n\n"
		}
		envContext += refContext
	}

	parsed := s.agent.Send(ctx, message, envContext, s.out.StreamChunk)
	s.out.Plain("")
	if parsed.Err != "" {
		s.out.Info("backend unreachable — retrying in 3s...")
		time.Sleep(3 * time.Second)
		parsed = s.agent.Resend(ctx, envContext, s.out.StreamChunk)
		s.out.Plain("")
		if parsed.Err != "" {
			s.out.Error(parsed.Err)
			return false
		}
	}

	interaction := s.exec.Run(ctx, parsed, message, envContext)
	if interaction == nil {
		return false
	}

	interaction.Rating = learn.AutoRate(interaction)
	if interaction.Rating > 0 {
		s.out.Info("▲ auto-rated positive")
	} else {
		s.out.Info("▼ auto-rated negative")
	}
	if err := s.queue.Record(interaction); err != nil {
		logging.LogError("failed to record interaction", "error", err)
	}

	s.out.Info("+/- to override · enter to continue")
	answer, err := s.rl.Readline()
	if err != nil {
		return false
	}
	return s.applyRating(ctx, interaction, strings.TrimSpace(answer))
}

// applyRating handles the answer at the rating prompt: + / - overrides the
// rating, empty continues, anything else is the next input line and may end
// the session.
func (s *session) applyRating(ctx context.Context, interaction *learn.Interaction, answer string) bool {
	switch answer {
	case "":
		return false
	case "+", "👍":
		interaction.Rating = 1
		_ = s.queue.Record(interaction)
		s.out.Info("▲ overridden to positive")
		return false
	case "-", "👎":
		interaction.Rating = -1
		_ = s.queue.Record(interaction)
		s.out.Info("▼ overridden to negative")
		return false
	default:
		return s.dispatch(ctx, answer)
	}
}

func (s *session) handleShell(ctx context.Context, command string) {
	if command == "" {
		return
	}
	result := shell.Run(ctx, command)
	if result.Stdout != "" {
		s.out.Plain(strings.TrimRight(result.Stdout, "\n"))
	}
	if result.Stderr != "" {
		s.out.Error(strings.TrimRight(result.Stderr, "\n"))
	}
}

func (s *session) handleRemember(rest string) {
	key, value, ok := strings.Cut(rest, "=")
	if !ok {
		s.out.Info("usage: remember <key> = <value>")
		return
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		s.out.Info("usage: remember <key> = <value>")
		return
	}
	if err := s.deps.facts.Set(key, value); err != nil {
		s.out.Error(err.Error())
		return
	}
	s.out.Info(fmt.Sprintf("remembered: %s = %s", key, value))
}

func (s *session) handleRecall(key string) {
	if key != "" {
		if value, ok := s.deps.facts.Get(key); ok {
			s.out.Plain(fmt.Sprintf("%s = %s", key, value))
		} else {
			s.out.Info("(not found)")
		}
		return
	}
	all := s.deps.facts.All()
	if len(all) == 0 {
		s.out.Info("(no facts stored)")
		return
	}
	for _, kv := range all {
		s.out.Plain(fmt.Sprintf("%s = %s", kv.Key, kv.Value))
	}
}

// handleWeb fetches a URL and injects it as conversation context.
func (s *session) handleWeb(ctx context.Context, url string) {
	if url == "" {
		s.out.Info("usage: web <url>")
		return
	}
	if s.deps.registry == nil {
		s.out.Info("web_fetch tool is disabled")
		return
	}
	def, ok := s.deps.registry.Get("web_fetch")
	if !ok {
		s.out.Info("web_fetch tool is disabled")
		return
	}
	result, err := def.Handler(ctx, map[string]any{"url": url})
	if err != nil {
		s.out.Error(err.Error())
		return
	}
	if strings.HasPrefix(result, "error:") {
		s.out.Error(result)
		return
	}
	s.agent.SetHistory(s.agent.ConversationID(), append(s.agent.History(), llm.Turn{
		Role:    llm.RoleUser,
		Content: "Context from " + url + ":\n" + result,
	}))
	s.out.Info(fmt.Sprintf("fetched %s (%d chars injected as context)", url, len(result)))
}

func (s *session) handleSave() {
	if len(s.agent.History()) == 0 {
		s.out.Info("nothing to save")
		return
	}
	conv := &store.Conversation{
		ID:    s.agent.ConversationID(),
		Model: s.cfg.Model,
		Turns: s.agent.History(),
	}
	if err := s.store.Save(conv); err != nil {
		s.out.Error(err.Error())
		return
	}
	s.agent.SetConversationID(conv.ID)
	s.out.Info(fmt.Sprintf("saved: %s — %s", conv.ID[:8], conv.Title))
}

func (s *session) handleSessions() {
	summaries, err := s.store.List()
	if err != nil {
		s.out.Error(err.Error())
		return
	}
	if len(summaries) == 0 {
		s.out.Info("(no saved conversations)")
		return
	}
	for _, sum := range summaries {
		s.out.Plain(fmt.Sprintf("%s  %s  %2d turns  %s",
			sum.ID[:8], sum.Updated.Format("2006-01-02 15:04"), sum.Turns, sum.Title))
	}
}

func (s *session) handleLoad(id string) {
	if id == "" {
		s.out.Info("usage: load <id>")
		return
	}
	conv, err := s.store.Load(id)
	if err != nil {
		s.out.Error(err.Error())
		return
	}
	s.agent.SetHistory(conv.ID, conv.Turns)
	s.out.Info(fmt.Sprintf("resumed: %s (%d turns)", conv.Title, len(conv.Turns)))
}

func (s *session) handleExport(rest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		s.out.Info("usage: export <id> [json|md]")
		return
	}
	format := "markdown"
	if len(fields) > 1 {
		format = fields[1]
	}
	rendered, err := s.store.Export(fields[0], format)
	if err != nil {
		s.out.Error(err.Error())
		return
	}
	s.out.Plain(rendered)
}

// autoSave persists the conversation on exit when enabled.
func (s *session) autoSave() {
	if !s.cfg.AutoSave || len(s.agent.History()) <= 2 {
		return
	}
	conv := &store.Conversation{
		ID:    s.agent.ConversationID(),
		Model: s.cfg.Model,
		Turns: s.agent.History(),
	}
	if err := s.store.Save(conv); err != nil {
		logging.LogError("auto-save failed", "error", err)
		return
	}
	fmt.Fprintf(os.Stderr, "saved conversation %s\n", conv.ID[:8])
}

func (s *session) printHelp() {
	s.out.Plain(`Commands:
  help                 show this help
  exit, quit, q        end the session
  clear                clear screen
  reset                drop conversation history
  remember <k> = <v>   store a fact
  recall [key]         recall a fact (or all facts)
  facts                list all stored facts
  web <url>            fetch a URL and inject it as context
  save                 save current conversation
  sessions             list saved conversations
  load <id>            resume a saved conversation
  export <id> [json|md]  export a conversation
  reason <query>       ask with step-by-step reasoning
  !<command>           run a shell command directly
  @file.txt, @clip     inline a file or the clipboard into your message

During execution: y/enter run · n skip · a run all remaining`)
}
