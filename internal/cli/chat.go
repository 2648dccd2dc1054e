// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for janus.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "janus chat" command which provides an interactive REPL for
// conversing with the backend playground.
//
// Command: chat
// Short:   Start an interactive chat session
// Aliases: (none; chat is also the default command)
//
// Examples:
//   janus chat                        Start interactive chat (default model)
//   janus chat --model gpt-3.5-turbo  Use specific model
//   janus --server URL chat           Use a different backend
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /model [name]       Show or switch model
//   /system [text]      Show, set, or clear the system prompt
//   /params [set K V]   Show or adjust sampling parameters
//   /regen [N]          Regenerate last reply, or from turn N
//   /edit N             Edit turn N
//   /delete N           Delete turn N
//   /save [title]       Save conversation to the backend
//   /fork               Fork the saved conversation
//   /load [ID]          Load a saved conversation
//   /sessions           List saved conversations
//   /prompts            List prompt templates
//   /prompt save NAME   Save current setup as a template
//   /export [FILE]      Export conversation as markdown
//   /history            Show conversation history
//   /clear, /c          Start a fresh conversation
//   /status, /s         Show session status
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/januscore/janus-cli/internal/api"
	"github.com/januscore/janus-cli/internal/config"
	"github.com/januscore/janus-cli/internal/model"
	"github.com/januscore/janus-cli/internal/session"
	"github.com/januscore/janus-cli/internal/storage"
	"github.com/januscore/janus-cli/internal/ui/picker"
	"github.com/januscore/janus-cli/internal/ui/styles"
	"github.com/januscore/janus-cli/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
	maxEntries  int
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI(cfg *config.Config) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := cfg.HistoryPath()
	if err != nil {
		historyFile = ""
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
		maxEntries:  cfg.History.MaxEntries,
	}

	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	// 0600 - owner read/write only
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	// Conversation state and backend access
	Controller *session.Controller
	Client     *api.Client

	// Offline listing cache (nil when disabled)
	Cache *storage.Cache

	// Configuration
	Config *config.Config
	Theme  *styles.Theme
	Quiet  bool

	// Offline reports whether the backend was unreachable at startup;
	// listings then come from the cache until a refresh succeeds.
	Offline bool

	// Tracking
	StartTime      time.Time
	GeneratedTurns int

	// Cancel function for current generation
	CancelFunc context.CancelFunc

	// Input history handler
	// USABILITY: Provides readline-like input with history
	Input *ChatCLI

	// Flags keeps the command-line arguments so flag overrides survive a
	// config reload.
	Flags Args

	// Watcher picks up config file edits while the session runs; nil when
	// watching could not start.
	Watcher *config.Watcher
	reloads chan *config.Config
}

// NewChatSession creates a new chat session and refreshes the saved
// conversation and prompt catalogs. When the backend is unreachable the
// catalogs are seeded from the offline cache instead.
func NewChatSession(args Args) (*ChatSession, error) {
	cfg := activeConfig(args)

	client, err := authedClient(cfg)
	if err != nil {
		return nil, err
	}

	ctrl := session.NewController(client, client)
	if cfg.DefaultModel != "" {
		ctrl.SetModel(cfg.DefaultModel)
	}
	if args.Model != "" {
		ctrl.SetModel(args.Model)
	}

	s := &ChatSession{
		Controller: ctrl,
		Client:     client,
		Cache:      openCache(cfg, args.Quiet),
		Config:     cfg,
		Theme:      styles.NewThemeForMode(cfg.UI.Theme),
		Quiet:      args.Quiet,
		StartTime:  time.Now(),
		Input:      NewChatCLI(cfg),
		Flags:      args,
		reloads:    make(chan *config.Config, 1),
	}

	// USABILITY: Config file edits apply to the running session without a
	// restart. A failure to watch is non-fatal.
	if w, err := config.NewWatcher(500*time.Millisecond, func(cfg *config.Config) {
		select {
		case s.reloads <- cfg:
		default:
		}
	}); err == nil {
		if err := w.Watch(); err == nil {
			s.Watcher = w
		} else {
			w.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// RELIABILITY: A dead backend must not prevent the session from
	// starting; listings fall back to the cache and generation reports
	// its own errors.
	if _, err := ctrl.RefreshConversations(ctx); err != nil {
		s.Offline = true
		s.primeFromCache()
	} else {
		_, _ = ctrl.RefreshPrompts(ctx)
		s.syncCache()
	}

	return s, nil
}

// primeFromCache seeds the controller catalogs from the offline cache.
func (s *ChatSession) primeFromCache() {
	if s.Cache == nil {
		return
	}
	if convs, err := s.Cache.Conversations(); err == nil {
		s.Controller.PrimeConversations(convs)
	}
	if prompts, err := s.Cache.Prompts(); err == nil {
		s.Controller.PrimePrompts(prompts)
	}
}

// syncCache writes the controller catalogs back into the offline cache.
func (s *ChatSession) syncCache() {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.ReplaceConversations(s.Controller.SavedConversations())
	_ = s.Cache.ReplacePrompts(s.Controller.Prompts())
}

// applyReload applies a freshly loaded config to the running session.
// Command-line flags keep precedence over the reloaded file, and the API
// client keeps its server URL for the lifetime of the session.
func (s *ChatSession) applyReload(cfg *config.Config) {
	cfg = cfg.Clone()
	if s.Flags.Server != "" {
		cfg.Server.URL = s.Flags.Server
	}
	if s.Flags.Model != "" {
		cfg.DefaultModel = s.Flags.Model
	}
	s.Config = cfg
	s.Theme = styles.NewThemeForMode(cfg.UI.Theme)
	if !s.Quiet {
		fmt.Println(infoStyle.Render("[Configuration reloaded]"))
	}
}

// Close releases session resources.
func (s *ChatSession) Close() {
	s.Input.Close()
	if s.Watcher != nil {
		s.Watcher.Close()
	}
	if s.Cache != nil {
		s.Cache.Close()
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("start an interactive chat"); err != nil {
		return err
	}

	chat, err := NewChatSession(args)
	if err != nil {
		return err
	}
	defer chat.Close()

	if !chat.Quiet {
		printWelcome(chat)
	}

	// Set up signal handling for graceful Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for sig := range sigChan {
			if sig == os.Interrupt || sig == syscall.SIGTERM {
				// First Ctrl+C cancels the current generation
				if chat.CancelFunc != nil {
					chat.CancelFunc()
					chat.CancelFunc = nil
					fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
				}
			}
		}
	}()

	// Main REPL loop using liner for input history
	// USABILITY: Provides readline-like line editing and history navigation
	for {
		// Apply any config reload that arrived since the last prompt.
		select {
		case cfg := <-chat.reloads:
			chat.applyReload(cfg)
		default:
		}

		input, err := chat.Input.ReadInput(promptStyle.Render("janus> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF (Ctrl+D) - exit gracefully
			fmt.Println()
			printExitSummary(chat)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, chat)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(chat)
				return nil
			}
			continue
		}

		// Handle exit/quit without slash
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(chat)
			return nil
		}

		if err := processMessage(chat, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// generationContext builds a cancellable context bounded by the configured
// request timeout and registers its cancel func for the Ctrl+C handler.
func generationContext(chat *ChatSession) (context.Context, context.CancelFunc) {
	timeout := time.Duration(chat.Config.Server.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	chat.CancelFunc = cancel
	return ctx, func() {
		chat.CancelFunc = nil
		cancel()
	}
}

// withSpinner runs fn while animating a spinner on stderr. The spinner is
// suppressed in quiet mode and when stderr is not a terminal.
func withSpinner(chat *ChatSession, label string, fn func() error) error {
	if chat.Quiet || !IsTTY() {
		return fn()
	}

	done := make(chan struct{})
	go func() {
		spinner := styles.LineSpinner
		start := time.Now()
		ticker := time.NewTicker(spinner.Duration())
		defer ticker.Stop()
		for {
			select {
			case <-done:
				// Clear the spinner line
				fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(label)+4))
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%s %s", spinner.FrameAt(time.Since(start)), label)
			}
		}
	}()

	err := fn()
	close(done)
	// Give the goroutine a tick to clear the line
	time.Sleep(10 * time.Millisecond)
	return err
}

// processMessage sends a user message and displays the assistant reply.
func processMessage(chat *ChatSession, input string) error {
	ctx, release := generationContext(chat)
	defer release()

	start := time.Now()

	var turn *model.Turn
	err := withSpinner(chat, "Generating...", func() error {
		var genErr error
		turn, genErr = chat.Controller.Generate(ctx, input)
		return genErr
	})
	if err != nil {
		return err
	}

	displayTurn(chat, turn)
	chat.GeneratedTurns++

	if !chat.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s | %s\n",
			infoStyle.Render("[Stats]"),
			commandStyle.Render(chat.Controller.Model()),
			time.Since(start).Round(time.Millisecond))
	}

	return nil
}

// displayTurn prints an assistant turn, rendering markdown on a TTY.
func displayTurn(chat *ChatSession, turn *model.Turn) {
	fmt.Println()
	if chat.Config.UI.ShowModel && turn.Model != "" {
		fmt.Println(chat.Theme.ModelTag.Render("[" + turn.Model + "]"))
	}
	if chat.Config.UI.RenderMarkdown {
		displayResponse(turn.Content)
	} else {
		fmt.Println(turn.Content)
	}
	if !chat.Config.UI.CompactMode {
		fmt.Println()
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, chat *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		chat.Controller.Clear()
		fmt.Println(commandStyle.Render("[New conversation]"))
		return true, nil

	case "/model", "/m":
		return handleModelCommand(chat, args)

	case "/system":
		return handleSystemCommand(chat, args)

	case "/params", "/p":
		return handleParamsCommand(chat, args)

	case "/regen", "/r":
		return handleRegenCommand(chat, args)

	case "/edit":
		return handleEditCommand(chat, args)

	case "/delete", "/del":
		return handleDeleteTurnCommand(chat, args)

	case "/save":
		return handleSaveCommand(chat, args)

	case "/fork":
		return handleForkCommand(chat)

	case "/load":
		return handleLoadCommand(chat, args)

	case "/sessions":
		return handleSessionListCommand(chat)

	case "/prompts":
		return handlePromptListCommand(chat)

	case "/prompt":
		return handlePromptCommand(chat, args)

	case "/export":
		return handleExportCommand(chat, args)

	case "/history":
		printChatHistory(chat)
		return true, nil

	case "/status", "/s":
		printChatStatus(chat)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleModelCommand handles /model: show, list, or switch.
func handleModelCommand(chat *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		fmt.Printf("%s Current model: %s\n",
			infoStyle.Render("[Model]"),
			commandStyle.Render(chat.Controller.Model()))
		fmt.Printf("%s %s\n",
			infoStyle.Render("Available:"),
			strings.Join(model.ModelIDs(), ", "))
		return true, nil
	}

	newModel := args[0]
	if _, known := model.KnownModels[newModel]; !known {
		fmt.Fprintf(os.Stderr, "%s Model '%s' is not in the catalog, using anyway\n",
			warningStyle.Render("[Warning]"), newModel)
	}

	chat.Controller.SetModel(newModel)
	fmt.Printf("%s Switched to model: %s\n", commandStyle.Render("[OK]"), newModel)
	return true, nil
}

// handleSystemCommand handles /system: show, set, or clear the system prompt.
func handleSystemCommand(chat *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		current := chat.Controller.SystemPrompt()
		if current == "" {
			fmt.Println(infoStyle.Render("[No system prompt set]"))
		} else {
			fmt.Printf("%s %s\n", infoStyle.Render("[System]"), current)
		}
		fmt.Println(infoStyle.Render("Use '/system TEXT' to set, '/system clear' to remove"))
		return true, nil
	}

	if len(args) == 1 && strings.EqualFold(args[0], "clear") {
		chat.Controller.SetSystemPrompt("")
		fmt.Println(commandStyle.Render("[System prompt cleared]"))
		return true, nil
	}

	chat.Controller.SetSystemPrompt(strings.Join(args, " "))
	fmt.Println(commandStyle.Render("[System prompt set]"))
	return true, nil
}

// paramKeys is the set of adjustable sampling parameters.
var paramKeys = []string{"temperature", "max_tokens", "top_p", "frequency_penalty", "presence_penalty"}

// handleParamsCommand handles /params: show, set, or reset sampling params.
func handleParamsCommand(chat *ChatSession, args []string) (bool, error) {
	params := chat.Controller.Params()

	if len(args) == 0 {
		fmt.Println()
		fmt.Printf("%s %s\n", summaryHeaderStyle.Render("Sampling Parameters"),
			infoStyle.Render("("+chat.Controller.Model()+")"))
		fmt.Printf("  %s %.2f\n", infoStyle.Render("temperature:"), params.Temperature)
		fmt.Printf("  %s %d\n", infoStyle.Render("max_tokens:"), params.MaxTokens)
		fmt.Printf("  %s %.2f\n", infoStyle.Render("top_p:"), params.TopP)
		fmt.Printf("  %s %.2f\n", infoStyle.Render("frequency_penalty:"), params.FrequencyPenalty)
		fmt.Printf("  %s %.2f\n", infoStyle.Render("presence_penalty:"), params.PresencePenalty)
		fmt.Println()
		fmt.Println(infoStyle.Render("Use '/params set KEY VALUE' to adjust, '/params reset' for defaults"))
		return true, nil
	}

	switch strings.ToLower(args[0]) {
	case "reset":
		chat.Controller.SetParams(model.DefaultSamplingParams(chat.Controller.Model()))
		fmt.Println(commandStyle.Render("[Parameters reset to defaults]"))
		return true, nil

	case "set":
		if len(args) != 3 {
			return true, ErrMissingArgument("KEY VALUE", "/params set temperature 0.9")
		}
		updated, err := applyParam(params, strings.ToLower(args[1]), args[2])
		if err != nil {
			return true, err
		}
		chat.Controller.SetParams(updated)
		fmt.Printf("%s %s = %s\n", commandStyle.Render("[OK]"), args[1], args[2])
		return true, nil

	default:
		return true, fmt.Errorf("unknown /params subcommand: %s", args[0])
	}
}

// applyParam validates and applies a single sampling parameter change.
func applyParam(p model.SamplingParams, key, value string) (model.SamplingParams, error) {
	switch key {
	case "temperature":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || v > 2 {
			return p, NewValidationError("temperature", value, "must be a number between 0 and 2")
		}
		p.Temperature = v
	case "max_tokens":
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return p, NewValidationError("max_tokens", value, "must be a positive integer")
		}
		p.MaxTokens = v
	case "top_p":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || v > 1 {
			return p, NewValidationError("top_p", value, "must be a number between 0 and 1")
		}
		p.TopP = v
	case "frequency_penalty":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < -2 || v > 2 {
			return p, NewValidationError("frequency_penalty", value, "must be a number between -2 and 2")
		}
		p.FrequencyPenalty = v
	case "presence_penalty":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < -2 || v > 2 {
			return p, NewValidationError("presence_penalty", value, "must be a number between -2 and 2")
		}
		p.PresencePenalty = v
	default:
		return p, NewValidationError("parameter", key,
			"must be one of: "+strings.Join(paramKeys, ", "))
	}
	return p, nil
}

// turnAt resolves a 1-based display index into a turn.
func turnAt(chat *ChatSession, arg string) (*model.Turn, int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, 0, NewValidationError("turn", arg, "must be a turn number (see /history)")
	}
	conv := chat.Controller.Conversation()
	if n < 1 || n > len(conv.Turns) {
		return nil, 0, NewValidationError("turn", arg,
			fmt.Sprintf("conversation has %d turns", len(conv.Turns)))
	}
	return conv.Turns[n-1], n - 1, nil
}

// handleRegenCommand handles /regen: regenerate the last reply, or
// regenerate from a specific turn.
func handleRegenCommand(chat *ChatSession, args []string) (bool, error) {
	ctx, release := generationContext(chat)
	defer release()

	var turn *model.Turn
	err := withSpinner(chat, "Regenerating...", func() error {
		var genErr error
		if len(args) == 0 {
			turn, genErr = chat.Controller.Regenerate(ctx)
		} else {
			target, _, resolveErr := turnAt(chat, args[0])
			if resolveErr != nil {
				return resolveErr
			}
			turn, genErr = chat.Controller.RegenerateFrom(ctx, target.ID)
		}
		return genErr
	})
	if err != nil {
		return true, err
	}

	displayTurn(chat, turn)
	chat.GeneratedTurns++
	return true, nil
}

// handleEditCommand handles /edit N: rewrite the content of turn N.
func handleEditCommand(chat *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		return true, ErrMissingArgument("N", "/edit 3")
	}

	target, idx, err := turnAt(chat, args[0])
	if err != nil {
		return true, err
	}

	fmt.Printf("%s %s\n", infoStyle.Render("[Current]"), util.Preview(target.Content, 200))
	newContent, err := chat.Input.ReadInput(promptStyle.Render("edit> "))
	if err != nil {
		fmt.Println(infoStyle.Render("[Edit cancelled]"))
		return true, nil
	}

	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		fmt.Println(infoStyle.Render("[Edit cancelled]"))
		return true, nil
	}

	if err := chat.Controller.EditTurn(target.ID, newContent); err != nil {
		return true, err
	}
	fmt.Printf("%s Turn %d updated\n", commandStyle.Render("[OK]"), idx+1)
	return true, nil
}

// handleDeleteTurnCommand handles /delete N.
func handleDeleteTurnCommand(chat *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		return true, ErrMissingArgument("N", "/delete 3")
	}

	_, idx, err := turnAt(chat, args[0])
	if err != nil {
		return true, err
	}

	if err := chat.Controller.DeleteTurn(idx); err != nil {
		return true, err
	}
	fmt.Printf("%s Turn %d deleted\n", commandStyle.Render("[OK]"), idx+1)
	return true, nil
}

// handleSaveCommand handles /save [title].
func handleSaveCommand(chat *ChatSession, args []string) (bool, error) {
	ctx, release := generationContext(chat)
	defer release()

	title := strings.Join(args, " ")
	id, assignedTitle, err := chat.Controller.Save(ctx, title)
	if err != nil {
		return true, err
	}

	chat.syncCache()
	fmt.Printf("%s Saved as #%d: %s\n",
		commandStyle.Render("[OK]"), id, assignedTitle)
	return true, nil
}

// handleForkCommand handles /fork.
func handleForkCommand(chat *ChatSession) (bool, error) {
	ctx, release := generationContext(chat)
	defer release()

	id, title, err := chat.Controller.Fork(ctx)
	if err != nil {
		return true, err
	}

	chat.syncCache()
	fmt.Printf("%s Forked as #%d: %s\n", commandStyle.Render("[OK]"), id, title)
	return true, nil
}

// handleLoadCommand handles /load [ID]. With no argument an interactive
// picker is shown; with an ID the conversation is loaded directly.
func handleLoadCommand(chat *ChatSession, args []string) (bool, error) {
	if err := chat.refreshCatalogs(); err != nil && !chat.Quiet {
		fmt.Fprintf(os.Stderr, "%s using cached listings: %v\n",
			warningStyle.Render("[Offline]"), err)
	}

	var id int64
	if len(args) > 0 {
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return true, NewValidationError("id", args[0], "must be a conversation id")
		}
		id = n
	} else {
		convs := chat.Controller.SavedConversations()
		if len(convs) == 0 {
			fmt.Println(infoStyle.Render("[No saved conversations]"))
			return true, nil
		}

		items := make([]picker.Item, len(convs))
		for i, c := range convs {
			items[i] = picker.Item{
				ID:     c.ID,
				Title:  c.GetTitle(),
				Detail: c.Preview(),
			}
		}
		choice, err := picker.Run("Load conversation", items, chat.Theme)
		if err != nil {
			return true, err
		}
		if choice == nil {
			return true, nil
		}
		id = choice.ID
	}

	if err := chat.Controller.Load(id); err != nil {
		return true, err
	}
	fmt.Printf("%s Loaded #%d: %s (%d turns)\n",
		commandStyle.Render("[OK]"), id,
		chat.Controller.Title(), chat.Controller.Conversation().TurnCount())
	return true, nil
}

// handleSessionListCommand handles /sessions.
func handleSessionListCommand(chat *ChatSession) (bool, error) {
	if err := chat.refreshCatalogs(); err != nil && !chat.Quiet {
		fmt.Fprintf(os.Stderr, "%s using cached listings: %v\n",
			warningStyle.Render("[Offline]"), err)
	}
	fmt.Print(storage.FormatConversationList(chat.Controller.SavedConversations()))
	return true, nil
}

// handlePromptListCommand handles /prompts.
func handlePromptListCommand(chat *ChatSession) (bool, error) {
	if err := chat.refreshCatalogs(); err != nil && !chat.Quiet {
		fmt.Fprintf(os.Stderr, "%s using cached listings: %v\n",
			warningStyle.Render("[Offline]"), err)
	}
	fmt.Print(storage.FormatPromptList(chat.Controller.Prompts()))
	return true, nil
}

// handlePromptCommand handles /prompt save|load|delete.
func handlePromptCommand(chat *ChatSession, args []string) (bool, error) {
	if len(args) == 0 {
		return true, ErrMissingArgument("save|load|delete", "/prompt save my-template")
	}

	switch strings.ToLower(args[0]) {
	case "save":
		if len(args) < 2 {
			return true, ErrMissingArgument("NAME", "/prompt save my-template")
		}
		ctx, release := generationContext(chat)
		defer release()

		name := strings.Join(args[1:], " ")
		if err := chat.Controller.SavePrompt(ctx, name); err != nil {
			return true, err
		}
		chat.syncCache()
		fmt.Printf("%s Prompt template saved: %s\n", commandStyle.Render("[OK]"), name)
		return true, nil

	case "load":
		return handlePromptLoad(chat, args[1:])

	case "delete":
		if len(args) < 2 {
			return true, ErrMissingArgument("ID", "/prompt delete 3")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return true, NewValidationError("id", args[1], "must be a prompt template id")
		}
		ctx, release := generationContext(chat)
		defer release()

		if err := chat.Controller.DeletePrompt(ctx, id); err != nil {
			return true, err
		}
		chat.syncCache()
		fmt.Printf("%s Prompt template #%d deleted\n", commandStyle.Render("[OK]"), id)
		return true, nil

	default:
		return true, fmt.Errorf("unknown /prompt subcommand: %s", args[0])
	}
}

// handlePromptLoad loads a prompt template, via picker when no id is given.
func handlePromptLoad(chat *ChatSession, args []string) (bool, error) {
	if err := chat.refreshCatalogs(); err != nil && !chat.Quiet {
		fmt.Fprintf(os.Stderr, "%s using cached listings: %v\n",
			warningStyle.Render("[Offline]"), err)
	}

	var id int64
	if len(args) > 0 {
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return true, NewValidationError("id", args[0], "must be a prompt template id")
		}
		id = n
	} else {
		prompts := chat.Controller.Prompts()
		if len(prompts) == 0 {
			fmt.Println(infoStyle.Render("[No prompt templates]"))
			return true, nil
		}

		items := make([]picker.Item, len(prompts))
		for i, p := range prompts {
			items[i] = picker.Item{
				ID:     p.ID,
				Title:  p.Name,
				Detail: util.Preview(p.SystemPrompt, 60),
			}
		}
		choice, err := picker.Run("Load prompt template", items, chat.Theme)
		if err != nil {
			return true, err
		}
		if choice == nil {
			return true, nil
		}
		id = choice.ID
	}

	if err := chat.Controller.LoadPrompt(id); err != nil {
		return true, err
	}
	fmt.Printf("%s Prompt template loaded; input staged for next message\n",
		commandStyle.Render("[OK]"))
	if staged := chat.Controller.PendingInput(); staged != "" {
		fmt.Printf("%s %s\n", infoStyle.Render("[Staged]"), util.Preview(staged, 120))
	}
	return true, nil
}

// handleExportCommand handles /export [FILE].
func handleExportCommand(chat *ChatSession, args []string) (bool, error) {
	conv := chat.Controller.Conversation()
	if conv.IsEmpty() {
		return true, session.ErrEmptyConversation
	}

	markdown := storage.ExportMarkdown(conv)
	if len(args) == 0 {
		fmt.Print(markdown)
		return true, nil
	}

	path := args[0]
	if err := util.AtomicWriteFile(path, []byte(markdown), 0644); err != nil {
		return true, fmt.Errorf("export: %w", err)
	}
	fmt.Printf("%s Exported %d turns to %s\n",
		commandStyle.Render("[OK]"), conv.TurnCount(), path)
	return true, nil
}

// refreshCatalogs refreshes the saved conversation and prompt listings,
// falling back to the cache when the backend is unreachable.
func (s *ChatSession) refreshCatalogs() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.Controller.RefreshConversations(ctx); err != nil {
		s.Offline = true
		s.primeFromCache()
		return err
	}
	_, _ = s.Controller.RefreshPrompts(ctx)
	s.Offline = false
	s.syncCache()
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(chat *ChatSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("janus interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(chat.Controller.Model()))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Backend:"),
		commandStyle.Render(chat.Config.Server.URL))

	if chat.Offline {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Status:"),
			warningStyle.Render("Offline (listings from cache)"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints the slash commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/model [name]", "Show or switch model"},
		{"/system [text]", "Show, set, or clear the system prompt"},
		{"/params [set K V]", "Show or adjust sampling parameters"},
		{"/regen [N]", "Regenerate last reply, or from turn N"},
		{"/edit N", "Edit turn N"},
		{"/delete N", "Delete turn N"},
		{"/save [title]", "Save conversation to the backend"},
		{"/fork", "Fork the saved conversation"},
		{"/load [ID]", "Load a saved conversation"},
		{"/sessions", "List saved conversations"},
		{"/prompts", "List prompt templates"},
		{"/prompt save NAME", "Save current setup as a template"},
		{"/prompt load [ID]", "Load a prompt template"},
		{"/prompt delete ID", "Delete a prompt template"},
		{"/export [FILE]", "Export conversation as markdown"},
		{"/history", "Show conversation history"},
		{"/clear, /c", "Start a fresh conversation"},
		{"/status, /s", "Show session status"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-19s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels current generation, Ctrl+D exits"))
	fmt.Println()
}

// printChatStatus prints session status.
func printChatStatus(chat *ChatSession) {
	status := chat.Controller.GetStatus()
	elapsed := time.Since(chat.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Model:"),
		commandStyle.Render(status.Model))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Backend:"),
		chat.Config.Server.URL)

	title := status.Title
	if title == "" {
		title = "(unsaved)"
	}
	fmt.Printf("  %s %s\n", infoStyle.Render("Conversation:"), title)
	if status.ActiveID != model.UnsavedID {
		fmt.Printf("  %s #%d\n", infoStyle.Render("Saved as:"), status.ActiveID)
	}
	fmt.Printf("  %s %d\n", infoStyle.Render("Turns:"), status.TurnCount)
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), elapsed.String())

	fmt.Println()
	fmt.Printf("  %s %d saved, %d prompt templates\n",
		infoStyle.Render("Catalog:"),
		status.SavedCount, status.PromptCount)
	fmt.Printf("  %s %d replies this session\n",
		infoStyle.Render("Generated:"), chat.GeneratedTurns)

	if chat.Offline {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Backend:"),
			warningStyle.Render("unreachable (cached listings)"))
	}

	fmt.Println()
}

// printChatHistory prints the conversation turns with 1-based indices. The
// indices are the ones /regen, /edit, and /delete accept.
func printChatHistory(chat *ChatSession) {
	conv := chat.Controller.Conversation()
	if conv.IsEmpty() {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Conversation History"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, turn := range conv.Turns {
		label := chat.Theme.RoleLabel(turn.Role.String()).Render(turn.Role.DisplayName())

		content := strings.ReplaceAll(util.Preview(turn.Content, 100), "\n", " ")
		if turn.Model != "" && chat.Config.UI.ShowModel {
			fmt.Printf("  %d. %s %s: %s\n", i+1, label,
				chat.Theme.ModelTag.Render("["+turn.Model+"]"), content)
		} else {
			fmt.Printf("  %d. %s: %s\n", i+1, label, content)
		}
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(chat *ChatSession) {
	if chat.GeneratedTurns == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	status := chat.Controller.GetStatus()
	elapsed := time.Since(chat.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n", infoStyle.Render("Replies:"), chat.GeneratedTurns)
	fmt.Printf("  %s %d\n", infoStyle.Render("Turns:"), status.TurnCount)
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"), elapsed.String())

	if status.ActiveID == model.UnsavedID && status.TurnCount > 0 {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Note:"),
			warningStyle.Render("conversation not saved (use /save before exiting)"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
