// Command squire runs an interactive terminal agent. It reads settings from
// .squire/settings.json and the environment, connects to the configured model
// endpoint, and drives a read-eval loop where the model can call local tools
// and delegate work to subagents.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ostglass/squire"
	"github.com/ostglass/squire/config"
	"github.com/ostglass/squire/internal/budget"
	"github.com/ostglass/squire/llm"
	"github.com/ostglass/squire/subagent"
	"github.com/ostglass/squire/tools"
)

const maxSuggestDistance = 2

var knownCommands = []string{"help", "clear", "usage", "quit", "exit"}

func main() {
	var workdir string
	flag.StringVar(&workdir, "workdir", ".", "working directory for the session")
	flag.StringVar(&workdir, "w", ".", "working directory for the session (shorthand)")
	flag.Parse()

	if err := run(workdir); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+err.Error()))
		os.Exit(1)
	}
}

func run(workdir string) error {
	abs, err := filepath.Abs(workdir)
	if err != nil {
		return fmt.Errorf("resolve workdir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}

	settings, err := config.Load(abs)
	if err != nil {
		return err
	}

	logger := newLogger()
	ui := &terminalUI{}

	registry := squire.NewToolRegistry()
	tools.RegisterDefaults(registry)
	defs := append(registry.Definitions(), subagent.Definition())

	client, err := llm.New(settings, llm.Options{
		Tools:    defs,
		Stream:   true,
		Think:    true,
		Observer: ui,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	model := settings.Model
	if m, ok := client.(interface{ Model() string }); ok {
		model = m.Model()
	}

	// Children stream through the same sink but skip reasoning mode; their
	// thinking is noise the parent never needs.
	factory := func(withTools bool) (squire.ChatClient, error) {
		var childDefs []squire.ToolDefinition
		if withTools {
			childDefs = append(registry.Definitions(), subagent.Definition())
		}
		return llm.New(settings, llm.Options{
			Tools:    childDefs,
			Stream:   true,
			Think:    false,
			Observer: ui,
			Logger:   logger,
		})
	}

	tracker := budget.NewTracker(nil)
	runner := subagent.NewRunner(factory,
		subagent.WithTools(registry),
		subagent.WithSink(ui),
		subagent.WithLogger(logger),
		subagent.WithTracker(tracker),
	)

	a := squire.New(client,
		squire.WithModel(model),
		squire.WithTools(registry),
		squire.WithSpawner(runner),
		squire.WithSink(ui),
		squire.WithLogger(logger),
		squire.WithTracker(tracker),
	)

	sessionID := squire.GenerateID(squire.PrefixSession)
	logger.Info("session started",
		"session_id", sessionID, "provider", settings.Provider, "model", model, "workdir", abs)

	ui.welcome(abs, settings.Provider, model)

	hist, err := openHistory(abs)
	if err != nil {
		ui.warnLine("history disabled: " + err.Error())
	} else {
		defer hist.Close()
	}

	// File and command tools resolve relative paths against the session
	// working directory.
	ctx := squire.WithContextWorkDir(context.Background(), abs)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(ui.prompt())
		if !scanner.Scan() {
			fmt.Println()
			ui.goodbye()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if hist != nil {
			fmt.Fprintln(hist, line)
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(line, a, ui); quit {
				ui.goodbye()
				return nil
			}
			continue
		}

		if _, err := a.Invoke(ctx, line); err != nil {
			ui.errorLine(err.Error())
			continue
		}
		ui.endTurn()
	}
}

// runCommand handles one slash command and reports whether the REPL should
// exit.
func runCommand(line string, a *squire.Agent, ui *terminalUI) bool {
	switch strings.ToLower(line) {
	case "/help":
		ui.printCommands()
	case "/clear":
		a.Conversation().Clear()
		ui.clearScreen()
		ui.successLine("Conversation cleared")
	case "/usage":
		usage := a.Usage()
		ui.infoLine(fmt.Sprintf("Prompt tokens: %d", usage.PromptTokens))
		ui.infoLine(fmt.Sprintf("Completion tokens: %d", usage.CompletionTokens))
		ui.infoLine(fmt.Sprintf("Estimated cost: $%s", a.Cost().StringFixed(4)))
	case "/quit", "/q", "/exit":
		return true
	default:
		if match, ok := suggestCommand(line); ok {
			ui.warnLine(fmt.Sprintf("Unknown command %s. Did you mean /%s?", line, match))
		} else {
			ui.warnLine(fmt.Sprintf("Unknown command %s. Type /help for available commands.", line))
		}
	}
	return false
}

// suggestCommand finds the closest known command to a mistyped one.
func suggestCommand(line string) (string, bool) {
	name := strings.ToLower(strings.TrimPrefix(line, "/"))
	if name == "" {
		return "", false
	}
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, cmd := range knownCommands {
		if d := fuzzy.LevenshteinDistance(name, cmd); d < bestDist {
			best, bestDist = cmd, d
		}
	}
	if bestDist > maxSuggestDistance {
		return "", false
	}
	return best, true
}

func newLogger() *slog.Logger {
	if os.Getenv("SQUIRE_DEBUG") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

// openHistory opens the session history file in append mode, creating the
// .squire directory as needed.
func openHistory(workdir string) (*os.File, error) {
	dir := filepath.Join(workdir, ".squire")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "history.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
