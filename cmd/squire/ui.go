package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/ostglass/squire"
)

const separatorWidth = 60

var (
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	bannerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	thinkingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	toolStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	commandStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// terminalUI renders agent events as they stream. Reasoning lines are drawn
// inside a dimmed block that closes as soon as answer text or a tool call
// arrives, so thinking never mixes with output. The mutex serializes writers
// during concurrent subagent fan-out.
type terminalUI struct {
	mu       sync.Mutex
	thinking bool
}

var _ squire.EventSink = (*terminalUI)(nil)

func (u *terminalUI) OnReasoning(line string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.thinking {
		fmt.Println(thinkingStyle.Render("┌ Thinking"))
		u.thinking = true
	}
	fmt.Println(thinkingStyle.Render("│ " + line))
}

func (u *terminalUI) OnContent(delta string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closeThinking()
	fmt.Print(delta)
}

func (u *terminalUI) OnToolStart(name, args string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closeThinking()
	if compact := compactLine(args); compact != "" && compact != "null" {
		fmt.Print("🔨 " + toolStyle.Render(name) + " " + dimStyle.Render(compact))
		return
	}
	fmt.Print("🔨 " + toolStyle.Render(name))
}

func (u *terminalUI) OnToolResult(content string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if compact := compactLine(content); compact != "" {
		fmt.Println(dimStyle.Render(" = ") + resultStyle.Render(compact))
		return
	}
	fmt.Println()
}

func (u *terminalUI) OnToolError(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Println()
	fmt.Println(errorStyle.Render("✖ " + msg))
}

func (u *terminalUI) OnNotice(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closeThinking()
	fmt.Println(infoStyle.Render(msg))
}

// closeThinking ends an open reasoning block. Callers must hold the mutex.
func (u *terminalUI) closeThinking() {
	if u.thinking {
		fmt.Println(thinkingStyle.Render("└"))
		u.thinking = false
	}
}

// endTurn terminates the streamed answer line and rules off the turn.
func (u *terminalUI) endTurn() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closeThinking()
	fmt.Println()
	u.separator()
}

func (u *terminalUI) welcome(workdir, provider, model string) {
	fmt.Println()
	fmt.Println(accentStyle.Render("✦"), dimStyle.Render("Welcome to"), bannerStyle.Render("Squire"))
	fmt.Println(dimStyle.Render("│"), "Working directory: "+workdir)
	fmt.Println(dimStyle.Render("│"), "Provider: "+provider+"  Model: "+model)
	fmt.Println()
	u.printCommands()
}

func (u *terminalUI) printCommands() {
	fmt.Println(dimStyle.Render("Available commands:"))
	fmt.Println("  " + commandStyle.Render("/help") + "   " + dimStyle.Render("Show this help message"))
	fmt.Println("  " + commandStyle.Render("/clear") + "  " + dimStyle.Render("Clear the screen and conversation history"))
	fmt.Println("  " + commandStyle.Render("/usage") + "  " + dimStyle.Render("Show token usage and estimated cost"))
	fmt.Println("  " + commandStyle.Render("/quit") + "   " + dimStyle.Render("Exit the program"))
	fmt.Println()
}

func (u *terminalUI) errorLine(msg string) {
	fmt.Println(errorStyle.Render("✖ " + msg))
}

func (u *terminalUI) infoLine(msg string) {
	fmt.Println(infoStyle.Render("ℹ " + msg))
}

func (u *terminalUI) successLine(msg string) {
	fmt.Println(resultStyle.Render("✓ " + msg))
}

func (u *terminalUI) warnLine(msg string) {
	fmt.Println(warnStyle.Render("⚠ " + msg))
}

func (u *terminalUI) separator() {
	fmt.Println(dimStyle.Render(strings.Repeat("─", separatorWidth)))
}

func (u *terminalUI) clearScreen() {
	fmt.Print("\x1b[2J\x1b[H")
}

func (u *terminalUI) goodbye() {
	fmt.Println(accentStyle.Render("✦ Goodbye!"))
}

func (u *terminalUI) prompt() string {
	return promptStyle.Render("⟩") + " "
}

// compactLine collapses a multi-line string into one trimmed line so tool
// calls and results stay on a single row.
func compactLine(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
