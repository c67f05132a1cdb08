package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BradenEverson/chalk/lang"
	"github.com/BradenEverson/chalk/log"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help     Print this cruft
  list     List variables with their expression, last value, and dependencies
  reset    Remove every variable
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type an expression to evaluate it, or "name = expression" to define a
  variable. Variables are lazy: they are re-evaluated every time they are
  used, so redefining one changes everything defined in terms of it.
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Use Alt+Up/Alt+Down to switch to command mode and navigate command history
    (restores original mode when reaching end of history)
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// savedInput is the text and cursor of an input line set aside while another
// is being edited.
type savedInput struct {
	text   string
	cursor int
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	env        *lang.Environment
	logger     log.Logger
	history    *History
	historyIdx int
	matches    fuzzy.Matches // current fuzzy match results
	candidates []string      // backing candidate list
	wordStart  int           // byte offset of current word start
	wordEnd    int           // byte offset of current word end
	suggIdx    int           // selected candidate index
	tabActive  bool          // whether user is tab-cycling
	preTab     savedInput    // input before tab-cycling began
	altNav     bool          // whether user is in Alt+Up/Down navigation
	altNavMode inputMode     // mode before Alt navigation
	preAltNav  savedInput    // input before Alt navigation
	width      int           // terminal width for ellipsization
	quitting   bool
	mode       inputMode
	saved      [2]savedInput // per-mode input while the other mode is active
}

// Run starts an interactive session evaluating lines against env.
//
// History is kept in cacheDir; an empty cacheDir keeps it in memory for the
// session only.
func Run(
	ctx context.Context,
	env *lang.Environment,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if env == nil {
		env = lang.NewEnvironment(lang.WithLogger(logger))
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("history", path),
		slog.Int("variables", env.Len()),
	)

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, env, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	env *lang.Environment,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		env:        env,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine returns the line shown below the input: the history position,
// a usage hint, a signature hint, or the completion bar.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression or press Esc for commands")
		}

		return hintStyle.Render(
			"Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)",
		)
	}

	if m.mode == modeEval {
		if call := detectFunctionCall(input, m.input.Position()); call.inCall {
			if sig, params := signatureOf(call.name); sig != "" {
				return renderSignatureHint(sig, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNav = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.altRecall(-1), nil
		}

		m, _ = m.recall(-1, anyMode, true)

		return m, nil

	case tea.KeyDown:
		if msg.Alt {
			return m.altRecall(1), nil
		}

		if next, ok := m.recall(1, anyMode, true); ok {
			return next, nil
		}

		return m.leaveHistory(), nil

	case tea.KeyShiftUp:
		m, _ = m.recall(-1, onlyMode(m.mode), false)

		return m, nil

	case tea.KeyShiftDown:
		if next, ok := m.recall(1, onlyMode(m.mode), false); ok {
			return next, nil
		}

		if m.historyIdx < m.history.Len() {
			m = m.leaveHistory()
		}

		return m, nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.restore(m.preTab)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNav = false

		return m.toggleMode(), nil

	case tea.KeyRunes:
		// Space accepts the candidate being cycled.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNav = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end. The first
// press selects the first candidate going forward or the last going back.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTab = m.snapshot()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	// Reset both mode inputs after submission
	m.saved = [2]savedInput{}
	m.input.SetValue("")
	refreshMatches(&m, false)

	_, _ = m.history.WriteWithMode(input, m.mode)
	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	echo := tea.Println(formatCommand(input))

	v, err := lang.EvaluateLine(m.ctxFunc(), input, m.env)
	if err != nil {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl eval result",
			slog.String("result_type", "error"),
			slog.Any("error", err),
		)

		return m, tea.Sequence(
			echo,
			tea.Println(errorStyle.Render("error: "+err.Error())),
		)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval result",
		slog.String("result_type", v.Type().String()),
		slog.String("result", v.String()),
	)

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(v.String())))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listVariables()))

	case "r", "reset":
		n := m.env.Len()
		m.env.Reset()
		refreshMatches(&m, false)

		return m, tea.Sequence(echo, tea.Println(
			resultStyle.Render(fmt.Sprintf("✔ — removed %d variable%s", n, plural(n))),
		))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// listVariables renders one line per variable: its expression, the value it
// last produced, and the variables it refers to.
func (m model) listVariables() string {
	if m.env.Len() == 0 {
		return hintStyle.Render("  no variables defined")
	}

	var b strings.Builder

	for name := range m.env.Names() {
		expr, _ := m.env.Lookup(name)

		fmt.Fprintf(&b, "  %s = %s", name, expr)

		if v, ok := m.env.Last(name); ok {
			b.WriteString(hintStyle.Render("  → "))
			b.WriteString(resultStyle.Render(v.String()))
		}

		if deps := m.env.Dependencies(name); len(deps) > 0 {
			b.WriteString(hintStyle.Render("  uses " + strings.Join(deps, ", ")))
		}

		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}

func anyMode(inputMode) bool { return true }

func onlyMode(mode inputMode) func(inputMode) bool {
	return func(m inputMode) bool { return m == mode }
}

// recall moves through history by step to the nearest entry whose mode
// satisfies want, loading it into the input. If follow is set the REPL
// switches to the entry's mode. It reports false, leaving m unchanged, when
// no such entry exists in that direction.
func (m model) recall(step int, want func(inputMode) bool, follow bool) (model, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.GetEntry(i)
		if err != nil || !want(entry.Mode) {
			continue
		}

		if follow && entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.restore(savedInput{text: entry.Line, cursor: len(entry.Line)})
		refreshMatches(&m, false)

		return m, true
	}

	return m, false
}

// altRecall walks command history, switching to command mode first. Running
// off either end restores the mode and input from before the walk began.
func (m model) altRecall(step int) model {
	if !m.altNav {
		m.altNav = true
		m.altNavMode = m.mode
		m.preAltNav = m.snapshot()

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	if next, ok := m.recall(step, onlyMode(modeCtrl), false); ok {
		return next
	}

	m.altNav = false
	if m.altNavMode != m.mode {
		m = m.switchToMode(m.altNavMode)
	}

	m.restore(m.preAltNav)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// leaveHistory returns from browsing history to an empty input line.
func (m model) leaveHistory() model {
	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	refreshMatches(&m, false)

	return m
}

func (m model) snapshot() savedInput {
	return savedInput{text: m.input.Value(), cursor: m.input.Position()}
}

func (m *model) restore(s savedInput) {
	m.input.SetValue(s.text)
	m.input.SetCursor(s.cursor)
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, setting aside the input of the
// current mode and bringing back the input last left in the target mode.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = m.snapshot()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.restore(m.saved[mode])
	refreshMatches(&m, false)

	return m
}
