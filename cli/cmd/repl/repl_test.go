package repl

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BradenEverson/chalk/lang"
	"github.com/BradenEverson/chalk/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	return newModel(t.Context(), lang.NewEnvironment(), NewHistory(""), log.Logger{})
}

// typeText sends s to m one key at a time.
func typeText(m model, s string) model {
	for _, r := range s {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func press(m model, k tea.KeyType) model {
	m, _ = m.handleKey(tea.KeyMsg{Type: k})

	return m
}

func submit(t *testing.T, m model, line string) model {
	t.Helper()

	m.input.SetValue(line)
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	if m.input.Value() != "" {
		t.Fatalf("input %q not cleared after submitting %q", m.input.Value(), line)
	}

	return m
}

func TestModel_EvaluatesLazily(t *testing.T) {
	m := testModel(t)

	for _, line := range []string{"x = 5", "y = x^2", "x = 2"} {
		m = submit(t, m, line)
	}

	v, err := lang.EvaluateLine(t.Context(), "y", m.env)
	if err != nil || v.String() != "4" {
		t.Errorf("y = %v, %v; want 4", v, err)
	}

	if got := m.history.Len(); got != 3 {
		t.Errorf("got %d history entries, want 3", got)
	}
}

func TestModel_FailedLineKeepsEnvironment(t *testing.T) {
	m := testModel(t)

	m = submit(t, m, "x = 1")
	m = submit(t, m, "x = x + 1")

	if e, _ := m.env.Lookup("x"); e == nil || e.String() != "1" {
		t.Errorf("x bound to %v, want 1", e)
	}
}

func TestModel_Commands(t *testing.T) {
	m := testModel(t)

	m = submit(t, m, "r = 2")
	m = submit(t, m, "area = 3 * r^2")
	m = submit(t, m, "area")

	list := ansi.Strip(m.listVariables())
	for _, want := range []string{"area = 3 * r ^ 2", "→ 12", "uses r", "r = 2"} {
		if !strings.Contains(list, want) {
			t.Errorf("list %q does not contain %q", list, want)
		}
	}

	m = press(m, tea.KeyEsc)
	if m.mode != modeCtrl {
		t.Fatal("Esc should switch to command mode")
	}

	m = submit(t, m, "reset")
	if m.env.Len() != 0 {
		t.Errorf("reset left %d variables", m.env.Len())
	}

	if got := ansi.Strip(m.listVariables()); !strings.Contains(got, "no variables") {
		t.Errorf("got list %q after reset", got)
	}

	m = submit(t, m, "quit")
	if !m.quitting {
		t.Error("quit should stop the program")
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := testModel(t)
	m = submit(t, m, "radius = 1")

	m = typeText(m, "2 * rad")
	if len(m.matches) == 0 || m.matches[0].Str != "radius" {
		t.Fatalf("got matches %v, want radius first", m.matches)
	}

	m = press(m, tea.KeyTab)
	if got := m.input.Value(); got != "2 * radius" {
		t.Errorf("got input %q after Tab, want %q", got, "2 * radius")
	}
}

func TestModel_TabCycleAndCancel(t *testing.T) {
	m := testModel(t)

	m = typeText(m, "cos")
	if len(m.matches) < 2 {
		t.Fatalf("got matches %v, want several", m.matches)
	}

	m = press(m, tea.KeyTab)
	first := m.input.Value()

	m = press(m, tea.KeyTab)
	if m.input.Value() == first {
		t.Errorf("second Tab should select another candidate, still %q", first)
	}

	m = press(m, tea.KeyShiftTab)
	if m.input.Value() != first {
		t.Errorf("Shift-Tab should go back to %q, got %q", first, m.input.Value())
	}

	m = press(m, tea.KeyEsc)
	if m.input.Value() != "cos" || m.mode != modeEval {
		t.Errorf("Esc while cycling should restore %q in eval mode, got %q", "cos", m.input.Value())
	}
}

func TestModel_HistoryNavigation(t *testing.T) {
	m := testModel(t)

	m = submit(t, m, "1 + 1")
	m = press(m, tea.KeyEsc)
	m = submit(t, m, "help")
	m = press(m, tea.KeyEsc)
	m = submit(t, m, "2 + 2")

	m = press(m, tea.KeyUp)
	if m.input.Value() != "2 + 2" || m.mode != modeEval {
		t.Fatalf("Up: got %q in mode %d", m.input.Value(), m.mode)
	}

	m = press(m, tea.KeyUp)
	if m.input.Value() != "help" || m.mode != modeCtrl {
		t.Fatalf("Up: got %q in mode %d, want help in command mode", m.input.Value(), m.mode)
	}

	m = press(m, tea.KeyShiftUp)
	if m.input.Value() != "help" {
		t.Errorf("Shift-Up has no earlier command, got %q", m.input.Value())
	}

	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("Down past the newest entry should clear input, got %q", m.input.Value())
	}
}

func TestModel_AltHistoryRestores(t *testing.T) {
	m := testModel(t)

	m = press(m, tea.KeyEsc)
	m = submit(t, m, "list")
	m = press(m, tea.KeyEsc)

	m = typeText(m, "3 +")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	if m.mode != modeCtrl || m.input.Value() != "list" {
		t.Fatalf("Alt-Up: got %q in mode %d", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	if m.mode != modeEval || m.input.Value() != "3 +" {
		t.Errorf("Alt-Down past the end should restore the eval line, got %q in mode %d",
			m.input.Value(), m.mode)
	}
}

func TestModel_HintLine(t *testing.T) {
	m := testModel(t)

	if got := ansi.Strip(m.View()); !strings.Contains(got, "Type an expression") {
		t.Errorf("empty input view %q lacks the usage hint", got)
	}

	m = typeText(m, "gcd(4, ")
	if got := ansi.Strip(m.hintLine()); got != "gcd(a, b)" {
		t.Errorf("got hint %q, want the gcd signature", got)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m := press(testModel(t), tea.KeyCtrlD)
	if !m.quitting {
		t.Error("Ctrl+D on an empty line should quit")
	}

	m = typeText(testModel(t), "1")
	m = press(m, tea.KeyCtrlC)

	if m.quitting || m.input.Value() != "" {
		t.Error("Ctrl+C with input should only clear the line")
	}
}
