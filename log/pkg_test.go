package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer
	defaultLog = Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
		msg   string
	}{
		{"Trace", Trace, `"level":"TRACE"`, "trace message"},
		{"Debug", Debug, "DEBUG", "debug message"},
		{"Info", Info, "INFO", "info message"},
		{"Warn", Warn, "WARN", "warn message"},
		{"Error", Error, "ERROR", "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg, slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, tt.msg) {
				t.Errorf(
					"expected output to contain message %q, got: %s",
					tt.msg,
					output,
				)
			}
			if !strings.Contains(output, tt.level) {
				t.Errorf(
					"expected output to contain level %q, got: %s",
					tt.level,
					output,
				)
			}
			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected output to contain attribute, got: %s", output)
			}
		})
	}
}

func TestPackage_Config_KeepsCurrentSettings(t *testing.T) {
	original := Default()
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer
	defaultLog = Make(&buf, WithFormat(FormatJSON), WithPretty(false))

	Config(WithLevel(LevelWarn))

	if got := Default().Format(); got != FormatJSON {
		t.Errorf("got format %v, want %v", got, FormatJSON)
	}

	if got := Default().Level(); got != LevelWarn {
		t.Errorf("got level %v, want %v", got, LevelWarn)
	}

	Info("dropped")
	Warn("kept")

	if out := buf.String(); strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("unexpected output: %s", out)
	}
}
