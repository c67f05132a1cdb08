package cli

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestLoadConfig_Flatten(t *testing.T) {
	const doc = `
log:
  level: debug
  pretty: false
  time_layout: Kitchen
eval:
  output: json
count: 3
ratio: 0.25
tags: [a, 2]
`

	r, err := loadConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	want := config{
		"log-level":       "debug",
		"log-pretty":      false,
		"log-time-layout": "Kitchen",
		"eval-output":     "json",
		"count":           "3",
		"ratio":           "0.25",
		"tags":            []any{"a", "2"},
	}

	if got := r.(config); !reflect.DeepEqual(got, want) {
		t.Errorf("got config %#v, want %#v", got, want)
	}
}

func TestLoadConfig_Empty(t *testing.T) {
	for _, doc := range []string{"", "# nothing here\n"} {
		r, err := loadConfig(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("loadConfig(%q): %v", doc, err)
		}

		if n := len(r.(config)); n != 0 {
			t.Errorf("loadConfig(%q) has %d keys, want 0", doc, n)
		}
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	_, err := loadConfig(strings.NewReader("log: [level: debug\n"))
	if !errors.Is(err, ErrLoadConfig) {
		t.Errorf("got error %v, want ErrLoadConfig", err)
	}
}

type resolverTestCLI struct {
	Level  string   `default:"info"`
	Caller bool     `negatable:""`
	Count  int      `default:"1"`
	Tags   []string `sep:","`

	Run struct {
		Output string `default:"text" short:"o"`
	} `cmd:"" default:"1"`
	Show struct {
		Output string `default:"tree"`
	} `cmd:""`
}

func parseWithConfig(t *testing.T, doc string, args ...string) resolverTestCLI {
	t.Helper()

	path := filepath.Join(t.TempDir(), baseConfig)
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli resolverTestCLI

	parser, err := kong.New(&cli, kong.Configuration(loadConfig, path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatal(err)
	}

	return cli
}

func TestConfigResolver(t *testing.T) {
	const doc = `
level: warn
caller: true
count: 7
tags: [x, y]
run:
  output: json
output: yaml
`

	cli := parseWithConfig(t, doc)

	if cli.Level != "warn" || !cli.Caller || cli.Count != 7 {
		t.Errorf("got level=%q caller=%v count=%d", cli.Level, cli.Caller, cli.Count)
	}

	if !reflect.DeepEqual(cli.Tags, []string{"x", "y"}) {
		t.Errorf("got tags %v", cli.Tags)
	}

	if cli.Run.Output != "json" {
		t.Errorf("command-qualified key: got output %q, want json", cli.Run.Output)
	}

	cli = parseWithConfig(t, doc, "show")
	if cli.Show.Output != "yaml" {
		t.Errorf("unqualified key: got output %q, want yaml", cli.Show.Output)
	}
}

func TestConfigResolver_FlagsOverride(t *testing.T) {
	cli := parseWithConfig(t, "level: warn\ncaller: true\nrun:\n  output: json\n",
		"--level=error", "--no-caller", "run", "-o", "csv")

	if cli.Level != "error" || cli.Caller || cli.Run.Output != "csv" {
		t.Errorf("got level=%q caller=%v output=%q", cli.Level, cli.Caller, cli.Run.Output)
	}
}

func TestConfigResolver_UnderscoreKeys(t *testing.T) {
	var cli struct {
		TimeLayout string `default:"RFC3339"`
	}

	path := filepath.Join(t.TempDir(), baseConfig)
	if err := os.WriteFile(path, []byte("time_layout: Kitchen\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	parser, err := kong.New(&cli, kong.Configuration(loadConfig, path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(nil); err != nil {
		t.Fatal(err)
	}

	if cli.TimeLayout != "Kitchen" {
		t.Errorf("got time layout %q, want Kitchen", cli.TimeLayout)
	}
}
