package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/BradenEverson/chalk/cli/cmd"
	"github.com/BradenEverson/chalk/pkg"
)

// ErrLoadConfig is returned when a configuration file cannot be decoded.
var ErrLoadConfig = cmd.NewError("load configuration")

// CLI is the top-level command-line interface for chalk.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `env:"-" help:"Print version and exit" short:"V"`

	Init  cmd.Init  `cmd:"" help:"Write current flag values to the configuration file"`
	Parse cmd.Parse `cmd:"" help:"Print the syntax tree of an expression"`
	Repl  cmd.Repl  `cmd:"" help:"Start an interactive session"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate an expression, script files, or stdin"`
}

// Option customizes a single invocation of [Run].
type Option func(*runConfig)

type runConfig struct {
	stdout, stderr io.Writer
}

// WithWriters redirects command output and kong's usage and error messages.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(c *runConfig) { c.stdout, c.stderr = stdout, stderr }
}

// Run executes the chalk CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return RunWith(ctx, exit, nil, args...)
}

// RunWith is like [Run] but applies the given options first.
func RunWith(
	ctx context.Context,
	exit func(code int),
	opts []Option,
	args ...string,
) error {
	var cli CLI

	rc := runConfig{stdout: os.Stdout, stderr: os.Stderr}

	for _, opt := range opts {
		opt(&rc)
	}

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier: configPath(baseConfig),
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format regardless of flag position.
	cli.Log.scan(args)

	options := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(strings.TrimSuffix(pkg.EnvPrefix(), "_")),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadConfig, configFiles()...),
		kong.Writers(rc.stdout, rc.stderr),
		vars,
	}

	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
