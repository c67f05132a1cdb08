// Package cli contains the command line interface for chalk.
//
// # Usage
//
// With arguments, chalk evaluates them as a single line. Without arguments
// it reads script files or stdin, or starts the interactive REPL when stdin
// is a terminal:
//
//	chalk '2 ^ 10'
//	chalk --file defs.chalk --echo
//	chalk parse --output yaml 'gcd(12, 18) + 1'
//	chalk repl
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration directory
// and then from each directory listed in CHALK_CONFIG_PATH, with later files
// taking precedence. Every flag may also be set through an environment
// variable such as CHALK_LOG_LEVEL. Command-line flags override both.
//
// The init command writes the current flag values to the user configuration
// file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o chalk .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/chalk/pprof)
package cli
