// Package cmd implements the chalk subcommands: eval, parse, repl, and init.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file written by [Init].
	ConfigIdentifier = "config"
)
