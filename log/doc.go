// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("line evaluated", slog.String("result", "3"))
//	logger.Error("evaluation failed", slog.Any("error", err))
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// A derived logger with different settings is made with [Logger.Wrap].
// The package-level logger used by [Info] and friends writes to
// [os.Stderr] and is reconfigured with [Config].
//
// # Adding Attributes
//
// Attributes added with [Logger.With] are included in every subsequent
// message, and [Logger.WithGroup] nests later attributes under a name:
//
//	logger = logger.With(slog.String("component", "repl"))
//	logger.Info("history loaded") // includes component=repl
//
// # Context-Aware Logging
//
// Each level has both a context-aware and context-unaware variant.
// Context-unaware variants use [DefaultContextProvider], which returns
// [context.TODO] by default.
//
// # Supported Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Messages below the configured level
// are discarded.
//
// # Time Formatting
//
// Time formatting is configurable using [WithTimeLayout]. You can
// specify any named layout supported by the [time] package (such as
// "RFC3339" or "Kitchen") or provide a custom layout string. The layout
// "none" omits timestamps.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default) and
// [FormatJSON]. With [WithPretty] enabled (the default), text output is
// colored by value kind and JSON output is indented. Colors are only
// emitted when the output is a terminal.
package log
