package cmd

import (
	"context"

	"github.com/BradenEverson/chalk/cli/cmd/repl"
	"github.com/BradenEverson/chalk/lang"
	"github.com/BradenEverson/chalk/log"
)

// Repl starts an interactive session.
type Repl struct{}

// Run executes the repl command.
func (*Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	return repl.Run(ctx, lang.NewEnvironment(lang.WithLogger(logger)), cacheDir(ctx), logger)
}
