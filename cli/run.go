package cli

import (
	"context"

	"github.com/netresearch/codetest/core"
)

// RunCommand downloads VS Code, installs the configured extensions into an
// isolated profile and runs the extension tests.
type RunCommand struct {
	ConfigOptions

	Logger core.Logger
	// LogLevel is the level given on the command line; when set it wins
	// over the configuration file.
	LogLevel string
	Context  context.Context //nolint:containedctx // go-flags Execute has no context parameter
}

// Execute runs the tests. A non-zero test status is returned as
// core.NonZeroExitError so the caller can exit with it.
func (c *RunCommand) Execute(_ []string) error {
	conf, err := c.Load(c.Logger)
	if err != nil {
		return err
	}
	if c.LogLevel == "" {
		if err := ApplyLogLevel(conf.Global.LogLevel); err != nil {
			return err
		}
	}

	b, err := conf.NewBootstrapper(c.Logger)
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if code := b.Run(ctx); code != 0 {
		return core.NonZeroExitError{ExitCode: code}
	}
	return nil
}
