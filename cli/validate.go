package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/gobs/args"

	"github.com/netresearch/codetest/core"
)

// ValidateCommand validates the configuration and prints what a run would use
type ValidateCommand struct {
	ConfigOptions

	Logger   core.Logger
	LogLevel string
	Output   io.Writer
}

// Resolved is the effective run setup printed by ValidateCommand.
type Resolved struct {
	Config                   *Config     `json:"config"`
	Target                   core.Target `json:"target"`
	LaunchArgs               []string    `json:"launch-args"`
	ExtensionDevelopmentPath string      `json:"extension-development-path"`
	ExtensionTestsPath       string      `json:"extension-tests-path"`
}

// Execute runs the validation command
func (c *ValidateCommand) Execute(_ []string) error {
	c.Logger.Debugf("Validating configuration ...")
	conf, err := c.Load(c.Logger)
	if err != nil {
		c.Logger.Errorf("ERROR")
		return err
	}
	if c.LogLevel == "" {
		if err := ApplyLogLevel(conf.Global.LogLevel); err != nil {
			return err
		}
	}

	devPath, testsPath, err := conf.Tests.Paths()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(Resolved{
		Config:                   conf,
		Target:                   conf.Target(runtime.GOOS),
		LaunchArgs:               args.GetArgs(conf.Tests.LaunchArgs),
		ExtensionDevelopmentPath: devPath,
		ExtensionTestsPath:       testsPath,
	}, "", "  ")
	if err != nil {
		return err
	}

	w := c.Output
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, string(out))

	c.Logger.Debugf("OK")
	return nil
}
