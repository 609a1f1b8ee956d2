package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
	"golang.org/x/term"

	"github.com/netresearch/codetest/cli"
	"github.com/netresearch/codetest/core"
)

var version string
var build string

// GlobalOptions are accepted before any command
type GlobalOptions struct {
	LogLevel string `long:"log-level" env:"CODETEST_LOG_LEVEL" description:"Set log level (overrides config)"`
}

// buildLogger configures the standard logrus logger. Errors go to stderr,
// everything else to stdout.
func buildLogger(level string, stdout, stderr io.Writer) *core.LogrusAdapter {
	logrus.SetOutput(io.Discard)
	logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	logrus.AddHook(&writer.Hook{
		Writer:    stderr,
		LogLevels: []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel},
	})
	logrus.AddHook(&writer.Hook{
		Writer:    stdout,
		LogLevels: []logrus.Level{logrus.WarnLevel, logrus.InfoLevel, logrus.DebugLevel, logrus.TraceLevel},
	})

	forceColors := false
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) && os.Getenv("TERM") != "dumb" && os.Getenv("NO_COLOR") == "" {
		forceColors = true
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     forceColors,
		DisableQuote:    true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	return &core.LogrusAdapter{Logger: logrus.StandardLogger(), Caller: true}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes the selected command (run by default) and
// returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var global GlobalOptions
	preParser := flags.NewParser(&global, flags.IgnoreUnknown)
	_, _ = preParser.ParseArgs(args)

	logger := buildLogger(global.LogLevel, stdout, stderr)

	runCmd := &cli.RunCommand{Logger: logger, LogLevel: global.LogLevel, Context: ctx}
	parser := flags.NewNamedParser("codetest", flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true
	_, _ = parser.AddGroup("Application Options", "", &global)
	_, _ = parser.AddCommand(
		"run",
		"run the extension tests (default)",
		"Downloads VS Code, installs the required extensions into an isolated profile and runs the extension tests.",
		runCmd,
	)
	_, _ = parser.AddCommand(
		"validate",
		"validates the configuration",
		"",
		&cli.ValidateCommand{Logger: logger, LogLevel: global.LogLevel, Output: stdout},
	)

	_, err := parser.ParseArgs(args)
	if err == nil && parser.Active == nil {
		err = runCmd.Execute(nil)
	}
	return exitStatus(parser, logger, stdout, stderr, err)
}

func exitStatus(parser *flags.Parser, logger core.Logger, stdout, stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := core.AsNonZeroExitError(err); ok {
		return exitErr.ExitCode
	}

	var flagErr *flags.Error
	if errors.As(err, &flagErr) {
		if flagErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagErr.Message)
			return 0
		}
		fmt.Fprintln(stderr, flagErr.Message)
		parser.WriteHelp(stderr)
		fmt.Fprintf(stderr, "\nBuild information\n  commit: %s\n  date:%s\n", version, build)
		return core.ExitFatal
	}

	logger.Errorf("%v", err)
	return core.ExitFatal
}
