package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/armon/circbuf"
)

// defaultTailSize bounds how much harness stderr is kept for the failure log
const defaultTailSize = 4 * 1024

// HarnessOptions describes one test-harness invocation.
type HarnessOptions struct {
	ExecutablePath           string
	LaunchArgs               []string
	ExtensionDevelopmentPath string
	ExtensionTestsPath       string
	Env                      []string
}

// Args returns the editor command line: launch args first, then the
// development and tests paths.
func (o HarnessOptions) Args() []string {
	args := slices.Clone(o.LaunchArgs)
	return append(args,
		"--extensionDevelopmentPath="+o.ExtensionDevelopmentPath,
		"--extensionTestsPath="+o.ExtensionTestsPath,
	)
}

// ProcessHarness launches the editor with the extension under development
// and reports the editor's exit status.
type ProcessHarness struct {
	Logger   Logger
	Stdout   io.Writer
	Stderr   io.Writer
	TailSize int64
}

// Run returns the editor's exit code, zero or not. An error means the
// editor could not be started or did not exit normally.
func (h *ProcessHarness) Run(ctx context.Context, opts HarnessOptions) (int, error) {
	size := h.TailSize
	if size <= 0 {
		size = defaultTailSize
	}
	tail, err := circbuf.NewBuffer(size)
	if err != nil {
		return ExitFatal, fmt.Errorf("allocate stderr buffer: %w", err)
	}

	cmd := exec.CommandContext(ctx, opts.ExecutablePath, opts.Args()...)
	cmd.Stdout = orWriter(h.Stdout, os.Stdout)
	cmd.Stderr = io.MultiWriter(orWriter(h.Stderr, os.Stderr), tail)
	cmd.Env = append(os.Environ(), opts.Env...)

	h.Logger.Debugf("Launching %s %s", opts.ExecutablePath, strings.Join(cmd.Args[1:], " "))
	if err := cmd.Start(); err != nil {
		return ExitFatal, fmt.Errorf("%w: %w", ErrHarnessLaunch, err)
	}

	err = cmd.Wait()
	if err == nil {
		h.Logger.Noticef("Exit code:   0")
		h.Logger.Noticef("Done")
		return 0, nil
	}

	exitErr, ok := errors.AsType[*exec.ExitError](err)
	if !ok {
		return ExitFatal, fmt.Errorf("wait for harness: %w", err)
	}
	code := exitErr.ExitCode()
	if code < 0 {
		h.Logger.Noticef("Exit code:   %s", exitErr.ProcessState)
		return ExitFatal, fmt.Errorf("%w: %s; stderr tail: %q", ErrHarnessSignaled, exitErr.ProcessState, tail.String())
	}

	h.Logger.Noticef("Exit code:   %d", code)
	h.Logger.Noticef("Done")
	return code, nil
}
