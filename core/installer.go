package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// CLIInstaller installs extensions through the editor's bundled CLI. The
// child inherits the parent's standard streams unless overridden.
type CLIInstaller struct {
	Logger Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
}

// InstallArgs builds the CLI arguments for installing extensions into p.
func InstallArgs(p *Profile, extensions []string) []string {
	args := p.LaunchArgs()
	for _, ext := range extensions {
		args = append(args, "--install-extension", ext)
	}
	return args
}

// Install blocks until the CLI exits. Any failure, including a non-zero
// exit status, is returned as *InstallError.
func (i *CLIInstaller) Install(ctx context.Context, cliPath string, p *Profile, extensions []string) error {
	cmd := i.buildCommand(ctx, cliPath, InstallArgs(p, extensions))
	i.Logger.Debugf("Running %s %v", cliPath, cmd.Args[1:])

	if err := cmd.Run(); err != nil {
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			return &InstallError{Extensions: extensions, Err: NonZeroExitError{ExitCode: exitErr.ExitCode()}}
		}
		return &InstallError{Extensions: extensions, Err: fmt.Errorf("run %q: %w", cliPath, err)}
	}
	return nil
}

func (i *CLIInstaller) buildCommand(ctx context.Context, cliPath string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, cliPath, args...)
	cmd.Stdin = orReader(i.Stdin, os.Stdin)
	cmd.Stdout = orWriter(i.Stdout, os.Stdout)
	cmd.Stderr = orWriter(i.Stderr, os.Stderr)
	// add custom env variables to the existing ones
	// instead of overwriting them
	cmd.Env = append(os.Environ(), i.Env...)
	return cmd
}

func orReader(r, fallback io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return fallback
}

func orWriter(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
