package core

import (
	"errors"
	"fmt"
)

var (
	// Acquisition errors
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrReleaseLookup       = errors.New("failed to resolve release version")
	ErrDownloadFailed      = errors.New("failed to download VS Code")
	ErrUnpackFailed        = errors.New("failed to unpack VS Code archive")
	ErrUnsafeArchivePath   = errors.New("archive entry escapes destination")

	// Installation errors
	ErrInstallExtensions = errors.New("Could not install extensions.")

	// Harness errors
	ErrHarnessLaunch   = errors.New("failed to launch test harness")
	ErrHarnessSignaled = errors.New("test harness terminated by signal")

	// Bootstrap errors
	ErrProfileCreate = errors.New("failed to create isolated profile")
	ErrPanic         = errors.New("unexpected panic")
)

// NonZeroExitError represents a child process exiting with a non-zero code
type NonZeroExitError struct {
	ExitCode int
}

func (e NonZeroExitError) Error() string {
	return fmt.Sprintf("non-zero exit code: %d", e.ExitCode)
}

// AsNonZeroExitError finds a NonZeroExitError in err's chain
func AsNonZeroExitError(err error) (NonZeroExitError, bool) {
	return errors.AsType[NonZeroExitError](err)
}

// InstallError reports a failed extension installation. Its message is
// fixed; the underlying cause is reachable through Unwrap.
type InstallError struct {
	Extensions []string
	Err        error
}

func (e *InstallError) Error() string {
	return ErrInstallExtensions.Error()
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

func (e *InstallError) Is(target error) bool {
	return target == ErrInstallExtensions
}

// WrapStepError annotates err with the bootstrap step that produced it
func WrapStepError(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", step, err)
}
