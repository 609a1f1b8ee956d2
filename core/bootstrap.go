package core

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Acquirer makes an editor build available and locates its companion CLI.
type Acquirer interface {
	DownloadAndUnzip(ctx context.Context, target Target) (string, error)
	ResolveCLIPath(executablePath string) string
}

// ExtensionInstaller installs extensions into an isolated profile.
type ExtensionInstaller interface {
	Install(ctx context.Context, cliPath string, p *Profile, extensions []string) error
}

// TestHarness runs the extension tests inside the editor and reports the
// resulting status.
type TestHarness interface {
	Run(ctx context.Context, opts HarnessOptions) (int, error)
}

// Bootstrapper drives one integration test run: acquire the editor, create
// an isolated profile, install extensions, run the harness, clean up.
type Bootstrapper struct {
	Logger    Logger
	Fs        afero.Fs
	Acquirer  Acquirer
	Installer ExtensionInstaller
	Harness   TestHarness

	Target     Target
	Extensions []string
	// LaunchArgs are appended after the profile arguments.
	LaunchArgs               []string
	ExtensionDevelopmentPath string
	ExtensionTestsPath       string
	Env                      []string
}

// Run executes the whole sequence and returns the process exit status:
// the harness status on success, ExitFatal on any failure. The profile,
// once created, is removed on every path.
func (b *Bootstrapper) Run(ctx context.Context) int {
	var profile *Profile
	defer func() {
		if profile == nil {
			return
		}
		if err := profile.Remove(); err != nil {
			b.Logger.Warningf("Could not remove temporary directory '%s': %v", profile.Dir(), err)
			return
		}
		b.Logger.Debugf("Removed temporary directory '%s'.", profile.Dir())
	}()

	code, err := b.run(ctx, &profile)
	if err != nil {
		b.report(err)
		return ExitFatal
	}
	return code
}

func (b *Bootstrapper) run(ctx context.Context, profile **Profile) (code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			code, err = ExitFatal, pkgerrors.Wrapf(ErrPanic, "%v", r)
		}
	}()

	b.Logger.Noticef("Downloading and installing VS Code %s...", b.Target)
	exe, err := b.Acquirer.DownloadAndUnzip(ctx, b.Target)
	if err != nil {
		return ExitFatal, pkgerrors.WithStack(WrapStepError("download VS Code", err))
	}

	b.Logger.Noticef("Resolving CLI path to VS Code...")
	cliPath := b.Acquirer.ResolveCLIPath(exe)

	prefix := filepath.Join(filepath.Dir(exe), ProfilePrefix)
	b.Logger.Noticef("Creating temporary directory with prefix '%s'...", prefix)
	p, err := NewProfile(b.Fs, filepath.Dir(exe), ProfilePrefix)
	if err != nil {
		return ExitFatal, pkgerrors.WithStack(err)
	}
	*profile = p
	b.Logger.Noticef("Created temporary directory '%s'.", p.Dir())

	b.Logger.Noticef("Installing extensions...")
	if err := b.Installer.Install(ctx, cliPath, p, b.extensions()); err != nil {
		if installErr, ok := errors.AsType[*InstallError](err); ok {
			b.Logger.Debugf("Installing %s failed: %v", strings.Join(installErr.Extensions, ", "), installErr.Err)
		}
		return ExitFatal, pkgerrors.WithStack(err)
	}

	b.Logger.Noticef("Running tests...")
	code, err = b.Harness.Run(ctx, HarnessOptions{
		ExecutablePath:           exe,
		LaunchArgs:               append(p.LaunchArgs(), b.LaunchArgs...),
		ExtensionDevelopmentPath: b.ExtensionDevelopmentPath,
		ExtensionTestsPath:       b.ExtensionTestsPath,
		Env:                      b.Env,
	})
	if err != nil {
		return ExitFatal, pkgerrors.WithStack(WrapStepError("run tests", err))
	}
	return code, nil
}

func (b *Bootstrapper) extensions() []string {
	if len(b.Extensions) == 0 {
		return []string{DefaultExtension}
	}
	return b.Extensions
}

func (b *Bootstrapper) report(err error) {
	b.Logger.Errorf("Failed to run tests")
	b.Logger.Errorf("Error name: %s", errorName(err))
	b.Logger.Errorf("Error message: %s", err.Error())
	b.Logger.Errorf("Error stack: %s", errorStack(err))
}
