package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/codetest/test"
)

// writeScript creates an executable shell script in a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "code")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestInstallArgs(t *testing.T) {
	t.Parallel()

	p, err := NewProfile(afero.NewMemMapFs(), "/opt", ProfilePrefix)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--user-data-dir", p.UserDataDir(),
		"--extensions-dir", p.ExtensionsDir(),
		"--install-extension", "james-yu.latex-workshop",
		"--install-extension", "foo.bar",
	}, InstallArgs(p, []string{"james-yu.latex-workshop", "foo.bar"}))
}

func TestCLIInstallerSuccess(t *testing.T) {
	t.Parallel()

	cli := writeScript(t, `for a in "$@"; do echo "$a"; done`)
	p, err := NewProfile(afero.NewOsFs(), t.TempDir(), ProfilePrefix)
	require.NoError(t, err)

	var stdout bytes.Buffer
	i := &CLIInstaller{Logger: test.NewTestLogger(), Stdout: &stdout, Stderr: &stdout}
	require.NoError(t, i.Install(context.Background(), cli, p, []string{DefaultExtension}))

	assert.Equal(t, InstallArgs(p, []string{DefaultExtension}), strings.Fields(stdout.String()))
}

func TestCLIInstallerNonZeroExit(t *testing.T) {
	t.Parallel()

	cli := writeScript(t, "exit 2")
	p, err := NewProfile(afero.NewOsFs(), t.TempDir(), ProfilePrefix)
	require.NoError(t, err)

	i := &CLIInstaller{Logger: test.NewTestLogger(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	err = i.Install(context.Background(), cli, p, []string{DefaultExtension})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInstallExtensions)
	assert.Equal(t, "Could not install extensions.", err.Error())
	exitErr, ok := AsNonZeroExitError(err)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.ExitCode)
}

func TestCLIInstallerMissingBinary(t *testing.T) {
	t.Parallel()

	p, err := NewProfile(afero.NewOsFs(), t.TempDir(), ProfilePrefix)
	require.NoError(t, err)

	i := &CLIInstaller{Logger: test.NewTestLogger()}
	err = i.Install(context.Background(), filepath.Join(t.TempDir(), "missing"), p, nil)

	assert.ErrorIs(t, err, ErrInstallExtensions)
	_, ok := AsNonZeroExitError(err)
	assert.False(t, ok)
}

func TestCLIInstallerEnv(t *testing.T) {
	t.Parallel()

	cli := writeScript(t, `echo "$CODETEST_MARKER"`)
	p, err := NewProfile(afero.NewOsFs(), t.TempDir(), ProfilePrefix)
	require.NoError(t, err)

	var stdout bytes.Buffer
	i := &CLIInstaller{Logger: test.NewTestLogger(), Stdout: &stdout, Env: []string{"CODETEST_MARKER=present"}}
	require.NoError(t, i.Install(context.Background(), cli, p, nil))
	assert.Equal(t, "present\n", stdout.String())
}
