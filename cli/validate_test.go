package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netresearch/codetest/core"
	"github.com/netresearch/codetest/test"
)

func TestValidateExecuteValidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "codetest.ini")
	require.NoError(t, os.WriteFile(path, []byte(`
[tests]
tests-dir = /work/ext/out/test
launch-args = --disable-gpu
`), 0o644))

	var out bytes.Buffer
	cmd := ValidateCommand{ConfigOptions: ConfigOptions{ConfigFile: path}, Logger: test.NewTestLogger(), Output: &out}
	require.NoError(t, cmd.Execute(nil))

	var resolved Resolved
	require.NoError(t, json.Unmarshal(out.Bytes(), &resolved))
	assert.Equal(t, core.ResolveTarget(runtime.GOOS), resolved.Target)
	assert.Equal(t, []string{"--disable-gpu"}, resolved.LaunchArgs)
	assert.Equal(t, filepath.Clean("/work/ext"), resolved.ExtensionDevelopmentPath)
	assert.Equal(t, filepath.Clean("/work/ext/out/test/index"), resolved.ExtensionTestsPath)
	assert.Equal(t, []string{core.DefaultExtension}, resolved.Config.Tests.Extensions)
}

func TestValidateExecuteInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "codetest.ini")
	require.NoError(t, os.WriteFile(path, []byte("[tests\ntests-dir = x\n"), 0o644))

	logger := test.NewTestLogger()
	cmd := ValidateCommand{ConfigOptions: ConfigOptions{ConfigFile: path}, Logger: logger, Output: &bytes.Buffer{}}
	assert.Error(t, cmd.Execute(nil))
	assert.True(t, logger.HasError("ERROR"))
}
