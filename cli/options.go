package cli

import (
	"github.com/netresearch/codetest/core"
)

// ConfigOptions are the flags shared by commands that resolve a Config.
// Flags win over the configuration file.
type ConfigOptions struct {
	ConfigFile string   `long:"config" env:"CODETEST_CONFIG" description:"optional INI configuration file"`
	TestsDir   string   `long:"tests-dir" env:"CODETEST_TESTS_DIR" description:"directory holding the compiled test entry module (default: out/test)"`
	Extensions []string `long:"extension" short:"e" description:"extension to install into the test profile (repeatable)"`
	Version    string   `long:"vscode-version" env:"CODETEST_VSCODE_VERSION" description:"VS Code version to download (default: pinned per OS)"`
	Platform   string   `long:"vscode-platform" env:"CODETEST_VSCODE_PLATFORM" description:"VS Code archive platform (default: pinned per OS)"`
	CachePath  string   `long:"cache-path" env:"CODETEST_CACHE_PATH" description:"directory for downloaded VS Code builds (default: .vscode-test)"`
	LaunchArgs string   `long:"launch-args" env:"CODETEST_LAUNCH_ARGS" description:"extra VS Code arguments, shell quoted"`
}

// Load builds and validates the effective configuration.
func (o *ConfigOptions) Load(logger core.Logger) (*Config, error) {
	conf := NewConfig()
	if o.ConfigFile != "" {
		var err error
		if conf, err = BuildFromFile(o.ConfigFile, logger); err != nil {
			return nil, err
		}
	}
	o.apply(conf)

	if err := ValidateConfig(conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func (o *ConfigOptions) apply(conf *Config) {
	if o.TestsDir != "" {
		conf.Tests.TestsDir = o.TestsDir
	}
	if len(o.Extensions) > 0 {
		conf.Tests.Extensions = splitList(o.Extensions)
	}
	if o.Version != "" {
		conf.VSCode.Version = o.Version
	}
	if o.Platform != "" {
		conf.VSCode.Platform = o.Platform
	}
	if o.CachePath != "" {
		conf.VSCode.CachePath = o.CachePath
	}
	if o.LaunchArgs != "" {
		conf.Tests.LaunchArgs = o.LaunchArgs
	}
}
