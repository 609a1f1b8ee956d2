package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	defaults "github.com/creasty/defaults"
	"github.com/gobs/args"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	ini "gopkg.in/ini.v1"

	"github.com/netresearch/codetest/core"
)

const (
	sectionGlobal = "global"
	sectionVSCode = "vscode"
	sectionTests  = "tests"
)

// Config contains the configuration
type Config struct {
	Global struct {
		LogLevel string `mapstructure:"log-level" json:"log-level,omitempty" validate:"omitempty,loglevel"`
	} `json:"global"`
	VSCode VSCodeConfig `json:"vscode"`
	Tests  TestsConfig  `json:"tests"`
}

// VSCodeConfig selects and caches the editor build. Empty version and
// platform defer to the pinned per-OS table.
type VSCodeConfig struct {
	Version         string        `mapstructure:"version" json:"version,omitempty"`
	Platform        string        `mapstructure:"platform" json:"platform,omitempty"`
	CachePath       string        `mapstructure:"cache-path" json:"cache-path" default:".vscode-test" validate:"required"`
	UpdateURL       string        `mapstructure:"update-url" json:"update-url" default:"https://update.code.visualstudio.com" validate:"required,url"`
	DownloadTimeout time.Duration `mapstructure:"download-timeout" json:"download-timeout" validate:"gte=0"`
}

// TestsConfig describes the extension under test.
type TestsConfig struct {
	// TestsDir holds the compiled test entry module; the extension root is
	// two levels above it.
	TestsDir   string   `mapstructure:"tests-dir" json:"tests-dir" default:"out/test" validate:"required"`
	Extensions []string `mapstructure:"extensions" json:"extensions" default:"[\"james-yu.latex-workshop\"]" validate:"dive,extensionid"`
	LaunchArgs string   `mapstructure:"launch-args" json:"launch-args,omitempty"`
	Env        []string `mapstructure:"env" json:"env,omitempty" validate:"dive,envpair"`
}

func NewConfig() *Config {
	c := &Config{}
	_ = defaults.Set(c)
	return c
}

// BuildFromFile reads an INI configuration file
func BuildFromFile(filename string, logger core.Logger) (*Config, error) {
	c, err := build(filename)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	logger.Debugf("loaded config file %s", filename)
	return c, nil
}

// BuildFromString reads configuration from INI text
func BuildFromString(config string) (*Config, error) {
	return build([]byte(config))
}

func build(source any) (*Config, error) {
	c := NewConfig()
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true, InsensitiveKeys: true}, source)
	if err != nil {
		return nil, err
	}
	if err := parseIni(cfg, c); err != nil {
		return nil, err
	}
	return c, nil
}

func parseIni(cfg *ini.File, c *Config) error {
	sections := map[string]any{
		sectionGlobal: &c.Global,
		sectionVSCode: &c.VSCode,
		sectionTests:  &c.Tests,
	}
	for name, out := range sections {
		sec, err := cfg.GetSection(name)
		if err != nil {
			continue
		}
		if err := decodeSection(sec, out); err != nil {
			return fmt.Errorf("section [%s]: %w", name, err)
		}
	}
	c.Tests.Extensions = splitList(c.Tests.Extensions)
	return nil
}

func decodeSection(sec *ini.Section, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(sectionToMap(sec))
}

func sectionToMap(section *ini.Section) map[string]any {
	m := make(map[string]any)
	for _, key := range section.Keys() {
		vals := key.ValueWithShadows()
		if len(vals) > 1 {
			cp := make([]string, len(vals))
			copy(cp, vals)
			m[key.Name()] = cp
			continue
		}
		m[key.Name()] = key.Value()
	}
	return m
}

// splitList flattens comma separated entries and drops blanks
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Target resolves the editor build for goos, applying explicit overrides.
func (c *Config) Target(goos string) core.Target {
	t := core.ResolveTarget(goos)
	if c.VSCode.Version != "" {
		t.Version = c.VSCode.Version
	}
	if c.VSCode.Platform != "" {
		t.Platform = c.VSCode.Platform
	}
	return t
}

// Paths returns the extension development path and the tests entry path.
func (t TestsConfig) Paths() (devPath, testsPath string, err error) {
	dir, err := filepath.Abs(t.TestsDir)
	if err != nil {
		return "", "", fmt.Errorf("resolve tests dir: %w", err)
	}
	return filepath.Join(dir, "..", ".."), filepath.Join(dir, "index"), nil
}

// NewBootstrapper wires the configured collaborators around the host
// filesystem.
func (c *Config) NewBootstrapper(logger core.Logger) (*core.Bootstrapper, error) {
	devPath, testsPath, err := c.Tests.Paths()
	if err != nil {
		return nil, err
	}
	cachePath, err := filepath.Abs(c.VSCode.CachePath)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}

	fs := afero.NewOsFs()
	downloader := core.NewDownloader(fs, logger, cachePath)
	downloader.UpdateURL = c.VSCode.UpdateURL
	downloader.Timeout = c.VSCode.DownloadTimeout
	downloader.Output = os.Stdout

	return &core.Bootstrapper{
		Logger:                   logger,
		Fs:                       fs,
		Acquirer:                 downloader,
		Installer:                &core.CLIInstaller{Logger: logger, Env: c.Tests.Env},
		Harness:                  &core.ProcessHarness{Logger: logger},
		Target:                   c.Target(runtime.GOOS),
		Extensions:               c.Tests.Extensions,
		LaunchArgs:               args.GetArgs(c.Tests.LaunchArgs),
		ExtensionDevelopmentPath: devPath,
		ExtensionTestsPath:       testsPath,
		Env:                      c.Tests.Env,
	}, nil
}
