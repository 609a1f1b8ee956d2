package core

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var targetsYAML []byte

// Target identifies the editor build to acquire.
type Target struct {
	Version  string `yaml:"version" json:"version"`
	Platform string `yaml:"platform,omitempty" json:"platform,omitempty"`
}

func (t Target) String() string {
	if t.Platform == "" {
		return t.Version
	}
	return t.Version + " (" + t.Platform + ")"
}

var targets = mustLoadTargets(targetsYAML)

func mustLoadTargets(data []byte) map[string]Target {
	m, err := loadTargets(data)
	if err != nil {
		panic(err)
	}
	return m
}

func loadTargets(data []byte) (map[string]Target, error) {
	m := make(map[string]Target)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	if _, ok := m["default"]; !ok {
		return nil, fmt.Errorf("parse targets: missing default entry")
	}
	return m, nil
}

// ResolveTarget returns the pinned build for goos, falling back to the
// latest stable release with no platform override.
func ResolveTarget(goos string) Target {
	if t, ok := targets[goos]; ok {
		return t
	}
	return targets["default"]
}

// DefaultPlatform maps an OS/architecture pair to the update service's
// archive identifier.
func DefaultPlatform(goos, goarch string) (string, error) {
	switch goos {
	case "windows":
		if goarch == "386" {
			return "win32-archive", nil
		}
		if goarch == "arm64" {
			return "win32-arm64-archive", nil
		}
		return "win32-x64-archive", nil
	case "darwin":
		if goarch == "arm64" {
			return "darwin-arm64", nil
		}
		return "darwin", nil
	case "linux":
		switch goarch {
		case "amd64":
			return "linux-x64", nil
		case "arm64":
			return "linux-arm64", nil
		case "arm":
			return "linux-armhf", nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
}

func isWindowsPlatform(platform string) bool {
	return strings.HasPrefix(platform, "win32")
}

func isDarwinPlatform(platform string) bool {
	return strings.HasPrefix(platform, "darwin")
}

// ExecutablePath returns the editor executable inside an unpacked build.
func ExecutablePath(installDir, platform string) string {
	switch {
	case isWindowsPlatform(platform):
		return filepath.Join(installDir, "Code.exe")
	case isDarwinPlatform(platform):
		return filepath.Join(installDir, "Visual Studio Code.app", "Contents", "MacOS", "Electron")
	default:
		return filepath.Join(installDir, linuxArchiveRoot(platform), "code")
	}
}

// linuxArchiveRoot is the top-level directory of the Linux tarballs.
func linuxArchiveRoot(platform string) string {
	switch platform {
	case "linux-arm64":
		return "VSCode-linux-arm64"
	case "linux-armhf":
		return "VSCode-linux-armhf"
	default:
		return "VSCode-linux-x64"
	}
}

// CLIPath derives the bundled command-line tool from the executable path.
// The layout is recognized from the path itself.
func CLIPath(executablePath string) string {
	switch {
	case strings.EqualFold(filepath.Ext(executablePath), ".exe"):
		return filepath.Join(filepath.Dir(executablePath), "bin", "code.cmd")
	case strings.Contains(filepath.ToSlash(executablePath), ".app/Contents/MacOS/"):
		return filepath.Join(executablePath, "..", "..", "Resources", "app", "bin", "code")
	default:
		return filepath.Join(filepath.Dir(executablePath), "bin", "code")
	}
}
