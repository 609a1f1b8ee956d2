package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	DefaultUpdateURL = "https://update.code.visualstudio.com"
	DefaultCachePath = ".vscode-test"
)

// Downloader fetches editor builds from the update service and unpacks
// them into a per-version cache directory. Downloads are never retried.
type Downloader struct {
	Fs        afero.Fs
	Client    *http.Client
	Logger    Logger
	CachePath string
	UpdateURL string
	// Timeout bounds the whole acquisition; zero waits indefinitely.
	Timeout time.Duration
	// Output receives the progress bar; defaults to stdout.
	Output io.Writer

	GOOS   string
	GOARCH string
}

// NewDownloader returns a Downloader for the running machine.
func NewDownloader(fs afero.Fs, logger Logger, cachePath string) *Downloader {
	return &Downloader{
		Fs:        fs,
		Client:    http.DefaultClient,
		Logger:    logger,
		CachePath: cachePath,
		UpdateURL: DefaultUpdateURL,
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
	}
}

// DownloadAndUnzip makes the requested build available locally and returns
// the path of its executable.
func (d *Downloader) DownloadAndUnzip(ctx context.Context, target Target) (string, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	platform := target.Platform
	if platform == "" {
		var err error
		if platform, err = DefaultPlatform(d.GOOS, d.GOARCH); err != nil {
			return "", err
		}
	}

	version := target.Version
	if version == "" || version == VersionStable {
		var err error
		if version, err = d.resolveStable(ctx, platform); err != nil {
			return "", err
		}
	}

	installDir := d.installDir(platform, version)
	exe := ExecutablePath(installDir, platform)
	if found, _ := afero.Exists(d.Fs, exe); found {
		d.Logger.Noticef("Found existing install in %s. Skipping download", installDir)
		return exe, nil
	}

	d.Logger.Noticef("Downloading VS Code %s (%s) into %s", version, platform, installDir)
	if err := d.download(ctx, platform, version, installDir); err != nil {
		_ = d.Fs.RemoveAll(installDir)
		return "", err
	}

	if found, _ := afero.Exists(d.Fs, exe); !found {
		return "", fmt.Errorf("%w: executable %s missing after unpack", ErrUnpackFailed, exe)
	}
	d.Logger.Noticef("Downloaded VS Code %s into %s", version, installDir)
	return exe, nil
}

// ResolveCLIPath returns the CLI bundled next to executablePath.
func (d *Downloader) ResolveCLIPath(executablePath string) string {
	return CLIPath(executablePath)
}

func (d *Downloader) installDir(platform, version string) string {
	return filepath.Join(d.cachePath(), fmt.Sprintf("vscode-%s-%s", platform, version))
}

func (d *Downloader) cachePath() string {
	if d.CachePath == "" {
		return DefaultCachePath
	}
	return d.CachePath
}

func (d *Downloader) updateURL() string {
	if d.UpdateURL == "" {
		return DefaultUpdateURL
	}
	return strings.TrimRight(d.UpdateURL, "/")
}

func (d *Downloader) client() *http.Client {
	if d.Client == nil {
		return http.DefaultClient
	}
	return d.Client
}

// resolveStable asks the update service for the current stable version.
// When the service is unreachable the newest cached build is used instead.
func (d *Downloader) resolveStable(ctx context.Context, platform string) (string, error) {
	version, err := d.fetchLatestStable(ctx)
	if err == nil {
		return version, nil
	}
	if cached, ok := d.latestCached(platform); ok {
		d.Logger.Warningf("Could not resolve latest stable release (%v); using cached %s", err, cached)
		return cached, nil
	}
	return "", err
}

func (d *Downloader) fetchLatestStable(ctx context.Context) (string, error) {
	url := d.updateURL() + "/api/releases/stable"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReleaseLookup, err)
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReleaseLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %s", ErrReleaseLookup, url, resp.Status)
	}

	var releases []string
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return "", fmt.Errorf("%w: decode %s: %w", ErrReleaseLookup, url, err)
	}
	if len(releases) == 0 {
		return "", fmt.Errorf("%w: %s returned no releases", ErrReleaseLookup, url)
	}
	return releases[0], nil
}

func (d *Downloader) latestCached(platform string) (string, bool) {
	entries, err := afero.ReadDir(d.Fs, d.cachePath())
	if err != nil {
		return "", false
	}

	prefix := "vscode-" + platform + "-"
	best := ""
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		version := strings.TrimPrefix(e.Name(), prefix)
		exe := ExecutablePath(filepath.Join(d.cachePath(), e.Name()), platform)
		if found, _ := afero.Exists(d.Fs, exe); !found {
			continue
		}
		if best == "" || compareVersions(version, best) > 0 {
			best = version
		}
	}
	return best, best != ""
}

func (d *Downloader) download(ctx context.Context, platform, version, installDir string) error {
	url := fmt.Sprintf("%s/%s/%s/stable", d.updateURL(), version, platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrDownloadFailed, url, resp.Status)
	}

	if err := d.Fs.MkdirAll(d.cachePath(), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	tmp, err := afero.TempFile(d.Fs, d.cachePath(), "download-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	archive := tmp.Name()
	defer d.Fs.Remove(archive)

	progress := newDownloadProgress(d.Logger, d.output(), resp.ContentLength)
	_, err = io.Copy(io.MultiWriter(tmp, progress), resp.Body)
	progress.Finish()
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	extract := extractZip
	if strings.HasPrefix(platform, "linux") {
		extract = extractTarGz
	}
	if err := extract(d.Fs, archive, installDir); err != nil {
		return fmt.Errorf("%w: %w", ErrUnpackFailed, err)
	}
	return nil
}

func (d *Downloader) output() io.Writer {
	if d.Output == nil {
		return os.Stdout
	}
	return d.Output
}

// compareVersions orders dotted versions numerically, segment by segment.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		xn, xerr := strconv.Atoi(x)
		yn, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil:
			if xn != yn {
				if xn < yn {
					return -1
				}
				return 1
			}
		case x != y:
			return strings.Compare(x, y)
		}
	}
	return 0
}
