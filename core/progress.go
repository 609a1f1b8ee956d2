package core

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const progressBarWidth = 20

// downloadProgress counts archive bytes. On a terminal it redraws a bar in
// place; otherwise it logs every quarter of the total.
type downloadProgress struct {
	mu         sync.Mutex
	logger     Logger
	writer     io.Writer
	isTerminal bool
	total      int64
	written    int64
	lastMark   int64
}

func newDownloadProgress(logger Logger, w io.Writer, total int64) *downloadProgress {
	isTerminal := false
	if f, ok := w.(*os.File); ok {
		isTerminal = term.IsTerminal(int(f.Fd()))
	}
	return &downloadProgress{
		logger:     logger,
		writer:     w,
		isTerminal: isTerminal,
		total:      total,
	}
}

func (p *downloadProgress) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.written += int64(len(b))
	if p.total <= 0 {
		return len(b), nil
	}

	percent := p.written * 100 / p.total
	if p.isTerminal {
		fmt.Fprintf(p.writer, "\rDownloading %s %3d%%", renderProgressBar(percent), percent)
		return len(b), nil
	}

	if mark := percent / 25; mark > p.lastMark {
		p.lastMark = mark
		p.logger.Noticef("Downloaded %d%% (%d/%d bytes)", percent, p.written, p.total)
	}
	return len(b), nil
}

// Finish terminates the in-place bar.
func (p *downloadProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isTerminal {
		fmt.Fprintln(p.writer)
	}
}

func renderProgressBar(percent int64) string {
	filled := int(percent * progressBarWidth / 100)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled) + "]"
}
