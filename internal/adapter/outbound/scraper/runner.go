// Package scraper runs the external scraper process that refreshes the
// dataset flat file. The scraping logic itself lives outside this service;
// BookGate only launches it and waits.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// ErrNotConfigured is returned when no scraper command is configured.
var ErrNotConfigured = errors.New("scraper command not configured")

// ErrAlreadyRunning is returned when a trigger arrives while a run is in
// progress. One scraper writes one dataset file; concurrent runs would race.
var ErrAlreadyRunning = errors.New("scraper already running")

// Config holds the scraper launch settings.
type Config struct {
	// Command is the scraper executable.
	Command string
	// Args are fixed arguments passed before the per-run max-pages flag.
	Args []string
	// Timeout bounds one run.
	Timeout time.Duration
	// MaxPages caps the pages a single run may request.
	MaxPages int
}

// Runner launches the external scraper command.
type Runner struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool

	// execCommand is swappable for tests.
	execCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewRunner creates a Runner. A zero Timeout defaults to 5 minutes.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger, execCommand: runCommand}
}

// Configured reports whether a scraper command is set.
func (r *Runner) Configured() bool { return r.cfg.Command != "" }

// Run executes one scrape of up to maxPages pages and blocks until it
// finishes or the timeout fires. maxPages values outside [1, cfg.MaxPages]
// are clamped. Only one run may be active at a time.
func (r *Runner) Run(ctx context.Context, maxPages int) error {
	if !r.Configured() {
		return ErrNotConfigured
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if maxPages < 1 {
		maxPages = 1
	}
	if maxPages > r.cfg.MaxPages {
		maxPages = r.cfg.MaxPages
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := append(append([]string{}, r.cfg.Args...), "--max-pages", strconv.Itoa(maxPages))
	r.logger.Info("scraper starting", "command", r.cfg.Command, "max_pages", maxPages)

	start := time.Now()
	output, err := r.execCommand(runCtx, r.cfg.Command, args...)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("scraper timed out after %s", r.cfg.Timeout)
		}
		return fmt.Errorf("scraper failed: %w: %s", err, truncate(output, 512))
	}

	r.logger.Info("scraper finished", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func truncate(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
