// Package watch corrects documents as they arrive in an inbox directory.
//
// New files are corrected once they have been quiet for a settle period,
// so a scanner still writing a file is not read half way. Corrections are
// throttled with a token bucket and run one at a time.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
	"github.com/custodia-labs/pagefix/internal/logger"
)

// Defaults for Options.
const (
	DefaultSettle            = 2 * time.Second
	DefaultRequestsPerMinute = 30
	DefaultBurst             = 5
)

// PerMinute converts a per-minute count to a limiter rate.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

// Result is the outcome of one inbox item.
type Result struct {
	Path   string
	Output string
	Result *driving.CorrectionResult
	Err    error
}

// Options configures a Watcher.
type Options struct {
	// Inbox is the directory to watch.
	Inbox string

	// OutDir receives <name>.pdf for every corrected inbox item.
	OutDir string

	// Exporter selects the output writer. Empty uses the configured format.
	Exporter domain.ExportFormat

	// Settle is how long an item must be quiet before it is corrected.
	Settle time.Duration

	// Limit and Burst throttle corrections. Zero Limit uses the default rate.
	Limit rate.Limit
	Burst int

	// Supports filters files by name. Directories are always accepted.
	Supports func(path string) bool

	// OnResult is called after each correction.
	OnResult func(Result)
}

// Watcher feeds new inbox items to the correction service.
type Watcher struct {
	correction driving.CorrectionService
	opts       Options
	limiter    *rate.Limiter

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a watcher. The output directory is created if missing.
func New(correction driving.CorrectionService, opts Options) (*Watcher, error) {
	if correction == nil {
		return nil, errors.New("correction service not configured")
	}
	if opts.Inbox == "" || opts.OutDir == "" {
		return nil, fmt.Errorf("inbox and output directory are required: %w", domain.ErrInvalidInput)
	}
	inbox, err := filepath.Abs(opts.Inbox)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, err
	}
	if inbox == out || strings.HasPrefix(out, inbox+string(filepath.Separator)) {
		return nil, fmt.Errorf("output directory must be outside the inbox: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	opts.Inbox, opts.OutDir = inbox, out

	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Limit == 0 {
		opts.Limit = PerMinute(DefaultRequestsPerMinute)
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}

	return &Watcher{
		correction: correction,
		opts:       opts,
		limiter:    rate.NewLimiter(opts.Limit, opts.Burst),
		pending:    make(map[string]time.Time),
	}, nil
}

// Run watches the inbox until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.opts.Inbox); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Inbox, err)
	}
	logger.Info("watching %s, writing to %s", w.opts.Inbox, w.opts.OutDir)

	ticker := time.NewTicker(w.opts.Settle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.observe(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if w.process(ctx, path) != nil {
					return nil
				}
			}
		}
	}
}

// observe records activity on a direct child of the inbox.
func (w *Watcher) observe(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			w.mu.Lock()
			delete(w.pending, event.Name)
			w.mu.Unlock()
		}
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// settled removes and returns the items quiet for the settle period.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.opts.Settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

// process corrects one item. It returns an error only when ctx ends.
func (w *Watcher) process(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.IsDir() && w.opts.Supports != nil && !w.opts.Supports(path) {
		logger.Debug("skipping unsupported file %s", path)
		return nil
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	output := filepath.Join(w.opts.OutDir, name+".pdf")
	res, err := w.correction.Correct(ctx, driving.CorrectionRequest{
		Path:       path,
		OutputPath: output,
		Exporter:   w.opts.Exporter,
	})
	if err != nil {
		logger.Warn("correcting %s: %v", path, err)
	}
	if w.opts.OnResult != nil {
		w.opts.OnResult(Result{Path: path, Output: output, Result: res, Err: err})
	}
	return ctx.Err()
}
