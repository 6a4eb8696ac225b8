// Package watch creates a project for every PDF that appears in a directory.
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

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
	"github.com/custodia-labs/pageform/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before it is ingested.
const DefaultSettle = 2 * time.Second

// Result reports the outcome of ingesting one file.
type Result struct {
	Path    string
	Project *domain.Project
	Err     error
}

// Options tune a Watcher.
type Options struct {
	// Settle delays ingestion until writes to a file have stopped.
	Settle time.Duration

	// Existing ingests PDFs already present when Run starts.
	Existing bool

	// OnResult is called after every ingestion attempt.
	OnResult func(Result)
}

// Watcher ingests PDFs dropped into a directory.
type Watcher struct {
	projects driving.ProjectService
	dir      string
	opts     Options

	mu      sync.Mutex
	pending map[string]time.Time
	done    map[string]time.Time
}

// New creates a watcher for dir.
func New(projects driving.ProjectService, dir string, opts Options) (*Watcher, error) {
	if projects == nil {
		return nil, errors.New("watch: project service is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory: %w", dir, domain.ErrInvalidInput)
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	return &Watcher{
		projects: projects,
		dir:      dir,
		opts:     opts,
		pending:  make(map[string]time.Time),
		done:     make(map[string]time.Time),
	}, nil
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s for PDFs", w.dir)

	if w.opts.Existing {
		w.queueExisting()
	}

	ticker := time.NewTicker(w.opts.Settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.candidate(ev); ok {
				w.touch(path)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		case <-ticker.C:
			w.ingestSettled(ctx)
		}
	}
}

// candidate reports whether an event concerns a visible PDF file.
func (w *Watcher) candidate(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !domain.IsPDFFilename(name) {
		return "", false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return ev.Name, true
}

func (w *Watcher) queueExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("listing %s: %v", w.dir, err)
		return
	}
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if _, ok := w.candidate(fsnotify.Event{Name: path, Op: fsnotify.Create}); ok {
			w.touch(path)
		}
	}
}

func (w *Watcher) touch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

// settled removes and returns pending files quiet for at least Settle.
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

func (w *Watcher) ingestSettled(ctx context.Context) {
	for _, path := range w.settled(time.Now()) {
		res, skip := w.ingest(ctx, path)
		if skip {
			continue
		}
		if w.opts.OnResult != nil {
			w.opts.OnResult(res)
		}
	}
}

// ingest creates a project unless this exact file version was already ingested.
func (w *Watcher) ingest(ctx context.Context, path string) (Result, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, true
	}

	w.mu.Lock()
	prev, seen := w.done[path]
	w.mu.Unlock()
	if seen && !info.ModTime().After(prev) {
		return Result{}, true
	}

	res := Result{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", path, err)
		return res, false
	}

	created, err := w.projects.Create(ctx, filepath.Base(path), data)
	if err != nil {
		logger.Warn("ingesting %s failed: %v", path, err)
		res.Err = err
		return res, false
	}

	w.mu.Lock()
	w.done[path] = info.ModTime()
	w.mu.Unlock()

	res.Project = created.Project
	logger.Info("ingested %s as project %d", path, created.Project.ID)
	return res, false
}
