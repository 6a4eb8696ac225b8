package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/pageform/internal/core/domain"
	"github.com/custodia-labs/pageform/internal/core/ports/driven"
	"github.com/custodia-labs/pageform/internal/core/ports/driving"
	"github.com/custodia-labs/pageform/internal/logger"
)

// Ensure BulkDispatcher implements the interface.
var _ driving.BulkDispatcher = (*BulkDispatcher)(nil)

// Bulk dispatcher defaults.
const (
	DefaultBulkWorkers     = 4
	DefaultBulkQueueSize   = 64
	DefaultBulkRate        = 2.0
	DefaultBulkTaskTimeout = 5 * time.Minute
	maxRetainedBatches     = 100
)

// BulkConfig tunes the bulk dispatcher. Zero values select defaults.
type BulkConfig struct {
	// Workers is the number of pages generated concurrently.
	Workers int

	// QueueSize bounds the number of tasks waiting for a worker.
	QueueSize int

	// RatePerSecond caps how often tasks start. Zero or negative disables pacing.
	RatePerSecond float64

	// TaskTimeout bounds a single page generation.
	TaskTimeout time.Duration
}

func (c BulkConfig) withDefaults() BulkConfig {
	if c.Workers <= 0 {
		c.Workers = DefaultBulkWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultBulkQueueSize
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = DefaultBulkTaskTimeout
	}
	return c
}

type bulkTask struct {
	batch      *batch
	pageNumber int
}

// batch tracks the outcome of every task in one dispatch.
type batch struct {
	mu       sync.Mutex
	status   domain.BulkStatus
	done     chan struct{}
	doneOnce sync.Once
}

func newBatch(projectID int64, scheduled int) *batch {
	b := &batch{
		status: domain.BulkStatus{
			BatchID:   uuid.NewString(),
			ProjectID: projectID,
			Scheduled: scheduled,
			Results:   make([]domain.PageTaskResult, 0, scheduled),
			StartedAt: time.Now().UTC(),
		},
		done: make(chan struct{}),
	}
	if scheduled == 0 {
		b.finish()
	}
	return b
}

func (b *batch) record(res domain.PageTaskResult) {
	b.mu.Lock()
	b.status.Results = append(b.status.Results, res)
	b.status.Completed++
	if res.Succeeded() {
		b.status.Succeeded++
	} else {
		b.status.Failed++
	}
	complete := b.status.Completed >= b.status.Scheduled
	b.mu.Unlock()

	if complete {
		b.finish()
	}
}

func (b *batch) finish() {
	b.doneOnce.Do(func() {
		now := time.Now().UTC()
		b.mu.Lock()
		b.status.FinishedAt = &now
		b.mu.Unlock()
		close(b.done)
	})
}

func (b *batch) finished() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *batch) snapshot() *domain.BulkStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.status
	s.Results = append([]domain.PageTaskResult(nil), b.status.Results...)
	return &s
}

// BulkDispatcher generates forms for every page of a project on a bounded
// pool of workers. Dispatch returns as soon as the batch is registered;
// progress is available through Status and Wait.
type BulkDispatcher struct {
	projects driven.ProjectStore
	forms    driving.FormService
	config   BulkConfig
	limiter  *rate.Limiter

	tasks   chan bulkTask
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	feeders sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	batches map[string]*batch
	order   []string
}

// NewBulkDispatcher creates a dispatcher and starts its workers.
func NewBulkDispatcher(projects driven.ProjectStore, forms driving.FormService, config BulkConfig) *BulkDispatcher {
	config = config.withDefaults()

	limit := rate.Inf
	if config.RatePerSecond > 0 {
		limit = rate.Limit(config.RatePerSecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &BulkDispatcher{
		projects: projects,
		forms:    forms,
		config:   config,
		limiter:  rate.NewLimiter(limit, 1),
		tasks:    make(chan bulkTask, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		batches:  make(map[string]*batch),
	}

	for i := 0; i < config.Workers; i++ {
		d.workers.Add(1)
		go d.work()
	}
	return d
}

// Dispatch queues one generation task per page of the project.
func (d *BulkDispatcher) Dispatch(ctx context.Context, projectID int64) (*domain.BulkReport, error) {
	project, err := d.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", projectID, err)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, domain.ErrDispatcherClosed
	}
	b := newBatch(project.ID, project.TotalPages)
	d.register(b)
	d.feeders.Add(1)
	d.mu.Unlock()

	go d.feed(b, project.TotalPages)

	logger.Info("bulk batch %s: scheduled %d pages of project %d", b.status.BatchID, project.TotalPages, project.ID)
	return &domain.BulkReport{
		BatchID:   b.status.BatchID,
		ProjectID: project.ID,
		Scheduled: project.TotalPages,
	}, nil
}

// feed enqueues tasks without holding up Dispatch; a full queue blocks here.
func (d *BulkDispatcher) feed(b *batch, total int) {
	defer d.feeders.Done()
	for n := 1; n <= total; n++ {
		d.tasks <- bulkTask{batch: b, pageNumber: n}
	}
}

func (d *BulkDispatcher) work() {
	defer d.workers.Done()
	for t := range d.tasks {
		d.run(t)
	}
}

func (d *BulkDispatcher) run(t bulkTask) {
	projectID := t.batch.status.ProjectID
	res := domain.PageTaskResult{PageNumber: t.pageNumber}

	if err := d.limiter.Wait(d.ctx); err != nil {
		res.Error = err.Error()
		t.batch.record(res)
		return
	}

	ctx, cancel := context.WithTimeout(d.ctx, d.config.TaskTimeout)
	defer cancel()

	form, err := d.forms.GetOrGenerate(ctx, projectID, t.pageNumber)
	if err != nil {
		logger.Warn("bulk generation for project %d page %d failed: %v", projectID, t.pageNumber, err)
		res.Error = err.Error()
	} else {
		res.Source = form.Source
		logger.Debug("bulk generation for project %d page %d: %s", projectID, t.pageNumber, form.Source)
	}
	t.batch.record(res)
}

// register must be called with d.mu held.
func (d *BulkDispatcher) register(b *batch) {
	d.batches[b.status.BatchID] = b
	d.order = append(d.order, b.status.BatchID)

	// Forget the oldest finished batches once the history is full.
	// Unfinished batches are kept wherever they sit in the order.
	excess := len(d.order) - maxRetainedBatches
	if excess <= 0 {
		return
	}
	kept := d.order[:0]
	for _, id := range d.order {
		if excess > 0 && d.batches[id].finished() {
			delete(d.batches, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	d.order = kept
}

// Status returns the progress of a batch.
func (d *BulkDispatcher) Status(batchID string) (*domain.BulkStatus, error) {
	d.mu.Lock()
	b, ok := d.batches[batchID]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
	}
	return b.snapshot(), nil
}

// Wait blocks until the batch completes or ctx is done.
func (d *BulkDispatcher) Wait(ctx context.Context, batchID string) (*domain.BulkStatus, error) {
	d.mu.Lock()
	b, ok := d.batches[batchID]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", batchID, domain.ErrNotFound)
	}

	select {
	case <-b.done:
		return b.snapshot(), nil
	case <-ctx.Done():
		return b.snapshot(), ctx.Err()
	}
}

// Close stops accepting batches and waits for queued tasks to finish.
func (d *BulkDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.feeders.Wait()
	close(d.tasks)
	d.workers.Wait()
	d.cancel()
	return nil
}
