package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"catalogbench/internal/logging"
	"catalogbench/internal/metrics"
	"catalogbench/internal/models"
	"catalogbench/internal/repositories"
)

const (
	DefaultDebounce    = 300 * time.Millisecond
	DefaultSearchLimit = 100

	EventSearchCompleted = "search.completed"
	EventBarcodeScanned  = "barcode.scanned"

	inputBuffer  = 64
	resultBuffer = 16
)

// ErrCoordinatorStopped is returned by Submit after Run has returned.
var ErrCoordinatorStopped = errors.New("search coordinator stopped")

// ErrNotSeeded is reported to callers that query before seeding has finished.
var ErrNotSeeded = errors.New("catalog is not seeded yet")

// State is the coordinator's position in its Idle -> Debouncing -> Searching cycle.
type State int32

const (
	StateIdle State = iota
	StateDebouncing
	StateSearching
)

func (s State) String() string {
	switch s {
	case StateDebouncing:
		return "debouncing"
	case StateSearching:
		return "searching"
	default:
		return "idle"
	}
}

// SearchResult is one published answer of the coordinator.
type SearchResult struct {
	RequestID uint64           `json:"request_id"`
	Query     string           `json:"query"`
	Products  []models.Product `json:"products"`
	ElapsedMs int64            `json:"elapsed_ms"`
	Err       error            `json:"-"`

	elapsed time.Duration
}

// ScanResult is the answer of an exact barcode lookup. Product is nil when no
// record carries the barcode.
type ScanResult struct {
	Barcode   string          `json:"barcode"`
	Product   *models.Product `json:"product"`
	ElapsedMs int64           `json:"elapsed_ms"`
}

// SearchCompletedEvent is published for every timed query.
type SearchCompletedEvent struct {
	Operation string `json:"operation"`
	Query     string `json:"query"`
	Rows      int    `json:"rows"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// CoordinatorOptions configures a SearchCoordinator.
type CoordinatorOptions struct {
	Debounce time.Duration
	Limit    int
	Field    models.SearchField
}

// SearchCoordinator turns a stream of query edits into a stream of results.
// Edits are debounced; a new debounced query cancels the one in flight, and a
// completion that belongs to a superseded request is dropped.
type SearchCoordinator struct {
	repo      repositories.ProductRepository
	opts      CoordinatorOptions
	recorder  metrics.Recorder
	publisher EventPublisher

	input       chan string
	results     chan SearchResult
	completions chan SearchResult
	done        chan struct{}

	state atomic.Int32

	mu        sync.RWMutex
	latest    SearchResult
	hasLatest bool
}

// NewSearchCoordinator creates a coordinator. Run must be started for
// submitted queries to be processed.
func NewSearchCoordinator(repo repositories.ProductRepository, opts CoordinatorOptions, recorder metrics.Recorder, publisher EventPublisher) *SearchCoordinator {
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	if opts.Field == "" {
		opts.Field = models.SearchFieldAny
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &SearchCoordinator{
		repo:        repo,
		opts:        opts,
		recorder:    recorder,
		publisher:   publisher,
		input:       make(chan string, inputBuffer),
		results:     make(chan SearchResult, resultBuffer),
		completions: make(chan SearchResult, 1),
		done:        make(chan struct{}),
	}
}

// Submit feeds the current query text into the debounce stage. It returns
// ErrCoordinatorStopped once Run has returned.
func (c *SearchCoordinator) Submit(query string) error {
	select {
	case <-c.done:
		return ErrCoordinatorStopped
	default:
	}
	select {
	case c.input <- query:
		return nil
	case <-c.done:
		return ErrCoordinatorStopped
	}
}

// Results streams published results. When the consumer falls behind, the
// oldest unread result is discarded. The channel is closed when Run returns.
func (c *SearchCoordinator) Results() <-chan SearchResult {
	return c.results
}

// Latest returns the most recently published result.
func (c *SearchCoordinator) Latest() (SearchResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.hasLatest
}

// State returns the current state.
func (c *SearchCoordinator) State() State {
	return State(c.state.Load())
}

// Run processes submitted queries until ctx is done. It must be called once.
func (c *SearchCoordinator) Run(ctx context.Context) {
	defer close(c.results)
	defer close(c.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var (
		timerC     <-chan time.Time
		pending    string
		generation uint64
		inflight   bool
		cancel     context.CancelFunc = func() {}
	)
	defer func() { cancel() }()

	setState := func() {
		switch {
		case inflight:
			c.state.Store(int32(StateSearching))
		case timerC != nil:
			c.state.Store(int32(StateDebouncing))
		default:
			c.state.Store(int32(StateIdle))
		}
	}

	for {
		select {
		case <-ctx.Done():
			c.state.Store(int32(StateIdle))
			return

		case q := <-c.input:
			if q == "" {
				// Empty input clears immediately: no debounce, no store call.
				timer.Stop()
				timerC = nil
				cancel()
				inflight = false
				generation++
				c.publish(SearchResult{RequestID: generation, Products: []models.Product{}})
				setState()
				continue
			}
			pending = q
			timer.Reset(c.opts.Debounce)
			timerC = timer.C
			setState()

		case <-timerC:
			timerC = nil
			cancel()
			generation++
			var sctx context.Context
			sctx, cancel = context.WithCancel(ctx)
			inflight = true
			setState()
			go c.execute(sctx, generation, pending)

		case r := <-c.completions:
			if r.RequestID != generation {
				continue
			}
			cancel()
			inflight = false
			if !errors.Is(r.Err, context.Canceled) {
				c.complete(ctx, r)
			}
			setState()
		}
	}
}

func (c *SearchCoordinator) execute(ctx context.Context, id uint64, query string) {
	start := time.Now()
	products, err := c.repo.Search(ctx, c.opts.Field, query, c.opts.Limit)
	elapsed := time.Since(start)

	r := SearchResult{RequestID: id, Query: query, ElapsedMs: elapsed.Milliseconds(), elapsed: elapsed}
	if err != nil {
		r.Err = fmt.Errorf("search %q failed: %w", query, err)
	} else {
		r.Products = products
	}

	select {
	case c.completions <- r:
	case <-c.done:
	}
}

// complete reports and publishes the result of the current request. Only the
// Run goroutine calls it, after superseded results have been dropped.
func (c *SearchCoordinator) complete(ctx context.Context, r SearchResult) {
	log := logging.WithContext(ctx)
	if r.Err != nil {
		log.Error().Err(r.Err).Str("query", r.Query).Msg("search failed")
		c.publish(r)
		return
	}

	c.recorder.ObserveQuery(metrics.OperationSearch, r.elapsed, len(r.Products))
	c.publishEvent(EventSearchCompleted, SearchCompletedEvent{
		Operation: metrics.OperationSearch,
		Query:     r.Query,
		Rows:      len(r.Products),
		ElapsedMs: r.ElapsedMs,
	})
	log.Info().
		Str("query", r.Query).
		Int("rows", len(r.Products)).
		Int64("elapsed_ms", r.ElapsedMs).
		Msg("search completed")
	c.publish(r)
	logging.DebugMemoryUsage(ctx, "search")
}

// publish records r as the latest result and offers it to the results
// channel, evicting the oldest unread result if the buffer is full. Only the
// Run goroutine calls it.
func (c *SearchCoordinator) publish(r SearchResult) {
	c.mu.Lock()
	c.latest = r
	c.hasLatest = true
	c.mu.Unlock()

	for {
		select {
		case c.results <- r:
			return
		default:
		}
		select {
		case <-c.results:
		default:
		}
	}
}

// SearchNow runs a timed substring query immediately, outside the debounce
// and single-flight machinery.
func (c *SearchCoordinator) SearchNow(ctx context.Context, field models.SearchField, pattern string) (SearchResult, error) {
	if pattern == "" {
		return SearchResult{Products: []models.Product{}}, nil
	}

	start := time.Now()
	products, err := c.repo.Search(ctx, field, pattern, c.opts.Limit)
	elapsed := time.Since(start)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search %q failed: %w", pattern, err)
	}

	c.recorder.ObserveQuery(metrics.OperationDirectSearch, elapsed, len(products))
	c.publishEvent(EventSearchCompleted, SearchCompletedEvent{
		Operation: metrics.OperationDirectSearch,
		Query:     pattern,
		Rows:      len(products),
		ElapsedMs: elapsed.Milliseconds(),
	})
	logging.WithContext(ctx).Info().
		Str("field", string(field)).
		Str("query", pattern).
		Int("rows", len(products)).
		Int64("elapsed_ms", elapsed.Milliseconds()).
		Msg("direct search completed")

	return SearchResult{Query: pattern, Products: products, ElapsedMs: elapsed.Milliseconds()}, nil
}

// ScanBarcode looks up an exact barcode. It neither cancels nor is cancelled
// by debounced searches and reports its timing like they do.
func (c *SearchCoordinator) ScanBarcode(ctx context.Context, barcode string) (ScanResult, error) {
	start := time.Now()
	p, err := c.repo.FindByBarcode(ctx, barcode)
	elapsed := time.Since(start)

	if err != nil && !errors.Is(err, repositories.ErrProductNotFound) {
		return ScanResult{}, fmt.Errorf("barcode lookup %s failed: %w", barcode, err)
	}
	if err != nil {
		p = nil
	}

	rows := 0
	if p != nil {
		rows = 1
	}
	c.recorder.ObserveQuery(metrics.OperationBarcodeScan, elapsed, rows)
	c.publishEvent(EventBarcodeScanned, SearchCompletedEvent{
		Operation: metrics.OperationBarcodeScan,
		Query:     barcode,
		Rows:      rows,
		ElapsedMs: elapsed.Milliseconds(),
	})

	ev := logging.WithContext(ctx).Info().
		Str("barcode", barcode).
		Int64("elapsed_ms", elapsed.Milliseconds())
	if p != nil {
		ev = ev.Int64("id", p.ID).Str("code", p.Code)
	}
	ev.Msg("exact barcode search completed")

	return ScanResult{Barcode: barcode, Product: p, ElapsedMs: elapsed.Milliseconds()}, nil
}

func (c *SearchCoordinator) publishEvent(eventType string, payload any) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishEvent(eventType, payload); err != nil {
		logging.Logger().Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
