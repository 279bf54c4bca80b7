package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"catalogbench/internal/generator"
	"catalogbench/internal/logging"
	"catalogbench/internal/metrics"
	"catalogbench/internal/models"
	"catalogbench/internal/repositories"

	"github.com/google/uuid"
)

const (
	DefaultTotalProducts = 100000
	DefaultBatchSize     = 1000

	EventSeedProgress  = "seed.progress"
	EventSeedCompleted = "seed.completed"
)

// ErrSeedInProgress is returned when Seed is called while another run is active.
var ErrSeedInProgress = errors.New("seeding already in progress")

// EventPublisher receives benchmark events. The RabbitMQ client satisfies it.
type EventPublisher interface {
	PublishEvent(eventType string, payload any) error
}

// SeedOptions configures a SeedService.
type SeedOptions struct {
	Total     int
	BatchSize int
	// Category picks the category of a record. Nil draws uniformly.
	Category func(id int64) string
}

// SeedProgressEvent is published after every batch.
type SeedProgressEvent struct {
	RunID    string `json:"run_id"`
	Progress int    `json:"progress"`
	Inserted int    `json:"inserted"`
}

// SeedCompletedEvent is published when a run finishes or short-circuits.
type SeedCompletedEvent struct {
	RunID      string `json:"run_id"`
	Skipped    bool   `json:"skipped"`
	Count      int64  `json:"count"`
	DurationMs int64  `json:"duration_ms"`
}

// SeedService fills an empty catalog with generated products.
type SeedService struct {
	repo      repositories.ProductRepository
	gen       *generator.Generator
	opts      SeedOptions
	recorder  metrics.Recorder
	publisher EventPublisher

	running  sync.Mutex
	progress atomic.Int32
	seeded   atomic.Bool
}

// NewSeedService creates a new SeedService. Zero option values fall back to
// the defaults; recorder and publisher may be nil.
func NewSeedService(repo repositories.ProductRepository, gen *generator.Generator, opts SeedOptions, recorder metrics.Recorder, publisher EventPublisher) *SeedService {
	if opts.Total <= 0 {
		opts.Total = DefaultTotalProducts
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if gen == nil {
		gen = generator.New(nil)
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &SeedService{
		repo:      repo,
		gen:       gen,
		opts:      opts,
		recorder:  recorder,
		publisher: publisher,
	}
}

// Progress returns the last reported percentage.
func (s *SeedService) Progress() int {
	return int(s.progress.Load())
}

// Seeded reports whether a run has reached 100%.
func (s *SeedService) Seeded() bool {
	return s.seeded.Load()
}

// Seed inserts the configured number of products in batches, calling
// onProgress with a non-decreasing percentage after each batch. A store that
// already holds any record is treated as seeded: onProgress(100) is called
// once and nothing is written.
//
// A failed batch aborts the run and leaves the store partially seeded.
func (s *SeedService) Seed(ctx context.Context, onProgress func(int)) error {
	if !s.running.TryLock() {
		return ErrSeedInProgress
	}
	defer s.running.Unlock()

	runID := uuid.New().String()
	log := logging.WithContext(ctx).With().Str("run_id", runID).Logger()
	start := time.Now()

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check catalog size: %w", err)
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("catalog already seeded, skipping")
		s.report(runID, 100, 0, onProgress)
		s.complete(runID, true, count, time.Since(start))
		return nil
	}

	total, batchSize := s.opts.Total, s.opts.BatchSize
	log.Info().Int("total", total).Int("batch_size", batchSize).Msg("seeding catalog")

	batch := make([]models.Product, 0, batchSize)
	for offset := 0; offset < total; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(offset+batchSize, total)
		batch = batch[:0]
		for id := int64(offset); id < int64(end); id++ {
			batch = append(batch, s.gen.Product(id, s.category(id)))
		}

		if err := s.repo.InsertBatch(ctx, batch); err != nil {
			log.Error().Err(err).Int("offset", offset).Msg("seeding batch failed")
			return fmt.Errorf("failed to insert batch at offset %d: %w", offset, err)
		}
		s.recorder.AddSeeded(len(batch))

		progress := end * 100 / total
		s.report(runID, progress, len(batch), onProgress)
		log.Debug().Int("progress", progress).Msg("batch inserted")
	}

	elapsed := time.Since(start)
	log.Info().Int("count", total).Int64("duration_ms", elapsed.Milliseconds()).Msg("catalog seeded")
	s.complete(runID, false, int64(total), elapsed)
	return nil
}

func (s *SeedService) category(id int64) string {
	if s.opts.Category != nil {
		return s.opts.Category(id)
	}
	return s.gen.RandomCategory()
}

func (s *SeedService) report(runID string, progress, inserted int, onProgress func(int)) {
	s.progress.Store(int32(progress))
	s.recorder.SetSeedProgress(progress)
	if progress >= 100 {
		s.seeded.Store(true)
	}
	if onProgress != nil {
		onProgress(progress)
	}
	s.publish(EventSeedProgress, SeedProgressEvent{RunID: runID, Progress: progress, Inserted: inserted})
}

func (s *SeedService) complete(runID string, skipped bool, count int64, elapsed time.Duration) {
	s.publish(EventSeedCompleted, SeedCompletedEvent{
		RunID:      runID,
		Skipped:    skipped,
		Count:      count,
		DurationMs: elapsed.Milliseconds(),
	})
}

func (s *SeedService) publish(eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(eventType, payload); err != nil {
		logging.Logger().Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
