package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/metrics"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher writes incomplete-profile records in the background. Records are
// sharded by email so repeated failures for one account are written in order.
type Dispatcher struct {
	workers []chan domain.IncompleteProfile
	repo    ports.IncompleteProfileRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.IncompleteProfileSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.IncompleteProfileRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.IncompleteProfile, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.IncompleteProfile, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// writes what is already buffered and stops; Close does the same and also
// waits. Writes are not cancelled by ctx, only bounded by recordTimeout.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Close stops accepting records and waits until the workers have written
// everything that was queued, or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue never blocks the request: when the worker's buffer is full, or the
// dispatcher is closed, the record is logged and dropped.
func (d *Dispatcher) Enqueue(rec domain.IncompleteProfile) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped(rec, "audit queue closed, incomplete profile dropped")
		return
	}

	idx := d.shardIndex(rec.Email)
	select {
	case d.workers[idx] <- rec:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		d.dropped(rec, "audit queue full, incomplete profile dropped")
	}
}

func (d *Dispatcher) dropped(rec domain.IncompleteProfile, msg string) {
	metrics.IncompleteProfilesDropped.Inc()
	d.log.Error().
		Str("email", domain.MaskEmail(rec.Email)).
		Str("role", string(rec.Role)).
		Str("stage", rec.Stage).
		Msg(msg)
}

// shardIndex maps an email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.IncompleteProfile) {
	defer d.wg.Done()
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))
	writeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case rec, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.record(writeCtx, id, rec)
		case <-ctx.Done():
			for {
				select {
				case rec, ok := <-ch:
					if !ok {
						return
					}
					depth.Dec()
					d.record(writeCtx, id, rec)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, rec domain.IncompleteProfile) {
	rctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := d.repo.Record(rctx, &rec); err != nil {
		d.log.Error().Err(err).
			Str("email", domain.MaskEmail(rec.Email)).
			Str("role", string(rec.Role)).
			Int("worker_id", id).
			Msg("incomplete profile not recorded")
	}
}

// LogRepository stands in for the audit store when MongoDB is unavailable:
// the record survives in the logs.
type LogRepository struct {
	log zerolog.Logger
}

func NewLogRepository(log zerolog.Logger) *LogRepository {
	return &LogRepository{log: log}
}

func (r *LogRepository) Record(_ context.Context, rec *domain.IncompleteProfile) error {
	r.log.Warn().
		Str("email", domain.MaskEmail(rec.Email)).
		Str("mobile", domain.MaskMobile(rec.Mobile)).
		Str("role", string(rec.Role)).
		Str("stage", rec.Stage).
		Str("reason", rec.Reason).
		Int("backend_status", rec.BackendStatus).
		Time("recorded_at", rec.RecordedAt).
		Msg("incomplete profile")
	return nil
}
