package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/metrics"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// WorkerPool manages a fixed-size pool of goroutines that run scan requests.
type WorkerPool struct {
	size   int
	scans  <-chan *domain.ScanMessage
	scanUC *usecase.ScheduledScanUsecase
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewWorkerPool creates a new fixed-size worker pool.
func NewWorkerPool(size int, scans <-chan *domain.ScanMessage, scanUC *usecase.ScheduledScanUsecase, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:   size,
		scans:  scans,
		scanUC: scanUC,
		logger: logger,
	}
}

// Start launches all worker goroutines. Call Stop to wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for all workers to finish their current scans and exit.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker shutting down", zap.Int("worker_id", id))
			return
		case msg, ok := <-p.scans:
			if !ok {
				p.logger.Debug("Scan channel closed", zap.Int("worker_id", id))
				return
			}
			p.handle(ctx, id, msg)
		}
	}
}

// handle runs one scan and settles the delivery. A panic nacks the message
// and keeps the worker alive.
func (p *WorkerPool) handle(ctx context.Context, id int, msg *domain.ScanMessage) {
	req := msg.Request
	log := p.logger.With(zap.Int("worker_id", id), zap.String("request_id", req.RequestID.String()))

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Worker panic recovered", zap.Any("panic", r))
			if nackErr := msg.Nack(false); nackErr != nil {
				log.Error("Failed to NACK message", zap.Error(nackErr))
			}
		}
	}()

	log.Info("Worker processing scan request", zap.Strings("subreddits", req.Subreddits))
	start := time.Now()

	result, isDuplicate, err := p.scanUC.Execute(ctx, req)
	metrics.StageDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())

	if err != nil {
		// A scan cut short by shutdown goes back on the queue; failed scans
		// go to the DLQ instead of looping.
		requeue := errors.Is(err, domain.ErrScanCancelled)
		if requeue {
			log.Info("Scan request interrupted, requeueing", zap.Error(err))
		} else {
			log.Error("Scan request failed", zap.Error(err))
		}
		if nackErr := msg.Nack(requeue); nackErr != nil {
			log.Error("Failed to NACK message", zap.Error(nackErr))
		}
		return
	}

	if isDuplicate {
		log.Debug("Duplicate scan request skipped")
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error("Failed to ACK duplicate message", zap.Error(ackErr))
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		log.Error("Failed to ACK message after scan", zap.Error(ackErr))
	}

	for itemID, v := range result.NewLeads {
		log.Info("New lead found",
			zap.String("item_id", itemID),
			zap.String("category", string(v.Category)),
			zap.String("description", v.Description),
		)
	}
}
