package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/ragchat/pkg/logger"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
)

// UploadFunc sends one validated file to the backend and returns the
// backend's confirmation message.
type UploadFunc func(ctx context.Context, path string) (string, error)

// Job is a unit of work for the pool.
type Job struct {
	Path string
}

// Result is reported once per processed job.
type Result struct {
	Path     string
	Message  string
	Err      error
	Duration time.Duration
}

// PoolConfig is the configuration for the upload pool.
type PoolConfig struct {
	// Upload performs the transfer. Required.
	Upload UploadFunc

	// OnResult is called from worker goroutines after each job. Optional.
	OnResult func(Result)

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	Logger *slog.Logger
}

// Pool uploads files in the background so watch mode never blocks on the
// network while new files keep arriving.
type Pool struct {
	config *PoolConfig
	ctx    context.Context
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a Pool and starts its worker goroutines. Uploads run under
// ctx; cancelling it aborts in-flight transfers.
func NewPool(ctx context.Context, c *PoolConfig) (*Pool, error) {
	if c.Upload == nil {
		return nil, errors.New("upload pool requires an Upload func")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	p := &Pool{
		config: c,
		ctx:    ctx,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a job. Returns false if the queue is full and the job was
// dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("upload queued", "path", job.Path)
		return true
	default:
		p.logger.Error("upload not queued, queue full, job dropped", "path", job.Path)
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to drain.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("upload worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("upload worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	start := time.Now()
	result := Result{Path: job.Path}

	if _, err := Validate(job.Path); err != nil {
		result.Err = err
	} else {
		result.Message, result.Err = p.config.Upload(p.ctx, job.Path)
	}
	result.Duration = time.Since(start)

	if result.Err != nil {
		p.logger.Warn("upload failed", "path", job.Path, "error", result.Err)
	} else {
		p.logger.Info("upload complete", "path", job.Path, "message", result.Message)
	}

	if p.config.OnResult != nil {
		p.config.OnResult(result)
	}
}
