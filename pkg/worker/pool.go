package worker

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/kacperjurak/goarraycore"
	"github.com/kacperjurak/goarraycore/pkg/config"
	"github.com/kacperjurak/goarraycore/pkg/models"
	"github.com/kacperjurak/goarraycore/pkg/profiling"
)

// ErrPoolClosed is returned when a job is submitted after Shutdown.
var ErrPoolClosed = errors.New("worker pool is shut down")

// Pool manages concurrent field processing workers
type Pool struct {
	jobs         chan models.WorkItem
	webhookQueue chan models.WebhookItem
	workers      int
	shutdown     chan struct{}
	stopped      chan struct{} // closed after every worker has returned
	stopWebhooks chan struct{}
	workerWG     sync.WaitGroup
	webhookWG    sync.WaitGroup
	sends        sync.WaitGroup
	once         sync.Once
	processor    ProcessorFunc
	webhook      Sender
	profile      bool
}

// ProcessorFunc defines the signature for field processing
type ProcessorFunc func(req models.FieldRequest, cfg *config.Config) (models.FieldResult, error)

// Sender delivers a finished result, usually to a webhook.
type Sender interface {
	Send(item models.WebhookItem) error
}

// Options holds configuration for creating a new worker pool
type Options struct {
	Workers   int
	Processor ProcessorFunc
	// Webhook receives queued results; nil drops them after logging.
	Webhook Sender
	// Profile logs per-job timing and memory deltas.
	Profile bool
}

// New creates a new worker pool with specified configuration
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}

	// do not block queueing new jobs even if the workers are already busy
	pool := &Pool{
		jobs:         make(chan models.WorkItem, opts.Workers*2),
		webhookQueue: make(chan models.WebhookItem, opts.Workers*4), // webhooks are slower than jobs
		workers:      opts.Workers,
		shutdown:     make(chan struct{}),
		stopped:      make(chan struct{}),
		stopWebhooks: make(chan struct{}),
		processor:    opts.Processor,
		webhook:      opts.Webhook,
		profile:      opts.Profile,
	}

	pool.start()
	return pool
}

// start initializes and starts all workers
func (p *Pool) start() {
	for i := 0; i < p.workers; i++ {
		p.workerWG.Add(1)
		go p.worker(i)
	}

	p.webhookWG.Add(1)
	go p.webhookProcessor()

	log.Printf("🔧 Worker pool started with %d workers", p.workers)
}

// Workers returns the number of processing goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Done is closed once Shutdown has stopped every worker. After that no
// further replies are sent.
func (p *Pool) Done() <-chan struct{} {
	return p.stopped
}

// worker processes field jobs from the jobs channel
func (p *Pool) worker(id int) {
	defer p.workerWG.Done()

	for {
		select {
		case job := <-p.jobs:
			result := p.processJob(id, job)
			if job.Reply != nil {
				job.Reply <- result
			} else {
				log.Printf("⚠️  No reply channel for job %s, result dropped", job.RequestID)
			}

		case <-p.shutdown:
			return
		}
	}
}

// processJob runs one request through the processor and times it
func (p *Pool) processJob(id int, job models.WorkItem) models.WorkResult {
	cfg, ok := job.Config.(*config.Config)
	if !ok || cfg == nil {
		cfg = config.DefaultConfig()
	}

	var prof *profiling.WorkerProfiler
	if p.profile {
		prof = profiling.NewWorkerProfiler(id, "field")
	}

	startTime := time.Now()
	result, err := p.processor(job.Request, cfg)
	processingTime := time.Since(startTime)

	if prof != nil {
		prof.Finish()
	}
	if err != nil && result.Status == "" {
		result = models.FieldResult{Status: goarraycore.ERROR, Error: err.Error()}
	}

	return models.WorkResult{
		ID:             job.ID,
		RequestID:      job.RequestID,
		BatchID:        job.BatchID,
		Iteration:      job.Iteration,
		Result:         result,
		ProcessingTime: processingTime,
		Success:        err == nil && result.Status == goarraycore.OK,
	}
}

// webhookProcessor handles webhook requests asynchronously. On shutdown it
// dispatches whatever is still queued before returning.
func (p *Pool) webhookProcessor() {
	defer p.webhookWG.Done()

	for {
		select {
		case webhook := <-p.webhookQueue:
			p.dispatch(webhook)

		case <-p.stopWebhooks:
			for {
				select {
				case webhook := <-p.webhookQueue:
					p.dispatch(webhook)
				default:
					return
				}
			}
		}
	}
}

// dispatch sends in its own goroutine so slow receivers do not block the queue
func (p *Pool) dispatch(webhook models.WebhookItem) {
	p.sends.Add(1)
	go p.sendWebhook(webhook)
}

func (p *Pool) sendWebhook(webhook models.WebhookItem) {
	defer p.sends.Done()

	if p.webhook == nil {
		log.Printf("No webhook configured, dropping result for %s", webhook.RequestID)
		return
	}

	prof := profiling.NewWebhookProfiler(webhook.RequestID)
	err := p.webhook.Send(webhook)
	if p.profile {
		prof.Finish(err == nil)
	}
	if err != nil {
		log.Printf("❌ Webhook failed for %s: %v", webhook.RequestID, err)
	}
}

// SubmitJob submits a job to the worker pool. It blocks while the queue is
// full and returns ErrPoolClosed once Shutdown has begun.
func (p *Pool) SubmitJob(job models.WorkItem) error {
	select {
	case <-p.shutdown:
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		log.Printf("⚠️  Worker pool jobs channel full, job may be delayed")
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.shutdown:
		return ErrPoolClosed
	}
}

// QueueWebhook queues a webhook for async processing
func (p *Pool) QueueWebhook(webhook models.WebhookItem) {
	select {
	case <-p.stopWebhooks:
		log.Printf("⚠️  Worker pool stopped, dropping webhook for %s", webhook.RequestID)
		return
	default:
	}

	select {
	case p.webhookQueue <- webhook:
		// Webhook queued successfully
	default:
		log.Printf("⚠️  Webhook queue full, dropping webhook for %s", webhook.RequestID)
	}
}

// Shutdown stops the workers, then sends every queued webhook and waits for
// the deliveries to finish. Jobs still queued may be skipped. Calling it
// again is a no-op.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		log.Printf("🛑 Shutting down worker pool...")
		close(p.shutdown)
		p.workerWG.Wait()
		close(p.stopped)

		close(p.stopWebhooks)
		p.webhookWG.Wait()
		p.sends.Wait()
		log.Printf("✅ Worker pool shutdown complete")
	})
}
