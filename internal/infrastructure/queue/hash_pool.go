package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/toolrent/rental-system/internal/api/metrics"
	"github.com/toolrent/rental-system/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrPoolClosed is returned for jobs submitted after the pool stopped.
var ErrPoolClosed = errors.New("hash pool closed")

type jobKind int

const (
	jobHash jobKind = iota
	jobCompare
)

func (k jobKind) String() string {
	if k == jobHash {
		return "hash"
	}
	return "compare"
}

type hashJob struct {
	ctx      context.Context
	kind     jobKind
	password string
	hash     string
	result   chan hashResult
	// taken is set by whichever side first stops waiting on the queued
	// job: the worker that dequeues it or the submitter that gives up.
	taken *atomic.Bool
}

// leaveQueue decrements the queue depth once per job.
func (j hashJob) leaveQueue() {
	if j.taken.CompareAndSwap(false, true) {
		metrics.HashQueueDepth.Dec()
	}
}

type hashResult struct {
	hash string
	err  error
}

// HashPool runs bcrypt work on a fixed set of worker goroutines so that
// password hashing never occupies more than a bounded number of CPUs.
// It implements ports.PasswordHasher.
type HashPool struct {
	jobs    chan hashJob
	done    chan struct{}
	workers int
	cost    int
	log     zerolog.Logger
}

// NewHashPool creates a pool with numWorkers workers hashing at the given
// bcrypt cost. Out-of-range values fall back to defaults.
func NewHashPool(numWorkers, cost int, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &HashPool{
		jobs:    make(chan hashJob, channelBuffer),
		done:    make(chan struct{}),
		workers: numWorkers,
		cost:    cost,
		log:     log,
	}
}

// Start launches the workers. They stop when ctx is cancelled; pending and
// later jobs then fail with ErrPoolClosed.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(p.done)
	}()
}

// Hash returns the bcrypt hash of password.
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.submit(ctx, hashJob{kind: jobHash, password: password})
	if err != nil {
		return "", err
	}
	return res.hash, nil
}

// Compare checks password against hash in constant time. Any mismatch or
// malformed hash is reported as domain.ErrInvalidCredentials.
func (p *HashPool) Compare(ctx context.Context, hash, password string) error {
	_, err := p.submit(ctx, hashJob{kind: jobCompare, hash: hash, password: password})
	return err
}

func (p *HashPool) submit(ctx context.Context, job hashJob) (hashResult, error) {
	job.ctx = ctx
	job.result = make(chan hashResult, 1)
	job.taken = new(atomic.Bool)

	select {
	case <-p.done:
		return hashResult{}, ErrPoolClosed
	default:
	}

	select {
	case p.jobs <- job:
		metrics.HashQueueDepth.Inc()
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	case <-p.done:
		return hashResult{}, ErrPoolClosed
	}

	select {
	case res := <-job.result:
		return res, res.err
	case <-ctx.Done():
		job.leaveQueue()
		return hashResult{}, ctx.Err()
	case <-p.done:
		job.leaveQueue()
		return hashResult{}, ErrPoolClosed
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			job.leaveQueue()
			job.result <- p.run(job, id)
		}
	}
}

func (p *HashPool) run(job hashJob, id int) hashResult {
	// The caller gave up while the job was queued.
	if err := job.ctx.Err(); err != nil {
		return hashResult{err: err}
	}

	start := time.Now()
	defer func() {
		metrics.HashDuration.WithLabelValues(job.kind.String()).Observe(time.Since(start).Seconds())
	}()

	switch job.kind {
	case jobHash:
		b, err := bcrypt.GenerateFromPassword([]byte(job.password), p.cost)
		if err != nil {
			p.log.Error().Err(err).Int("worker_id", id).Msg("password hashing failed")
			return hashResult{err: err}
		}
		return hashResult{hash: string(b)}
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(job.hash), []byte(job.password)); err != nil {
			if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				p.log.Warn().Err(err).Int("worker_id", id).Msg("stored password hash is unusable")
			}
			return hashResult{err: domain.ErrInvalidCredentials}
		}
		return hashResult{}
	}
}
