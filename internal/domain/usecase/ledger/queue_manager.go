package ledger

import (
	"context"
	"sync"
	"sync/atomic"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
)

// DefaultQueueSize is the per-user backlog before writers block
const DefaultQueueSize = 100

// Job is one serialized unit of ledger work for a user
type Job func(ctx context.Context) (int64, error)

// QueueManager runs every job of a user strictly in order on a dedicated
// worker goroutine. Jobs of different users run in parallel.
type QueueManager struct {
	logger    coreport.Logger
	queueSize int

	// User-based queues for strict ordering
	userQueues     sync.Map // map[uint64]chan *jobRequest
	queueWaitGroup sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

const (
	jobQueued int32 = iota
	jobClaimed
	jobAbandoned
)

type jobRequest struct {
	ctx        context.Context
	job        Job
	resultChan chan jobResult
	// state moves from jobQueued to exactly one of jobClaimed or jobAbandoned
	state atomic.Int32
}

type jobResult struct {
	balance int64
	err     error
}

// NewQueueManager creates a queue manager
func NewQueueManager(logger coreport.Logger, queueSize int) *QueueManager {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &QueueManager{logger: logger, queueSize: queueSize}
}

// Enqueue adds a job to the user's queue and waits for its result
func (m *QueueManager) Enqueue(ctx context.Context, userID uint64, job Job) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, errs.ErrInternalServer
	}

	queueIface, loaded := m.userQueues.LoadOrStore(userID, make(chan *jobRequest, m.queueSize))
	queue, ok := queueIface.(chan *jobRequest)
	if !ok {
		m.logger.Error("Failed to type assert ledger queue channel", nil)
		return 0, errs.ErrInternalServer
	}

	// Start worker if this is a new queue
	if !loaded {
		m.logger.Debug("Starting ledger queue worker for user", map[string]any{
			"user_id": userID,
		})
		m.queueWaitGroup.Add(1)
		go m.processUserJobs(userID, queue)
	}

	req := &jobRequest{ctx: ctx, job: job, resultChan: make(chan jobResult, 1)}

	select {
	case queue <- req:
	case <-ctx.Done():
		m.logger.Warn("Context canceled while enqueueing ledger job", map[string]any{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return 0, ctx.Err()
	}

	select {
	case result := <-req.resultChan:
		return result.balance, result.err
	case <-ctx.Done():
	}

	if req.state.CompareAndSwap(jobQueued, jobAbandoned) {
		m.logger.Warn("Context canceled while waiting for ledger job", map[string]any{
			"user_id": userID,
			"error":   ctx.Err().Error(),
		})
		return 0, ctx.Err()
	}

	// Once claimed the job runs to completion and its result stands
	result := <-req.resultChan
	return result.balance, result.err
}

// processUserJobs handles the worker goroutine for a user's queue
func (m *QueueManager) processUserJobs(userID uint64, queue chan *jobRequest) {
	defer m.queueWaitGroup.Done()

	for req := range queue {
		// A caller that gave up before its turn gets nothing applied
		if req.ctx.Err() != nil {
			req.state.CompareAndSwap(jobQueued, jobAbandoned)
		}
		if !req.state.CompareAndSwap(jobQueued, jobClaimed) {
			req.resultChan <- jobResult{err: context.Cause(req.ctx)}
			continue
		}

		balance, err := m.run(req)
		req.resultChan <- jobResult{balance: balance, err: err}
	}

	m.logger.Debug("Ledger queue worker stopped", map[string]any{
		"user_id": userID,
	})
}

func (m *QueueManager) run(req *jobRequest) (balance int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Ledger job panicked", map[string]any{"panic": r})
			err = errs.ErrInternalServer
		}
	}()
	// Claimed jobs finish even if the caller goes away
	return req.job(context.WithoutCancel(req.ctx))
}

// Shutdown stops all worker goroutines after their queued jobs finish
func (m *QueueManager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("Shutting down ledger queues", nil)

	m.userQueues.Range(func(_, queueIface any) bool {
		if queue, ok := queueIface.(chan *jobRequest); ok {
			close(queue)
		}
		return true
	})

	m.queueWaitGroup.Wait()
	m.logger.Info("Ledger queues shut down", nil)
}
