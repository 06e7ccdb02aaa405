// Package worker runs mining operations for the ledger on a dedicated
// goroutine so callers can wait on them or cancel them.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// maxPendingJobs represents the max number of mining requests that can be
// queued behind the running one. Requests beyond this are rejected.
const maxPendingJobs = 16

// Set of errors returned when a job can't be run.
var (
	ErrShutdown  = errors.New("worker is shut down")
	ErrQueueFull = errors.New("mining queue is full")
)

// =============================================================================

// Request describes a mining operation.
type Request struct {
	Miner      database.AccountID
	AllowEmpty bool
}

// Job represents a submitted mining request. It completes once with the
// stats of the mined block or the reason it could not be mined.
type Job struct {
	req     Request
	started chan struct{}
	done    chan struct{}

	mu        sync.Mutex
	cancel    context.CancelFunc
	cancelled bool

	stats database.MiningStats
	err   error
}

func newJob(req Request) *Job {
	return &Job{
		req:     req,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Wait blocks until the job completes or the context is done. Leaving
// because of the context does not cancel the job.
func (j *Job) Wait(ctx context.Context) (database.MiningStats, error) {
	select {
	case <-j.done:
		return j.stats, j.err
	case <-ctx.Done():
		return database.MiningStats{}, ctx.Err()
	}
}

// Cancel stops the job if it is queued or running. The chain is left
// unchanged by a cancelled job.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cancelled = true
	if j.cancel != nil {
		j.cancel()
	}
}

// Started is closed when the proof of work search begins.
func (j *Job) Started() <-chan struct{} {
	return j.started
}

// Done is closed when the job completes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// begin registers the cancel function for the running job. It reports
// false if the job was cancelled while queued.
func (j *Job) begin(cancel context.CancelFunc) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cancelled {
		return false
	}

	j.cancel = cancel
	return true
}

func (j *Job) finish(stats database.MiningStats, err error) {
	j.stats = stats
	j.err = err
	close(j.done)
}

// =============================================================================

// Worker manages the POW workflows for the ledger.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	shut         chan struct{}
	jobs         chan *Job
	cancelMining chan chan struct{}
	evHandler    state.EventHandler
	mu           sync.Mutex
	shutOnce     sync.Once
}

// Run creates a worker, registers the worker with the state package, and
// starts up the mining goroutine.
func Run(st *state.State, evHandler state.EventHandler) *Worker {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	w := Worker{
		state:        st,
		shut:         make(chan struct{}),
		jobs:         make(chan *Job, maxPendingJobs),
		cancelMining: make(chan chan struct{}, 1),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.miningOperations()
	}()

	<-hasStarted

	return &w
}

// Submit queues a mining request.
func (w *Worker) Submit(req Request) *Job {
	job := newJob(req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isShutdown() {
		job.finish(database.MiningStats{}, ErrShutdown)
		return job
	}

	select {
	case w.jobs <- job:
		w.evHandler("worker: Submit: MINING: queued: miner[%s]", req.Miner)
	default:
		job.finish(database.MiningStats{}, ErrQueueFull)
	}

	return job
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. Queued jobs complete
// with ErrShutdown.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: signal cancel mining")
		done := w.SignalCancelMining()
		done()

		w.evHandler("worker: shutdown: terminate goroutines")
		w.mu.Lock()
		close(w.shut)
		w.mu.Unlock()
		w.wg.Wait()
	})
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately. That G will not return from the function until done
// is called. This allows the caller to complete any state changes before a new
// mining operation takes place.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelMining <- wait:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	return func() { close(wait) }
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
