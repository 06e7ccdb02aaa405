package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case job := <-w.jobs:
			if w.isShutdown() {
				job.finish(database.MiningStats{}, ErrShutdown)
				continue
			}
			w.runMiningOperation(job)

		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			w.drainJobs()
			return
		}
	}
}

// drainJobs completes every queued job with ErrShutdown.
func (w *Worker) drainJobs() {
	for {
		select {
		case job := <-w.jobs:
			job.finish(database.MiningStats{}, ErrShutdown)
		default:
			return
		}
	}
}

// runMiningOperation seals the transactions in the mempool into a new block.
func (w *Worker) runMiningOperation(job *Job) {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// If mining is signalled to be cancelled by SignalCancelMining,
	// this G can't terminate until it is told it can.
	var wait chan struct{}
	defer func() {
		if wait != nil {
			w.evHandler("worker: runMiningOperation: MINING: termination signal: waiting")
			<-wait
			w.evHandler("worker: runMiningOperation: MINING: termination signal: received")
		}
	}()

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !job.begin(cancel) {
		w.evHandler("worker: runMiningOperation: MINING: CANCELLED: before start")
		job.finish(database.MiningStats{}, context.Canceled)
		return
	}

	var stats database.MiningStats
	var err error

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case wait = <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: cancel mining requested")
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		close(job.started)

		switch job.req.AllowEmpty {
		case true:
			stats, err = w.state.MineEmptyBlock(ctx, job.req.Miner)
		default:
			stats, err = w.state.MineBlock(ctx, job.req.Miner)
		}

		if err != nil {
			switch {
			case errors.Is(err, state.ErrNoTransactions):
				w.evHandler("worker: runMiningOperation: MINING: WARNING: no transactions in mempool")
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCELLED: by request")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
			return
		}

		w.evHandler("worker: runMiningOperation: MINING: blk[%d]: duration[%v]", stats.Number, stats.Duration)
	}()

	// Wait for both G's to terminate.
	wg.Wait()

	job.finish(stats, err)
}
