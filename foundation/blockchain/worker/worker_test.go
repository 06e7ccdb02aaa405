package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T) *state.State {
	t.Helper()

	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := state.New(state.Config{
		Genesis: gen,
		Storage: memory.New(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

func Test_Jobs(t *testing.T) {
	t.Log("Given the need to mine on the worker.")
	{
		st := newState(t)
		w := worker.Run(st, nil)
		defer w.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := st.Faucet("A", 50); err != nil {
			t.Fatalf("\t%s\tShould be able to use the faucet: %v", failed, err)
		}

		stats, err := w.Submit(worker.Request{Miner: "M"}).Wait(ctx)
		if err != nil || stats.Number != 1 || stats.Miner != "M" {
			t.Fatalf("\t%s\tShould mine the pending transactions: %v", failed, err)
		}
		t.Logf("\t%s\tShould mine the pending transactions.", success)

		if _, err := w.Submit(worker.Request{Miner: "M"}).Wait(ctx); !errors.Is(err, state.ErrNoTransactions) {
			t.Fatalf("\t%s\tShould report an empty mempool: %v", failed, err)
		}
		t.Logf("\t%s\tShould report an empty mempool.", success)

		if _, err := w.Submit(worker.Request{Miner: "M", AllowEmpty: true}).Wait(ctx); err != nil {
			t.Fatalf("\t%s\tShould mine an empty block on request: %v", failed, err)
		}
		t.Logf("\t%s\tShould mine an empty block on request.", success)

		if st.Balance("A") != 50 || len(st.RetrieveBlocks()) != 3 || !st.IsValid() {
			t.Fatalf("\t%s\tShould leave a valid chain.", failed)
		}
		t.Logf("\t%s\tShould leave a valid chain.", success)
	}
}

func Test_Cancel(t *testing.T) {
	t.Log("Given the need to cancel mining on the worker.")
	{
		st := newState(t)
		w := worker.Run(st, nil)
		defer w.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := st.Faucet("A", 50); err != nil {
			t.Fatalf("\t%s\tShould be able to use the faucet: %v", failed, err)
		}
		st.SetDifficulty(6)

		job := w.Submit(worker.Request{Miner: "M"})
		job.Cancel()

		if _, err := job.Wait(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould cancel the job: %v", failed, err)
		}
		t.Logf("\t%s\tShould cancel the job.", success)

		job = w.Submit(worker.Request{Miner: "M"})

		select {
		case <-job.Started():
		case <-ctx.Done():
			t.Fatalf("\t%s\tShould start the job.", failed)
		}

		done := w.SignalCancelMining()
		done()

		if _, err := job.Wait(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould cancel the running job: %v", failed, err)
		}
		t.Logf("\t%s\tShould cancel the running job.", success)

		if len(st.RetrieveBlocks()) != 1 || len(st.RetrievePending()) != 1 || !st.IsValid() {
			t.Fatalf("\t%s\tShould leave the chain unchanged.", failed)
		}
		t.Logf("\t%s\tShould leave the chain unchanged.", success)
	}
}

func Test_Shutdown(t *testing.T) {
	t.Log("Given the need to stop the worker.")
	{
		st := newState(t)
		w := worker.Run(st, nil)

		if err := st.Shutdown(); err != nil {
			t.Fatalf("\t%s\tShould be able to shut down: %v", failed, err)
		}

		if _, err := w.Submit(worker.Request{Miner: "M"}).Wait(context.Background()); !errors.Is(err, worker.ErrShutdown) {
			t.Fatalf("\t%s\tShould reject jobs after shutdown: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject jobs after shutdown.", success)
	}
}
