// Package ledgergrp maintains the group of handlers for the ledger.
package ledgergrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/validate"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	State  *state.State
	Worker *worker.Worker
	NS     *nameservice.NameService
	WS     websocket.Upgrader
	Evts   *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// Optional topic parameters limit the stream to matching event prefixes.
	ch := h.Evts.Acquire(v.TraceID, r.URL.Query()["topic"]...)
	defer func() {
		dropped, err := h.Evts.Release(v.TraceID)
		if err == nil && dropped > 0 {
			h.Log.Infow("events", "traceid", v.TraceID, "dropped", dropped)
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ntx NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return decodeError(err)
	}

	from := h.NS.Resolve(ntx.From)
	to := h.NS.Resolve(ntx.To)

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "from", from, "to", to, "value", ntx.Value)

	tran, err := h.State.SubmitTransaction(from, to, ntx.Value)
	if err != nil {
		return errs.Ledger(err)
	}

	return web.Respond(ctx, w, h.toTx(tran), http.StatusCreated)
}

// Faucet has the network issue coins to an account.
func (h Handlers) Faucet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nf NewFaucet
	if err := web.Decode(r, &nf); err != nil {
		return decodeError(err)
	}

	to := h.NS.Resolve(nf.To)

	h.Log.Infow("faucet", "traceid", web.GetTraceID(ctx), "to", to, "value", nf.Value)

	tran, err := h.State.Faucet(to, nf.Value)
	if err != nil {
		return errs.Ledger(err)
	}

	return web.Respond(ctx, w, h.toTx(tran), http.StatusCreated)
}

// Pending returns the set of transactions waiting to be mined.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pending := h.State.RetrievePending()

	trans := make([]tx, len(pending))
	for i, tran := range pending {
		trans[i] = h.toTx(tran)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// History returns the mined transactions, newest first, optionally limited
// to a single account.
func (h Handlers) History(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var account database.AccountID
	if acct := web.Param(r, "account"); acct != "" {
		account = h.NS.Resolve(acct)
	}

	hist := h.State.History(account)

	trans := make([]historyTx, len(hist))
	for i, htx := range hist {
		trans[i] = historyTx{
			tx:             h.toTx(htx.Tx),
			BlockIndex:     htx.BlockIndex,
			BlockTimeStamp: htx.BlockTimeStamp,
		}
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Mine queues a mining request and waits for the block to be sealed.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nm NewMine
	if err := web.Decode(r, &nm); err != nil {
		return decodeError(err)
	}

	req := worker.Request{
		Miner:      h.NS.Resolve(nm.Miner),
		AllowEmpty: nm.AllowEmpty,
	}

	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "miner", req.Miner, "allow_empty", req.AllowEmpty)

	job := h.Worker.Submit(req)

	ms, err := job.Wait(ctx)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return errs.NewTrusted(errors.New("mining was cancelled"), http.StatusConflict)
		case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrShutdown):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return errs.Ledger(err)
	}

	blk, err := h.State.RetrieveBlock(ms.Number)
	if err != nil {
		return errs.Ledger(err)
	}

	return web.Respond(ctx, w, toMined(ms, blk.Hash()), http.StatusCreated)
}

// CancelMining stops the mining operation in progress.
func (h Handlers) CancelMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	done := h.Worker.SignalCancelMining()
	done()

	return web.Respond(ctx, w, status{Status: "mining cancel signaled"}, http.StatusOK)
}

// SetDifficulty changes the difficulty used for the next block.
func (h Handlers) SetDifficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	level, err := strconv.Atoi(web.Param(r, "level"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid level: %w", err), http.StatusBadRequest)
	}

	if !h.State.SetDifficulty(level) {
		return errs.NewTrusted(database.ErrInvalidDifficulty, http.StatusBadRequest)
	}

	resp := struct {
		Difficulty uint `json:"difficulty"`
	}{
		Difficulty: h.State.Difficulty(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate walks the chain checking its integrity.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validity{Valid: true}
	if err := h.State.Validate(); err != nil {
		resp = validity{Valid: false, Reason: err.Error()}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Reset truncates the chain back to the genesis block, dropping the pending
// transactions and any block being mined.
func (h Handlers) Reset(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.Log.Infow("reset", "traceid", web.GetTraceID(ctx), "blocks", len(h.State.RetrieveBlocks()))

	if err := h.State.Truncate(); err != nil {
		return err
	}

	return web.Respond(ctx, w, status{Status: "chain reset to genesis"}, http.StatusOK)
}

// Blocks returns every block of the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.RetrieveBlocks()

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByIndex returns the block at the index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := parseIndex(r)
	if err != nil {
		return err
	}

	blk, err := h.State.RetrieveBlock(index)
	if err != nil {
		return errs.Ledger(err)
	}

	return web.Respond(ctx, w, h.toBlock(blk), http.StatusOK)
}

// Proof returns the merkle inclusion proof for a transaction in the block at
// the index, checked against the block's merkle root.
func (h Handlers) Proof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := parseIndex(r)
	if err != nil {
		return err
	}

	txProof, err := h.State.RetrieveProof(index, web.Param(r, "txhash"))
	if err != nil {
		return errs.Ledger(err)
	}

	verified, err := txProof.Verify()
	if err != nil {
		return err
	}

	resp := proof{
		Index:      txProof.BlockNumber,
		Tx:         h.toTx(txProof.Tx),
		MerkleRoot: txProof.MerkleRoot,
		Proof:      txProof.Proof,
		Order:      txProof.Order,
		Verified:   verified,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AmendBlock handles attempts to change a mined block. Blocks are sealed so
// this always responds with a conflict.
func (h Handlers) AmendBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := parseIndex(r)
	if err != nil {
		return err
	}

	var ab AmendBlock
	if err := web.Decode(r, &ab); err != nil {
		return decodeError(err)
	}

	return errs.Ledger(h.State.AmendBlock(index, ab.Field))
}

// Balances returns the current balances for all accounts or a single one.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var bals []balance

	switch acct := web.Param(r, "account"); acct {
	case "":
		for account, info := range h.State.Balances() {
			bals = append(bals, h.toBalance(account, info.Balance, info.Received, info.Sent, info.TxCount))
		}
		sort.Slice(bals, func(i, j int) bool {
			return bals[i].Account < bals[j].Account
		})

	default:
		account := h.NS.Resolve(acct)
		info := h.State.Account(account)
		bals = append(bals, h.toBalance(account, info.Balance, info.Received, info.Sent, info.TxCount))
	}

	resp := balances{
		LatestBlock: h.State.RetrieveLatestBlock().Hash(),
		Pending:     len(h.State.RetrievePending()),
		Balances:    bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Stats returns the network statistics and the mining history.
func (h Handlers) Stats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	history := h.State.MiningHistory()

	resp := stats{
		Network: h.State.NetworkStats(),
		Mining:  make([]mined, len(history)),
	}

	for i, ms := range history {
		var hash string
		if blk, err := h.State.RetrieveBlock(ms.Number); err == nil {
			hash = blk.Hash()
		}
		resp.Mining[i] = toMined(ms, hash)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Accounts returns the demo accounts known to the name service.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.NS.Accounts(), http.StatusOK)
}

// =============================================================================

func (h Handlers) toTx(tran database.Tx) tx {
	return tx{
		Hash:      tran.HashHex(),
		From:      tran.From,
		FromName:  h.NS.Lookup(tran.From),
		To:        tran.To,
		ToName:    h.NS.Lookup(tran.To),
		Value:     tran.Value,
		TimeStamp: tran.TimeStamp,
	}
}

func (h Handlers) toBlock(blk database.Block) block {
	dbTrans := blk.Transactions()

	trans := make([]tx, len(dbTrans))
	for i, tran := range dbTrans {
		trans[i] = h.toTx(tran)
	}

	return block{
		Hash:         blk.Hash(),
		Index:        blk.Number(),
		PreviousHash: blk.PrevBlockHash(),
		TimeStamp:    blk.TimeStamp(),
		Nonce:        blk.Nonce(),
		MerkleRoot:   blk.MerkleRoot(),
		Transactions: trans,
	}
}

func (h Handlers) toBalance(account database.AccountID, bal, received, sent database.Amount, count uint64) balance {
	return balance{
		Account:  account,
		Name:     h.NS.Lookup(account),
		Balance:  bal,
		Received: received,
		Sent:     sent,
		TxCount:  count,
	}
}

func parseIndex(r *http.Request) (uint64, error) {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid index: %w", err), http.StatusBadRequest)
	}
	return index, nil
}

// decodeError hands back validation failures as is so they render their
// fields, anything else is a bad request.
func decodeError(err error) error {
	if validate.IsFieldErrors(err) {
		return err
	}

	return errs.NewTrusted(err, http.StatusBadRequest)
}
