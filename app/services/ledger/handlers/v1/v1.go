// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/powledger/app/services/ledger/handlers/v1/ledgergrp"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	State  *state.State
	Worker *worker.Worker
	NS     *nameservice.NameService
	Evts   *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	lgr := ledgergrp.Handlers{
		Log:    cfg.Log,
		State:  cfg.State,
		Worker: cfg.Worker,
		NS:     cfg.NS,
		Evts:   cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", lgr.Events)
	app.Handle(http.MethodGet, version, "/genesis", lgr.Genesis)
	app.Handle(http.MethodGet, version, "/accounts", lgr.Accounts)
	app.Handle(http.MethodGet, version, "/stats", lgr.Stats)
	app.Handle(http.MethodGet, version, "/balances/list", lgr.Balances)
	app.Handle(http.MethodGet, version, "/balances/list/:account", lgr.Balances)
	app.Handle(http.MethodGet, version, "/blocks/list", lgr.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/:index", lgr.BlockByIndex)
	app.Handle(http.MethodPut, version, "/blocks/:index", lgr.AmendBlock)
	app.Handle(http.MethodGet, version, "/blocks/:index/proof/:txhash", lgr.Proof)
	app.Handle(http.MethodGet, version, "/chain/valid", lgr.Validate)
	app.Handle(http.MethodPost, version, "/chain/reset", lgr.Reset)
	app.Handle(http.MethodPut, version, "/difficulty/:level", lgr.SetDifficulty)
	app.Handle(http.MethodPost, version, "/mining/mine", lgr.Mine)
	app.Handle(http.MethodPost, version, "/mining/cancel", lgr.CancelMining)
	app.Handle(http.MethodPost, version, "/tx/submit", lgr.SubmitTransaction)
	app.Handle(http.MethodPost, version, "/tx/faucet", lgr.Faucet)
	app.Handle(http.MethodGet, version, "/tx/pending", lgr.Pending)
	app.Handle(http.MethodGet, version, "/tx/history", lgr.History)
	app.Handle(http.MethodGet, version, "/tx/history/:account", lgr.History)
}
