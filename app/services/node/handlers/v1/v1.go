// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *zap.SugaredLogger
	State       *state.State
	Evts        *events.Events
	MineTimeout time.Duration
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/blockchain/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/blockchain/blocks", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/blockchain/blocks/:id", pbl.Block)
	app.Handle(http.MethodPost, version, "/transactions", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/transactions", pbl.Transactions)
	app.Handle(http.MethodGet, version, "/transactions/:id", pbl.Transaction)
	app.Handle(http.MethodGet, version, "/transactions/:id/validate", pbl.ValidateTransaction)
	app.Handle(http.MethodGet, version, "/transactions/:id/proof", pbl.TransactionProof)
	app.Handle(http.MethodGet, version, "/wallets/:address/transactions", pbl.WalletTransactions)
	app.Handle(http.MethodGet, version, "/wallets/:address/balance", pbl.WalletBalance)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:         cfg.Log,
		State:       cfg.State,
		MineTimeout: cfg.MineTimeout,
	}

	app.Handle(http.MethodPost, version, "/blockchain/mine", prv.MineBlock)
	app.Handle(http.MethodGet, version, "/blockchain/validate", prv.ValidateChain)
}
