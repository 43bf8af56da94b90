// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	v1 "github.com/ardanlabs/ledger/business/web/v1"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
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

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns a summary of the chain and the pool.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status, err := h.State.Status()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Blocks returns the page of blocks mined inside the optional date range.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var filter database.BlockFilter
	var fe web.FieldErrors

	if s := web.Query(r, "fromDate"); s != "" {
		from, err := parseDate(s)
		if err != nil {
			fe = append(fe, web.FieldError{Field: "fromDate", Error: "fromDate must be a date"})
		}
		filter.From = from
	}

	if s := web.Query(r, "toDate"); s != "" {
		to, err := parseDate(s)
		if err != nil {
			fe = append(fe, web.FieldError{Field: "toDate", Error: "toDate must be a date"})
		}
		filter.To = to
	}

	limit, err := web.QueryInt(r, "limit", defaultBlockLimit)
	if err != nil {
		fe = append(fe, web.GetFieldErrors(err)...)
	}

	offset, err := web.QueryInt(r, "offset", 0)
	if err != nil {
		fe = append(fe, web.GetFieldErrors(err)...)
	}

	if len(fe) > 0 {
		return fe
	}

	filter.Limit = limit
	filter.Offset = offset

	blocks, total, err := h.State.QueryBlocks(filter)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, newPageDocument(blocks, total, limit, offset), http.StatusOK)
}

// Block returns the block with the specified id.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	block, err := h.State.QueryBlock(id)
	if err != nil {
		return v1.LedgerError(fmt.Errorf("block %s: %w", id, err))
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SubmitTransaction signs and adds a new transaction to the pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt NewTransaction
	if err := web.Decode(r, &nt); err != nil {
		if web.IsFieldErrors(err) {
			return err
		}
		return v1.NewRequestError(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	amount, err := database.ParseAmount(nt.Amount.String())
	if err != nil {
		return v1.LedgerError(err)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "from", nt.From, "to", nt.To, "amount", amount)

	tx, err := h.State.SubmitTransaction(nt.From, nt.To, amount)
	if err != nil {
		return v1.LedgerError(err)
	}

	return web.Respond(ctx, w, tx, http.StatusCreated)
}

// Transactions returns the page of transactions that match the query.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var filter database.TxFilter
	var fe web.FieldErrors

	if s := web.Query(r, "status"); s != "" {
		status, err := database.ParseStatus(s)
		if err != nil {
			fe = append(fe, web.FieldError{Field: "status", Error: err.Error()})
		}
		filter.Status = status
	}

	switch web.Query(r, "order") {
	case "", "desc":
		filter.Descending = true
	case "asc":
	default:
		fe = append(fe, web.FieldError{Field: "order", Error: "order must be one of [asc desc]"})
	}

	limit, err := web.QueryInt(r, "limit", defaultTxLimit)
	if err != nil {
		fe = append(fe, web.GetFieldErrors(err)...)
	}

	offset, err := web.QueryInt(r, "offset", 0)
	if err != nil {
		fe = append(fe, web.GetFieldErrors(err)...)
	}

	if len(fe) > 0 {
		return fe
	}

	filter.Limit = limit
	filter.Offset = offset

	trans, total, err := h.State.QueryTransactions(filter)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, newPageDocument(trans, total, limit, offset), http.StatusOK)
}

// Transaction returns the transaction with the specified id.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	tx, err := h.State.QueryTransaction(id)
	if err != nil {
		return v1.LedgerError(fmt.Errorf("transaction %s: %w", id, err))
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// ValidateTransaction checks the signature of the transaction and whether
// the sender can currently cover it.
func (h Handlers) ValidateTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	valid, err := h.State.ValidateTransaction(id)
	if err != nil {
		return v1.LedgerError(fmt.Errorf("transaction %s: %w", id, err))
	}

	return web.Respond(ctx, w, Validity{IsValid: valid}, http.StatusOK)
}

// TransactionProof returns the merkle proof for a confirmed transaction.
func (h Handlers) TransactionProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	proof, err := h.State.TransactionProof(id)
	if err != nil {
		return v1.LedgerError(fmt.Errorf("transaction %s: %w", id, err))
	}

	return web.Respond(ctx, w, proof, http.StatusOK)
}

// WalletTransactions returns the page of transactions sent or received by
// the wallet.
func (h Handlers) WalletTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	var fe web.FieldErrors

	amount := func(field string) database.Amount {
		s := web.Query(r, field)
		if s == "" {
			return 0
		}

		a, err := database.ParseAmount(s)
		if err != nil {
			fe = append(fe, web.FieldError{Field: field, Error: fmt.Sprintf("%s must be an amount", field)})
		}
		return a
	}

	minAmount := amount("minAmount")
	maxAmount := amount("maxAmount")

	limit, err := web.QueryInt(r, "limit", defaultTxLimit)
	if err != nil {
		fe = append(fe, web.GetFieldErrors(err)...)
	}

	offset, err := web.QueryInt(r, "offset", 0)
	if err != nil {
		fe = append(fe, web.GetFieldErrors(err)...)
	}

	if len(fe) > 0 {
		return fe
	}

	trans, total, err := h.State.QueryWalletTransactions(address, minAmount, maxAmount, limit, offset)
	if err != nil {
		return v1.LedgerError(err)
	}

	return web.Respond(ctx, w, newPageDocument(trans, total, limit, offset), http.StatusOK)
}

// WalletBalance returns the balance derived from the chain for the wallet.
func (h Handlers) WalletBalance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	wlt, err := h.State.QueryWallet(address)
	if err != nil {
		return v1.LedgerError(err)
	}

	bal, err := h.State.BalanceOf(address)
	if err != nil {
		return v1.LedgerError(err)
	}

	resp := Balance{
		Address: address,
		Name:    wlt.Name,
		Balance: bal,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
