// Package private maintains the group of handlers for administrative access.
package private

import (
	"context"
	"net/http"
	"time"

	v1 "github.com/ardanlabs/ledger/business/web/v1"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of administrative ledger endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	State       *state.State
	MineTimeout time.Duration
}

// ChainValidity reports the result of a chain validation. When the chain
// is invalid the index of the first failing block and the reason are set.
type ChainValidity struct {
	IsValid bool    `json:"isValid"`
	Index   *uint64 `json:"index,omitempty"`
	TxID    string  `json:"tx_id,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// MineBlock mines the next block from the pending transactions and
// returns it once it is part of the chain. The search is abandoned after
// MineTimeout when one is set.
func (h Handlers) MineBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	mineCtx := ctx
	if h.MineTimeout > 0 {
		var cancel context.CancelFunc
		mineCtx, cancel = context.WithTimeout(ctx, h.MineTimeout)
		defer cancel()
	}

	block, err := h.State.MineNewBlock(mineCtx)
	if err != nil {
		return v1.LedgerError(err)
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "index", block.Header.Index, "hash", block.Hash, "trans", len(block.Values()))

	return web.Respond(ctx, w, database.NewBlockData(block), http.StatusCreated)
}

// ValidateChain walks the whole chain and reports whether it is intact. A
// broken chain is a normal response, not an error.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	err := h.State.ValidateChain(ctx)

	var resp ChainValidity
	switch {
	case err == nil:
		resp.IsValid = true

	case database.IsIntegrityError(err):
		ie := database.GetIntegrityError(err)
		index := ie.Index
		resp = ChainValidity{
			Index:  &index,
			TxID:   ie.TxID,
			Reason: ie.Reason,
		}

	default:
		return err
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
