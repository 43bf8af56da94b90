package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/stretchr/testify/require"
)

var _ state.Recorder = (*metrics.Metrics)(nil)

func TestHandler(t *testing.T) {
	m := metrics.New()

	m.Request(http.MethodGet, http.StatusOK)
	m.BlockMined(3, 250*time.Millisecond)
	m.TransactionRejected("insufficient_funds")
	m.ChainValidated(false)
	m.PendingTransactions(7)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	for _, exp := range []string{
		`ledger_http_requests_total{method="GET",status="200"} 1`,
		`ledger_blocks_mined_total 1`,
		`ledger_transactions_rejected_total{reason="insufficient_funds"} 1`,
		`ledger_chain_validations_total{outcome="invalid"} 1`,
		`ledger_pending_transactions 7`,
	} {
		require.True(t, strings.Contains(body, exp), "missing %s", exp)
	}
}
