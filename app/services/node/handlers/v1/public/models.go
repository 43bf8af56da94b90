package public

import (
	"encoding/json"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Default page sizes for the list endpoints.
const (
	defaultBlockLimit = 10
	defaultTxLimit    = 20
)

// NewTransaction is what a client posts to transfer funds between wallets.
// The amount is accepted as a JSON number or a decimal string.
type NewTransaction struct {
	From   string      `json:"from" validate:"required"`
	To     string      `json:"to" validate:"required"`
	Amount json.Number `json:"amount" validate:"required,numeric"`
}

// Pagination describes the page of a list response.
type Pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PageDocument is the response for the list endpoints.
type PageDocument[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newPageDocument[T any](data []T, total int, limit int, offset int) PageDocument[T] {
	if data == nil {
		data = []T{}
	}

	return PageDocument[T]{
		Data: data,
		Pagination: Pagination{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	}
}

// Balance is the derived balance of a wallet.
type Balance struct {
	Address string           `json:"address"`
	Name    string           `json:"name"`
	Balance database.Balance `json:"balance"`
}

// Validity reports the result of a transaction check.
type Validity struct {
	IsValid bool `json:"isValid"`
}

// parseDate accepts an RFC3339 timestamp or a plain date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
