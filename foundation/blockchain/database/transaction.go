package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Status represents where a transaction is in its lifecycle.
type Status string

// Set of transaction statuses. A transaction starts as pending and moves
// to confirmed exactly once, when it's included in a mined block.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// ParseStatus validates the string is a known status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusFailed:
		return Status(s), nil
	}

	return "", fmt.Errorf("unknown status %q", s)
}

// =============================================================================

// Tx is the transactional information between two parties. The field order
// defines the canonical serialization used for hashing and signing.
type Tx struct {
	FromID    string `json:"from"`      // Address of the wallet sending the amount.
	ToID      string `json:"to"`        // Address of the wallet receiving the amount.
	Amount    Amount `json:"amount"`    // Value received by the to wallet.
	Fee       Amount `json:"fee"`       // Charged to the from wallet on top of the amount.
	TimeStamp uint64 `json:"timestamp"` // Unix milliseconds when the transaction was created.
}

// NewTx constructs a new transaction stamped with the current time.
func NewTx(fromID string, toID string, amount Amount, fee Amount) (Tx, error) {
	tx := Tx{
		FromID:    fromID,
		ToID:      toID,
		Amount:    amount,
		Fee:       fee,
		TimeStamp: uint64(time.Now().UTC().UnixMilli()),
	}

	if err := tx.Validate(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// Validate checks the transaction has the required fields.
func (tx Tx) Validate() error {
	switch {
	case tx.FromID == "":
		return errors.New("from wallet is required")
	case tx.ToID == "":
		return errors.New("to wallet is required")
	case tx.Amount < MinimumUnit:
		return fmt.Errorf("amount must be at least %s", MinimumUnit)
	case tx.Amount > MaxAmount || tx.Fee > MaxAmount-tx.Amount:
		return fmt.Errorf("amount plus fee must not exceed %s", MaxAmount)
	}

	return nil
}

// Cost returns the total charged to the sender.
func (tx Tx) Cost() Amount {
	return tx.Amount + tx.Fee
}

// Hash returns the content hash of the canonical serialization.
func (tx Tx) Hash() (string, error) {
	return signature.Digest(tx)
}

// Sign uses the specified private key material to sign the transaction.
func (tx Tx) Sign(privateKey string) (BlockTx, error) {
	hash, err := tx.Hash()
	if err != nil {
		return BlockTx{}, err
	}

	sig, err := signature.Sign(tx, privateKey)
	if err != nil {
		return BlockTx{}, err
	}

	blockTx := BlockTx{
		ID:        uuid.NewString(),
		Tx:        tx,
		Signature: sig,
		TxHash:    hash,
		Status:    StatusPending,
	}

	return blockTx, nil
}

// =============================================================================

// BlockTx represents the transaction as it's recorded in the pool and
// inside a block.
type BlockTx struct {
	ID string `json:"id"`
	Tx
	Signature string `json:"signature"`
	TxHash    string `json:"hash"`
	Status    Status `json:"status"`
	BlockID   string `json:"block_id,omitempty"`
}

// VerifySignature recomputes the tag from the stored fields using the
// specified private key material and compares it with the stored tag.
func (tx BlockTx) VerifySignature(privateKey string) bool {
	return signature.Verify(tx.Tx, privateKey, tx.Signature)
}

// VerifyHash recomputes the content hash and compares it with the stored hash.
func (tx BlockTx) VerifyHash() bool {
	hash, err := tx.Tx.Hash()
	if err != nil {
		return false
	}

	return hash == tx.TxHash
}

// Hash implements the merkle Hashable interface for providing a hash
// of a block transaction. The stored content hash is used.
func (tx BlockTx) Hash() string {
	return tx.TxHash
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two block transactions.
func (tx BlockTx) Equals(otherTx BlockTx) bool {
	return tx.ID == otherTx.ID
}

// String implements the fmt.Stringer interface for logging.
func (tx BlockTx) String() string {
	return fmt.Sprintf("%s:%s->%s:%s", tx.ID, tx.FromID, tx.ToID, tx.Amount)
}
