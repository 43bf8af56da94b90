package database

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when a textual amount can't be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount represents a monetary value as a count of the minimum unit of 0.01.
// An Amount of 5001 is 50.01.
type Amount uint64

// MinimumUnit is the smallest amount that can be transferred.
const MinimumUnit Amount = 1

// MaxAmount is the largest amount that can be represented as a Balance.
const MaxAmount Amount = math.MaxInt64

// unitsPerCoin is the number of minimum units in 1.00.
const unitsPerCoin = 100

// NewAmount constructs an amount from whole coins.
func NewAmount(coins uint64) Amount {
	return Amount(coins * unitsPerCoin)
}

// ParseAmount converts a decimal string like "50", "50.5" or "50.01" into
// an amount. More than two fractional digits and values above MaxAmount
// are rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || (hasFrac && frac == "") || len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	coins, err := strconv.ParseUint(whole, 10, 64)
	if err != nil || coins > uint64(MaxAmount)/unitsPerCoin {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}

	var cents uint64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		cents, _ = strconv.ParseUint(frac, 10, 64)
	}

	total := coins*unitsPerCoin + cents
	if total > uint64(MaxAmount) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}

	return Amount(total), nil
}

// String returns the amount with exactly two fractional digits.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", uint64(a)/unitsPerCoin, uint64(a)%unitsPerCoin)
}

// MarshalJSON implements the json.Marshaler interface. Amounts are always
// written as a quoted decimal string so the text form is stable.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Both quoted
// strings and bare JSON numbers are accepted.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}

	v, err := ParseAmount(s)
	if err != nil {
		return err
	}

	*a = v
	return nil
}

// =============================================================================

// Balance represents a signed amount of minimum units. Balances are derived
// from history and a corrupt history can drive one below zero.
type Balance int64

// String returns the balance with exactly two fractional digits.
func (b Balance) String() string {
	sign := ""
	v := int64(b)
	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/unitsPerCoin, v%unitsPerCoin)
}

// Covers reports whether the balance can pay the specified amount.
func (b Balance) Covers(a Amount) bool {
	return b >= 0 && uint64(b) >= uint64(a)
}

// MarshalJSON implements the json.Marshaler interface.
func (b Balance) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(b.String())), nil
}
