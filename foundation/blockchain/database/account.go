package database

import (
	"errors"
	"strings"
)

// NetworkIssuer is the account that mints coins into the ledger. It issues
// the genesis allocations, faucet payouts and mining rewards, and is never
// subject to a balance check.
const NetworkIssuer AccountID = "network"

// ErrInvalidAccount is returned when an account id is empty or malformed.
var ErrInvalidAccount = errors.New("invalid account")

// =============================================================================

// AccountID represents an account on the ledger. The value is an opaque
// label: it may be a name, or an address derived from key material that
// lives outside the ledger.
type AccountID string

// ToAccountID converts a string to an account and validates the string is
// usable as an account label.
func ToAccountID(s string) (AccountID, error) {
	a := AccountID(s)
	if !a.IsAccountID() {
		return "", ErrInvalidAccount
	}

	return a, nil
}

// IsAccountID verifies the account is not empty and holds no surrounding or
// control whitespace.
func (a AccountID) IsAccountID() bool {
	if a == "" {
		return false
	}

	if strings.TrimSpace(string(a)) != string(a) {
		return false
	}

	return !strings.ContainsAny(string(a), "\t\r\n")
}

// IsIssuer reports whether the account is the network issuer.
func (a AccountID) IsIssuer() bool {
	return a == NetworkIssuer
}
