// Package nameservice generates a deterministic set of demo accounts and
// provides name lookup for them. The same seed always produces the same
// keys and addresses.
package nameservice

import (
	"crypto/ecdsa"
	"fmt"
	"math/rand"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// maxKeyAttempts bounds the search for a valid private key per name.
const maxKeyAttempts = 16

// Account is a named demo account.
type Account struct {
	Name       string             `json:"name"`
	AccountID  database.AccountID `json:"account"`
	PrivateKey string             `json:"private_key,omitempty"`
}

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	ordered  []Account
	accounts map[database.AccountID]string
	names    map[string]database.AccountID
}

// New constructs a name service with one account per name. The keys are
// drawn from a random source seeded with the seed value.
func New(seed int64, names []string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.AccountID]string, len(names)),
		names:    make(map[string]database.AccountID, len(names)),
	}

	rnd := rand.New(rand.NewSource(seed))

	for _, name := range names {
		if _, exists := ns.names[name]; exists {
			return nil, fmt.Errorf("duplicate name %q", name)
		}

		privateKey, err := generateKey(rnd)
		if err != nil {
			return nil, fmt.Errorf("generating key for %q: %w", name, err)
		}

		account := Account{
			Name:       name,
			AccountID:  database.AccountID(crypto.PubkeyToAddress(privateKey.PublicKey).Hex()),
			PrivateKey: hexutil.Encode(crypto.FromECDSA(privateKey)),
		}

		ns.ordered = append(ns.ordered, account)
		ns.accounts[account.AccountID] = name
		ns.names[name] = account.AccountID
	}

	return &ns, nil
}

// generateKey reads 32 bytes at a time from the source until they form a
// valid secp256k1 private key.
func generateKey(rnd *rand.Rand) (*ecdsa.PrivateKey, error) {
	var lastErr error

	for range maxKeyAttempts {
		b := make([]byte, 32)
		if _, err := rnd.Read(b); err != nil {
			return nil, err
		}

		privateKey, err := crypto.ToECDSA(b)
		if err == nil {
			return privateKey, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(account database.AccountID) string {
	name, exists := ns.accounts[account]
	if !exists {
		return string(account)
	}
	return name
}

// Resolve returns the account for the specified name. Values that are not
// a known name are handed back as the account itself.
func (ns *NameService) Resolve(name string) database.AccountID {
	account, exists := ns.names[name]
	if !exists {
		return database.AccountID(name)
	}
	return account
}

// Accounts returns the accounts in the order the names were provided. The
// private keys are left out.
func (ns *NameService) Accounts() []Account {
	accounts := make([]Account, len(ns.ordered))
	for i, acct := range ns.ordered {
		acct.PrivateKey = ""
		accounts[i] = acct
	}
	return accounts
}

// PrivateKey returns the hex encoded private key for the named account.
func (ns *NameService) PrivateKey(name string) (string, bool) {
	for _, acct := range ns.ordered {
		if acct.Name == name {
			return acct.PrivateKey, true
		}
	}
	return "", false
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.AccountID]string {
	cpy := make(map[database.AccountID]string, len(ns.accounts))
	for account, name := range ns.accounts {
		cpy[account] = name
	}
	return cpy
}
