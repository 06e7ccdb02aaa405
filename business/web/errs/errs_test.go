package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Ledger(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
	}

	tt := []table{
		{"immutable", &database.ImmutableBlockError{Number: 1, Field: "nonce"}, http.StatusConflict},
		{"chain", state.ErrChainChanged, http.StatusConflict},
		{"notfound", fmt.Errorf("block 9: %w", database.ErrBlockNotFound), http.StatusNotFound},
		{"tx", fmt.Errorf("block 1: %w", database.ErrTxNotFound), http.StatusNotFound},
		{"balance", fmt.Errorf("alice: %w", state.ErrInsufficientBalance), http.StatusBadRequest},
		{"amount", database.ErrInvalidAmount, http.StatusBadRequest},
		{"format", fmt.Errorf("%w: \"x\"", database.ErrAmountFormat), http.StatusBadRequest},
		{"miner", state.ErrNoMinerSelected, http.StatusBadRequest},
		{"empty", state.ErrNoTransactions, http.StatusBadRequest},
	}

	t.Log("Given the need to map ledger errors to status codes.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s error.", testID, tst.name)
				{
					te := errs.GetTrusted(errs.Ledger(tst.err))
					if te == nil {
						t.Fatalf("\t%s\tTest %d:\tShould get back a trusted error.", failed, testID)
					}
					if te.Status != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould get status %d: got %d", failed, testID, tst.status, te.Status)
					}
					if !errors.Is(te, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould still match the original error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get status %d.", success, testID, tst.status)
				}
			}

			t.Run(tst.name, f)
		}

		t.Logf("\tTest %d:\tWhen handling an unexpected error.", len(tt))
		{
			if errs.IsTrusted(errs.Ledger(errors.New("disk on fire"))) {
				t.Fatalf("\t%s\tTest %d:\tShould not be trusted.", failed, len(tt))
			}
			t.Logf("\t%s\tTest %d:\tShould not be trusted.", success, len(tt))
		}
	}
}
