package mempool_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name    string
		txs     []database.Tx
		outflow map[database.AccountID]database.Amount
	}

	tt := []table{
		{
			name: "basic",
			txs: []database.Tx{
				{From: database.NetworkIssuer, To: "alice", Value: 500, TimeStamp: 1},
				{From: "alice", To: "bob", Value: 100, TimeStamp: 2},
				{From: "bob", To: "carol", Value: 30, TimeStamp: 3},
				{From: "alice", To: "carol", Value: 50, TimeStamp: 4},
			},
			outflow: map[database.AccountID]database.Amount{"alice": 150, "bob": 30, "carol": 0},
		},
		{
			name: "fractions",
			txs: []database.Tx{
				{From: database.NetworkIssuer, To: "alice", Value: database.MustParseAmount("1.5"), TimeStamp: 1},
				{From: "alice", To: "bob", Value: database.MustParseAmount("0.25"), TimeStamp: 2},
				{From: "alice", To: "carol", Value: database.MustParseAmount("0.125"), TimeStamp: 3},
			},
			outflow: map[database.AccountID]database.Amount{"alice": database.MustParseAmount("0.375"), "bob": 0},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transactions.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for i, tx := range tst.txs {
						if n := mp.Upsert(tx); n != i+1 {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: count %d", failed, testID, n)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add new transactions.", success, testID)

					for i, tx := range mp.PickAll() {
						if !tx.Equals(tst.txs[i]) {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the arrival order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the arrival order.", success, testID)

					for accountID, exp := range tst.outflow {
						if got := mp.Outflow(accountID); got != exp {
							t.Fatalf("\t%s\tTest %d:\tShould total the pending outflow for %s: got %s, exp %s", failed, testID, accountID, got, exp)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould total the pending outflow.", success, testID)

					if !mp.Delete(tst.txs[1]) || mp.Count() != len(tst.txs)-1 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to delete a transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to delete a transaction.", success, testID)

					if mp.Delete(tst.txs[1]) {
						t.Fatalf("\t%s\tTest %d:\tShould not delete a missing transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not delete a missing transaction.", success, testID)

					picked := mp.PickAll()
					picked[0].Value = 1
					if mp.PickAll()[0].Value == 1 {
						t.Fatalf("\t%s\tTest %d:\tShould hand out a copy of the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould hand out a copy of the pool.", success, testID)

					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate the pool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate the pool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
