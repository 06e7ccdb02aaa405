package database

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Preimage(t *testing.T) {
	type block struct {
		Index        uint64 `json:"index"`
		PreviousHash string `json:"previous_hash"`
		TimeStamp    uint64 `json:"timestamp"`
		Transactions []Tx   `json:"transactions"`
		Nonce        uint64 `json:"nonce"`
		MerkleRoot   string `json:"merkle_root"`
	}

	trans := []Tx{
		{From: NetworkIssuer, To: "alice", Value: 500, TimeStamp: 10},
		{From: "alice", To: "bob \"b\"", Value: 200, TimeStamp: 11},
	}

	t.Log("Given the need to hash the block without re-encoding it per nonce.")
	{
		for testID, txs := range [][]Tx{nil, trans} {
			t.Logf("\tTest %d:\tWhen handling %d transactions.", testID, len(txs))
			{
				draft, err := NewDraft(3, GenesisPrevHash, 1_700_000_000_000, txs)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to construct a draft: %v", failed, testID, err)
				}

				for _, nonce := range []uint64{0, 9, 10, 123456789} {
					draft.SetNonce(nonce)

					expTxs := txs
					if expTxs == nil {
						expTxs = []Tx{}
					}

					exp, err := json.Marshal(block{
						Index:        3,
						PreviousHash: GenesisPrevHash,
						TimeStamp:    1_700_000_000_000,
						Transactions: expTxs,
						Nonce:        nonce,
						MerkleRoot:   draft.header.TransRoot,
					})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to marshal the block: %v", failed, testID, err)
					}

					if got := draft.pre.bytes(nonce); !bytes.Equal(got, exp) {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
						t.Fatalf("\t%s\tTest %d:\tShould match the marshaled block.", failed, testID)
					}

					if draft.Hash() != digest.Sum(exp).Hex() {
						t.Fatalf("\t%s\tTest %d:\tShould hash the marshaled block at nonce %d.", failed, testID, nonce)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould match the marshaled block.", success, testID)
			}
		}
	}
}

func Test_IsHashSolved(t *testing.T) {
	t.Log("Given the need to count leading zero hex characters.")
	{
		var d digest.Digest
		d[0], d[1], d[2] = 0x00, 0x0f, 0xff

		for difficulty, exp := range []bool{true, true, true, true, false, false} {
			if got := isHashSolved(uint(difficulty), d); got != exp {
				t.Fatalf("\t%s\tShould report %t for difficulty %d.", failed, exp, difficulty)
			}
		}
		t.Logf("\t%s\tShould count leading zero hex characters.", success)
	}
}
