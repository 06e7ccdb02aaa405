package database_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

func Test_ParseAmount(t *testing.T) {
	type table struct {
		input string
		exp   database.Amount
		str   string
	}

	tt := []table{
		{input: "10", exp: 10 * database.Coin, str: "10"},
		{input: "2.5", exp: 250_000_000, str: "2.5"},
		{input: "0.00000001", exp: 1, str: "0.00000001"},
		{input: "1e-3", exp: 100_000, str: "0.001"},
		{input: "0", exp: 0, str: "0"},
		{input: "184467440737.09551615", exp: 18446744073709551615, str: "184467440737.09551615"},
	}

	t.Log("Given the need to read decimal amounts.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen parsing %q.", testID, tst.input)
			{
				got, err := database.ParseAmount(tst.input)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to parse the amount: %v", failed, testID, err)
				}
				if got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould get %d base units: got %d", failed, testID, tst.exp, got)
				}
				t.Logf("\t%s\tTest %d:\tShould get %d base units.", success, testID, tst.exp)

				if got.String() != tst.str {
					t.Fatalf("\t%s\tTest %d:\tShould render as %q: got %q", failed, testID, tst.str, got.String())
				}
				t.Logf("\t%s\tTest %d:\tShould render as %q.", success, testID, tst.str)
			}
		}
	}

	bad := []string{"", "abc", "-1", "0.000000001", "184467440737.09551616", "1e20"}

	t.Log("Given the need to reject values that are not amounts.")
	{
		for testID, input := range bad {
			t.Logf("\tTest %d:\tWhen parsing %q.", testID, input)
			{
				if _, err := database.ParseAmount(input); !errors.Is(err, database.ErrAmountFormat) {
					t.Fatalf("\t%s\tTest %d:\tShould fail with a format error: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould fail with a format error.", success, testID)
			}
		}
	}
}

func Test_AmountJSON(t *testing.T) {
	type doc struct {
		Value database.Amount `json:"value"`
	}

	t.Log("Given the need to move amounts through JSON as decimal numbers.")
	{
		var d doc
		if err := json.Unmarshal([]byte(`{"value":0.5}`), &d); err != nil {
			t.Fatalf("\t%s\tShould be able to decode a fractional number: %v", failed, err)
		}
		if d.Value != database.Coin/2 {
			t.Fatalf("\t%s\tShould decode half a coin: got %d", failed, d.Value)
		}
		t.Logf("\t%s\tShould decode a fractional number.", success)

		if err := json.Unmarshal([]byte(`{"value":"12.75"}`), &d); err != nil || d.Value != database.MustParseAmount("12.75") {
			t.Fatalf("\t%s\tShould decode a quoted number: %d %v", failed, d.Value, err)
		}
		t.Logf("\t%s\tShould decode a quoted number.", success)

		if err := json.Unmarshal([]byte(`{"value":-3}`), &d); err == nil {
			t.Fatalf("\t%s\tShould reject a negative number.", failed)
		}
		t.Logf("\t%s\tShould reject a negative number.", success)

		data, err := json.Marshal(doc{Value: database.MustParseAmount("2.5")})
		if err != nil || string(data) != `{"value":2.5}` {
			t.Fatalf("\t%s\tShould encode as a bare number: %s %v", failed, data, err)
		}
		t.Logf("\t%s\tShould encode as a bare number.", success)

		tx, err := database.NewTx("alice", "bob", database.MustParseAmount("0.1"), 1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build a fractional transaction: %v", failed, err)
		}
		if tx.String() != "alice->bob:0.1" {
			t.Fatalf("\t%s\tShould log the decimal value: %s", failed, tx)
		}
		t.Logf("\t%s\tShould log the decimal value.", success)
	}
}
