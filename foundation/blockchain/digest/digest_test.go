package digest_test

import (
	"bytes"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_KnownVectors(t *testing.T) {
	type table struct {
		name  string
		input string
		exp   string
	}

	tt := []table{
		{
			name:  "empty",
			input: "",
			exp:   "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "abc",
			input: "abc",
			exp:   "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:  "two-blocks",
			input: "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			exp:   "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
		},
		{
			name:  "genesis",
			input: "genesis",
			exp:   hexSum([]byte("genesis")),
		},
	}

	t.Log("Given the need to produce standard SHA-256 digests.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen hashing %q.", testID, tst.input)
				{
					got := digest.Sum([]byte(tst.input)).Hex()
					if got != tst.exp {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould match the known digest.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould match the known digest.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_PaddingBoundaries(t *testing.T) {
	t.Log("Given the need to pad messages around the 512 bit block boundaries.")
	{
		for _, n := range []int{0, 1, 55, 56, 57, 63, 64, 65, 119, 120, 127, 128, 1000} {
			data := bytes.Repeat([]byte{'a'}, n)

			got := digest.Sum(data).Hex()
			exp := hexSum(data)
			if got != exp {
				t.Fatalf("\t%s\tShould hash a %d byte message correctly: got %s, exp %s", failed, n, got, exp)
			}
			t.Logf("\t%s\tShould hash a %d byte message correctly.", success, n)
		}
	}
}

func Test_Streaming(t *testing.T) {
	t.Log("Given the need to hash data written in pieces.")
	{
		data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 7))

		h := digest.New()
		for i := 0; i < len(data); i += 13 {
			end := min(i+13, len(data))
			h.Write(data[i:end])
		}

		mid := h.Sum(nil)
		if !bytes.Equal(mid, h.Sum(nil)) {
			t.Fatalf("\t%s\tShould not change state when calling Sum.", failed)
		}
		t.Logf("\t%s\tShould not change state when calling Sum.", success)

		exp := digest.Sum(data)
		if !bytes.Equal(mid, exp[:]) {
			t.Fatalf("\t%s\tShould produce the same digest as Sum.", failed)
		}
		t.Logf("\t%s\tShould produce the same digest as Sum.", success)

		h.Reset()
		h.Write([]byte("abc"))
		if got := h.Sum(nil); !bytes.Equal(got, sha256Bytes([]byte("abc"))) {
			t.Fatalf("\t%s\tShould start over after Reset.", failed)
		}
		t.Logf("\t%s\tShould start over after Reset.", success)

		if h.Size() != digest.Size || h.BlockSize() != digest.BlockSize {
			t.Fatalf("\t%s\tShould report the sizes of SHA-256.", failed)
		}
		t.Logf("\t%s\tShould report the sizes of SHA-256.", success)
	}
}

func Test_FromHex(t *testing.T) {
	t.Log("Given the need to decode hex digests.")
	{
		d, err := digest.FromHex(digest.Empty.Hex())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to decode a digest: %v", failed, err)
		}
		if d != digest.Empty {
			t.Fatalf("\t%s\tShould round trip the empty digest.", failed)
		}
		t.Logf("\t%s\tShould round trip the empty digest.", success)

		for _, bad := range []string{"", "00", strings.Repeat("zz", 32)} {
			if _, err := digest.FromHex(bad); err == nil {
				t.Fatalf("\t%s\tShould reject %q.", failed, bad)
			}
		}
		t.Logf("\t%s\tShould reject malformed digests.", success)
	}
}

func Test_HashValue(t *testing.T) {
	t.Log("Given the need to hash structured values.")
	{
		v := struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}{"bill", 10}

		got, err := digest.Hash(v)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to hash the value: %v", failed, err)
		}

		exp := hexSum([]byte(`{"name":"bill","value":10}`))
		if got != exp {
			t.Fatalf("\t%s\tShould hash the JSON form: got %s, exp %s", failed, got, exp)
		}
		t.Logf("\t%s\tShould hash the JSON form.", success)

		if _, err := digest.Hash(make(chan int)); err == nil {
			t.Fatalf("\t%s\tShould fail for values that can't be marshaled.", failed)
		}
		t.Logf("\t%s\tShould fail for values that can't be marshaled.", success)
	}
}

// =============================================================================

func sha256Bytes(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func hexSum(data []byte) string {
	sum := sha256.Sum256(data)
	return digest.Digest(sum).Hex()
}
