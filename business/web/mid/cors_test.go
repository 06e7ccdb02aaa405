package mid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/powledger/business/web/mid"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Cors(t *testing.T) {
	type table struct {
		name    string
		origins []string
		origin  string
		exp     string
	}

	tt := []table{
		{name: "wildcard", origins: []string{"*"}, origin: "http://a.local", exp: "*"},
		{name: "listed", origins: []string{"http://a.local", "http://b.local"}, origin: "http://b.local", exp: "http://b.local"},
		{name: "unlisted", origins: []string{"http://a.local"}, origin: "http://c.local", exp: ""},
		{name: "no origin", origins: []string{"http://a.local"}, origin: "", exp: ""},
	}

	t.Log("Given the need to set CORS headers for allowed origins.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling an %s origin.", testID, tst.name)
				{
					var called bool
					h := mid.Cors(tst.origins)(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
						called = true
						return nil
					})

					r := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
					if tst.origin != "" {
						r.Header.Set("Origin", tst.origin)
					}
					w := httptest.NewRecorder()

					if err := h(context.Background(), w, r); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to run the handler: %v", failed, testID, err)
					}
					if !called {
						t.Fatalf("\t%s\tTest %d:\tShould call the next handler.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould call the next handler.", success, testID)

					got := w.Header().Get("Access-Control-Allow-Origin")
					if got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould set the allowed origin to %q : got %q", failed, testID, tst.exp, got)
					}
					t.Logf("\t%s\tTest %d:\tShould set the allowed origin to %q.", success, testID, tst.exp)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
