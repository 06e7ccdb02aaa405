package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
)

// client is used for every call to the ledger service. Mining at a high
// difficulty can take a while.
var client = http.Client{
	Timeout: 5 * time.Minute,
}

// call performs the request against the ledger service and decodes the
// response into resp. Non 2xx responses are turned into errors.
func call(method string, path string, req any, resp any) error {
	var body io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	r, err := http.NewRequest(method, url+path, body)
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json")

	res, err := client.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var er errs.Response
		if err := json.NewDecoder(res.Body).Decode(&er); err != nil {
			return fmt.Errorf("status %d", res.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("status %d: %s: %v", res.StatusCode, er.Error, er.Fields)
		}
		return fmt.Errorf("status %d: %w", res.StatusCode, errors.New(er.Error))
	}

	if resp == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(resp)
}
