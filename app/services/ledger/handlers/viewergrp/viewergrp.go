// Package viewergrp serves a small page that streams the ledger events from
// the websocket endpoint.
package viewergrp

import (
	"context"
	"embed"
	"net/http"
)

//go:embed assets/index.html
var assets embed.FS

// Handlers manages the set of viewer endpoints.
type Handlers struct{}

// Index serves the viewer page.
func (h Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err = w.Write(page)
	return err
}
