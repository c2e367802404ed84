// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the REST surface of the registry.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/priorq/api/accounts"
	"github.com/vechain/priorq/api/waitlist"
	"github.com/vechain/priorq/registry"
)

// Options api behavior switches.
type Options struct {
	AllowedOrigins string
	EnableMetrics  bool

	// Now samples the operation time for mutating requests. Defaults to the
	// wall clock in seconds.
	Now func() uint64
}

// New returns the api handler.
func New(reg *registry.Registry, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	now := opts.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) } // #nosec G115
	}

	router := mux.NewRouter()
	accounts.New(reg, now).
		Mount(router, "/accounts")
	waitlist.New(reg, now).
		Mount(router, "/waitlist")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
	)(handler)

	return handler.ServeHTTP
}
