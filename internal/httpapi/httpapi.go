// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package httpapi implements A5: the gorilla/mux router and
// gorilla/handlers middleware chain wrapping the ingest entry point,
// grounded on the teacher's own cmd/cc-backend router construction
// (mux.NewRouter + handlers.CompressHandler/RecoveryHandler/CORS +
// CustomLoggingHandler).
package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Ladvien/self-sensored-sub003/internal/auth"
	"github.com/Ladvien/self-sensored-sub003/internal/obslog"
)

// API wires the ingest handler and its collaborator middlewares into
// a mux.Router.
type API struct {
	Authenticator auth.Authenticator
	IngestHandler http.Handler
	RateLimit     func(http.Handler) http.Handler // nil disables rate limiting
}

// Router builds the full handler chain: logging -> compression ->
// recovery -> CORS -> auth -> rate limit -> routes.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()

	r.Handle("/api/v1/ingest", a.wrap(a.IngestHandler)).Methods(http.MethodPost)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(handlers.CORS(
		handlers.AllowCredentials(),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedOrigins([]string{"*"}),
	))

	return handlers.CustomLoggingHandler(io.Discard, r, logFormatter)
}

// wrap runs auth first so RateLimit sees the resolved user_id in
// context, then the rate limiter, then the handler itself.
func (a *API) wrap(h http.Handler) http.Handler {
	inner := h
	if a.RateLimit != nil {
		inner = a.RateLimit(inner)
	}
	return auth.Middleware(a.Authenticator)(inner)
}

func logFormatter(_ io.Writer, params handlers.LogFormatterParams) {
	obslog.Infof("%s %s (%d, %.02fkb, %dms)",
		params.Request.Method, params.URL.RequestURI(),
		params.StatusCode, float32(params.Size)/1024,
		time.Since(params.TimeStamp).Milliseconds())
}
