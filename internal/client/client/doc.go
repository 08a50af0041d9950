// Package client contains client-side building blocks for the Portal CLI.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     authentication, recovery flows, spreadsheet browsing and the admin
//     endpoints.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that attaches the
//     bearer token, throttles outbound requests, tags each request with an
//     X-Request-ID and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError values that unwrap to
// ErrUnauthorized, ErrForbidden, ErrNotFound, ErrFirstAccessRequired,
// ErrUnavailable or ErrRequestFailed. Transport failures unwrap to
// ErrUnavailable. Match them with errors.Is.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; each call is additionally bounded
// by the configured request timeout.
package client
