// Package client is the API gateway of the geoposts client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the API interface) covering marker
//     queries, post previews, draft creation and publishing, content
//     upload/fetch/delete and the OAuth code exchange.
//  2. A REST implementation (see HTTPClient) that attaches the bearer token
//     held by a Session, encodes JSON bodies, decodes ISO-8601 timestamps and
//     classifies every response.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every call fails with one of: ErrInvalidRequest (the URL could not be
// built), ErrNoResponse (transport failure), ErrDecoding (unexpected body),
// ErrUnauthorized (HTTP 401) or *ServerError (any other non-2xx, also
// matching ErrServer). Unauthorized responses never clear the Session.
//
// Concurrency & Contexts
//
// HTTPClient and Session are safe for concurrent use. All network
// operations accept a context.Context and honor cancellation.
package client
