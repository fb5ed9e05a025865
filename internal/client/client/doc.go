// Package client contains client-side building blocks for pairchat.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface).
//  2. A concrete implementation (see HTTPClient) that calls the JSON API,
//     injects the access token, transparently refreshes expired tokens and
//     maps HTTP statuses to sentinel errors. Listen opens the WebSocket and
//     decodes server pushes. Download fetches attachments, following the
//     server's redirect to object storage.
//  3. Local cache bootstrap (InitDatabase, RunMigrations) for the CLI,
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Callers match errors.Is against ErrUnavailable, ErrUnauthorized,
// ErrNotFound, ErrConflict and ErrBadRequest. The full server answer is
// available as *APIError.
package client
