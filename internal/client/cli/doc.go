// Package cli provides the interactive pairchat command-line client.
//
// It wires configuration, the local SQLite cache, API services and an
// interactive REPL. On start the saved session is restored, a background
// connectivity watcher is started, and user commands are executed until
// exit.
//
// Key features:
//   - Signup / Login / Logout (session kept in the local cache)
//   - Partners, History (falls back to the cache while offline), Send,
//     SendImage and Save for image attachments
//   - Listen: print presence changes and incoming messages as they arrive
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
