// Package cli provides the interactive StudyShare command-line client.
//
// It wires configuration, the local session store, the API client and the
// listing browser behind a small REPL. On start the persisted session, if
// any, is resumed so the user does not have to log in again.
//
// Key features:
//   - Register (with school), Login / Logout, WhoAmI
//   - Browse files of the user's school by category
//   - Search by name, filter by class code and name
//   - Upload a file with class code and category
//   - Open prints the public URL of a listed file
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
