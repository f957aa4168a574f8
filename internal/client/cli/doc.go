// Package cli provides the interactive Amanotes terminal client.
//
// It wires configuration, the local store, the optional cloud document store,
// the session resolver and a REPL. Typical flow: restore the saved session,
// start the background connectivity monitor, and execute user commands
// against whichever backend the session resolves to.
//
// Key features:
//   - register / login / google / logout / whoami
//   - notes, tasks and projects: list, add, toggle, delete, bulk delete
//   - search and live "watch" views that re-render on every change
//   - natural-language due dates and relative timestamps in listings
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
