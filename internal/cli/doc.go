// Package cli provides the interactive CyberSib terminal client.
//
// The REPL handles account and progress commands itself (register, login,
// start, complete, stats and so on) and forwards every other line to the
// simulated shell in package terminal. A background watcher re-reads the
// session on an interval so the prompt stays current.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
