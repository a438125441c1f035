// Package cli provides the interactive CRM console.
//
// It wires configuration, local storage, the REST gateway and the
// application services behind a small REPL. Typical flow: restore the
// session persisted by a previous run, then register (and verify the
// emailed code) or log in, and work with users and customers.
//
// Key features:
//   - Register / Verify / Resend / Abandon a pending registration
//   - Login / Logout / Status
//   - Users: list, add, edit, toggle, delete (superuser)
//   - Customers: list with filters, add, edit, delete, statistics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
