// Package registry maintains the authoritative record of known workspaces.
//
// The registry is loaded once at process start and persisted as a single
// JSON snapshot after every successful mutation. Writes go to a temp file
// in the same directory followed by an atomic rename, so a crash never
// leaves a partially written snapshot. A crash after a backend create but
// before persistence is healed on the next start by Reconcile, which adopts
// checkouts the backends list but the registry does not know.
//
// The registry owns Workspace records exclusively; backend adapters are
// stateless and queried only for ground truth.
package registry
