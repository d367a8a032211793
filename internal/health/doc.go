// Package health provides check utilities for workspace status reporting.
//
// A check compares the registry's record of a workspace against the
// filesystem and the backend's own listing.
//
// # Health Status
//
// Workspace health is represented by Status:
//
//	StatusHealthy  - Checkout present, backend lists the workspace
//	StatusMissing  - Registered but the checkout directory is gone
//	StatusUnlisted - Checkout present but the backend no longer lists it
//	StatusRemoving - A removal started and did not finish
package health
