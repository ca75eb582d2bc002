// Package state provides the per-view state stores for shopdeck.
//
// # Overview
//
// Each view (dashboard, orders, products, ads, customer service) owns one
// Store. The store holds the last good snapshot of its resource, a loading
// flag, the last error, and a derived Visible projection. It is the single
// path by which fetched data reaches the UI.
//
// # Update Semantics
//
//	// Refresh start
//	→ Loading = true, previous snapshot stays visible
//
//	// Success
//	→ Snapshot replaced wholesale
//	→ LastError = nil, ConsecutiveFailures = 0
//	→ Visible = projection(Snapshot)
//
//	// Failure
//	→ Snapshot unchanged
//	→ LastError = err, ConsecutiveFailures++
//
// A store never drops a last-known-good snapshot because a later refresh
// failed.
//
// # Ordering and Cancellation
//
// Every refresh takes a sequence number when it starts. A result is applied
// only if no refresh started after it has already been applied, so a slow
// early response cannot overwrite a fast later one. Loading stays true while
// the most recently started refresh is unresolved.
//
// A refresh whose context is cancelled before its result is applied leaves
// the store untouched. The poll scheduler cancels a lease's context and then
// calls Barrier, after which that lease can no longer write.
//
// # Projections
//
// SetFilter installs a Projection (for example TitleFilter for the product
// search box). Filtering and fetching are independent: changing the filter
// recomputes Visible from the current snapshot and never issues a request.
//
// # Concurrency Model
//
// A sync.RWMutex guards the state. The fetch itself runs without the lock,
// so readers are never blocked on network I/O. Snapshots are treated as
// immutable once fetched; projections build new slices instead of editing
// them in place.
//
// # Testing Considerations
//
// NewStore takes a plain FetchFunc, so tests drive stores with closures or
// gated fakes and control exactly when and in what order results arrive.
package state
