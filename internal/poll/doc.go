// Package poll runs the recurring refreshes behind each visible view.
//
// A Scheduler hands out one Handle (a lease) per view. Activating a view
// refreshes it immediately and then on its interval; deactivating the lease
// cancels its context and stops the ticker. Once Deactivate returns, a
// state.Store target can no longer be written by that lease: its context is
// cancelled and the store's Barrier fences out any result already being
// applied.
//
// Refresh errors never stop a lease. They are logged and the next tick tries
// again.
package poll
