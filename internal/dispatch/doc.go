// Package dispatch executes user actions against the storefront API.
//
// Actions are fire-and-confirm: the dispatcher waits for the API to
// acknowledge a mutation and then refreshes the affected view store
// (fulfill → orders, respond → messages, createCampaign → ads; addProduct
// refreshes nothing). It never edits a snapshot. Failures come back as
// *storefront.Error so the UI decides how to show them.
//
// A second request for the same kind and target while the first is
// outstanding is refused locally with KindAlreadyInFlight.
package dispatch
