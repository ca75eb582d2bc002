// Package console ties the per-view stores, the poll scheduler and the
// action dispatcher together.
//
// Exactly one view is shown at a time. Show retires the previous view's
// lease and activates the new one, which fetches immediately and then polls
// on the view's interval (dashboard 60s, orders 30s, customer service 30s;
// products and ads fetch once per visit). Stores of hidden views keep their
// last snapshot but are never written until shown again.
//
// Actions go through Dispatch. Their forced refresh runs on the target
// view's live lease, so an action against a hidden view leaves that view's
// state alone.
package console
