// Package ui provides the terminal user interface for shopdeck.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program whose Model reads view state from a
// console.Console on every render. The console owns fetching: showing a view
// starts its poll lease and the model never calls the storefront directly.
// Actions are dispatched through the console from tea.Cmd goroutines and
// report back as actionResultMsg values, so the update loop never blocks on
// the network.
//
// # Package Structure
//
//   - app.go: Model, key handling, commands and the Run entry point
//   - header.go: status bar with view tabs, freshness and error state
//   - dashboard.go: metric cards, ntcharts sales chart, best sellers
//   - orders.go, products.go, ads.go, messages.go: list and detail panes
//   - campaign_form.go: modal form that drafts a new ad campaign
//   - logs.go: overlay tailing shopdeck's own log file
//   - box.go, style_helpers.go: bordered panes and background-safe styling
//   - theme.go: color palettes and status badge colors
//
// # Views
//
//   - Dashboard: sales, profit, order count, ROI and ad performance
//   - Orders: pending orders; f sends the selection to fulfillment
//   - Products: discovered products; / filters by title, a adds to store
//   - Ads: campaigns; n opens the new campaign form
//   - Customer Service: unanswered messages; r sends the AI response
//
// # Key Bindings
//
//   - 1-5 or Tab: switch views
//   - j/k, g/G: move selection
//   - R: refresh the visible view
//   - T: cycle theme (saved to prefs)
//   - L: show the log file
//   - h or ?: help
//   - e or Ctrl+C: exit
package ui
