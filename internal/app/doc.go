// Package app is the composition root for shopdeck.
//
// # Overview
//
// Run wires configuration, logging, the storefront client, the console and
// the UI, then blocks until the user quits or the context is cancelled.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         viper: file, SHOPDECK_* env, defaults
//	       ├─────> logging.New()         zap logger writing to log_file
//	       ├─────> prefs.Load()          theme and start view
//	       ├─────> storefront.NewClient()
//	       ├─────> console.New()         poll leases, view stores, dispatcher
//	       ├─────> console.Show()        fetch the start view immediately
//	       └─────> errgroup
//	                ├─> ui.Run()         Bubble Tea program (blocks)
//	                └─> console.Close()  once the UI exits or ctx is done
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file present but invalid (bad TOML, negative interval)
//   - Log file cannot be opened
//   - API address cannot be parsed
//   - The UI program fails
//
// Recoverable errors are left to the console: fetch failures keep the last
// snapshot on screen and polling continues. The storefront does not need to
// be reachable at startup.
package app
