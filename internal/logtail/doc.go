// Package logtail reads the tail of shopdeck's log file for the in-app log
// overlay.
//
// Read keeps the last N lines with a ring buffer, so memory stays
// O(maxLines) regardless of file size. Tail additionally parses each line
// as written by internal/logging:
//
//	2025-01-02T10:00:00.000Z	WARN	poll	poll/scheduler.go:280	poll refresh failed	{"view": "orders"}
//	{"level":"warn","time":"...","logger":"poll","msg":"poll refresh failed","view":"orders"}
//
// Both the console and JSON encodings are understood. Lines matching
// neither, such as stack trace continuations, are returned with only Raw
// set.
//
// Read returns nil, nil for a missing file; the log is created lazily and
// an empty overlay is the right result before the first write.
package logtail
