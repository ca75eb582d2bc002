package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutSplitWidth is the minimum width to show a detail pane beside lists.
	LayoutSplitWidth = 90

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Chrome heights around the content area.
const (
	headerLines = 2 // header + command bar
	footerLines = 1 // notice line
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// NoticeTTL is how long an action result stays in the footer.
	NoticeTTL = 6 * time.Second
)
