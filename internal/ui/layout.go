package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the stage progression
	// is drawn one step per line.
	LayoutCompactWidth = 100

	// LayoutNameWidth is the counterparty column width in the chats list.
	LayoutNameWidth = 28

	// LayoutMinPreviewWidth is the narrowest last-message preview shown.
	LayoutMinPreviewWidth = 10
)

// LogTailLines is how many log lines the log overlay reads.
const LogTailLines = 200

// Timing constants.
const (
	// ToastDuration is how long a notification stays in the footer.
	ToastDuration = 4 * time.Second
)

// chromeHeight is the number of lines taken by header, tabs, toast and footer.
const chromeHeight = 4
