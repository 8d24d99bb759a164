// Package ui provides the terminal user interface for courier.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model with three screens: order tracking,
// rider wallet and chats. Each screen is backed by a polling session that
// the model never reads directly. Sessions push every accepted commit into
// the program as an OrderMsg, WalletMsg or ChatsMsg, and the model keeps the
// latest snapshot of each.
//
// # Focus and Foreground
//
// Switching tabs unfocuses the old screen's session and focuses the new one,
// so only the visible screen polls. Terminal focus reports (tea.FocusMsg and
// tea.BlurMsg) act as the app foreground signal for all three sessions. The
// program must be started with tea.WithReportFocus for those to arrive.
//
// # Package Structure
//
//   - model.go: Model, Options, messages and key handling
//   - header.go: status bar, tabs, toast and footer
//   - tracking.go, wallet.go, chats.go: per-screen rendering
//   - help.go: help overlay
//   - theme.go: color themes and pre-built styles
//   - keys.go: key bindings
//
// # Notifications
//
// A wallet balance rise shows a toast. A manual refresh (r) that fails shows
// one too; failures of timer-driven fetches only change the header to STALE
// and, after repeated failures, OFFLINE.
package ui
