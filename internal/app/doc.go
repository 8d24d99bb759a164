// Package app provides the orchestration layer for courier.
//
// # Overview
//
// This package wires together configuration, logging, the marketplace client,
// the three polling sessions and the UI. It is the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
// Run follows a simple initialization pattern:
//
//  1. Load ~/.config/courier/config.toml and apply command line overrides
//  2. Open the JSON log file (the terminal belongs to the UI)
//  3. Create the marketplace HTTP client
//  4. Build order, wallet and chat sessions whose commits feed the program
//  5. Mount the sessions; none polls until its screen is focused
//  6. Run the TUI and the prefs watcher until the user quits or ctx ends
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read courier config
//	       ├─────> logging.New()        JSON log file
//	       ├─────> market.NewClient()   HTTP client
//	       ├─────> newSessions()        order / wallet / chats
//	       ├─────> tea.NewProgram()     UI with focus reporting
//	       └─────> errgroup             program.Run + prefs watcher
//
//	Session commit:
//	┌─────────────────────────────────────────┐
//	│ poller goroutine                        │
//	│  ├─> fetch                              │
//	│  ├─> commit guard (generation, seq)     │
//	│  └─> OnCommit ─> relay ─> Program.Send  │
//	│                 └─> Model.Update        │
//	└─────────────────────────────────────────┘
//
// # Focus and Foreground
//
// The UI tells each session whether its screen is visible and whether the
// terminal has focus. A session polls only while both hold. Switching orders
// remounts the order session so nothing from the previous order can land on
// the new one.
//
// # Shutdown
//
// When the program exits the watcher context is cancelled and every session
// is closed. Close waits for poller goroutines; Program.Send returns at once
// after Run, so commits racing shutdown cannot block it.
package app
