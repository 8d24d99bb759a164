// Package session ties a lifecycle gate, a snapshot poller and a snapshot
// store into the short-lived object a screen owns while it is mounted.
//
// # Lifecycle
//
//	New ──→ Mount ──→ SetFocused / SetForeground / Refresh ──→ Unmount ──→ Mount ...
//	                                                                 └──→ Close
//
// Mount builds a fresh poller, gate, store and (for tracked resources) delta
// notifier, and applies the focus and foreground flags recorded so far. The
// flags outlive a mount. Unmount closes the gate, cancels the fetch context and
// throws the per-mount objects away.
//
// # Commit Guard
//
// Every poller result carries the sequence number it was issued with and is
// bound to the generation of the mount that issued it. A result is committed
// only when:
//
//   - the session is still mounted under that generation
//   - its sequence is newer than the last committed one
//
// The second rule keeps a slow forced refresh from overwriting a newer tick.
// Failed results pass the same guard, mark the store stale and still reach
// OnCommit so the UI can surface them.
//
// # Resources
//
// NewOrder, NewWallet and NewChats bind the three marketplace endpoints. The
// wallet session feeds each balance into a delta.Notifier and reports rises
// on the Commit.
//
// # Concurrency
//
// OnCommit runs on poller goroutines, one commit at a time. It may call back
// into the session. Close waits for poller goroutines, so OnCommit must
// return once the consumer is gone; bubbletea's Program.Send does.
package session
