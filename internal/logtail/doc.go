// Package logtail reads the tail of courier's JSON log for the in-app log
// overlay.
//
// Read uses a ring buffer to return the last N lines of a file without
// holding the rest in memory. Parse decodes one zap JSON line into an Entry,
// keeping the standard keys (ts, level, logger, msg) as fields and collecting
// the rest, such as session_id or error, into Fields. Lines that are not JSON
// are kept verbatim in Raw so nothing written to the file is hidden.
package logtail
