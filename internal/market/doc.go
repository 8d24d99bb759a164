// Package market provides an HTTP client for the marketplace backend's read
// endpoints.
//
// # Overview
//
// The synchronization core never receives pushes from the backend; it polls.
// This package defines the three endpoints it polls and the snapshot types
// they decode into:
//
//   - GET /api/orders/{id}/status: progress flags of one order (OrderSnapshot)
//   - GET /api/riders/{id}/wallet: rider wallet balance (WalletSnapshot)
//   - GET /api/users/{id}/conversations: conversation list (ConversationList)
//
// # Tolerant Decoding
//
// The backend is loose about encodings, so the snapshot types decode
// defensively instead of failing the whole payload:
//
//   - Flag accepts booleans, "true"/"1"/"yes" strings and non-zero numbers;
//     null or absent is false.
//   - Presence is online only for JSON true or the exact strings "true" and
//     "online"; absent is offline, never unknown.
//   - Amount reads a number or numeric string in major units and stores
//     integer minor units; absent is zero.
//   - Timestamp reads RFC 3339, "2006-01-02 15:04:05" (UTC) or epoch
//     milliseconds; anything else is the zero time.
//   - ConversationList accepts a bare array or {"conversations": [...]}.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: courier/0.1
//   - Carry a fresh X-Request-ID (UUID) for backend log correlation
//   - Send Authorization: Bearer <token> when a token is configured
//   - Have a 5-second timeout
//
// Non-2xx answers return *StatusError; decode failures are wrapped with
// "decode response". Callers treat every error as transient.
package market
