// Package cli provides the checkpay command-line client.
//
// Commands:
//   - login [username]: prompt for a password and store the access token
//   - logout: forget the stored token
//   - add: submit a check payment (--business, --quantity, --image)
//   - list: show the caller's payments, newest first
//   - health: probe the server
//   - version: print build info
//
// The server URL comes from --server or CHECKPAY_SERVER_URL. The token is
// kept in ~/.checkpay_token with 0600 permissions.
package cli
