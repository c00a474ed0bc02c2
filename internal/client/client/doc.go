// Package client is the CLI's HTTP client for the checkpay JSON API. Auth
// failures map to ErrUnauthorized and transport failures to ErrUnavailable
// so commands can print a useful hint.
package client
