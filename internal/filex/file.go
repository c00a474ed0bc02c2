// Package filex holds small file helpers used by the CLI.
package filex

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrTooLarge is returned when a file exceeds the caller's size limit.
var ErrTooLarge = errors.New("file too large")

// EncodeBase64 reads path and returns its standard base64 encoding. A
// positive maxBytes caps the raw file size.
func EncodeBase64(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%s: %w (limit %d bytes)", path, ErrTooLarge, maxBytes)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// StripDataURI removes a "data:<mime>;base64," prefix if present, so a
// value copied from a browser can be sent as plain base64.
func StripDataURI(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}
