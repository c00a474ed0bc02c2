// Package auth implements the server's credential table and the signed
// access tokens issued against it.
package auth

import "crypto/subtle"

// CredentialStore is the fixed table of recognized users. It is built once
// from configuration and never mutated, so it is safe for concurrent use.
type CredentialStore struct {
	users map[string]string
}

// NewCredentialStore copies users so later changes to the caller's map do
// not leak into the store.
func NewCredentialStore(users map[string]string) *CredentialStore {
	c := &CredentialStore{users: make(map[string]string, len(users))}
	for name, password := range users {
		c.users[name] = password
	}
	return c
}

// Verify reports whether username is known and password matches it exactly.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (c *CredentialStore) Verify(username, password string) bool {
	expected, ok := c.users[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(password)) == 1
}

// Contains reports whether username is in the table.
func (c *CredentialStore) Contains(username string) bool {
	_, ok := c.users[username]
	return ok
}

// Len returns the number of configured users.
func (c *CredentialStore) Len() int {
	return len(c.users)
}
