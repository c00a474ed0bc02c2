// Package models defines server-side data models persisted in the database.
package models

import "time"

// Payment is one check-payment entry. It is created once and never updated.
type Payment struct {
	// ID is a server-assigned UUID.
	ID string
	// OwnerUsername is the authenticated submitter, taken from the token subject.
	OwnerUsername string
	BusinessName  string
	QuantitySold  int64
	// CheckImageBase64 is stored verbatim and never interpreted.
	CheckImageBase64 string
	// CreatedAt is assigned by the server in UTC.
	CreatedAt time.Time
}
