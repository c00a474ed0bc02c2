// Package notify delivers best-effort, out-of-band notifications about newly
// created payments. Every channel gets exactly one attempt; failures are
// logged and counted, never reported to the request that created the record.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/server/models"
)

// Notifier is one delivery channel (e-mail, message bus, archive...).
type Notifier interface {
	// Name is a short, stable channel name used in logs and metrics.
	Name() string
	// Notify makes a single delivery attempt bounded by ctx.
	Notify(ctx context.Context, p *models.Payment, actingUser string) error
}

// TimestampLayout renders CreatedAt in summaries.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

// Summary is the human-readable form of a payment notification.
type Summary struct {
	Subject string
	Body    string
}

// FormatSummary builds the subject and plain-text body shared by the
// e-mail and e-mail job channels.
func FormatSummary(p *models.Payment, actingUser string) Summary {
	var b strings.Builder
	b.WriteString("New check payment entry received:\n\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", p.CreatedAt.UTC().Format(TimestampLayout))
	fmt.Fprintf(&b, "Submitted by: %s\n", actingUser)
	fmt.Fprintf(&b, "Business Name: %s\n", p.BusinessName)
	fmt.Fprintf(&b, "Quantity Sold: %d\n", p.QuantitySold)
	fmt.Fprintf(&b, "Entry ID: %s\n", p.ID)

	return Summary{
		Subject: "New Check Payment Entry - " + p.BusinessName,
		Body:    b.String(),
	}
}

// EventPayment is the JSON payload published on message buses. The image
// is left out; consumers that need it read the archive.
type EventPayment struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	BusinessName string    `json:"businessName"`
	QuantitySold int64     `json:"quantitySold"`
	Timestamp    time.Time `json:"timestamp"`
	SubmittedBy  string    `json:"submittedBy"`
}

func newEventPayment(p *models.Payment, actingUser string) EventPayment {
	return EventPayment{
		ID:           p.ID,
		UserID:       p.OwnerUsername,
		BusinessName: p.BusinessName,
		QuantitySold: p.QuantitySold,
		Timestamp:    p.CreatedAt.UTC(),
		SubmittedBy:  actingUser,
	}
}
