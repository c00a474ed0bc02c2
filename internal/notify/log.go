package notify

import (
	"context"

	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
)

// LogNotifier writes the summary to the log. It is the fallback channel
// when nothing else is configured.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(ctx context.Context, p *models.Payment, actingUser string) error {
	s := FormatSummary(p, actingUser)
	n.logger.Info(ctx, s.Subject,
		"payment_id", p.ID,
		"submitted_by", actingUser,
		"business_name", p.BusinessName,
		"quantity_sold", p.QuantitySold,
		"timestamp", p.CreatedAt.UTC().Format(TimestampLayout),
	)
	return nil
}
