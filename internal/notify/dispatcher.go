package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/dmitrijs2005/checkpay/internal/metrics"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher fans a payment out to every configured Notifier. Each channel
// runs in its own goroutine with its own deadline, detached from the
// caller's cancellation.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    logging.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(logger logging.Logger, m *metrics.Metrics, timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		logger:    logger.With("module", "notify"),
		metrics:   m,
		tracer:    otel.Tracer("checkpay/notify"),
	}
}

// Dispatch starts one delivery attempt per channel and returns immediately.
// ctx only contributes values (trace, request logger); its cancellation
// does not stop deliveries. After Close it only logs the dropped payment.
func (d *Dispatcher) Dispatch(ctx context.Context, p *models.Payment, actingUser string) {
	if len(d.notifiers) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn(ctx, "dispatcher closed, notification dropped", "payment_id", p.ID)
		return
	}

	snapshot := *p
	base := context.WithoutCancel(ctx)

	for _, n := range d.notifiers {
		d.wg.Add(1)
		go d.deliver(base, n, &snapshot, actingUser)
	}
}

func (d *Dispatcher) deliver(base context.Context, n Notifier, p *models.Payment, actingUser string) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(base, d.timeout)
	defer cancel()

	ctx, span := d.tracer.Start(ctx, "notify."+n.Name(),
		trace.WithAttributes(
			attribute.String("notify.channel", n.Name()),
			attribute.String("payment.id", p.ID),
		))
	defer span.End()

	err := safeNotify(ctx, n, p, actingUser)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error(ctx, "notification failed", "channel", n.Name(), "payment_id", p.ID, "error", err)
	} else {
		d.logger.Info(ctx, "notification sent", "channel", n.Name(), "payment_id", p.ID)
	}
	if d.metrics != nil {
		d.metrics.Notifications.WithLabelValues(n.Name(), outcome).Inc()
	}
}

func safeNotify(ctx context.Context, n Notifier, p *models.Payment, actingUser string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return n.Notify(ctx, p, actingUser)
}

// Wait blocks until every in-flight delivery has finished. It must not race
// with Dispatch; use Close when requests may still be running.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting new payments and waits for in-flight deliveries.
// It is safe to call while handlers are still dispatching.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

// Channels returns the names of the configured channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}
