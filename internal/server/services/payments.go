package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/common"
	"github.com/dmitrijs2005/checkpay/internal/dbx"
	"github.com/dmitrijs2005/checkpay/internal/metrics"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"github.com/dmitrijs2005/checkpay/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher hands a freshly created payment to the notification channels.
// It must return without waiting for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, p *models.Payment, actingUser string)
}

// NewPayment is the client-controlled part of a payment record.
type NewPayment struct {
	BusinessName     string
	QuantitySold     int64
	CheckImageBase64 string
}

type PaymentService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	dispatcher   Dispatcher
	defaultLimit int
	metrics      *metrics.Metrics
	tracer       trace.Tracer

	now   func() time.Time
	newID func() string
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager, d Dispatcher, defaultLimit int, mt *metrics.Metrics) *PaymentService {
	return &PaymentService{
		db:           db,
		repomanager:  m,
		dispatcher:   d,
		defaultLimit: defaultLimit,
		metrics:      mt,
		tracer:       otel.Tracer("checkpay/services"),
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

func validateNewPayment(in NewPayment) error {
	var missing []string
	if strings.TrimSpace(in.BusinessName) == "" {
		missing = append(missing, "businessName")
	}
	if in.CheckImageBase64 == "" {
		missing = append(missing, "checkImageBase64")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", common.ErrorValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Create persists a payment owned by owner and, once the write is
// committed, hands it to the dispatcher. Notification outcome never
// affects the result.
func (s *PaymentService) Create(ctx context.Context, owner string, in NewPayment) (*models.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "payments.create", trace.WithAttributes(attribute.String("payment.owner", owner)))
	defer span.End()

	if err := validateNewPayment(in); err != nil {
		s.count(metrics.OutcomeDenied)
		return nil, err
	}

	p := &models.Payment{
		ID:               s.newID(),
		OwnerUsername:    owner,
		BusinessName:     in.BusinessName,
		QuantitySold:     in.QuantitySold,
		CheckImageBase64: in.CheckImageBase64,
		// postgres keeps microseconds; match it so the returned record
		// equals what a later read sees
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	span.SetAttributes(attribute.String("payment.id", p.ID))

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.repomanager.Payments(tx).Create(ctx, p)
		return err
	})
	if err != nil {
		s.count(metrics.OutcomeFailure)
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage")
		return nil, fmt.Errorf("%w: create payment: %w", common.ErrorStorage, err)
	}
	s.count(metrics.OutcomeSuccess)

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, p, owner)
	}
	return p, nil
}

// List returns up to limit of owner's payments, newest first. limit <= 0
// selects the configured default.
func (s *PaymentService) List(ctx context.Context, owner string, limit int) ([]*models.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "payments.list", trace.WithAttributes(attribute.String("payment.owner", owner)))
	defer span.End()

	if limit <= 0 {
		limit = s.defaultLimit
	}
	span.SetAttributes(attribute.Int("payment.limit", limit))

	items, err := s.repomanager.Payments(s.db).ListByOwner(ctx, owner, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage")
		return nil, fmt.Errorf("%w: list payments: %w", common.ErrorStorage, err)
	}
	if items == nil {
		items = []*models.Payment{}
	}
	return items, nil
}

func (s *PaymentService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.Payments.WithLabelValues(outcome).Inc()
	}
}
