package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"github.com/wneessen/go-mail"
)

// MailSender is the part of *mail.Client used here.
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// SMTPNotifier e-mails the payment summary over SMTP with STARTTLS.
type SMTPNotifier struct {
	sender MailSender
	from   string
	to     []string
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return NewSMTPNotifierWithSender(client, from, cfg.To), nil
}

// NewSMTPNotifierWithSender allows injecting a test sender.
func NewSMTPNotifierWithSender(s MailSender, from string, to []string) *SMTPNotifier {
	return &SMTPNotifier{sender: s, from: from, to: to}
}

func (n *SMTPNotifier) Name() string { return "smtp" }

func (n *SMTPNotifier) Notify(ctx context.Context, p *models.Payment, actingUser string) error {
	msg, err := n.message(p, actingUser)
	if err != nil {
		return err
	}
	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(p *models.Payment, actingUser string) (*mail.Msg, error) {
	s := FormatSummary(p, actingUser)

	m := mail.NewMsg()
	if err := m.From(n.from); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(n.to...); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	m.Subject(s.Subject)
	m.SetBodyString(mail.TypeTextPlain, s.Body)
	return m, nil
}
