package mail

import (
	"context"

	"github.com/go-faster/errors"
	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the transport settings for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender implements Sender over authenticated SMTP with implicit TLS
// (port 465 style, matching Gmail app-password setups).
type SMTPSender struct {
	cfg    SMTPConfig
	client *gomail.Client
}

// NewSMTPSender creates an SMTPSender. It fails fast on incomplete
// credentials so a misconfigured deployment is caught at startup rather
// than on the first delivery attempt.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" || cfg.From == "" {
		return nil, errors.New("smtp host, username, password and from address are required")
	}

	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create smtp client")
	}

	return &SMTPSender{cfg: cfg, client: client}, nil
}

// Send delivers one HTML message. The context bounds dialing and delivery.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return errors.Wrap(err, "set from address")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrapf(err, "set recipient %q", to)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "deliver mail")
	}
	return nil
}
