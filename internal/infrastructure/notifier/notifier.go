package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vaultbank/bankcore/internal/usecase"
)

// Config holds notifier configuration. An empty Host selects the logging
// notifier instead of SMTP.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// New selects the notifier implementation from config.
func New(cfg Config, logger zerolog.Logger) usecase.Notifier {
	if cfg.Host == "" {
		return &LogNotifier{logger: logger}
	}

	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// SMTPNotifier delivers transfer verification codes by email.
type SMTPNotifier struct {
	cfg    Config
	logger zerolog.Logger
}

// NotifyTransferCode sends the verification code to destination.
func (n *SMTPNotifier) NotifyTransferCode(ctx context.Context, destination, code string, details usecase.TransferDetails) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
	}

	msg := buildCodeMessage(n.cfg.From, destination, code, details)

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{destination}, msg); err != nil {
		return fmt.Errorf("failed to send transfer code: %w", err)
	}

	n.logger.Debug().Str("destination", destination).Msg("transfer code dispatched")

	return nil
}

func buildCodeMessage(from, to, code string, details usecase.TransferDetails) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your transfer verification code\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your verification code is %s.\r\n", code)
	fmt.Fprintf(&b, "Transfer of %s VND to %s (%s).\r\n",
		details.Amount.String(), details.RecipientName, details.RecipientAccountNumber)
	b.WriteString("The code expires in a few minutes and can be used once.\r\n")

	return []byte(b.String())
}

// LogNotifier writes codes to the log. Development and test environments
// only; the code is sensitive.
type LogNotifier struct {
	logger zerolog.Logger
}

// NotifyTransferCode logs the verification code.
func (n *LogNotifier) NotifyTransferCode(ctx context.Context, destination, code string, details usecase.TransferDetails) error {
	n.logger.Info().
		Str("destination", destination).
		Str("code", code).
		Str("amount", details.Amount.String()).
		Str("recipient", details.RecipientAccountNumber).
		Msg("transfer verification code")

	return nil
}
