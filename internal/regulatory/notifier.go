package regulatory

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/qeme/sentinel-lite/model"
	"go.uber.org/zap"
)

// Notifier delivers alerts about detected updates.
type Notifier interface {
	Notify(ctx context.Context, updates []model.RegulatoryUpdate) error
}

// Publisher forwards every update of a fresh cycle to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, updates []model.RegulatoryUpdate) error
}

const (
	alertSubject = "🚨 qeme sentinel lite: kritieke regulatory update"
	alertIntro   = "er zijn kritieke wijzigingen gedetecteerd:"
)

// MailNotifier sends one aggregated mail for all critical updates through an SMTP relay.
type MailNotifier struct {
	cfg    MailConfig
	logger *zap.Logger
	send   func(ctx context.Context, cfg MailConfig, msg []byte) error
}

// NewMailNotifier creates a notifier for cfg. An unconfigured relay makes Notify a no-op.
func NewMailNotifier(cfg MailConfig, logger *zap.Logger) *MailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultMailTimeout
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultMailPort
	}
	if cfg.From == "" {
		cfg.From = DefaultMailFrom
	}
	return &MailNotifier{cfg: cfg, logger: logger, send: sendSMTP}
}

// Notify mails the critical subset of updates. Nothing is sent, and no connection
// is opened, when there are no critical updates or the relay is not configured.
func (n *MailNotifier) Notify(ctx context.Context, updates []model.RegulatoryUpdate) error {
	critical := model.FilterLevel(updates, model.ImpactCritical)
	if len(critical) == 0 {
		return nil
	}
	if !n.cfg.Configured() {
		n.logger.Debug("alerting not configured, skipping critical alert", zap.Int("critical", len(critical)))
		return nil
	}

	msg := composeAlert(n.cfg, critical, time.Now())
	if err := n.send(ctx, n.cfg, msg); err != nil {
		return &NotificationError{Channel: "smtp", Err: err}
	}
	n.logger.Info("critical alert sent", zap.Int("critical", len(critical)), zap.Strings("to", n.cfg.To))
	return nil
}

// AlertBody renders the plain text body listing each critical update.
func AlertBody(critical []model.RegulatoryUpdate) string {
	lines := make([]string, 0, len(critical))
	for _, u := range critical {
		lines = append(lines, fmt.Sprintf("- [%s] %s -> %s", strings.ToUpper(u.Framework), u.Title, u.URL))
	}
	return alertIntro + "\n\n" + strings.Join(lines, "\n")
}

func composeAlert(cfg MailConfig, critical []model.RegulatoryUpdate, now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(cfg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", alertSubject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(AlertBody(critical), "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// sendSMTP delivers msg through the relay, upgrading to TLS before authenticating
// when credentials are configured. The whole session is bounded by cfg.Timeout.
func sendSMTP(ctx context.Context, cfg MailConfig, msg []byte) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	dialer := &net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(cfg.Timeout)); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if cfg.Username != "" && cfg.Password != "" {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
		if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	for _, rcpt := range cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
