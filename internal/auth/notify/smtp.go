package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const resetSubject = "Recuperación de contraseña"

type SMTPConfig struct {
	Addr     string // host:port
	User     string
	Password string
	From     string

	// TLS dials with implicit TLS (usually port 465). Otherwise STARTTLS is
	// used when the server offers it.
	TLS     bool
	Timeout time.Duration
}

type SMTPNotifier struct {
	cfg  SMTPConfig
	auth smtp.Auth

	// send is swapped in tests.
	send func(ctx context.Context, to string, msg []byte) error
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Addr == "" || cfg.From == "" {
		return nil, fmt.Errorf("notify: smtp requires an address and a sender")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	n := &SMTPNotifier{cfg: cfg}
	if cfg.User != "" || cfg.Password != "" {
		n.auth = smtp.PlainAuth("", cfg.User, cfg.Password, smtpHost(cfg.Addr))
	}
	n.send = n.deliver
	return n, nil
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, to, code, link string) error {
	l := slogx.FromContext(ctx).With(
		slog.String("component", "notify.smtp"),
		slog.String("smtp_addr", n.cfg.Addr),
		slog.Bool("tls", n.cfg.TLS),
		slog.String("to", to),
	)

	start := time.Now()
	if err := n.send(ctx, to, resetMessage(n.cfg.From, to, code, link)); err != nil {
		l.Error("password reset email failed", slog.Any("err", err))
		return fmt.Errorf("notify: smtp: %w", err)
	}
	l.Info("password reset email sent", slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (n *SMTPNotifier) deliver(ctx context.Context, to string, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	host := smtpHost(n.cfg.Addr)
	var (
		conn net.Conn
		err  error
	)
	if n.cfg.TLS {
		d := tls.Dialer{Config: &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}}
		conn, err = d.DialContext(ctx, "tcp", n.cfg.Addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", n.cfg.Addr)
	}
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("client: %w", err)
	}
	defer func() { _ = c.Close() }()

	if !n.cfg.TLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if n.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(n.auth); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}
	if err := c.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return c.Quit()
}

func resetMessage(from, to, code, link string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + resetSubject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("Tu código de verificación es: " + code + "\r\n")
	if link != "" {
		b.WriteString("\r\nTambién puedes restablecer tu contraseña desde este enlace:\r\n")
		b.WriteString(link + "\r\n")
	}
	b.WriteString("\r\nSi no solicitaste este cambio, ignora este mensaje.\r\n")
	return []byte(b.String())
}

func smtpHost(addr string) string {
	if h, _, err := net.SplitHostPort(addr); err == nil {
		return h
	}
	return addr
}
