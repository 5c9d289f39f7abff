// Package email sends the per-person performance report over SMTP with the
// rendered charts attached.
package email

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"salescli/internal/config"
	apperrors "salescli/internal/errors"
	"salescli/internal/kpi"
)

// Sender delivers report emails through one SMTP account.
type Sender struct {
	cfg    config.EmailConfig
	logger *slog.Logger
	nowFn  func() time.Time
}

// NewSender creates a sender from the email configuration.
func NewSender(cfg config.EmailConfig, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{cfg: cfg, logger: logger, nowFn: time.Now}
}

// TestConnection dials and authenticates against the SMTP server without
// sending anything. The batch mailer calls this once before the roster loop
// so a bad password fails fast instead of per member.
func (s *Sender) TestConnection() error {
	client, err := s.dial()
	if err != nil {
		return apperrors.NewEmailError("SMTP connection test failed", err)
	}
	defer client.Close()

	if err := s.auth(client); err != nil {
		return apperrors.NewEmailError("SMTP authentication failed", err)
	}

	s.logger.Info("SMTP connection test successful",
		slog.String("server", s.cfg.SMTPServer),
		slog.Int("port", s.cfg.SMTPPort))
	return client.Quit()
}

// SendReport emails one person's report with chart attachments. It returns
// a success flag and never propagates transport errors; failures are logged
// here and tallied by the caller.
func (s *Sender) SendReport(
	toEmail, personName string,
	chartPaths map[string]string,
	totals kpi.Totals,
	rates kpi.Rates,
	dateRange string,
) bool {
	subject := fmt.Sprintf("Your Sales Performance Report - %s", dateRange)
	if s.cfg.SubjectPrefix != "" {
		subject = s.cfg.SubjectPrefix + " " + subject
	}

	msg, err := s.buildMessage(toEmail, subject, personName, chartPaths, totals, rates, dateRange)
	if err != nil {
		s.logger.Error("failed to build report email",
			slog.String("to", toEmail), slog.String("error", err.Error()))
		return false
	}

	if err := s.send(toEmail, msg); err != nil {
		s.logger.Error("failed to send report email",
			slog.String("to", toEmail), slog.String("error", err.Error()))
		return false
	}

	s.logger.Info("report email sent",
		slog.String("to", toEmail), slog.String("person", personName))
	return true
}

// dial opens an SMTP client. When TLS is requested the connection is
// upgraded with STARTTLS after the handshake; port 465 servers that only
// speak implicit TLS are dialed encrypted from the start.
func (s *Sender) dial() (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPServer, s.cfg.SMTPPort)

	if s.cfg.UseTLS && s.cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.SMTPServer})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, s.cfg.SMTPServer)
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, err
	}
	if s.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.SMTPServer}); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}

// auth logs in when credentials are configured.
func (s *Sender) auth(client *smtp.Client) error {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return nil
	}
	return client.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPServer))
}

// send transmits one prepared message.
func (s *Sender) send(toEmail string, msg []byte) error {
	client, err := s.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := s.auth(client); err != nil {
		return err
	}
	if err := client.Mail(s.cfg.FromAddress); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMessage assembles the multipart/mixed MIME message: an HTML body
// followed by one base64 PNG attachment per chart. Charts whose file is
// missing are skipped rather than failing the whole send.
func (s *Sender) buildMessage(
	toEmail, subject, personName string,
	chartPaths map[string]string,
	totals kpi.Totals,
	rates kpi.Rates,
	dateRange string,
) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", s.cfg.FromAddress)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n", writer.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	body, err := s.htmlBody(personName, totals, rates, dateRange)
	if err != nil {
		return nil, err
	}

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=UTF-8")
	part, err := writer.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, name := range chartOrder {
		path, ok := chartPaths[name]
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping missing chart attachment",
				slog.String("chart", name), slog.String("path", path))
			continue
		}

		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "image/png")
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", name+filepath.Ext(path)))
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}

		encoded := base64.StdEncoding.EncodeToString(data)
		for len(encoded) > 0 {
			line := encoded
			if len(line) > 76 {
				line = encoded[:76]
			}
			if _, err := part.Write([]byte(line + "\r\n")); err != nil {
				return nil, err
			}
			encoded = encoded[len(line):]
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// chartOrder fixes the attachment order to match the list in the body.
var chartOrder = []string{
	"kpi_metrics",
	"conversion_funnel",
	"daily_trends",
	"team_comparison",
	"conversion_rates",
}
