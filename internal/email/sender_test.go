package email

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/config"
	"salescli/internal/kpi"
)

func testSender() *Sender {
	s := NewSender(config.EmailConfig{
		SMTPServer:  "smtp.example.com",
		SMTPPort:    587,
		UseTLS:      true,
		Username:    "reports@example.com",
		Password:    "secret",
		FromAddress: "reports@example.com",
	}, nil)
	s.nowFn = func() time.Time {
		return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	}
	return s
}

func sampleKPIs() (kpi.Totals, kpi.Rates) {
	return kpi.Totals{DoorsKnocked: 15, HomeownersTalked: 14, QualifiedLeads: 6, AppointmentsSet: 1},
		kpi.Rates{TalkRate: 93.3, QualificationRate: 42.9, AppointmentRate: 16.7, OverallConversion: 6.7}
}

func TestHTMLBody(t *testing.T) {
	s := testSender()
	totals, rates := sampleKPIs()

	body, err := s.htmlBody("Bob Smith", totals, rates, "2024-01-01 to 2024-01-31")
	require.NoError(t, err)

	assert.Contains(t, body, "Hi Bob Smith,")
	assert.Contains(t, body, "2024-01-01 to 2024-01-31")
	assert.Contains(t, body, ">15<")
	assert.Contains(t, body, "93.3%")
	assert.Contains(t, body, "6.7%")
	assert.Contains(t, body, "Generated on 2024-02-01 09:00:00")
}

func TestBuildMessage(t *testing.T) {
	s := testSender()
	totals, rates := sampleKPIs()

	dir := t.TempDir()
	chartPath := filepath.Join(dir, "kpi_metrics.png")
	require.NoError(t, os.WriteFile(chartPath, []byte("\x89PNG\r\n\x1a\nfakedata"), 0o644))

	msg, err := s.buildMessage(
		"bob@example.com",
		"Your Sales Performance Report - 2024-01",
		"Bob Smith",
		map[string]string{"kpi_metrics": chartPath},
		totals, rates, "2024-01",
	)
	require.NoError(t, err)

	text := string(msg)
	assert.Contains(t, text, "From: reports@example.com\r\n")
	assert.Contains(t, text, "To: bob@example.com\r\n")
	assert.Contains(t, text, "Subject: Your Sales Performance Report - 2024-01\r\n")
	assert.Contains(t, text, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, text, "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, text, `attachment; filename="kpi_metrics.png"`)
	assert.Contains(t, text, "Content-Transfer-Encoding: base64")

	// Headers must come before the first boundary.
	boundaryStart := strings.Index(text, "--")
	assert.Greater(t, boundaryStart, strings.Index(text, "Subject:"))
}

func TestBuildMessageSkipsMissingCharts(t *testing.T) {
	s := testSender()
	totals, rates := sampleKPIs()

	msg, err := s.buildMessage(
		"bob@example.com", "subject", "Bob Smith",
		map[string]string{"kpi_metrics": filepath.Join(t.TempDir(), "missing.png")},
		totals, rates, "2024-01",
	)
	require.NoError(t, err)
	assert.NotContains(t, string(msg), "attachment; filename=")
}

func TestSendReportFailureReturnsFalse(t *testing.T) {
	// Port 1 on localhost is not listening; SendReport must swallow the
	// transport error and report failure instead of propagating it.
	s := NewSender(config.EmailConfig{
		SMTPServer:  "127.0.0.1",
		SMTPPort:    1,
		FromAddress: "reports@example.com",
	}, nil)
	s.nowFn = time.Now

	totals, rates := sampleKPIs()
	ok := s.SendReport("bob@example.com", "Bob Smith", nil, totals, rates, "2024-01")
	assert.False(t, ok)
}
