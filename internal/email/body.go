package email

import (
	"bytes"
	"html/template"

	"salescli/internal/kpi"
)

// bodyTemplate renders the report summary the recipient sees above the
// attached charts.
var bodyTemplate = template.Must(template.New("report").Parse(`<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .header { background-color: #2E86AB; color: white; padding: 20px; text-align: center; border-radius: 5px; }
  .metrics { background-color: #f4f4f4; padding: 15px; border-radius: 5px; margin: 20px 0; }
  .conversion { background-color: #e8f4f8; padding: 15px; border-radius: 5px; margin: 20px 0; }
  .metric-row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #ddd; }
  .metric-label { font-weight: bold; color: #555; }
  .metric-value { color: #2E86AB; font-weight: bold; }
  .highlight { color: #06A77D; font-weight: bold; }
  .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
</style>
</head>
<body>
  <div class="header">
    <h1>Your Sales Performance</h1>
    <p>{{.DateRange}}</p>
  </div>

  <p>Hi {{.PersonName}},</p>
  <p>Here is your performance summary. Great work out there!</p>

  <div class="metrics">
    <h2>Your Activity Metrics</h2>
    <div class="metric-row"><span class="metric-label">Doors Knocked:</span><span class="metric-value">{{printf "%.0f" .Totals.DoorsKnocked}}</span></div>
    <div class="metric-row"><span class="metric-label">Homeowners Talked:</span><span class="metric-value">{{printf "%.0f" .Totals.HomeownersTalked}}</span></div>
    <div class="metric-row"><span class="metric-label">Qualified Leads:</span><span class="metric-value">{{printf "%.0f" .Totals.QualifiedLeads}}</span></div>
    <div class="metric-row"><span class="metric-label">Appointments Set:</span><span class="metric-value">{{printf "%.0f" .Totals.AppointmentsSet}}</span></div>
  </div>

  <div class="conversion">
    <h2>Your Conversion Rates</h2>
    <div class="metric-row"><span class="metric-label">Talk Rate:</span><span class="metric-value">{{printf "%.1f" .Rates.TalkRate}}%</span></div>
    <div class="metric-row"><span class="metric-label">Qualification Rate:</span><span class="metric-value">{{printf "%.1f" .Rates.QualificationRate}}%</span></div>
    <div class="metric-row"><span class="metric-label">Appointment Rate:</span><span class="metric-value">{{printf "%.1f" .Rates.AppointmentRate}}%</span></div>
    <div class="metric-row"><span class="metric-label">Overall Conversion:</span><span class="metric-value highlight">{{printf "%.1f" .Rates.OverallConversion}}%</span></div>
  </div>

  <p><strong>Attached Charts:</strong></p>
  <ul>
    <li>Performance Metrics Overview</li>
    <li>Sales Funnel Visualization</li>
    <li>Daily Performance Trends</li>
    <li>Team Comparison</li>
    <li>Conversion Rates Breakdown</li>
  </ul>

  <p>Keep up the excellent work! If you have questions about your metrics,
  reach out to your manager.</p>

  <div class="footer">
    <p>This is an automated report. Generated on {{.GeneratedAt}}</p>
  </div>
</body>
</html>
`))

// bodyData is the template context for one report email.
type bodyData struct {
	PersonName  string
	DateRange   string
	Totals      kpi.Totals
	Rates       kpi.Rates
	GeneratedAt string
}

// htmlBody renders the HTML summary for one person.
func (s *Sender) htmlBody(personName string, totals kpi.Totals, rates kpi.Rates, dateRange string) (string, error) {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, bodyData{
		PersonName:  personName,
		DateRange:   dateRange,
		Totals:      totals,
		Rates:       rates,
		GeneratedAt: s.nowFn().Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
