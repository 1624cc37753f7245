package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/iliyamo/salon-reservation/internal/model"
)

const confirmationTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Booking confirmed</h2>
  <p>Hello {{.S.CustomerName}}, your booking #{{.S.BookingID}} is confirmed.</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><b>Date</b></td><td>{{.S.Date}}</td></tr>
    <tr><td><b>Venue</b></td><td>{{.S.VenueTitle}}</td></tr>
    <tr><td><b>Time</b></td><td>{{.S.SlotStart}} - {{.S.SlotEnd}}</td></tr>
    {{- if .S.Theme}}
    <tr><td><b>Theme</b></td><td>{{.S.Theme}}</td></tr>
    {{- end}}
    <tr><td><b>Venue price</b></td><td>{{.S.VenuePrice.StringFixed 2}}</td></tr>
  </table>
  {{- if .S.Services}}
  <h3>Services</h3>
  <ul>
    {{- range .S.Services}}
    <li>{{.Description}}: {{.Price.StringFixed 2}}</li>
    {{- end}}
  </ul>
  {{- end}}
  <p><b>Total: {{.S.Total.StringFixed 2}}</b></p>
</body>
</html>`

var confirmation = template.Must(template.New("confirmation").Parse(confirmationTemplate))

// RenderConfirmation returns the subject and HTML body for s.
func RenderConfirmation(s model.BookingSummary) (subject, body string, err error) {
	subject = fmt.Sprintf("Booking #%d confirmed for %s", s.BookingID, s.Date)
	var buf bytes.Buffer
	if err := confirmation.Execute(&buf, struct {
		Subject string
		S       model.BookingSummary
	}{subject, s}); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
