package notification

import (
	"fmt"
	"html/template"
	"strings"
)

// Outbox categories, one per handled event.
const (
	categoryAccountCreated       = "client_account_created"
	categoryApplicationSubmitted = "sale_application_submitted"
	categorySaleApproved         = "sale_approved"
	categoryPaymentReceived      = "payment_received"
	categoryPaymentCompleted     = "payment_completed"
	categoryPaymentReversed      = "payment_reversed"
	categoryPaymentPlanDue       = "payment_plan_due"
)

const (
	subjectAccountCreated          = "Your client account has been created"
	subjectApplicationSubmittedFmt = "We received your purchase application %s"
	subjectSaleApprovedFmt         = "Your purchase %s has been approved"
	subjectPaymentReceivedFmt      = "Payment received on %s"
	subjectPaymentCompletedFmt     = "Purchase %s is fully paid"
	subjectPaymentReversedFmt      = "A payment on %s was reversed"
	subjectPaymentPlanDueFmt       = "Installment reminder for %s"
)

const baseLayout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333333; max-width: 600px; margin: 0 auto;">
	<h2>{{.Heading}}</h2>
	<p>Dear {{.Name}},</p>
	{{.Content}}
	<p>Kind regards,<br>The Sales Team</p>
</body>
</html>`

var bodyTemplate = template.Must(template.New("base").Parse(baseLayout))

type bodyData struct {
	Heading string
	Name    string
	Content template.HTML
}

// renderBody wraps per-event paragraphs in the shared layout. The
// paragraphs are built with template-escaped values by the callers.
func renderBody(heading, name string, paragraphs ...string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = "client"
	}
	var content strings.Builder
	for _, p := range paragraphs {
		content.WriteString("<p>")
		content.WriteString(p)
		content.WriteString("</p>\n\t")
	}

	var out strings.Builder
	err := bodyTemplate.Execute(&out, bodyData{
		Heading: heading,
		Name:    name,
		Content: template.HTML(content.String()),
	})
	if err != nil {
		return "", fmt.Errorf("render notification body: %w", err)
	}
	return out.String(), nil
}

// formatAmount renders a minor-unit amount as a grouped decimal string,
// e.g. 110000000 -> "1,100,000.00".
func formatAmount(minor int64) string {
	negative := minor < 0
	if negative {
		minor = -minor
	}
	units := minor / 100
	cents := minor % 100

	digits := fmt.Sprintf("%d", units)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%02d", sign, grouped.String(), cents)
}

func escape(s string) string {
	return template.HTMLEscapeString(s)
}
