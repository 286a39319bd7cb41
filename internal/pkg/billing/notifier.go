package billing

import (
	"fmt"
	"time"

	"github.com/RegioJobs/RegioJobs/app/models"
	"github.com/RegioJobs/RegioJobs/internal/pkg/mail"
)

// Notifier delivers workflow notifications. Delivery failure never rolls
// back committed state; the caller records it and retries independently.
type Notifier interface {
	Send(to, subject, htmlBody string) error
}

type smtpNotifier struct{}

// NewSMTPNotifier returns the production notifier delivering over the
// configured SMTP relay.
func NewSMTPNotifier() Notifier {
	return &smtpNotifier{}
}

func (n *smtpNotifier) Send(to, subject, htmlBody string) error {
	return mail.SendMail(to, subject, htmlBody)
}

func formatEuro(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d €", sign, cents/100, cents%100)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func invoiceEmailSubject(inv *models.Invoice) string {
	return fmt.Sprintf("Ihre Rechnung %s von RegioJobs", inv.InvoiceNumber)
}

func invoiceEmailBody(inv *models.Invoice, company *models.Company) string {
	rows := ""
	for _, it := range inv.Items {
		rows += fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			it.Description, it.Quantity, formatEuro(it.UnitPriceCents), formatEuro(it.LineTotalCents()))
	}
	return fmt.Sprintf(
		"<h2>Rechnung %s</h2>"+
			"<p>Guten Tag %s,</p>"+
			"<p>vielen Dank für Ihren Auftrag. Anbei die Übersicht Ihrer Rechnung:</p>"+
			"<table border=\"0\" cellpadding=\"4\">%s</table>"+
			"<p>Zwischensumme: %s<br>zzgl. %.0f%% MwSt.: %s<br><strong>Gesamtbetrag: %s</strong></p>"+
			"<p>Bitte überweisen Sie den Gesamtbetrag bis zum <strong>%s</strong> auf das in der Rechnung genannte Konto.</p>"+
			"<p>Mit freundlichen Grüßen<br>Ihr RegioJobs-Team</p>",
		inv.InvoiceNumber, company.Name, rows,
		formatEuro(inv.SubtotalCents), inv.TaxRatePercent, formatEuro(inv.TaxCents), formatEuro(inv.TotalCents),
		formatDate(inv.DueDate),
	)
}

func reminderEmailSubject(inv *models.Invoice, level int) string {
	switch level {
	case models.ReminderLevelUrgent:
		return fmt.Sprintf("2. Mahnung zur Rechnung %s", inv.InvoiceNumber)
	case models.ReminderLevelFinal:
		return fmt.Sprintf("Letzte Mahnung zur Rechnung %s", inv.InvoiceNumber)
	default:
		return fmt.Sprintf("Zahlungserinnerung zur Rechnung %s", inv.InvoiceNumber)
	}
}

// reminderEmailBody escalates the tone by level: friendly reminder, urgent
// notice, final demand with a fee warning.
func reminderEmailBody(inv *models.Invoice, company *models.Company, level int) string {
	intro := fmt.Sprintf("<p>Guten Tag %s,</p>", company.Name)
	amount := fmt.Sprintf(
		"<p>Rechnung <strong>%s</strong> über <strong>%s</strong>, fällig am %s.</p>",
		inv.InvoiceNumber, formatEuro(inv.TotalCents), formatDate(inv.DueDate),
	)

	var text string
	switch level {
	case models.ReminderLevelUrgent:
		text = "<p>trotz unserer Zahlungserinnerung konnten wir bisher keinen Zahlungseingang feststellen. " +
			"Wir bitten Sie dringend, den offenen Betrag innerhalb von 7 Tagen auszugleichen.</p>"
	case models.ReminderLevelFinal:
		text = "<p>dies ist unsere <strong>letzte Mahnung</strong>. Sollte der offene Betrag nicht innerhalb " +
			"von 7 Tagen bei uns eingehen, sehen wir uns gezwungen, weitere Schritte einzuleiten. " +
			"In diesem Fall entstehen Ihnen zusätzliche Mahngebühren.</p>"
	default:
		text = "<p>sicher ist es Ihrer Aufmerksamkeit entgangen, dass die unten aufgeführte Rechnung noch offen ist. " +
			"Wir möchten Sie freundlich an die Begleichung erinnern.</p>"
	}

	return intro + text + amount + "<p>Mit freundlichen Grüßen<br>Ihr RegioJobs-Team</p>"
}

func welcomeEmailSubject(tier string) string {
	return fmt.Sprintf("Ihr %s-Abo bei RegioJobs ist aktiv", tierLabel(tier))
}

func welcomeEmailBody(company *models.Company, sub *models.Subscription) string {
	return fmt.Sprintf(
		"<p>Guten Tag %s,</p>"+
			"<p>vielen Dank für Ihre Zahlung. Ihr <strong>%s</strong>-Abo ist ab sofort aktiv "+
			"und läuft bis zum <strong>%s</strong>.</p>"+
			"<p>Ihre Stellenanzeigen werden ab jetzt bevorzugt dargestellt.</p>"+
			"<p>Mit freundlichen Grüßen<br>Ihr RegioJobs-Team</p>",
		company.Name, tierLabel(sub.Tier), formatDate(sub.ExpiresAt),
	)
}

func expiryWarningSubject(sub *models.Subscription) string {
	return fmt.Sprintf("Ihr %s-Abo läuft am %s ab", tierLabel(sub.Tier), formatDate(sub.ExpiresAt))
}

func expiryWarningBody(company *models.Company, sub *models.Subscription) string {
	return fmt.Sprintf(
		"<p>Guten Tag %s,</p>"+
			"<p>Ihr <strong>%s</strong>-Abo läuft am <strong>%s</strong> ab. "+
			"Verlängern Sie rechtzeitig, damit Ihre Stellenanzeigen weiterhin bevorzugt dargestellt werden.</p>"+
			"<p>Mit freundlichen Grüßen<br>Ihr RegioJobs-Team</p>",
		company.Name, tierLabel(sub.Tier), formatDate(sub.ExpiresAt),
	)
}

func tierLabel(tier string) string {
	switch tier {
	case models.TierPremium:
		return "Premium"
	default:
		return "Basis"
	}
}
