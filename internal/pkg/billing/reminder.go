package billing

import (
	"context"
	"fmt"

	"github.com/RegioJobs/RegioJobs/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
)

// SendPaymentReminder sends the next escalation step for an open invoice.
// Without an explicit level the next one is derived from the reminder
// ledger; past level 3 the call is a no-op, never an error. The ledger
// append is the durable guard: a concurrent or repeated send of the same
// level loses on the unique key and is reported as skipped.
func (s *Service) SendPaymentReminder(ctx context.Context, in SendReminderInput) (*ReminderResult, error) {
	_ = ctx
	if err := validator.New().Struct(in); err != nil {
		return nil, newValidationError("invalid reminder request: %v", err)
	}

	inv, err := s.repo.GetInvoice(in.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsTerminal() {
		return &ReminderResult{
			InvoiceID: inv.ID,
			Skipped:   true,
			Message:   fmt.Sprintf("Rechnung %s ist abgeschlossen, keine Mahnung", inv.InvoiceNumber),
		}, nil
	}

	level, err := s.resolveReminderLevel(inv.ID, in.Level)
	if err != nil {
		return nil, err
	}
	if level > models.MaxReminderLevel {
		return &ReminderResult{
			InvoiceID: inv.ID,
			Skipped:   true,
			Message:   fmt.Sprintf("Mahnstufe %d für Rechnung %s überschreitet das Maximum, keine Mahnung", level, inv.InvoiceNumber),
		}, nil
	}

	// Ledger append and status transition form one unit: once the level is
	// recorded, re-derivation rejects any retry of the same level even if
	// the mail below never goes out.
	rem := &models.PaymentReminder{InvoiceID: inv.ID, Level: level, SentAt: s.now()}
	if err := s.repo.AppendReminder(rem); err != nil {
		if IsConflict(err) {
			return &ReminderResult{
				InvoiceID: inv.ID,
				Level:     level,
				Skipped:   true,
				Message:   fmt.Sprintf("Mahnstufe %d für Rechnung %s wurde bereits versendet", level, inv.InvoiceNumber),
			}, nil
		}
		return nil, err
	}

	if inv.Status != models.InvoiceStatusOverdue {
		if _, err := s.repo.UpdateInvoiceStatusIf(inv.ID, models.InvoiceStatusSent, models.InvoiceStatusOverdue); err != nil {
			log.Errorf("[Billing] overdue transition for invoice %d failed: %v", inv.ID, err)
		}
	}

	company, err := s.repo.GetCompany(inv.CompanyID)
	if err != nil {
		return nil, err
	}

	s.logActivity(models.ActivityReminderSent, "invoice", inv.ID, inv.CompanyID,
		fmt.Sprintf("Mahnstufe %d für Rechnung %s versendet", level, inv.InvoiceNumber))

	result := &ReminderResult{
		InvoiceID: inv.ID,
		Level:     level,
		Message:   fmt.Sprintf("Mahnstufe %d für Rechnung %s versendet", level, inv.InvoiceNumber),
	}
	if err := s.deliver(company.Email, reminderEmailSubject(inv, level), reminderEmailBody(inv, company, level)); err != nil {
		result.DispatchFailed = true
		result.DispatchError = err.Error()
	}
	return result, nil
}

// resolveReminderLevel returns the explicit level or derives the successor
// of the highest recorded one.
func (s *Service) resolveReminderLevel(invoiceID uint, explicit *int) (int, error) {
	if explicit != nil {
		if !models.IsValidReminderLevel(*explicit) {
			return 0, newValidationError("reminder level %d is outside 1..%d", *explicit, models.MaxReminderLevel)
		}
		return *explicit, nil
	}
	last, err := s.repo.LastReminderLevel(invoiceID)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}
