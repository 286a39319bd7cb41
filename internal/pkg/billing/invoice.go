package billing

import (
	"context"
	"fmt"

	"github.com/RegioJobs/RegioJobs/app/models"
	"github.com/go-playground/validator/v10"
)

// CreateAndSendInvoice creates an invoice from the given line items,
// persists it atomically in status sent and dispatches the invoice mail.
// A dispatch failure is reported in the result, not as an error: the
// invoice exists regardless and the mail can be retried without creating
// a duplicate.
func (s *Service) CreateAndSendInvoice(ctx context.Context, in CreateInvoiceInput) (*InvoiceResult, error) {
	_ = ctx
	if err := validator.New().Struct(in); err != nil {
		return nil, newValidationError("invalid invoice request: %v", err)
	}

	company, err := s.repo.GetCompany(in.CompanyID)
	if err != nil {
		return nil, err
	}

	dueDays := DefaultDueDays
	if in.DueDays != nil {
		dueDays = *in.DueDays
	}

	number, err := s.seq.Next()
	if err != nil {
		return nil, err
	}

	now := s.now()
	inv := &models.Invoice{
		InvoiceNumber:  number,
		CompanyID:      company.ID,
		CustomerName:   company.Name,
		CustomerEmail:  company.Email,
		CustomerStreet: company.Street,
		CustomerCity:   company.ZipCode + " " + company.City,
		TaxRatePercent: models.DefaultTaxRatePercent,
		DueDate:        now.AddDate(0, 0, dueDays),
		Status:         models.InvoiceStatusSent,
	}
	for _, it := range in.Items {
		inv.Items = append(inv.Items, models.InvoiceItem{
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	inv.ComputeTotals()

	if err := s.repo.CreateInvoiceWithItems(inv); err != nil {
		return nil, fmt.Errorf("persist invoice %s: %w", number, err)
	}

	s.logActivity(models.ActivityInvoiceCreated, "invoice", inv.ID, company.ID,
		fmt.Sprintf("Rechnung %s über %s erstellt", inv.InvoiceNumber, formatEuro(inv.TotalCents)))

	result := &InvoiceResult{
		Invoice: inv,
		Message: fmt.Sprintf("Rechnung %s wurde erstellt und versendet", inv.InvoiceNumber),
	}
	if err := s.deliver(company.Email, invoiceEmailSubject(inv), invoiceEmailBody(inv, company)); err != nil {
		result.DispatchFailed = true
		result.DispatchError = err.Error()
		result.Message = fmt.Sprintf("Rechnung %s wurde erstellt, Versand fehlgeschlagen", inv.InvoiceNumber)
	}
	return result, nil
}

// CreateSubscriptionInvoice builds a single-line subscription invoice from
// the fixed tier price table and delegates to CreateAndSendInvoice.
func (s *Service) CreateSubscriptionInvoice(ctx context.Context, in CreateSubscriptionInvoiceInput) (*InvoiceResult, error) {
	if err := validator.New().Struct(in); err != nil {
		return nil, newValidationError("invalid subscription invoice request: %v", err)
	}

	price, ok := TierMonthlyPriceCents[in.Tier]
	if !ok {
		return nil, newValidationError("unknown subscription tier %q", in.Tier)
	}

	return s.CreateAndSendInvoice(ctx, CreateInvoiceInput{
		CompanyID: in.CompanyID,
		Items: []InvoiceItemInput{
			{
				Description:    fmt.Sprintf("%s-Abo, %d Monat(e)", tierLabel(in.Tier), in.Months),
				Quantity:       in.Months,
				UnitPriceCents: price,
			},
		},
	})
}

// MarkInvoicePaid records a manually confirmed bank transfer. The
// conditional write only succeeds from sent or overdue; anything else is
// reported as a conflict no-op so retries stay safe.
func (s *Service) MarkInvoicePaid(ctx context.Context, in InvoiceRefInput) (*StatusResult, error) {
	_ = ctx
	inv, err := s.repo.GetInvoice(in.InvoiceID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.MarkInvoicePaidIf(inv.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return &StatusResult{
			InvoiceID: inv.ID,
			Status:    inv.Status,
			Message:   fmt.Sprintf("Rechnung %s ist nicht offen, keine Änderung", inv.InvoiceNumber),
		}, nil
	}

	s.logActivity(models.ActivityInvoicePaid, "invoice", inv.ID, inv.CompanyID,
		fmt.Sprintf("Zahlungseingang für Rechnung %s bestätigt", inv.InvoiceNumber))

	return &StatusResult{
		InvoiceID: inv.ID,
		Status:    models.InvoiceStatusPaid,
		Message:   fmt.Sprintf("Rechnung %s wurde als bezahlt markiert", inv.InvoiceNumber),
	}, nil
}

// CancelInvoice moves a non-paid invoice into the terminal cancelled state.
func (s *Service) CancelInvoice(ctx context.Context, in InvoiceRefInput) (*StatusResult, error) {
	_ = ctx
	inv, err := s.repo.GetInvoice(in.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsTerminal() {
		return &StatusResult{
			InvoiceID: inv.ID,
			Status:    inv.Status,
			Message:   fmt.Sprintf("Rechnung %s ist bereits abgeschlossen, keine Änderung", inv.InvoiceNumber),
		}, nil
	}

	updated, err := s.repo.UpdateInvoiceStatusIf(inv.ID, inv.Status, models.InvoiceStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost against a concurrent transition; treat like any other
		// conflict and report the stored state.
		current, err := s.repo.GetInvoice(inv.ID)
		if err != nil {
			return nil, err
		}
		return &StatusResult{
			InvoiceID: current.ID,
			Status:    current.Status,
			Message:   fmt.Sprintf("Rechnung %s wurde zwischenzeitlich geändert, keine Stornierung", current.InvoiceNumber),
		}, nil
	}

	s.logActivity(models.ActivityInvoiceCancelled, "invoice", inv.ID, inv.CompanyID,
		fmt.Sprintf("Rechnung %s storniert", inv.InvoiceNumber))

	return &StatusResult{
		InvoiceID: inv.ID,
		Status:    models.InvoiceStatusCancelled,
		Message:   fmt.Sprintf("Rechnung %s wurde storniert", inv.InvoiceNumber),
	}, nil
}
