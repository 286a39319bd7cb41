package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RegioJobs/RegioJobs/app/models"
)

func seedOpenInvoice(t *testing.T, svc *Service, repo *fakeRepository, companyID uint, due time.Time) *models.Invoice {
	t.Helper()
	if _, ok := repo.companies[companyID]; !ok {
		seedCompany(repo, companyID)
	}
	res, err := svc.CreateAndSendInvoice(context.Background(), CreateInvoiceInput{
		CompanyID: companyID,
		Items:     []InvoiceItemInput{{Description: "Stellenanzeige", Quantity: 1, UnitPriceCents: 4900}},
	})
	require.NoError(t, err)

	repo.mu.Lock()
	repo.invoices[res.Invoice.ID].DueDate = due
	repo.mu.Unlock()
	res.Invoice.DueDate = due
	return res.Invoice
}

func TestSendPaymentReminder_DerivesNextLevel(t *testing.T) {
	svc, repo, notifier := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -10))

	first, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Level)
	assert.False(t, first.Skipped)

	second, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Level)

	third, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, third.Level)

	// Past the final level the call becomes a no-op, not an error.
	fourth, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.True(t, fourth.Skipped)

	assert.Len(t, notifier.sentTo("buchhaltung@mueller-personal.de"), 4) // invoice mail + 3 reminders
}

func TestSendPaymentReminder_DuplicateLevelSkipped(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -10))

	level := 1
	first, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID, Level: &level})
	require.NoError(t, err)
	assert.False(t, first.Skipped)

	// Retrying the same level loses against the ledger.
	repeat, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID, Level: &level})
	require.NoError(t, err)
	assert.True(t, repeat.Skipped)
	assert.Contains(t, repeat.Message, "bereits versendet")
}

func TestSendPaymentReminder_MarksOverdue(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -10))

	_, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)

	stored, err := repo.GetInvoice(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusOverdue, stored.Status)
}

func TestSendPaymentReminder_TerminalInvoiceSkipped(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -10))

	_, err := svc.MarkInvoicePaid(context.Background(), InvoiceRefInput{InvoiceID: inv.ID})
	require.NoError(t, err)

	res, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}

func TestSendPaymentReminder_InvalidLevel(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -10))

	level := 5
	_, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID, Level: &level})
	assert.True(t, IsValidation(err))
}

func TestSendPaymentReminder_UnknownInvoice(t *testing.T) {
	svc, _, _ := newTestService(testTime)

	_, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: 404})
	assert.True(t, IsNotFound(err))
}

func TestSendPaymentReminder_DispatchFailureKeepsLedgerEntry(t *testing.T) {
	svc, repo, notifier := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -10))
	notifier.failTo["buchhaltung@mueller-personal.de"] = errors.New("smtp timeout")

	res, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Level)
	assert.True(t, res.DispatchFailed)

	// The level stays recorded, so the next derivation moves on to 2.
	last, err := repo.LastReminderLevel(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, last)
}
