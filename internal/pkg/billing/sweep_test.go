package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RegioJobs/RegioJobs/app/models"
)

func TestCheckOverdueInvoices(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	seedCompany(repo, 1)

	overdue1 := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -5))
	overdue2 := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -1))
	notDue := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, 5))

	res, err := svc.CheckOverdueInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)

	for _, id := range []uint{overdue1.ID, overdue2.ID} {
		inv, err := repo.GetInvoice(id)
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusOverdue, inv.Status)
	}
	inv, err := repo.GetInvoice(notDue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, inv.Status)

	// A second run finds nothing left to transition.
	again, err := svc.CheckOverdueInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Updated)
}

func TestCheckOverdueInvoices_IgnoresPaid(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	seedCompany(repo, 1)

	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -5))
	_, err := svc.MarkInvoicePaid(context.Background(), InvoiceRefInput{InvoiceID: inv.ID})
	require.NoError(t, err)

	res, err := svc.CheckOverdueInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
}

func TestSendBulkReminders(t *testing.T) {
	svc, repo, notifier := newTestService(testTime)
	c1 := seedCompany(repo, 1)
	c2 := &models.Company{ID: 2, Name: "Schmidt Bau AG", Email: "rechnung@schmidt-bau.de", Street: "Ringstraße 8", ZipCode: "80331", City: "München"}
	repo.companies[2] = c2
	c3 := &models.Company{ID: 3, Name: "Weber Logistik KG", Email: "finanzen@weber-logistik.de", Street: "Hafenweg 2", ZipCode: "20457", City: "Hamburg"}
	repo.companies[3] = c3

	seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -3))
	seedOpenInvoice(t, svc, repo, 2, testTime.AddDate(0, 0, -7))
	seedOpenInvoice(t, svc, repo, 3, testTime.AddDate(0, 0, -14))

	// One recipient's mail server is down.
	notifier.failTo[c3.Email] = errors.New("smtp: host unreachable")

	res, err := svc.SendBulkReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)

	// The two reachable companies each got their level-1 reminder.
	assert.Len(t, notifier.sentTo(c1.Email), 2) // invoice + reminder
	assert.Len(t, notifier.sentTo(c2.Email), 2)
}

func TestSendBulkReminders_SkipsExhaustedLevels(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -30))

	for level := 1; level <= models.MaxReminderLevel; level++ {
		l := level
		_, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID, Level: &l})
		require.NoError(t, err)
	}

	res, err := svc.SendBulkReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Attempted)
	assert.Equal(t, 0, res.Sent)
}

func TestSendBulkReminders_EscalatesExistingLevel(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	inv := seedOpenInvoice(t, svc, repo, 1, testTime.AddDate(0, 0, -30))

	_, err := svc.SendPaymentReminder(context.Background(), SendReminderInput{InvoiceID: inv.ID})
	require.NoError(t, err)

	res, err := svc.SendBulkReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	last, err := repo.LastReminderLevel(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, last)
}
