package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_UnknownAction(t *testing.T) {
	svc, _, _ := newTestService(testTime)
	d := NewDispatcher(svc)

	_, err := d.Dispatch(context.Background(), Action("delete_all_invoices"), json.RawMessage(`{}`))
	assert.True(t, IsUnknownAction(err))
}

func TestDispatcher_MalformedParams(t *testing.T) {
	svc, _, _ := newTestService(testTime)
	d := NewDispatcher(svc)

	_, err := d.Dispatch(context.Background(), ActionCreateAndSendInvoice, json.RawMessage(`{"company_id": `))
	assert.True(t, IsValidation(err))

	_, err = d.Dispatch(context.Background(), ActionCreateAndSendInvoice, nil)
	assert.True(t, IsValidation(err))
}

func TestDispatcher_RoutesInvoiceCreation(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	seedCompany(repo, 1)
	d := NewDispatcher(svc)

	params := json.RawMessage(`{
		"company_id": 1,
		"items": [{"description": "Stellenanzeige", "quantity": 2, "unit_price_cents": 4900}]
	}`)
	out, err := d.Dispatch(context.Background(), ActionCreateAndSendInvoice, params)
	require.NoError(t, err)

	res, ok := out.(*InvoiceResult)
	require.True(t, ok)
	assert.Equal(t, int64(9800), res.Invoice.SubtotalCents)
}

func TestDispatcher_SweepActionsTakeEmptyParams(t *testing.T) {
	svc, _, _ := newTestService(testTime)
	d := NewDispatcher(svc)

	for _, action := range []Action{ActionCheckOverdueInvoices, ActionSendBulkReminders, ActionSendExpiryWarnings} {
		out, err := d.Dispatch(context.Background(), action, json.RawMessage(`{}`))
		require.NoError(t, err, "action %s", action)
		_, ok := out.(*SweepResult)
		assert.True(t, ok, "action %s", action)
	}
}

func TestDispatcher_CoversAllActions(t *testing.T) {
	svc, _, _ := newTestService(testTime)
	d := NewDispatcher(svc)

	expected := []Action{
		ActionCreateAndSendInvoice,
		ActionCreateSubscriptionInvoice,
		ActionActivateSubscription,
		ActionSendPaymentReminder,
		ActionSendBulkReminders,
		ActionCheckOverdueInvoices,
		ActionSendExpiryWarnings,
		ActionMarkInvoicePaid,
		ActionCancelInvoice,
	}
	assert.ElementsMatch(t, expected, d.Actions())
}
