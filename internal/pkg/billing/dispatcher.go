package billing

import (
	"context"
	"encoding/json"
)

type handlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Dispatcher maps the closed set of workflow actions to typed engine
// handlers. Parameters arrive as raw JSON and are decoded into the typed
// input of the matching handler; unknown actions are rejected.
type Dispatcher struct {
	handlers map[Action]handlerFunc
}

// NewDispatcher builds the dispatch table over the given engine.
func NewDispatcher(svc *Service) *Dispatcher {
	return &Dispatcher{
		handlers: map[Action]handlerFunc{
			ActionCreateAndSendInvoice: func(ctx context.Context, params json.RawMessage) (any, error) {
				var in CreateInvoiceInput
				if err := decodeParams(params, &in); err != nil {
					return nil, err
				}
				return svc.CreateAndSendInvoice(ctx, in)
			},
			ActionCreateSubscriptionInvoice: func(ctx context.Context, params json.RawMessage) (any, error) {
				var in CreateSubscriptionInvoiceInput
				if err := decodeParams(params, &in); err != nil {
					return nil, err
				}
				return svc.CreateSubscriptionInvoice(ctx, in)
			},
			ActionActivateSubscription: func(ctx context.Context, params json.RawMessage) (any, error) {
				var in ActivateSubscriptionInput
				if err := decodeParams(params, &in); err != nil {
					return nil, err
				}
				return svc.ActivateSubscription(ctx, in)
			},
			ActionSendPaymentReminder: func(ctx context.Context, params json.RawMessage) (any, error) {
				var in SendReminderInput
				if err := decodeParams(params, &in); err != nil {
					return nil, err
				}
				return svc.SendPaymentReminder(ctx, in)
			},
			ActionMarkInvoicePaid: func(ctx context.Context, params json.RawMessage) (any, error) {
				var in InvoiceRefInput
				if err := decodeParams(params, &in); err != nil {
					return nil, err
				}
				return svc.MarkInvoicePaid(ctx, in)
			},
			ActionCancelInvoice: func(ctx context.Context, params json.RawMessage) (any, error) {
				var in InvoiceRefInput
				if err := decodeParams(params, &in); err != nil {
					return nil, err
				}
				return svc.CancelInvoice(ctx, in)
			},
			ActionSendBulkReminders: func(ctx context.Context, _ json.RawMessage) (any, error) {
				return svc.SendBulkReminders(ctx)
			},
			ActionCheckOverdueInvoices: func(ctx context.Context, _ json.RawMessage) (any, error) {
				return svc.CheckOverdueInvoices(ctx)
			},
			ActionSendExpiryWarnings: func(ctx context.Context, _ json.RawMessage) (any, error) {
				return svc.SendExpiryWarnings(ctx)
			},
		},
	}
}

// Dispatch routes one workflow request to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, params json.RawMessage) (any, error) {
	h, ok := d.handlers[action]
	if !ok {
		return nil, &UnknownActionError{Action: action}
	}
	return h(ctx, params)
}

// Actions returns the supported action names, for diagnostics.
func (d *Dispatcher) Actions() []Action {
	actions := make([]Action, 0, len(d.handlers))
	for a := range d.handlers {
		actions = append(actions, a)
	}
	return actions
}

func decodeParams(params json.RawMessage, into any) error {
	if len(params) == 0 {
		return newValidationError("missing parameters")
	}
	if err := json.Unmarshal(params, into); err != nil {
		return newValidationError("malformed parameters: %v", err)
	}
	return nil
}
