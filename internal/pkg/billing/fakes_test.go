package billing

import (
	"fmt"
	"sync"
	"time"

	"github.com/RegioJobs/RegioJobs/app/models"
)

// fakeRepository is an in-memory Repository with the same conditional-write
// semantics as the GORM implementation.
type fakeRepository struct {
	mu sync.Mutex

	companies     map[uint]*models.Company
	invoices      map[uint]*models.Invoice
	reminders     []models.PaymentReminder
	requests      map[uint]*models.SubscriptionRequest
	subscriptions map[uint]*models.Subscription
	activities    []models.ActivityLog

	nextInvoiceID uint
	nextSubID     uint
	nextRemID     uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		companies:     make(map[uint]*models.Company),
		invoices:      make(map[uint]*models.Invoice),
		requests:      make(map[uint]*models.SubscriptionRequest),
		subscriptions: make(map[uint]*models.Subscription),
		nextInvoiceID: 1,
		nextSubID:     1,
		nextRemID:     1,
	}
}

func (f *fakeRepository) GetCompany(id uint) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return nil, newNotFoundError("company", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepository) SetCompanyPremium(id uint, premium bool, until *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.companies[id]; ok {
		c.Premium = premium
		c.PremiumUntil = until
	}
	return nil
}

func (f *fakeRepository) GetInvoice(id uint) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return nil, newNotFoundError("invoice", id)
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepository) GetInvoiceByNumber(number string) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, newNotFoundError("invoice", number)
}

func (f *fakeRepository) CreateInvoiceWithItems(inv *models.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = f.nextInvoiceID
	f.nextInvoiceID++
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
	}
	cp := *inv
	f.invoices[inv.ID] = &cp
	return nil
}

func (f *fakeRepository) UpdateInvoiceStatusIf(id uint, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.Status != from {
		return false, nil
	}
	inv.Status = to
	return true, nil
}

func (f *fakeRepository) MarkInvoicePaidIf(id uint, paidAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return false, nil
	}
	if inv.Status != models.InvoiceStatusSent && inv.Status != models.InvoiceStatusOverdue {
		return false, nil
	}
	inv.Status = models.InvoiceStatusPaid
	inv.PaidAt = &paidAt
	return true, nil
}

func (f *fakeRepository) ListDueInvoices(statuses []string, dueBefore time.Time) ([]models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Invoice
	for _, inv := range f.invoices {
		for _, st := range statuses {
			if inv.Status == st && inv.DueDate.Before(dueBefore) {
				out = append(out, *inv)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepository) LastReminderLevel(invoiceID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	last := 0
	for _, r := range f.reminders {
		if r.InvoiceID == invoiceID && r.Level > last {
			last = r.Level
		}
	}
	return last, nil
}

func (f *fakeRepository) AppendReminder(rem *models.PaymentReminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reminders {
		if r.InvoiceID == rem.InvoiceID && r.Level == rem.Level {
			return newConflictError("reminder level %d already recorded for invoice %d", rem.Level, rem.InvoiceID)
		}
	}
	rem.ID = f.nextRemID
	f.nextRemID++
	f.reminders = append(f.reminders, *rem)
	return nil
}

func (f *fakeRepository) GetRequest(id uint) (*models.SubscriptionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, newNotFoundError("subscription request", id)
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRepository) DecideRequestIf(id uint, from, to string, decidedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	req.DecidedAt = &decidedAt
	return true, nil
}

func (f *fakeRepository) SubscriptionForCompany(companyID uint) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Subscription
	for _, sub := range f.subscriptions {
		if sub.CompanyID != companyID {
			continue
		}
		if latest == nil || sub.ExpiresAt.After(latest.ExpiresAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeRepository) GetSubscription(id uint) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subscriptions[id]
	if !ok {
		return nil, newNotFoundError("subscription", id)
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeRepository) SaveSubscription(sub *models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub.ID == 0 {
		sub.ID = f.nextSubID
		f.nextSubID++
	}
	cp := *sub
	f.subscriptions[sub.ID] = &cp
	return nil
}

func (f *fakeRepository) ListExpiringSubscriptions(from, to time.Time) ([]models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Subscription
	for _, sub := range f.subscriptions {
		if sub.Status != models.SubscriptionStatusActive {
			continue
		}
		if sub.ExpiresAt.Before(from) || sub.ExpiresAt.After(to) {
			continue
		}
		out = append(out, *sub)
	}
	return out, nil
}

func (f *fakeRepository) MarkExpiryWarned(subID uint, expiresAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subscriptions[subID]
	if !ok || !sub.ExpiresAt.Equal(expiresAt) {
		return false, nil
	}
	if sub.ExpiryWarnedFor != nil && sub.ExpiryWarnedFor.Equal(expiresAt) {
		return false, nil
	}
	sub.ExpiryWarnedFor = &expiresAt
	return true, nil
}

func (f *fakeRepository) AppendActivity(entry *models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, *entry)
	return nil
}

func (f *fakeRepository) ListActivities(companyID uint, limit int) ([]models.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityLog
	for _, a := range f.activities {
		if companyID == 0 || a.CompanyID == companyID {
			out = append(out, a)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// fakeNotifier records sent mails and can be told to fail for single
// recipients.
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []fakeMail
	failTo map[string]error
}

type fakeMail struct {
	To      string
	Subject string
	Body    string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failTo: make(map[string]error)}
}

func (n *fakeNotifier) Send(to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failTo[to]; ok {
		return err
	}
	n.sent = append(n.sent, fakeMail{To: to, Subject: subject, Body: body})
	return nil
}

func (n *fakeNotifier) sentTo(to string) []fakeMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []fakeMail
	for _, m := range n.sent {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}

// fakeSequence hands out deterministic invoice numbers.
type fakeSequence struct {
	mu sync.Mutex
	n  int64
}

func (s *fakeSequence) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("RJ-2026-%06d", s.n), nil
}

func newTestService(at time.Time) (*Service, *fakeRepository, *fakeNotifier) {
	repo := newFakeRepository()
	notifier := newFakeNotifier()
	svc := NewService(repo, notifier, &fakeSequence{})
	svc.now = func() time.Time { return at }
	return svc, repo, notifier
}
