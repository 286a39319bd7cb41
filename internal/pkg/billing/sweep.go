package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/RegioJobs/RegioJobs/app/models"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	sweepLockKeyPrefix = "sweep_lock:"
	sweepLockTTL       = 10 * time.Minute
)

// SweepLock is a redis SETNX mutex keeping two firings of the same sweep
// from overlapping. The sweeps stay correct without it (every transition is
// a conditional write), it only avoids duplicate work.
type SweepLock struct {
	client *redis.Client
}

func NewSweepLock(client *redis.Client) *SweepLock {
	return &SweepLock{client: client}
}

func (l *SweepLock) Acquire(name string) (bool, error) {
	return l.client.SetNX(context.Background(), sweepLockKeyPrefix+name, 1, sweepLockTTL).Result()
}

func (l *SweepLock) Release(name string) {
	if err := l.client.Del(context.Background(), sweepLockKeyPrefix+name).Err(); err != nil {
		log.Warnf("[Billing] releasing sweep lock %s failed: %v", name, err)
	}
}

// acquireSweep takes the named lock when locking is wired. The returned
// release func is a no-op when the lock was skipped or not acquired.
func (s *Service) acquireSweep(name string) (bool, func()) {
	if s.locks == nil {
		return true, func() {}
	}
	ok, err := s.locks.Acquire(name)
	if err != nil {
		log.Warnf("[Billing] sweep lock %s unavailable, running unlocked: %v", name, err)
		return true, func() {}
	}
	if !ok {
		return false, func() {}
	}
	return true, func() { s.locks.Release(name) }
}

// CheckOverdueInvoices transitions every sent invoice past its due date to
// overdue. The status filter makes the sweep idempotent: a second run right
// after the first finds nothing left to transition.
func (s *Service) CheckOverdueInvoices(ctx context.Context) (*SweepResult, error) {
	_ = ctx
	ok, release := s.acquireSweep("check_overdue")
	if !ok {
		return &SweepResult{Message: "Überfälligkeitsprüfung läuft bereits"}, nil
	}
	defer release()

	now := s.now()
	invoices, err := s.repo.ListDueInvoices([]string{models.InvoiceStatusSent}, now)
	if err != nil {
		return nil, err
	}

	updated := 0
	for _, inv := range invoices {
		changed, err := s.repo.UpdateInvoiceStatusIf(inv.ID, models.InvoiceStatusSent, models.InvoiceStatusOverdue)
		if err != nil {
			log.Errorf("[Billing] overdue transition for invoice %d failed: %v", inv.ID, err)
			continue
		}
		if changed {
			updated++
		}
	}

	return &SweepResult{
		Attempted: len(invoices),
		Updated:   updated,
		Message:   fmt.Sprintf("%d Rechnung(en) als überfällig markiert", updated),
	}, nil
}

// SendBulkReminders escalates every open invoice past its due date by one
// reminder level. Per-invoice failures are isolated: the sweep continues
// and reports attempted/sent/failed counts instead of raising.
func (s *Service) SendBulkReminders(ctx context.Context) (*SweepResult, error) {
	ok, release := s.acquireSweep("bulk_reminders")
	if !ok {
		return &SweepResult{Message: "Mahnlauf läuft bereits"}, nil
	}
	defer release()

	now := s.now()
	invoices, err := s.repo.ListDueInvoices(
		[]string{models.InvoiceStatusSent, models.InvoiceStatusOverdue}, now)
	if err != nil {
		return nil, err
	}

	res := &SweepResult{}
	for _, inv := range invoices {
		last, err := s.repo.LastReminderLevel(inv.ID)
		if err != nil {
			log.Errorf("[Billing] reminder level lookup for invoice %d failed: %v", inv.ID, err)
			res.Attempted++
			res.Failed++
			continue
		}
		if last >= models.MaxReminderLevel {
			continue
		}

		res.Attempted++
		rr, err := s.SendPaymentReminder(ctx, SendReminderInput{InvoiceID: inv.ID})
		switch {
		case err != nil:
			log.Errorf("[Billing] bulk reminder for invoice %d failed: %v", inv.ID, err)
			res.Failed++
		case rr.DispatchFailed:
			res.Failed++
		case rr.Skipped:
			// Raced with a concurrent single-invoice send; the ledger
			// already holds the level, nothing was lost.
		default:
			res.Sent++
		}
	}

	res.Message = fmt.Sprintf("Mahnlauf abgeschlossen: %d geprüft, %d versendet, %d fehlgeschlagen",
		res.Attempted, res.Sent, res.Failed)
	return res, nil
}
