package billing

import (
	"time"

	"github.com/RegioJobs/RegioJobs/app/models"
	"github.com/RegioJobs/RegioJobs/internal/pkg/cache"
	"github.com/RegioJobs/RegioJobs/internal/pkg/jobqueue"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RetryEnqueuer accepts failed notification dispatches for asynchronous
// redelivery. The durable billing record stays the source of truth either
// way; the queue only retries the email.
type RetryEnqueuer interface {
	EnqueueNotification(to, subject, htmlBody string) error
}

// Service is the billing workflow engine. Every handler invocation is
// stateless: it reloads what it needs through the repository, commits the
// next state, then emits side effects.
type Service struct {
	repo     Repository
	notifier Notifier
	seq      NumberSequence
	retry    RetryEnqueuer
	locks    *SweepLock
	now      func() time.Time
}

// NewService creates a workflow engine from injected collaborators. retry
// and locks may be nil; the engine then skips async redelivery and sweep
// locking.
func NewService(repo Repository, notifier Notifier, seq NumberSequence) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		seq:      seq,
		now:      time.Now,
	}
}

// NewServiceFromDB wires the production engine: GORM repository, SMTP
// notifier, redis number sequence, redis sweep locks and the notification
// retry queue.
func NewServiceFromDB(db *gorm.DB, queue *jobqueue.Queue) *Service {
	s := NewService(NewRepository(db), NewSMTPNotifier(), NewRedisSequence(cache.GetClient()))
	s.locks = NewSweepLock(cache.GetClient())
	if queue != nil {
		s.retry = queue
	}
	return s
}

// deliver sends a notification and reports failure without failing the
// workflow. Failed sends are handed to the retry queue when one is wired.
func (s *Service) deliver(to, subject, body string) error {
	err := s.notifier.Send(to, subject, body)
	if err == nil {
		return nil
	}
	log.Errorf("[Billing] notification to %s failed: %v", to, err)
	if s.retry != nil {
		if qErr := s.retry.EnqueueNotification(to, subject, body); qErr != nil {
			log.Errorf("[Billing] could not enqueue notification retry: %v", qErr)
		}
	}
	return err
}

// logActivity appends a CRM trail entry. The trail is display-only, so a
// write failure is logged and swallowed.
func (s *Service) logActivity(action, subjectType string, subjectID, companyID uint, note string) {
	entry := &models.ActivityLog{
		ReferenceID: uuid.NewString(),
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		CompanyID:   companyID,
		Note:        note,
	}
	if err := s.repo.AppendActivity(entry); err != nil {
		log.Warnf("[Billing] activity log append failed: %v", err)
	}
}
