package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/RegioJobs/RegioJobs/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
)

// ExpiryWarningWindow is how far ahead the expiry sweep looks for active
// subscriptions about to run out.
const ExpiryWarningWindow = 7 * 24 * time.Hour

// ActivateSubscription activates (or extends) a company's subscription from
// an approved payment for a pending request. The compare-and-swap on the
// request status is the concurrency gate: of two simultaneous activations
// exactly one flips pending -> approved and performs the extension, the
// other sees a non-pending request and returns the existing subscription as
// a no-op.
func (s *Service) ActivateSubscription(ctx context.Context, in ActivateSubscriptionInput) (*ActivationResult, error) {
	_ = ctx
	if err := validator.New().Struct(in); err != nil {
		return nil, newValidationError("invalid activation request: %v", err)
	}

	req, err := s.repo.GetRequest(in.RequestID)
	if err != nil {
		return nil, err
	}

	if !req.IsPending() {
		sub, err := s.repo.SubscriptionForCompany(req.CompanyID)
		if err != nil {
			return nil, err
		}
		return &ActivationResult{
			Subscription:     sub,
			AlreadyActivated: true,
			Message:          fmt.Sprintf("Anfrage %d wurde bereits bearbeitet, keine Änderung", req.ID),
		}, nil
	}

	now := s.now()
	won, err := s.repo.DecideRequestIf(req.ID, models.RequestStatusPending, models.RequestStatusApproved, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the swap against a concurrent activation.
		sub, err := s.repo.SubscriptionForCompany(req.CompanyID)
		if err != nil {
			return nil, err
		}
		return &ActivationResult{
			Subscription:     sub,
			AlreadyActivated: true,
			Message:          fmt.Sprintf("Anfrage %d wurde bereits bearbeitet, keine Änderung", req.ID),
		}, nil
	}

	sub, err := s.extendSubscription(req, now)
	if err != nil {
		return nil, err
	}

	expires := sub.ExpiresAt
	if err := s.repo.SetCompanyPremium(req.CompanyID, true, &expires); err != nil {
		return nil, err
	}

	s.logActivity(models.ActivitySubscriptionActivated, "subscription", sub.ID, req.CompanyID,
		fmt.Sprintf("%s-Abo aktiviert bis %s", tierLabel(sub.Tier), formatDate(sub.ExpiresAt)))

	company, err := s.repo.GetCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := s.deliver(company.Email, welcomeEmailSubject(sub.Tier), welcomeEmailBody(company, sub)); err != nil {
		log.Warnf("[Billing] welcome mail for company %d failed: %v", company.ID, err)
	}

	return &ActivationResult{
		Subscription: sub,
		Message:      fmt.Sprintf("%s-Abo für %s aktiv bis %s", tierLabel(sub.Tier), company.Name, formatDate(sub.ExpiresAt)),
	}, nil
}

// extendSubscription creates the company's subscription or advances its
// expiry. A still-running subscription is extended from its current expiry,
// an expired one restarts from now; the expiry never moves backwards.
func (s *Service) extendSubscription(req *models.SubscriptionRequest, now time.Time) (*models.Subscription, error) {
	sub, err := s.repo.SubscriptionForCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}

	base := now
	if sub != nil && sub.IsActiveAt(now) {
		base = sub.ExpiresAt
	}
	expiresAt := base.AddDate(0, req.DurationMonths, 0)

	if sub == nil {
		sub = &models.Subscription{CompanyID: req.CompanyID}
	}
	sub.Tier = req.Tier
	sub.Status = models.SubscriptionStatusActive
	sub.ExpiresAt = expiresAt
	sub.ExpiryWarnedFor = nil

	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SendExpiryWarnings notifies companies whose active subscription runs out
// within the next seven days. The expiry-warned marker is written with a
// conditional update before the mail goes out, so each expiry date is
// warned about exactly once no matter how often the sweep runs.
func (s *Service) SendExpiryWarnings(ctx context.Context) (*SweepResult, error) {
	_ = ctx
	ok, release := s.acquireSweep("expiry_warnings")
	if !ok {
		return &SweepResult{Message: "Ablaufwarnungen laufen bereits"}, nil
	}
	defer release()

	now := s.now()
	subs, err := s.repo.ListExpiringSubscriptions(now, now.Add(ExpiryWarningWindow))
	if err != nil {
		return nil, err
	}

	res := &SweepResult{}
	for _, sub := range subs {
		if sub.WasWarnedFor(sub.ExpiresAt) {
			continue
		}

		res.Attempted++
		marked, err := s.repo.MarkExpiryWarned(sub.ID, sub.ExpiresAt)
		if err != nil {
			log.Errorf("[Billing] expiry-warned marker for subscription %d failed: %v", sub.ID, err)
			res.Failed++
			continue
		}
		if !marked {
			// A concurrent sweep got here first.
			res.Attempted--
			continue
		}

		company, err := s.repo.GetCompany(sub.CompanyID)
		if err != nil {
			log.Errorf("[Billing] company lookup for subscription %d failed: %v", sub.ID, err)
			res.Failed++
			continue
		}

		s.logActivity(models.ActivityExpiryWarningSent, "subscription", sub.ID, sub.CompanyID,
			fmt.Sprintf("Ablaufwarnung für %s-Abo versendet, Ablauf am %s", tierLabel(sub.Tier), formatDate(sub.ExpiresAt)))

		if err := s.deliver(company.Email, expiryWarningSubject(&sub), expiryWarningBody(company, &sub)); err != nil {
			res.Failed++
			continue
		}
		res.Sent++
	}

	res.Message = fmt.Sprintf("Ablaufwarnungen: %d geprüft, %d versendet, %d fehlgeschlagen",
		res.Attempted, res.Sent, res.Failed)
	return res, nil
}
