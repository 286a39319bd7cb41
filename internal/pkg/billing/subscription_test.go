package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RegioJobs/RegioJobs/app/models"
)

func seedRequest(repo *fakeRepository, id, companyID uint, months int) *models.SubscriptionRequest {
	req := &models.SubscriptionRequest{
		ID:             id,
		CompanyID:      companyID,
		Tier:           models.TierPremium,
		DurationMonths: months,
		PriceCents:     TierMonthlyPriceCents[models.TierPremium] * int64(months),
		Status:         models.RequestStatusPending,
	}
	repo.requests[id] = req
	return req
}

func TestActivateSubscription_NewSubscription(t *testing.T) {
	svc, repo, notifier := newTestService(testTime)
	company := seedCompany(repo, 1)
	seedRequest(repo, 10, 1, 12)

	res, err := svc.ActivateSubscription(context.Background(), ActivateSubscriptionInput{RequestID: 10})
	require.NoError(t, err)
	require.NotNil(t, res.Subscription)
	assert.False(t, res.AlreadyActivated)

	sub := res.Subscription
	assert.Equal(t, models.TierPremium, sub.Tier)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, testTime.AddDate(0, 12, 0), sub.ExpiresAt)

	// The request is decided, the company flagged premium, the welcome
	// mail out.
	req, err := repo.GetRequest(10)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, req.Status)

	stored, err := repo.GetCompany(1)
	require.NoError(t, err)
	assert.True(t, stored.Premium)
	require.NotNil(t, stored.PremiumUntil)
	assert.Equal(t, sub.ExpiresAt, *stored.PremiumUntil)

	assert.Len(t, notifier.sentTo(company.Email), 1)
}

func TestActivateSubscription_DoubleActivationIsNoOp(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	seedCompany(repo, 1)
	seedRequest(repo, 10, 1, 12)

	first, err := svc.ActivateSubscription(context.Background(), ActivateSubscriptionInput{RequestID: 10})
	require.NoError(t, err)

	second, err := svc.ActivateSubscription(context.Background(), ActivateSubscriptionInput{RequestID: 10})
	require.NoError(t, err)
	assert.True(t, second.AlreadyActivated)
	require.NotNil(t, second.Subscription)

	// The expiry was extended exactly once.
	assert.Equal(t, first.Subscription.ExpiresAt, second.Subscription.ExpiresAt)
	assert.Equal(t, testTime.AddDate(0, 12, 0), second.Subscription.ExpiresAt)
}

func TestActivateSubscription_ExtendsActiveSubscription(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	seedCompany(repo, 1)

	existingExpiry := testTime.AddDate(0, 2, 0)
	repo.subscriptions[1] = &models.Subscription{
		ID:        1,
		CompanyID: 1,
		Tier:      models.TierPremium,
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: existingExpiry,
	}
	seedRequest(repo, 10, 1, 12)

	res, err := svc.ActivateSubscription(context.Background(), ActivateSubscriptionInput{RequestID: 10})
	require.NoError(t, err)

	// Extension stacks onto the remaining term.
	assert.Equal(t, existingExpiry.AddDate(0, 12, 0), res.Subscription.ExpiresAt)
}

func TestActivateSubscription_LapsedSubscriptionRestartsFromNow(t *testing.T) {
	svc, repo, _ := newTestService(testTime)
	seedCompany(repo, 1)

	warned := testTime.AddDate(0, -1, 0)
	repo.subscriptions[1] = &models.Subscription{
		ID:              1,
		CompanyID:       1,
		Tier:            models.TierBasic,
		Status:          models.SubscriptionStatusActive,
		ExpiresAt:       warned,
		ExpiryWarnedFor: &warned,
	}
	seedRequest(repo, 10, 1, 6)

	res, err := svc.ActivateSubscription(context.Background(), ActivateSubscriptionInput{RequestID: 10})
	require.NoError(t, err)

	assert.Equal(t, testTime.AddDate(0, 6, 0), res.Subscription.ExpiresAt)
	assert.Equal(t, models.TierPremium, res.Subscription.Tier)
	// The new term gets its own warning cycle.
	assert.Nil(t, res.Subscription.ExpiryWarnedFor)
}

func TestActivateSubscription_UnknownRequest(t *testing.T) {
	svc, _, _ := newTestService(testTime)

	_, err := svc.ActivateSubscription(context.Background(), ActivateSubscriptionInput{RequestID: 404})
	assert.True(t, IsNotFound(err))
}

func TestSendExpiryWarnings(t *testing.T) {
	svc, repo, notifier := newTestService(testTime)
	company := seedCompany(repo, 1)

	expiry := testTime.Add(3 * 24 * time.Hour)
	repo.subscriptions[1] = &models.Subscription{
		ID:        1,
		CompanyID: 1,
		Tier:      models.TierPremium,
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: expiry,
	}

	res, err := svc.SendExpiryWarnings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempted)
	assert.Equal(t, 1, res.Sent)
	assert.Len(t, notifier.sentTo(company.Email), 1)

	// The second sweep finds the marker and stays silent.
	again, err := svc.SendExpiryWarnings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Attempted)
	assert.Equal(t, 0, again.Sent)
	assert.Len(t, notifier.sentTo(company.Email), 1)
}

func TestSendExpiryWarnings_IgnoresDistantExpiry(t *testing.T) {
	svc, repo, notifier := newTestService(testTime)
	company := seedCompany(repo, 1)

	repo.subscriptions[1] = &models.Subscription{
		ID:        1,
		CompanyID: 1,
		Tier:      models.TierBasic,
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: testTime.Add(30 * 24 * time.Hour),
	}

	res, err := svc.SendExpiryWarnings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)
	assert.Empty(t, notifier.sentTo(company.Email))
}

func TestSendExpiryWarnings_WarnsAgainAfterExtension(t *testing.T) {
	svc, repo, notifier := newTestService(testTime)
	company := seedCompany(repo, 1)

	expiry := testTime.Add(2 * 24 * time.Hour)
	repo.subscriptions[1] = &models.Subscription{
		ID:        1,
		CompanyID: 1,
		Tier:      models.TierPremium,
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: expiry,
	}

	_, err := svc.SendExpiryWarnings(context.Background())
	require.NoError(t, err)
	require.Len(t, notifier.sentTo(company.Email), 1)

	// Renewal pushes the expiry out and clears the marker.
	seedRequest(repo, 10, 1, 1)
	_, err = svc.ActivateSubscription(context.Background(), ActivateSubscriptionInput{RequestID: 10})
	require.NoError(t, err)

	// Move the clock to just before the new expiry.
	sub, err := repo.GetSubscription(1)
	require.NoError(t, err)
	svc.now = func() time.Time { return sub.ExpiresAt.Add(-24 * time.Hour) }

	res, err := svc.SendExpiryWarnings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
}
