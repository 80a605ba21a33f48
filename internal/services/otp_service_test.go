package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/ratelimit"
)

func newOTPService(t *testing.T) (*OTPService, *ratelimit.MemoryLimiter) {
	t.Helper()

	db := newTestDB(t)
	limiter := ratelimit.NewMemoryLimiter()
	sms := NewSMSService("", "", "", zap.NewNop())
	return NewOTPService(db, limiter, sms, false, zap.NewNop()), limiter
}

func TestRequestChallenge_InvalidPhone(t *testing.T) {
	svc, _ := newOTPService(t)

	for _, phone := range []string{"", "12345", "123456789a", "+1234567890", "12345678901"} {
		err := svc.RequestChallenge(context.Background(), phone, "client-1")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.Validation), "phone %q", phone)
	}
}

func TestRequestChallenge_RateLimit(t *testing.T) {
	svc, _ := newOTPService(t)
	ctx := context.Background()

	for i := 0; i < ratelimit.MaxSends; i++ {
		require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))
	}

	err := svc.RequestChallenge(ctx, "9001234567", "client-1")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.RateLimited))

	// A different phone from the same client has its own counter.
	require.NoError(t, svc.RequestChallenge(ctx, "9007654321", "client-1"))
	// And so does the same phone from a different client.
	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-2"))
}

func TestRequestChallenge_WindowReset(t *testing.T) {
	db := newTestDB(t)
	base := time.Now()
	current := base
	limiter := ratelimit.NewMemoryLimiterWithClock(func() time.Time { return current })
	sms := NewSMSService("", "", "", zap.NewNop())
	svc := NewOTPService(db, limiter, sms, false, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < ratelimit.MaxSends; i++ {
		require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))
	}
	err := svc.RequestChallenge(ctx, "9001234567", "client-1")
	assert.True(t, apperr.Is(err, apperr.RateLimited))

	current = base.Add(ratelimit.Window)
	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))
}

func TestVerifyChallenge_SuccessCreatesUser(t *testing.T) {
	svc, _ := newOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))

	user, err := svc.VerifyChallenge(ctx, "9001234567", "123456")
	require.NoError(t, err)
	assert.Equal(t, "9001234567", user.Phone)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsVerified)

	// Verifying again reuses the same account.
	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))
	again, err := svc.VerifyChallenge(ctx, "9001234567", "123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestVerifyChallenge_SingleUse(t *testing.T) {
	svc, _ := newOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))

	_, err := svc.VerifyChallenge(ctx, "9001234567", "123456")
	require.NoError(t, err)

	_, err = svc.VerifyChallenge(ctx, "9001234567", "123456")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Authentication))
}

func TestVerifyChallenge_WrongCodeCountsAttempt(t *testing.T) {
	svc, _ := newOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))

	_, err := svc.VerifyChallenge(ctx, "9001234567", "000000")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Authentication))

	var challenge models.OTPChallenge
	require.NoError(t, svc.db.Where("phone = ?", "9001234567").First(&challenge).Error)
	assert.Equal(t, 1, challenge.Attempts)

	// The correct code still works afterwards; there is no attempt cap.
	_, err = svc.VerifyChallenge(ctx, "9001234567", "123456")
	require.NoError(t, err)
}

func TestVerifyChallenge_Expired(t *testing.T) {
	svc, _ := newOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))

	svc.now = func() time.Time { return time.Now().Add(challengeTTL + time.Minute) }
	_, err := svc.VerifyChallenge(ctx, "9001234567", "123456")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Authentication))
}

func TestRequestChallenge_ReplacesPreviousCode(t *testing.T) {
	svc, _ := newOTPService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))

	_, err := svc.VerifyChallenge(ctx, "9001234567", "000000")
	require.Error(t, err)

	// A fresh request resets the attempt counter on the single challenge row.
	require.NoError(t, svc.RequestChallenge(ctx, "9001234567", "client-1"))

	var count int64
	require.NoError(t, svc.db.Model(&models.OTPChallenge{}).
		Where("phone = ?", "9001234567").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var challenge models.OTPChallenge
	require.NoError(t, svc.db.Where("phone = ?", "9001234567").First(&challenge).Error)
	assert.Equal(t, 0, challenge.Attempts)
}
