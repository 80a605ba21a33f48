package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/bazaar/internal/apperr"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/ratelimit"
)

const (
	challengeTTL = 10 * time.Minute

	// devCode is issued outside production so clients and tests can
	// verify without a real SMS round trip.
	devCode = "123456"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// OTPService owns the phone-challenge lifecycle: issuing codes under a
// rate limit and exchanging a valid code for a user record.
type OTPService struct {
	db         *gorm.DB
	limiter    ratelimit.Limiter
	sms        *SMSService
	production bool
	log        *zap.Logger
	now        func() time.Time
}

// NewOTPService constructs an OTPService.
func NewOTPService(db *gorm.DB, limiter ratelimit.Limiter, sms *SMSService, production bool, log *zap.Logger) *OTPService {
	return &OTPService{
		db:         db,
		limiter:    limiter,
		sms:        sms,
		production: production,
		log:        log,
		now:        time.Now,
	}
}

// RequestChallenge issues a one-time code for the phone, replacing any
// previous challenge. A rate-limited request issues nothing and touches
// no counters.
func (s *OTPService) RequestChallenge(ctx context.Context, phone, clientID string) error {
	if !phonePattern.MatchString(phone) {
		return apperr.New(apperr.Validation, "phone must be exactly 10 digits")
	}

	allowed, err := s.limiter.Allow(ctx, clientID, phone)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.New(apperr.RateLimited, "too many verification codes requested, try again later")
	}

	code := devCode
	if s.production {
		code, err = generateCode()
		if err != nil {
			return err
		}
	}

	now := s.now()
	challenge := models.OTPChallenge{
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(challengeTTL),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"code":       code,
			"expires_at": now.Add(challengeTTL),
			"attempts":   0,
			"updated_at": now,
		}),
	}).Create(&challenge).Error; err != nil {
		return err
	}

	if err := s.sms.SendCode(phone, code); err != nil {
		if s.production {
			return fmt.Errorf("failed to dispatch verification code: %w", err)
		}
		s.log.Warn("sms dispatch failed, continuing without delivery",
			zap.String("phone", phone),
			zap.Error(err),
		)
	}

	return nil
}

// VerifyChallenge exchanges a valid (phone, code) pair for the user
// record, creating the user on first verification. The challenge is
// single use and expiry is enforced by the lookup filter. A miss still
// increments the attempt counter on any live challenge for the phone.
func (s *OTPService) VerifyChallenge(ctx context.Context, phone, code string) (*models.User, error) {
	if !phonePattern.MatchString(phone) {
		return nil, apperr.New(apperr.Validation, "phone must be exactly 10 digits")
	}
	if code == "" {
		return nil, apperr.New(apperr.Validation, "code is required")
	}

	now := s.now()

	var challenge models.OTPChallenge
	err := s.db.WithContext(ctx).
		Where("phone = ? AND code = ? AND expires_at > ?", phone, code, now).
		First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Keep failed-attempt telemetry even when the code is wrong.
		// Expiry is the only lockout; there is no attempt cap.
		if err := s.db.WithContext(ctx).Model(&models.OTPChallenge{}).
			Where("phone = ?", phone).
			UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			s.log.Warn("failed to record otp attempt", zap.String("phone", phone), zap.Error(err))
		}
		return nil, apperr.New(apperr.Authentication, "invalid or expired verification code")
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Delete(&challenge).Error; err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Phone:      phone,
			Role:       models.RoleUser,
			IsVerified: true,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := s.db.WithContext(ctx).Model(&user).
			Updates(map[string]interface{}{"is_verified": true, "updated_at": now}).Error; err != nil {
			return nil, err
		}
	}

	return &user, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
