package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"resepi/internal/metrics"
	"resepi/internal/models"
	"resepi/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrAlreadySubscribed = errors.New("email already subscribed")

// VerificationMailer delivers the subscribe confirmation link.
type VerificationMailer interface {
	SendVerificationEmail(email, link string, expires time.Time)
}

type SubscriberService struct {
	db      *gorm.DB
	mailer  VerificationMailer
	siteURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewSubscriberService(db *gorm.DB, mailer VerificationMailer, siteURL string, ttl time.Duration) *SubscriberService {
	return &SubscriberService{
		db:      db,
		mailer:  mailer,
		siteURL: strings.TrimSuffix(siteURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

// VerifyURL 订阅确认链接
func (s *SubscriberService) VerifyURL(token string) string {
	return s.siteURL + "/langganan/sahkan?token=" + url.QueryEscape(token)
}

// Subscribe registers email as an unverified subscriber, or issues a fresh
// token to an existing unverified one, and mails the confirmation link.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email", "Alamat e-mel tidak sah")
	}

	token, err := utils.RandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	expires := s.now().Add(s.ttl)
	tx := s.db.WithContext(ctx)

	var sub models.Subscriber
	err = tx.Where("email = ?", email).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.Subscriber{Email: email}
		sub.IssueToken(token, expires)
		if err := tx.Create(&sub).Error; err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load subscriber: %w", err)
	case sub.IsVerified:
		return nil, ErrAlreadySubscribed
	default:
		sub.IssueToken(token, expires)
		err := tx.Model(&models.Subscriber{}).Where("id = ?", sub.ID).Updates(map[string]any{
			"verification_token": token,
			"token_expires_at":   expires,
		}).Error
		if err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
	}

	s.mailer.SendVerificationEmail(email, s.VerifyURL(token), expires)
	logrus.WithField("subscriber_id", sub.ID).Info("Verification token issued")
	return &sub, nil
}

// Verify consumes token. The final write is conditional on the token still
// being present, so two concurrent requests cannot both succeed.
func (s *SubscriberService) Verify(ctx context.Context, token string) error {
	err := s.verify(ctx, token)
	switch {
	case err == nil:
		metrics.VerificationOutcomes.WithLabelValues("verified").Inc()
	case errors.Is(err, models.ErrTokenExpired):
		metrics.VerificationOutcomes.WithLabelValues("expired").Inc()
	case errors.Is(err, models.ErrTokenInvalid):
		metrics.VerificationOutcomes.WithLabelValues("invalid").Inc()
	default:
		metrics.VerificationOutcomes.WithLabelValues("error").Inc()
	}
	return err
}

func (s *SubscriberService) verify(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.ErrTokenInvalid
	}
	tx := s.db.WithContext(ctx)

	var sub models.Subscriber
	if err := tx.Where("verification_token = ?", token).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrTokenInvalid
		}
		return fmt.Errorf("load subscriber by token: %w", err)
	}

	now := s.now()
	if err := sub.Verify(token, now); err != nil {
		if errors.Is(err, models.ErrTokenExpired) {
			if clearErr := s.clearToken(ctx, sub.ID, token); clearErr != nil {
				logrus.WithError(clearErr).WithField("subscriber_id", sub.ID).Warn("Failed to clear expired token")
			}
		}
		return err
	}

	res := tx.Model(&models.Subscriber{}).
		Where("id = ? AND verification_token = ? AND is_verified = ?", sub.ID, token, false).
		Updates(map[string]any{
			"is_verified":        true,
			"verified_at":        now,
			"verification_token": nil,
			"token_expires_at":   nil,
		})
	if res.Error != nil {
		return fmt.Errorf("mark subscriber verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrTokenInvalid
	}
	logrus.WithField("subscriber_id", sub.ID).Info("Subscriber verified")
	return nil
}

func (s *SubscriberService) clearToken(ctx context.Context, id uint, token string) error {
	return s.db.WithContext(ctx).Model(&models.Subscriber{}).
		Where("id = ? AND verification_token = ?", id, token).
		Updates(map[string]any{"verification_token": nil, "token_expires_at": nil}).Error
}

// SweepExpiredTokens clears expired tokens of unverified subscribers.
func (s *SubscriberService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Subscriber{}).
		Where("is_verified = ? AND token_expires_at < ?", false, s.now()).
		Updates(map[string]any{"verification_token": nil, "token_expires_at": nil})
	if res.Error != nil {
		return 0, fmt.Errorf("sweep expired tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *SubscriberService) List(ctx context.Context) ([]models.Subscriber, error) {
	var subs []models.Subscriber
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}
