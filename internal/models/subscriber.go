package models

import (
	"crypto/subtle"
	"errors"
	"time"
)

var (
	// ErrTokenInvalid 令牌不存在、不属于该订阅者或已被使用
	ErrTokenInvalid = errors.New("verification token is invalid")
	// ErrTokenExpired 令牌已过期
	ErrTokenExpired = errors.New("verification token has expired")
)

type Subscriber struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	IsVerified        bool       `gorm:"default:false;index" json:"is_verified"`
	VerificationToken *string    `gorm:"uniqueIndex;size:64" json:"-"`
	TokenExpiresAt    *time.Time `json:"-"`
	VerifiedAt        *time.Time `json:"verified_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CheckToken 校验令牌的归属与有效期，不修改状态
func (s *Subscriber) CheckToken(token string, now time.Time) error {
	if token == "" || s.VerificationToken == nil {
		return ErrTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(*s.VerificationToken), []byte(token)) != 1 {
		return ErrTokenInvalid
	}
	if s.TokenExpiresAt != nil && !now.Before(*s.TokenExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

// Verify 消费令牌：标记已验证、记录时间并清除令牌（单次有效）
func (s *Subscriber) Verify(token string, now time.Time) error {
	if err := s.CheckToken(token, now); err != nil {
		if errors.Is(err, ErrTokenExpired) {
			s.ClearToken()
		}
		return err
	}
	s.IsVerified = true
	s.VerifiedAt = &now
	s.ClearToken()
	return nil
}

// IssueToken 为未验证的订阅者设置新令牌
func (s *Subscriber) IssueToken(token string, expiresAt time.Time) {
	s.VerificationToken = &token
	s.TokenExpiresAt = &expiresAt
}

func (s *Subscriber) ClearToken() {
	s.VerificationToken = nil
	s.TokenExpiresAt = nil
}
