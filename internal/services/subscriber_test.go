package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"resepi/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	email, link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendVerificationEmail(email, link string, _ time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{email: email, link: link})
}

var subscriberCols = []string{"id", "email", "is_verified", "verification_token", "token_expires_at", "verified_at"}

func newSubscriberService(t *testing.T) (*SubscriberService, sqlmock.Sqlmock, *fakeMailer, time.Time) {
	gdb, mock := newMockDB(t)
	mailer := &fakeMailer{}
	svc := NewSubscriberService(gdb, mailer, "https://resepi.example/", 24*time.Hour)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, mock, mailer, now
}

func TestVerifyTwiceWithSameToken(t *testing.T) {
	svc, mock, _, now := newSubscriberService(t)

	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow(1, "a@example.com", false, "tok", now.Add(time.Hour), nil))
	mock.ExpectExec(`UPDATE "subscribers"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.Verify(context.Background(), "tok"))

	// token has been cleared, lookup finds nothing
	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows(subscriberCols))
	err := svc.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyLosesRaceToConcurrentRequest(t *testing.T) {
	svc, mock, _, now := newSubscriberService(t)

	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow(1, "a@example.com", false, "tok", now.Add(time.Hour), nil))
	mock.ExpectExec(`UPDATE "subscribers"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, svc.Verify(context.Background(), "tok"), models.ErrTokenInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyExpiredTokenIsCleared(t *testing.T) {
	svc, mock, _, now := newSubscriberService(t)

	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow(1, "a@example.com", false, "tok", now.Add(-time.Minute), nil))
	mock.ExpectExec(`UPDATE "subscribers"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.ErrorIs(t, svc.Verify(context.Background(), "tok"), models.ErrTokenExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyEmptyTokenSkipsDB(t *testing.T) {
	svc, mock, _, _ := newSubscriberService(t)

	assert.ErrorIs(t, svc.Verify(context.Background(), "  "), models.ErrTokenInvalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyDatabaseFailureIsNotTokenError(t *testing.T) {
	svc, mock, _, _ := newSubscriberService(t)

	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnError(assert.AnError)

	err := svc.Verify(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrTokenInvalid)
	assert.NotErrorIs(t, err, models.ErrTokenExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeNewEmail(t *testing.T) {
	svc, mock, mailer, _ := newSubscriberService(t)

	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows(subscriberCols))
	mock.ExpectQuery(`INSERT INTO "subscribers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	sub, err := svc.Subscribe(context.Background(), "  Siti@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "siti@example.com", sub.Email)
	assert.False(t, sub.IsVerified)
	require.NotNil(t, sub.VerificationToken)
	assert.Len(t, *sub.VerificationToken, 64)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "siti@example.com", mailer.sent[0].email)
	assert.True(t, strings.HasPrefix(mailer.sent[0].link, "https://resepi.example/langganan/sahkan?token="))
	assert.Contains(t, mailer.sent[0].link, *sub.VerificationToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeAlreadyVerified(t *testing.T) {
	svc, mock, mailer, now := newSubscriberService(t)

	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow(1, "a@example.com", true, nil, nil, now))

	_, err := svc.Subscribe(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
	assert.Empty(t, mailer.sent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeRefreshesUnverifiedToken(t *testing.T) {
	svc, mock, mailer, now := newSubscriberService(t)

	mock.ExpectQuery(`SELECT .* FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow(1, "a@example.com", false, "old", now.Add(-time.Hour), nil))
	mock.ExpectExec(`UPDATE "subscribers"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sub, err := svc.Subscribe(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "old", *sub.VerificationToken)
	assert.Equal(t, now.Add(24*time.Hour), *sub.TokenExpiresAt)
	assert.Len(t, mailer.sent, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeRejectsBadEmail(t *testing.T) {
	svc, mock, _, _ := newSubscriberService(t)

	for _, email := range []string{"", "bukan-emel", "Siti <siti@example.com>"} {
		_, err := svc.Subscribe(context.Background(), email)
		assert.True(t, IsValidation(err), email)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredTokens(t *testing.T) {
	svc, mock, _, _ := newSubscriberService(t)

	mock.ExpectExec(`UPDATE "subscribers" SET .* WHERE .*is_verified = .* AND token_expires_at < `).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := svc.SweepExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
