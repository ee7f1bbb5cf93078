package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*AccountRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccountRepo(db), mock
}

var accountRows = []string{
	"id", "email", "password_hash", "display_name", "role", "email_verified",
	"verification_token", "verification_expires_at", "reset_token", "reset_expires_at",
	"created_at", "updated_at",
}

func TestCreate_ReturnsInsertID(t *testing.T) {
	repo, mock := newMockRepo(t)
	exp := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO accounts (email, password_hash, display_name, role, email_verified, verification_token, verification_expires_at) VALUES (?,?,?,?,0,?,?)")).
		WithArgs("a@x.com", "hash", "Alice", "USER", "tok", exp).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), "a@x.com", "hash", "Alice", "tok", exp)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@x.com' for key 'accounts.uq_accounts_email'"))

	_, err := repo.Create(context.Background(), "a@x.com", "hash", "Alice", "tok", time.Now())
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreate_DuplicateToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'tok' for key 'accounts.uq_accounts_verification_token'"))

	_, err := repo.Create(context.Background(), "a@x.com", "hash", "Alice", "tok", time.Now())
	assert.ErrorIs(t, err, ErrTokenCollision)
}

func TestGetByEmail_NullTokenColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(accountRows).
			AddRow(3, "a@x.com", "hash", "Alice", "USER", true, nil, nil, nil, nil, now, now))

	acc, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), acc.ID)
	assert.True(t, acc.EmailVerified)
	assert.Nil(t, acc.VerificationToken)
	assert.Nil(t, acc.VerificationExpiresAt)
	assert.Nil(t, acc.ResetToken)
	assert.Nil(t, acc.ResetExpiresAt)
}

func TestGetByVerificationToken_PopulatedTokenPair(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	exp := now.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+accountColumns+" FROM accounts WHERE verification_token=? LIMIT 1")).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(accountRows).
			AddRow(3, "a@x.com", "hash", "Alice", "USER", false, "tok", exp, nil, nil, now, now))

	acc, err := repo.GetByVerificationToken(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, acc.VerificationToken)
	assert.Equal(t, "tok", *acc.VerificationToken)
	require.NotNil(t, acc.VerificationExpiresAt)
	assert.True(t, acc.VerificationExpiresAt.Equal(exp))
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows(accountRows))

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeVerificationToken_OneWinner(t *testing.T) {
	repo, mock := newMockRepo(t)
	query := regexp.QuoteMeta(
		"UPDATE accounts SET email_verified=1, verification_token=NULL, verification_expires_at=NULL WHERE verification_token=?")

	mock.ExpectExec(query).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.ConsumeVerificationToken(context.Background(), "tok"))
	assert.ErrorIs(t, repo.ConsumeVerificationToken(context.Background(), "tok"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeResetToken_OneWinner(t *testing.T) {
	repo, mock := newMockRepo(t)
	query := regexp.QuoteMeta(
		"UPDATE accounts SET password_hash=?, reset_token=NULL, reset_expires_at=NULL WHERE reset_token=?")

	mock.ExpectExec(query).WithArgs("newhash", "tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("newhash", "tok").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.ConsumeResetToken(context.Background(), "tok", "newhash"))
	assert.ErrorIs(t, repo.ConsumeResetToken(context.Background(), "tok", "newhash"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVerificationToken_SkipsVerifiedAccounts(t *testing.T) {
	repo, mock := newMockRepo(t)
	exp := time.Now().Add(24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE accounts SET verification_token=?, verification_expires_at=? WHERE id=? AND email_verified=0")).
		WithArgs("tok", exp, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetVerificationToken(context.Background(), 3, "tok", exp)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetResetToken_CollisionMapsToTokenCollision(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE accounts SET reset_token").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'tok' for key 'accounts.uq_accounts_reset_token'"))

	err := repo.SetResetToken(context.Background(), 3, "tok", time.Now())
	assert.ErrorIs(t, err, ErrTokenCollision)
}
