package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/user-account-service/internal/model"
)

// AccountRepo persists account rows in the 'accounts' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,email,password_hash,display_name,role,email_verified," +
	"verification_token,verification_expires_at,reset_token,reset_expires_at,created_at,updated_at"

// Create inserts an unverified account with an outstanding verification
// token and returns its ID. The email must already be normalized.
func (r *AccountRepo) Create(ctx context.Context, email, passwordHash, displayName, verifyToken string, verifyExp time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash, display_name, role, email_verified, verification_token, verification_expires_at) VALUES (?,?,?,?,0,?,?)",
		email, passwordHash, displayName, model.RoleUser, verifyToken, verifyExp)
	if err != nil {
		return 0, mapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	return r.getWhere(ctx, "email=?", email)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return r.getWhere(ctx, "id=?", id)
}

// GetByVerificationToken fetches the account holding an outstanding
// verification token. Token values are unique among live tokens.
func (r *AccountRepo) GetByVerificationToken(ctx context.Context, token string) (model.Account, error) {
	return r.getWhere(ctx, "verification_token=?", token)
}

// GetByResetToken fetches the account holding an outstanding reset token.
func (r *AccountRepo) GetByResetToken(ctx context.Context, token string) (model.Account, error) {
	return r.getWhere(ctx, "reset_token=?", token)
}

// SetVerificationToken replaces the outstanding verification token of an
// unverified account. A reissued token supersedes the previous one, which
// can no longer be consumed. Returns ErrNotFound if the account does not
// exist or is already verified.
func (r *AccountRepo) SetVerificationToken(ctx context.Context, id uint64, token string, exp time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET verification_token=?, verification_expires_at=? WHERE id=? AND email_verified=0",
		token, exp, id)
	if err != nil {
		return mapDuplicate(err)
	}
	return requireRow(res)
}

// ConsumeVerificationToken marks the account verified and clears the token
// pair in one conditional write. The WHERE clause re-checks the token, so
// of two concurrent requests bearing the same token exactly one sees an
// affected row; the other gets ErrNotFound.
func (r *AccountRepo) ConsumeVerificationToken(ctx context.Context, token string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET email_verified=1, verification_token=NULL, verification_expires_at=NULL WHERE verification_token=?",
		token)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetResetToken stores a fresh reset token pair on the account, overwriting
// (and thereby invalidating) any prior outstanding reset token.
func (r *AccountRepo) SetResetToken(ctx context.Context, id uint64, token string, exp time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET reset_token=?, reset_expires_at=? WHERE id=?",
		token, exp, id)
	if err != nil {
		return mapDuplicate(err)
	}
	return requireRow(res)
}

// ConsumeResetToken swaps in the new password hash and clears the reset
// token pair in one conditional write, with the same compare-and-swap
// semantics as ConsumeVerificationToken.
func (r *AccountRepo) ConsumeResetToken(ctx context.Context, token, newPasswordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET password_hash=?, reset_token=NULL, reset_expires_at=NULL WHERE reset_token=?",
		newPasswordHash, token)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *AccountRepo) getWhere(ctx context.Context, cond string, arg interface{}) (model.Account, error) {
	var (
		a         model.Account
		verTok    sql.NullString
		verExp    sql.NullTime
		resetTok  sql.NullString
		resetExp  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE "+cond+" LIMIT 1",
		arg).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role, &a.EmailVerified,
		&verTok, &verExp, &resetTok, &resetExp, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	if verTok.Valid {
		a.VerificationToken = &verTok.String
	}
	if verExp.Valid {
		a.VerificationExpiresAt = &verExp.Time
	}
	if resetTok.Valid {
		a.ResetToken = &resetTok.String
	}
	if resetExp.Valid {
		a.ResetExpiresAt = &resetExp.Time
	}
	return a, nil
}

// requireRow converts a zero-row UPDATE into ErrNotFound so callers can
// tell a lost compare-and-swap from a plain success.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDuplicate classifies MySQL duplicate-key errors (1062) by the index
// named in the message.
func mapDuplicate(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "uq_accounts_email") {
		return ErrEmailExists
	}
	return ErrTokenCollision
}
