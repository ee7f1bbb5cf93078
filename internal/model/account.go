package model

import "time"

// Role values stored in accounts.role.  No operation in this service
// changes a role after creation; every signup produces a USER.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account represents a registered identity as stored in the `accounts`
// table.  Each field corresponds to a column.  The json tags are omitted
// because these structs are used internally by the repository and service
// layers; handlers define separate response types with appropriate tags.
//
// The verification and reset token fields are pointers because they are
// nullable in the database: a token and its expiry are either both set
// (a flow is outstanding) or both nil.  The repository only ever writes
// them as a pair.
//
// Fields:
//  ID                    – primary key identifier of the account.
//  Email                 – unique email address, stored trimmed and lower‑cased.
//  PasswordHash          – bcrypt hash of the current password.
//  DisplayName           – free‑text name, not security relevant.
//  Role                  – USER or ADMIN.
//  EmailVerified         – whether ownership of the email was proven.  Never
//                          flips back to false once set.
//  VerificationToken     – outstanding email verification token (nullable).
//  VerificationExpiresAt – expiry of the verification token (nullable).
//  ResetToken            – outstanding password reset token (nullable).
//  ResetExpiresAt        – expiry of the reset token (nullable).
//  CreatedAt             – timestamp of creation.
//  UpdatedAt             – timestamp of last update, maintained by MySQL.
type Account struct {
	ID                    uint64     // accounts.id
	Email                 string     // accounts.email
	PasswordHash          string     // accounts.password_hash
	DisplayName           string     // accounts.display_name
	Role                  string     // accounts.role
	EmailVerified         bool       // accounts.email_verified
	VerificationToken     *string    // accounts.verification_token (nullable)
	VerificationExpiresAt *time.Time // accounts.verification_expires_at (nullable)
	ResetToken            *string    // accounts.reset_token (nullable)
	ResetExpiresAt        *time.Time // accounts.reset_expires_at (nullable)
	CreatedAt             time.Time  // accounts.created_at
	UpdatedAt             time.Time  // accounts.updated_at
}
