package model

import "time"

// User represents an account record as stored in the `users` table.
// PasswordHash holds a bcrypt digest; the plaintext is never stored.
// ResetCode and ResetCodeExpires are either both set or both NULL:
// they are written together by the forgot-password flow and cleared
// together when a reset succeeds or an expired code is detected.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Name             – display name supplied at registration.
//  Email            – unique, normalized (lowercase) email address.
//  PasswordHash     – bcrypt hash of the password.
//  Role             – one of resident, collector, admin.
//  Address          – optional street address (nullable).
//  ResetCode        – bcrypt hash of the active one-time reset code (nullable).
//  ResetCodeExpires – expiry of the active reset code (nullable).
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
	ID               uint64     // users.id
	Name             string     // users.name
	Email            string     // users.email
	PasswordHash     string     // users.password_hash
	Role             Role       // users.role
	Address          *string    // users.address (nullable)
	ResetCode        *string    // users.reset_code (nullable)
	ResetCodeExpires *time.Time // users.reset_code_expires (nullable)
	CreatedAt        time.Time  // users.created_at
	UpdatedAt        time.Time  // users.updated_at
}
