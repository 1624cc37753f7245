package model

import "time"

// Role is the closed set of user roles carried in access tokens.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleClient:
		return true
	}
	return false
}

// Privileged reports whether r may act on bookings owned by other users.
func (r Role) Privileged() bool { return r == RoleAdmin || r == RoleStaff }

// User represents an application user record as stored in the
// `users` table.  Username doubles as the e-mail address booking
// confirmations are sent to.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – given name.
//	Surname      – family name.
//	Username     – unique login handle (an e-mail address).
//	PasswordHash – bcrypt hashed password, never serialised.
//	Role         – admin, staff or client.
//	Phone        – optional phone number in E.164 form, used for reminders.
//	Photo        – optional photo URL.
//	Active       – whether the account is active.
type User struct {
	ID           uint64     `db:"id" json:"id"`                // users.id
	Name         string     `db:"name" json:"name"`            // users.name
	Surname      string     `db:"surname" json:"surname"`      // users.surname
	Username     string     `db:"username" json:"username"`    // users.username
	PasswordHash string     `db:"password_hash" json:"-"`      // users.password_hash
	Role         Role       `db:"role" json:"role"`            // users.role
	Phone        *string    `db:"phone" json:"phone"`          // users.phone (nullable)
	Photo        *string    `db:"photo" json:"photo"`          // users.photo (nullable)
	Active       bool       `db:"active" json:"-"`             // users.active
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"` // users.created_at
	UpdatedAt    *time.Time `db:"updated_at" json:"updatedAt"` // users.updated_at (nullable)
}

// UserPatch lists the user columns that may be changed.  PasswordHash is
// filled by the caller after hashing; Role changes are subject to the
// role policy in the user service.
type UserPatch struct {
	Name         *string
	Surname      *string
	Username     *string
	PasswordHash *string
	Role         *Role
	Phone        *string
	Photo        *string
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`         // refresh_tokens.id
	UserID    uint64     `db:"user_id"`    // refresh_tokens.user_id
	TokenHash string     `db:"token_hash"` // refresh_tokens.token_hash
	ExpiresAt time.Time  `db:"expires_at"` // refresh_tokens.expires_at
	RevokedAt *time.Time `db:"revoked_at"` // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  `db:"created_at"` // refresh_tokens.created_at
}
