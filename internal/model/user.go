package model

import (
	"strings"
	"time"
)

// Capability is a permission bit held by a user.  A plain customer holds
// none; administrators and shop owners hold the matching bits.
type Capability uint8

const (
	CapAdmin Capability = 1 << iota
	CapOwner
)

var capNames = []struct {
	cap  Capability
	name string
}{
	{CapAdmin, "Admin"},
	{CapOwner, "Owner"},
}

// Has reports whether every bit of want is set.
func (c Capability) Has(want Capability) bool { return c&want == want && want != 0 }

// Plain reports whether the user holds no capability at all.
func (c Capability) Plain() bool { return c == 0 }

// Names lists the capability names in a stable order.
func (c Capability) Names() []string {
	out := []string{}
	for _, n := range capNames {
		if c&n.cap != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

// String renders the set in MySQL SET column form ("Admin,Owner").
func (c Capability) String() string { return strings.Join(c.Names(), ",") }

// ParseCapabilities reads the comma separated form stored in users.roles.
// Unknown names are ignored.
func ParseCapabilities(s string) Capability {
	var c Capability
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		for _, n := range capNames {
			if strings.EqualFold(part, n.name) {
				c |= n.cap
			}
		}
	}
	return c
}

// User represents an application user record as stored in the `users`
// table.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address.
//  PasswordHash  – bcrypt hashed password.
//  FirstName     – given name.
//  LastName      – family name.
//  LoyaltyPoints – non-negative points balance.
//  Capabilities  – permission bits (users.roles SET column).
//  IsActive      – whether the account is active.
//  CreatedAt     – timestamp of creation.
type User struct {
	ID            uint64     // users.id
	Email         string     // users.email
	PasswordHash  string     // users.password_hash
	FirstName     string     // users.first_name
	LastName      string     // users.last_name
	LoyaltyPoints int        // users.loyalty_points
	Capabilities  Capability // users.roles
	IsActive      bool       // users.is_active
	CreatedAt     time.Time  // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
