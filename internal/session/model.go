package session

import (
	"strings"
	"time"
)

// Role is the kind of account a user registered as.
type Role string

const (
	RoleArtisan    Role = "Artisan"
	RoleInfluencer Role = "Influencer"
	RoleCustomer   Role = "Customer"
)

// Roles lists every role a user can register with.
var Roles = []Role{RoleArtisan, RoleInfluencer, RoleCustomer}

// ParseRole matches s against the known roles ignoring case and returns the
// canonical spelling.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// UserRecord is one registry entry. Password holds whatever the configured
// Credentials produced, which is the plaintext password by default.
type UserRecord struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionRecord is the projection of a UserRecord kept for the signed-in user.
type SessionRecord struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

func (u UserRecord) session() SessionRecord {
	return SessionRecord{Email: u.Email, FullName: u.FullName, Role: u.Role}
}
