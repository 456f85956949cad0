package users

import (
	"fmt"
	"unicode"

	"github.com/jrsteele09/go-finance-client/internal/utils"
)

// RoleType is the role the API assigns to a user.
type RoleType string

const (
	RoleAdmin RoleType = "admin" // Can manage other users
	RoleUser  RoleType = "user"  // Manages their own transactions
)

// Profile is the authenticated user's identity as returned by /auth/me.
// It is replaced as a whole on every login, refresh or validation.
type Profile struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	FullName *string  `json:"full_name,omitempty"`
	Role     RoleType `json:"role"`
	IsActive bool     `json:"is_active"`
}

// User is the administrative view of an account.
type User struct {
	Profile
	IsSuperuser bool            `json:"is_superuser"`
	CreatedAt   utils.Timestamp `json:"created_at"`
}

// Input carries the fields of a user create or update. Nil fields are
// omitted so an update only touches what was set.
type Input struct {
	Email    *string   `json:"email,omitempty"`
	Username *string   `json:"username,omitempty"`
	FullName *string   `json:"full_name,omitempty"`
	Password *string   `json:"password,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
	Role     *RoleType `json:"role,omitempty"`
}

// Registration is the self sign-up payload.
type Registration struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// IsAdmin gates admin-only commands in the client. The server makes the
// real authorization decision; this only hides what would be refused.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// DisplayName prefers the full name over the username.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Username
}

func ValidRole(r RoleType) bool {
	return r == RoleAdmin || r == RoleUser
}

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// ValidatePasswordStrength mirrors the server's password policy so the
// command line can reject a weak password before sending it:
// - At least 12 characters long
// - At least 2 uppercase and 2 lowercase letters
// - At least 2 digits
// - At least 1 special character
func ValidatePasswordStrength(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("password must be at least 12 characters long")
	}

	var upper, lower, digits, special int
	for _, char := range password {
		switch {
		case unicode.IsUpper(char) && char < unicode.MaxASCII:
			upper++
		case unicode.IsLower(char) && char < unicode.MaxASCII:
			lower++
		case unicode.IsDigit(char) && char < unicode.MaxASCII:
			digits++
		default:
			for _, s := range specialChars {
				if s == char {
					special++
					break
				}
			}
		}
	}

	if upper < 2 {
		return fmt.Errorf("password must contain at least two uppercase letters")
	}
	if lower < 2 {
		return fmt.Errorf("password must contain at least two lowercase letters")
	}
	if digits < 2 {
		return fmt.Errorf("password must contain at least two numbers")
	}
	if special < 1 {
		return fmt.Errorf("password must contain at least one special character")
	}

	return nil
}
