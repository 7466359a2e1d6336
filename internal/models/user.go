package models

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/TripShare-io/tripshare/internal/apperr"
)

// Role values stored in the users table and carried in token claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const bcryptCost = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User represents a user account in the database.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"-"` // bcrypt hash, never sent to clients
	Role      string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CheckPassword compares a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RegisterInput is the payload accepted by the registration endpoint.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate checks the registration fields without touching the store.
func (in *RegisterInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" ||
		in.Email == "" || in.Password == "" {
		return apperr.Validation("All fields are required")
	}
	return validateCredentials(in.Email, in.Password)
}

// LoginInput is the payload accepted by the login endpoint.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	if in.Email == "" || in.Password == "" {
		return apperr.Validation("Email and password are required")
	}
	return validateCredentials(in.Email, in.Password)
}

func validateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation("Invalid email format")
	}
	if len(password) < 4 {
		return apperr.Validation("Password must be at least 4 characters")
	}
	return nil
}
