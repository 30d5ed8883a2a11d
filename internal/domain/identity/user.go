package identity

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_\-.]+$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// User is a staff account of the back office
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Role         Role
	IsActive     bool
	Permissions  Permissions
	LastLoginAt  *time.Time
}

// NewUser creates an active user. Zero permissions fall back to the role defaults.
func NewUser(username, email, password, displayName string, role Role, perms *Permissions) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email = shared.NormalizeEmail(email)
	if err := shared.ValidateEmail("email", email); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("role", "INVALID_ROLE", "Role must be one of admin, manager, staff")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	p := DefaultPermissions(role)
	if perms != nil {
		p = *perms
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		DisplayName:       strings.TrimSpace(displayName),
		Role:              role,
		IsActive:          true,
		Permissions:       p,
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// UpdateProfile changes email and display name
func (u *User) UpdateProfile(email, displayName string) error {
	if email != "" {
		email = shared.NormalizeEmail(email)
		if err := shared.ValidateEmail("email", email); err != nil {
			return err
		}
		u.Email = email
	}
	if displayName = strings.TrimSpace(displayName); displayName != "" {
		if len(displayName) > 100 {
			return shared.NewValidationError("display_name", "INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
		}
		u.DisplayName = displayName
	}
	u.Touch()
	return nil
}

// ChangeRole moves the user to another role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewValidationError("role", "INVALID_ROLE", "Role must be one of admin, manager, staff")
	}
	u.Role = role
	u.Touch()
	return nil
}

// SetPermissions replaces the per-resource flags
func (u *User) SetPermissions(p Permissions) {
	u.Permissions = p
	u.Touch()
}

// HasPermission checks the flag for resource; admins hold every permission
func (u *User) HasPermission(resource Resource) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.Permissions.Has(resource)
}

// EffectivePermissions returns the flags with the admin bypass applied
func (u *User) EffectivePermissions() Permissions {
	if u.Role == RoleAdmin {
		return DefaultPermissions(RoleAdmin)
	}
	return u.Permissions
}

// Principal returns the access-control view of the user
func (u *User) Principal() Principal {
	return Principal{
		UserID:      u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: u.EffectivePermissions(),
	}
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword changes the user's password after checking the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewValidationError("current_password", "INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.ResetPassword(newPassword)
}

// ResetPassword sets a new password without checking the old one (admin reset)
func (u *User) ResetPassword(newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// Deactivate disables the account
func (u *User) Deactivate() error {
	if !u.IsActive {
		return shared.NewConflictError("ALREADY_DEACTIVATED", "User is already deactivated")
	}
	u.IsActive = false
	u.Touch()
	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	return nil
}

// Activate re-enables the account
func (u *User) Activate() error {
	if u.IsActive {
		return shared.NewConflictError("ALREADY_ACTIVE", "User is already active")
	}
	u.IsActive = true
	u.Touch()
	return nil
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.Touch()
}

// GetDisplayNameOrUsername returns display name if set, otherwise username
func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return shared.NewValidationError("username", "INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 50 {
		return shared.NewValidationError("username", "INVALID_USERNAME", "Username cannot exceed 50 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("username", "INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("password", "INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("password", "INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return shared.NewValidationError("password", "INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}
