package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/auth"
)

// UserService handles user management operations
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	revokeTTL time.Duration
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new user service. revokeTTL is how long a
// user-wide token revocation must be remembered, normally the refresh token lifetime.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	revokeTTL time.Duration,
	events shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		revokeTTL: revokeTTL,
		events:    events,
		logger:    logger,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	s.logger.Info("Creating user", zap.String("username", input.Username), zap.String("role", input.Role))

	var perms *identity.Permissions
	if input.Permissions != nil {
		p := identity.PermissionsFromList(input.Permissions)
		perms = &p
	}

	user, err := identity.NewUser(input.Username, input.Email, input.Password, input.DisplayName, identity.Role(input.Role), perms)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("USERNAME_ALREADY_EXISTS", "Username already exists").WithField("username")
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("EMAIL_ALREADY_EXISTS", "Email already exists").WithField("email")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}
	shared.PublishAndClear(ctx, s.events, user)

	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	info := ToUserInfo(user)
	return &info, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	info := ToUserInfo(user)
	return &info, nil
}

// List retrieves a page of users
func (s *UserService) List(ctx context.Context, input UserListFilter) (*UserListResult, error) {
	filter := identity.NewUserFilter()
	filter.Keyword = input.Keyword
	filter.IsActive = input.IsActive
	if input.Role != "" {
		role := identity.Role(input.Role)
		if !role.IsValid() {
			return nil, shared.NewValidationError("role", "INVALID_ROLE", "Role must be one of admin, manager, staff")
		}
		filter.Role = &role
	}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = min(input.PageSize, 100)
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		filter.SortOrder = input.SortOrder
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	infos := make([]UserInfo, len(users))
	for i, u := range users {
		infos[i] = ToUserInfo(u)
	}
	return &UserListResult{
		Users:    infos,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Update changes profile fields and, for admins, the role
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	if input.Email != nil {
		email := shared.NormalizeEmail(*input.Email)
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewConflictError("EMAIL_ALREADY_EXISTS", "Email already exists").WithField("email")
			}
		}
	}

	var email, displayName string
	if input.Email != nil {
		email = *input.Email
	}
	if input.DisplayName != nil {
		displayName = *input.DisplayName
	}
	if err := user.UpdateProfile(email, displayName); err != nil {
		return nil, err
	}

	roleChanged := false
	if input.Role != nil && identity.Role(*input.Role) != user.Role {
		if err := user.ChangeRole(identity.Role(*input.Role)); err != nil {
			return nil, err
		}
		roleChanged = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// tokens carry the role, so old ones must not outlive a role change
	if roleChanged {
		s.revokeTokens(ctx, user.ID)
	}

	s.logger.Info("User updated", zap.String("user_id", id.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// SetPermissions replaces the per-resource flags of a user
func (s *UserService) SetPermissions(ctx context.Context, id uuid.UUID, resources []string) (*UserInfo, error) {
	for _, r := range resources {
		if !identity.Resource(r).IsValid() {
			return nil, shared.NewValidationError("permissions", "INVALID_PERMISSION", "Unknown permission: "+r)
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	user.SetPermissions(identity.PermissionsFromList(resources))
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.revokeTokens(ctx, user.ID)

	s.logger.Info("User permissions updated",
		zap.String("user_id", id.String()),
		zap.Strings("permissions", user.Permissions.Granted()))
	info := ToUserInfo(user)
	return &info, nil
}

// Deactivate disables an account and revokes its tokens
func (s *UserService) Deactivate(ctx context.Context, actor identity.Principal, id uuid.UUID) (*UserInfo, error) {
	if actor.UserID == id {
		return nil, shared.NewConflictError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.revokeTokens(ctx, user.ID)
	shared.PublishAndClear(ctx, s.events, user)

	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// Activate re-enables an account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User activated", zap.String("user_id", id.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// ResetPassword sets a new password without the old one
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return userLookupError(err)
	}
	if err := user.ResetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.revokeTokens(ctx, user.ID)
	shared.PublishAndClear(ctx, s.events, user)

	s.logger.Info("User password reset", zap.String("user_id", id.String()))
	return nil
}

// Delete removes a user that owns no customers, orders or inquiries
func (s *UserService) Delete(ctx context.Context, actor identity.Principal, id uuid.UUID) error {
	if actor.UserID == id {
		return shared.NewConflictError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return userLookupError(err)
	}

	owned, err := s.userRepo.CountOwnedRecords(ctx, id)
	if err != nil {
		return err
	}
	if owned > 0 {
		return shared.NewConflictError("USER_HAS_ASSIGNMENTS",
			"User still owns customers, orders or inquiries; reassign them or deactivate the user instead")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return userLookupError(err)
	}
	s.revokeTokens(ctx, id)

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// Count returns the number of users
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

func (s *UserService) revokeTokens(ctx context.Context, id uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.InvalidateUser(ctx, id.String(), s.revokeTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", id.String()), zap.Error(err))
	}
}
