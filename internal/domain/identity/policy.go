package identity

import (
	"errors"

	"github.com/google/uuid"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// Action is what a principal wants to do with a resource
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Principal is the authenticated caller as seen by the policy
type Principal struct {
	UserID      uuid.UUID
	Username    string
	Role        Role
	Permissions Permissions
}

// IsAdmin reports whether the principal bypasses every check
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Ownership describes who a specific record belongs to
type Ownership struct {
	AssignedTo *uuid.UUID
	CreatedBy  *uuid.UUID
}

// OwnedBy reports whether userID is the assignee or the creator
func (o Ownership) OwnedBy(userID uuid.UUID) bool {
	if o.AssignedTo != nil && *o.AssignedTo == userID {
		return true
	}
	return o.CreatedBy != nil && *o.CreatedBy == userID
}

// Unclaimed reports whether nobody is assigned to the record
func (o Ownership) Unclaimed() bool {
	return o.AssignedTo == nil
}

var (
	// ErrPermissionDenied is returned when the resource flag is missing
	ErrPermissionDenied = shared.NewAuthorizationError("FORBIDDEN", "You do not have permission to access this resource")
	// ErrNotOwner is returned when a staff member acts on someone else's record
	ErrNotOwner = shared.NewAuthorizationError("NOT_OWNER", "You can only access records assigned to you")
)

// Authorize is the single access-control decision point.
//
// Admins are always allowed. Everyone else needs the resource flag. When a
// specific record is involved (owner != nil), managers may act on any record
// while staff may act on records they own or that are still unassigned;
// only managers and admins delete.
func Authorize(p Principal, resource Resource, action Action, owner *Ownership) error {
	if p.IsAdmin() {
		return nil
	}
	if !p.Permissions.Has(resource) {
		return ErrPermissionDenied
	}
	if owner == nil {
		return nil
	}
	if p.Role == RoleManager {
		return nil
	}
	if action == ActionDelete {
		return ErrNotOwner
	}
	if owner.OwnedBy(p.UserID) || owner.Unclaimed() {
		return nil
	}
	return ErrNotOwner
}

// CanSeeAll reports whether list queries for resource need no ownership scope
func CanSeeAll(p Principal) bool {
	return p.Role == RoleAdmin || p.Role == RoleManager
}

// AuthorizeRecord is Authorize for one stored record. A staff member reading or
// updating someone else's record gets notFound, so the record's existence is
// not revealed; deletes keep the authorization error.
func AuthorizeRecord(p Principal, resource Resource, action Action, owner Ownership, notFound error) error {
	err := Authorize(p, resource, action, &owner)
	if errors.Is(err, ErrNotOwner) && action != ActionDelete {
		return notFound
	}
	return err
}

// VisibilityScope returns the user id list queries must be narrowed to, or
// false when the principal sees every record.
func VisibilityScope(p Principal) (uuid.UUID, bool) {
	if CanSeeAll(p) {
		return uuid.Nil, false
	}
	return p.UserID, true
}
