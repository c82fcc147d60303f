package models

import "github.com/google/uuid"

// IsOwnedBy reports whether caller owns the entity identified by ownerID.
// A nil caller (guest) owns nothing.
func IsOwnedBy(ownerID uuid.UUID, caller *User) bool {
	return caller != nil && caller.ID == ownerID
}

// CanManage reports whether caller may act on an entity in the owner-or-admin
// capacity used by submission-side operations.
func CanManage(ownerID uuid.UUID, caller *User) bool {
	if caller == nil {
		return false
	}
	return caller.IsAdmin || caller.ID == ownerID
}
