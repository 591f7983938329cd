package service

import (
	"errors"

	"gorm.io/gorm"
)

// Moderation statuses shared by listings and blogs. Content is created
// pending, and every status stays reachable from every other one: admins
// moderate in both directions and owner edits reset content back to pending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	// ErrForbidden means the caller lacks ownership or the admin capability,
	// or tried to edit approved content without it.
	ErrForbidden = errors.New("operation not permitted")
	// ErrInvalidStatus means a moderation decision named an unknown status.
	ErrInvalidStatus = errors.New("moderation status is invalid")
)

// Actor identifies the caller of a mutating operation.
type Actor struct {
	ID    uint
	Admin bool
}

// Decision carries an admin's moderation verdict for a listing or blog.
type Decision struct {
	Status           string
	ModeratorID      uint
	ModeratorComment string
}

// ValidStatus reports whether s is one of the moderation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// checkEdit enforces the ownership rules for non-moderation mutations:
// only the owner or an admin may touch the entity, and approved content is
// locked against owner edits until an admin intervenes.
func checkEdit(actor Actor, ownerID uint, status string) error {
	if actor.ID != ownerID && !actor.Admin {
		return ErrForbidden
	}
	if status == StatusApproved && !actor.Admin {
		return ErrForbidden
	}
	return nil
}

// applyModeration writes a decision onto a moderated entity and runs the
// entity-specific side effect inside the same transaction. The write is
// unconditional: re-approving already-approved content is a legal no-op
// transition that still re-runs its side effect.
func applyModeration(tx *gorm.DB, entity interface{}, d Decision, sideEffect func(*gorm.DB) error) error {
	if !ValidStatus(d.Status) {
		return ErrInvalidStatus
	}

	updates := map[string]interface{}{
		"status":            d.Status,
		"moderator_id":      d.ModeratorID,
		"moderator_comment": d.ModeratorComment,
	}
	if err := tx.Model(entity).Updates(updates).Error; err != nil {
		return err
	}

	if sideEffect != nil {
		return sideEffect(tx)
	}
	return nil
}
