package models

import (
	"time"
)

// MembershipKind names the ledger a membership belongs to
type MembershipKind string

const (
	KindFavorite MembershipKind = "favorite"
	KindCart     MembershipKind = "cart"
)

func (k MembershipKind) Valid() bool {
	return k == KindFavorite || k == KindCart
}

// Membership records that a user has a recipe in one of their ledgers.
// At most one row exists per (user, recipe, kind).
type Membership struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_membership_user_recipe_kind"`
	RecipeID  uint           `gorm:"not null;uniqueIndex:idx_membership_user_recipe_kind;index"`
	Kind      MembershipKind `gorm:"size:16;not null;uniqueIndex:idx_membership_user_recipe_kind"`
	User      User           `gorm:"constraint:OnDelete:CASCADE"`
	Recipe    Recipe         `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// Subscription records that UserID follows AuthorID
type Subscription struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscription_user_author"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_subscription_user_author;index"`
	User      User `gorm:"constraint:OnDelete:CASCADE"`
	Author    User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// RevokedToken blocks a login token after logout until it expires
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
