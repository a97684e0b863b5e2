package domain

import "time"

type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// Actor is the authenticated caller carried through service calls.
type Actor struct {
	UserID  uint64
	IsAdmin bool
}

// CanManageOrder reports whether the actor may act on an order owned by ownerID.
func (a Actor) CanManageOrder(ownerID uint64) bool {
	return a.IsAdmin || a.UserID == ownerID
}

// CanManageProduct reports whether the actor may modify a product owned by ownerID.
func (a Actor) CanManageProduct(ownerID uint64) bool {
	return a.IsAdmin || a.UserID == ownerID
}
