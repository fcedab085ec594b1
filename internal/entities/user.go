package entities

import (
	"slices"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account. Password always holds a one-way digest, never plaintext.
//
// FavouriteBooksIDs references books by value only: deleting a book leaves
// its id in every list that mentions it.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password          string    `gorm:"size:255;not null" json:"-"`
	Roles             []string  `gorm:"serializer:json" json:"roles"`
	FavouriteBooksIDs []uint    `gorm:"serializer:json" json:"favourite_books_ids"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries the given role label.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

func (User) TableName() string {
	return "users"
}
