package entities

import "time"

// Book is a catalog item. Rating has no declared bounds.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:512;not null" json:"title"`
	Author    string    `gorm:"index;size:256;not null" json:"author"`
	Summary   string    `gorm:"type:text;not null" json:"summary"`
	Rating    float64   `gorm:"not null;default:0" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBook builds an unsaved book; the ID is assigned by storage on save.
func NewBook(title, author, summary string, rating float64) *Book {
	return &Book{
		Title:   title,
		Author:  author,
		Summary: summary,
		Rating:  rating,
	}
}

func (Book) TableName() string {
	return "books"
}
