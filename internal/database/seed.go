package database

import (
	"fmt"

	"github.com/Neutralizer/BookManipulator/internal/database/books"
	"github.com/Neutralizer/BookManipulator/internal/entities"
)

var sampleBooks = []entities.Book{
	{Title: "The Hobbit", Author: "Tolkien", Summary: "Short sneaky guy gets taken on an adventure", Rating: 4.2},
	{Title: "The Expanse", Author: "James Corey", Summary: "Alien organism appears in the solar system", Rating: 0.1},
}

// SeedSampleBooks inserts the sample catalog when the books table is empty.
// Returns the number of books created.
func (d *Database) SeedSampleBooks() (int, error) {
	repo := books.NewRepository(d.DB)
	count, err := repo.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, sample := range sampleBooks {
		book := sample
		if err := repo.Save(&book); err != nil {
			return 0, fmt.Errorf("failed to seed book %q: %w", book.Title, err)
		}
	}
	return len(sampleBooks), nil
}
