package services

import (
	"fmt"
	"strings"

	"github.com/Neutralizer/BookManipulator/internal/entities"
)

// BookInput is one catalog entry from an external source, such as a JSON
// file handed to the import-books command.
type BookInput struct {
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Summary string  `json:"summary"`
	Rating  float64 `json:"rating"`
}

// ImportService loads books in bulk into the catalog.
type ImportService struct {
	repo BookRepository
}

// NewImportService creates a new ImportService.
func NewImportService(repo BookRepository) *ImportService {
	return &ImportService{repo: repo}
}

// ImportBooks saves each input as a new book. Entries without a title and
// repeated author/title pairs within the batch are skipped. A failing entry
// is counted and does not stop the import.
func (s *ImportService) ImportBooks(inputs []BookInput) ImportResult {
	var result ImportResult
	seen := make(map[string]bool)

	for _, in := range inputs {
		title := strings.TrimSpace(in.Title)
		author := strings.TrimSpace(in.Author)
		key := strings.ToLower(author + "|" + title)

		if title == "" || seen[key] {
			result.BooksSkipped++
			continue
		}
		seen[key] = true

		book := entities.NewBook(title, author, in.Summary, in.Rating)
		if err := s.repo.Save(book); err != nil {
			result.BooksFailed++
			continue
		}
		result.BooksProcessed++
	}
	return result
}

// String summarizes the result for CLI output.
func (r ImportResult) String() string {
	return fmt.Sprintf("%d imported, %d skipped, %d failed", r.BooksProcessed, r.BooksSkipped, r.BooksFailed)
}
