package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Neutralizer/BookManipulator/internal/audit"
	"github.com/Neutralizer/BookManipulator/internal/database/books"
	"github.com/Neutralizer/BookManipulator/internal/entrypoint"
	"github.com/Neutralizer/BookManipulator/internal/services"
)

// ImportBooksCommand loads books from a JSON array of
// {"title","author","summary","rating"} objects.
type ImportBooksCommand struct {
	FilePath     string
	DatabasePath string
	ArchiveDir   string
	DryRun       bool

	out io.Writer
}

func NewImportBooksCommand() *ImportBooksCommand {
	return &ImportBooksCommand{}
}

func (c *ImportBooksCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-books <file.json>",
		Short: "Import books from a JSON file",
		Example: "  book-manipulator import-books books.json\n" +
			"  book-manipulator import-books books.json --dry-run",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.FilePath = args[0]
			c.out = cmd.OutOrStdout()
			return c.Run()
		},
	}
	addDBFlag(cmd, &c.DatabasePath)
	cmd.Flags().StringVar(&c.ArchiveDir, "archive-dir", "", "Keep a copy of the payload here (default from AUDIT_ARCHIVE_DIR)")
	cmd.Flags().BoolVar(&c.DryRun, "dry-run", false, "Parse the file and report without saving")
	return cmd
}

func (c *ImportBooksCommand) Run() error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	data, err := os.ReadFile(c.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.FilePath, err)
	}

	var inputs []services.BookInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.FilePath, err)
	}
	fmt.Fprintf(out, "Found %d books in %s\n", len(inputs), c.FilePath)

	if c.DryRun {
		for i, in := range inputs {
			fmt.Fprintf(out, "%d. %q by %s\n", i+1, in.Title, in.Author)
		}
		fmt.Fprintln(out, "Dry run: nothing saved")
		return nil
	}

	cfg := loadConfig(c.DatabasePath)

	archiveDir := c.ArchiveDir
	if archiveDir == "" {
		archiveDir = cfg.Audit.ArchiveDir
	}
	if archiveDir != "" {
		name, err := audit.NewArchiver(archiveDir).SaveJSON("import-books", inputs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Archived payload as %s\n", name)
	}

	db, err := entrypoint.OpenDatabase(cfg, nopLogger())
	if err != nil {
		return err
	}
	defer db.Close()

	result := services.NewImportService(books.NewRepository(db.DB)).ImportBooks(inputs)
	fmt.Fprintf(out, "Import finished: %s\n", result)
	if result.BooksFailed > 0 {
		return fmt.Errorf("%d books failed to import", result.BooksFailed)
	}
	return nil
}
