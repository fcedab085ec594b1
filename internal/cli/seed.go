package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Neutralizer/BookManipulator/internal/database"
)

// SeedCommand inserts the sample catalog into an empty database.
type SeedCommand struct {
	DatabasePath string

	out io.Writer
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (c *SeedCommand) Cobra() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample books when the catalog is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.out = cmd.OutOrStdout()
			return c.Run()
		},
	}
	addDBFlag(cmd, &c.DatabasePath)
	return cmd
}

func (c *SeedCommand) Run() error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	cfg := loadConfig(c.DatabasePath)
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	seeded, err := db.SeedSampleBooks()
	if err != nil {
		return err
	}
	if seeded == 0 {
		fmt.Fprintln(out, "Catalog is not empty, nothing seeded")
		return nil
	}
	fmt.Fprintf(out, "Seeded %d sample books\n", seeded)
	return nil
}
