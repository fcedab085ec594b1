// Package cli holds the cobra commands of the book-manipulator binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/config"
)

// NewRootCommand builds the command tree. Running the binary without a
// subcommand starts the server.
func NewRootCommand(version string) *cobra.Command {
	serve := NewServeCommand(version)

	root := &cobra.Command{
		Use:           "book-manipulator",
		Short:         "Library backend: books, users, favourites and ratings over HTTP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(
		serve,
		NewCreateUserCommand().Cobra(),
		NewImportBooksCommand().Cobra(),
		NewSeedCommand().Cobra(),
	)
	return root
}

// loadConfig reads the environment and applies a --db override.
func loadConfig(dbPath string) *config.Config {
	cfg := config.NewConfig()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg
}

func addDBFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "db", "", fmt.Sprintf("Path to the sqlite database (default from DATABASE_PATH, %s)", config.DefaultDatabasePath))
}

// Commands report on stdout; library logging stays quiet.
func nopLogger() *zap.Logger {
	return zap.NewNop()
}
