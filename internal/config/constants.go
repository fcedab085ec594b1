package config

// Default paths and dialects for the main database
const (
	// DefaultDatabasePath is the default path for the sqlite library database
	DefaultDatabasePath = "./library.db"

	// DriverSQLite stores the library in a local sqlite file (default)
	DriverSQLite = "sqlite"

	// DriverMySQL connects to a MySQL server using DATABASE_DSN
	DriverMySQL = "mysql"

	// ProfileDev seeds sample books on startup
	ProfileDev = "dev"
)
