package db

import (
	"database/sql"
)

// Database is a connection to a local store that must be opened before use and closed on shutdown.
type Database interface {
	// Connect opens the connection and brings the schema up to date.
	Connect() error
	Close() error
	DB() *sql.DB
}
