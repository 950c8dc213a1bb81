// Package datastore exports media records to a local SQLite database or a
// remote Datasette instance.
package datastore

import "context"

// DatabaseName is the Datasette database records are written to.
const DatabaseName = "coverfetch"

// Store defines the interface for record export targets
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates a new table with the given schema if it doesn't exist
	CreateTable(schema string) error

	// BatchInsert upserts multiple records into the specified table
	BatchInsert(ctx context.Context, database string, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}
