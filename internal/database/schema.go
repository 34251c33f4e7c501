package database

import "context"

// schemaStatements define the tables and indexes the repositories rely on.
// The unique email index is what turns a concurrent duplicate registration
// into ErrDuplicate; the created_by index backs every owner-scoped query.
var schemaStatements = []string{
	`DEFINE TABLE IF NOT EXISTS user SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS user_email ON TABLE user FIELDS email UNIQUE`,
	`DEFINE TABLE IF NOT EXISTS job SCHEMALESS`,
	`DEFINE INDEX IF NOT EXISTS job_created_by ON TABLE job FIELDS created_by`,
	`DEFINE INDEX IF NOT EXISTS job_created_by_created_at ON TABLE job FIELDS created_by, created_at`,
}

// EnsureSchema applies the table and index definitions in one transaction.
// Every statement is idempotent so it runs on each startup.
func EnsureSchema(ctx context.Context, db Database) error {
	batch := NewAtomicBatch()
	for _, stmt := range schemaStatements {
		batch.Add(stmt, nil)
	}
	return batch.Execute(ctx, db)
}
