// Package repository implements the data access layer for the jobtrack API.
//
// The repository package contains all database operations using SurrealDB.
// Each repository struct handles the queries for one entity.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods return nil (or false) rather than an error when nothing matched
//   - Results are parsed from the raw SurrealDB response into model structs
//
// # Ownership
//
// Every JobRepository read, update and delete carries the owner id in the
// same statement that touches the record, so there is no window between an
// ownership check and the write.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax; values never reach the SQL text
//   - selectQuery whitelists fields and directions for dynamic listings
//   - type::record() for safe ID handling
//   - time::now() for automatic timestamps
//
// # Example Usage
//
//	repo := NewJobRepository(db)
//	job, err := repo.GetForOwner(ctx, "job:abc123", callerID)
//	if err != nil {
//	    return err
//	}
//	if job == nil {
//	    // missing, or owned by someone else
//	}
package repository
