// Package database provides SurrealDB connectivity for the jobtrack API.
//
// The database package hides the SurrealDB client behind the Database
// interface so repositories can be tested against a fake.
//
// # Database Interface
//
//	type Database interface {
//	    Connect(ctx context.Context) error
//	    Close() error
//	    Ping(ctx context.Context) error
//	    Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
//	    QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
//	    Execute(ctx context.Context, query string, vars map[string]interface{}) error
//	}
//
// # Connection Management
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    User:      "root",
//	    Password:  "root",
//	    Namespace: "jobtrack",
//	    Database:  "main",
//	})
//	if err := db.Connect(ctx); err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := database.EnsureSchema(ctx, db); err != nil {
//	    return err
//	}
//
// # Error Types
//
//   - ErrNotFound: record does not exist
//   - ErrDuplicate: unique index violation
//   - ErrConnection: connection or sign-in failed
//   - ErrQuery: the statement itself failed
//
// # Transactions
//
// TxBuilder and AtomicBatch wrap several statements in one
// BEGIN/COMMIT so bulk imports and schema setup are all-or-nothing.
package database
