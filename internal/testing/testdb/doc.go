// Package testdb provides isolated SurrealDB databases for integration tests.
//
// The first call to New starts one SurrealDB container for the whole test
// binary with testcontainers-go. Set TEST_DB_HOST (and optionally
// TEST_DB_PORT, TEST_DB_USER, TEST_DB_PASSWORD) to use an already running
// server instead. Every TestDB gets its own namespace with the schema applied.
//
// Usage:
//
//	func TestMain(m *testing.M) { testdb.Main(m) }
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewJobRepository(tdb.DB)
//	}
//
// # Isolation
//
// Each test gets its own namespace inside the shared server:
//
//	func TestA(t *testing.T) {
//	    tdb := testdb.New(t) // namespace: test_1718000000000000000_1
//	}
//
// The namespace is removed by t.Cleanup, so no explicit Close is needed.
//
// # Build tag
//
// Tests that use this package carry the integration build tag and need
// Docker unless TEST_DB_HOST points at a running server:
//
//	go test -tags integration ./...
package testdb
