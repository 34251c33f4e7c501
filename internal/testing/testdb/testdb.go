package testdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/forgo/jobtrack/internal/database"
)

// Image is the SurrealDB image started when TEST_DB_HOST is unset
const Image = "surrealdb/surrealdb:v2.1.4"

const (
	rootUser     = "root"
	rootPassword = "root"
	surrealPort  = "8000/tcp"
)

// TestDB is a connection scoped to a unique namespace
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	t         *testing.T
}

var (
	serverOnce sync.Once
	serverCfg  database.Config
	serverErr  error
	container  tc.Container

	counter atomic.Int64
)

// Main runs the package tests and terminates the shared container afterwards.
// Call it from TestMain.
func Main(m *testing.M) {
	code := m.Run()
	if container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_ = container.Terminate(ctx)
		cancel()
	}
	os.Exit(code)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// server returns connection settings for the shared test server, starting a
// container on first use
func server() (database.Config, error) {
	serverOnce.Do(func() {
		if host := os.Getenv("TEST_DB_HOST"); host != "" {
			serverCfg = database.Config{
				Host:     host,
				Port:     envOr("TEST_DB_PORT", "8000"),
				User:     envOr("TEST_DB_USER", rootUser),
				Password: envOr("TEST_DB_PASSWORD", rootPassword),
			}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
			ContainerRequest: tc.ContainerRequest{
				Image:        Image,
				ExposedPorts: []string{surrealPort},
				Cmd:          []string{"start", "--user", rootUser, "--pass", rootPassword, "memory"},
				WaitingFor:   wait.ForListeningPort(surrealPort).WithStartupTimeout(2 * time.Minute),
			},
			Started: true,
		})
		if err != nil {
			serverErr = fmt.Errorf("starting surrealdb container: %w", err)
			return
		}
		container = c

		host, err := c.Host(ctx)
		if err != nil {
			serverErr = fmt.Errorf("container host: %w", err)
			return
		}
		port, err := c.MappedPort(ctx, surrealPort)
		if err != nil {
			serverErr = fmt.Errorf("container port: %w", err)
			return
		}

		serverCfg = database.Config{
			Host:     host,
			Port:     port.Port(),
			User:     rootUser,
			Password: rootPassword,
		}
	})
	return serverCfg, serverErr
}

// uniqueNamespace generates a namespace no other test in this run uses
func uniqueNamespace() string {
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter.Add(1))
}

// New connects to a fresh namespace with the schema applied. The namespace
// is removed when the test finishes.
func New(t *testing.T) *TestDB {
	t.Helper()

	cfg, err := server()
	if err != nil {
		t.Fatalf("testdb: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg.Namespace = uniqueNamespace()
	cfg.Database = "test"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb: failed to apply schema: %v", err)
	}

	tdb := &TestDB{
		DB:        db,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		t:         t,
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close removes the namespace and closes the connection
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace), nil)
	_ = tdb.DB.Close()
	tdb.DB = nil
}

// Ctx returns a context bounded by a ten second timeout and the test's lifetime
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(tdb.t.Context(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a query and fails the test on error
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// MustQuery executes a query and returns results, failing the test on error
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return results
}
