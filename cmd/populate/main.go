// Command populate bulk-imports mock jobs from a JSON file for an existing
// user, so the list and stats endpoints have data to show.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/forgo/jobtrack/internal/config"
	"github.com/forgo/jobtrack/internal/database"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/internal/repository"
	"github.com/forgo/jobtrack/internal/service"
)

// UserLookup finds the account the jobs are imported for
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// JobImporter stores a batch of jobs for one owner
type JobImporter interface {
	ImportJobs(ctx context.Context, callerID string, items []model.ImportJob) (int, error)
}

var errUserNotFound = errors.New("no user with that email")

func main() {
	file := flag.String("file", "cmd/populate/mock-data.json", "JSON array of jobs to import")
	email := flag.String("email", "", "Email of the user who will own the jobs")
	timeout := flag.Duration("timeout", time.Minute, "Overall import timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *email == "" {
		slog.Error("-email is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		slog.Error("failed to open data file", slog.String("file", *file), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.EnsureSchema(ctx, db); err != nil {
		slog.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	jobService := service.NewJobService(service.JobServiceConfig{
		JobRepo: repository.NewJobRepository(db),
	})

	n, err := populate(ctx, f, *email, repository.NewUserRepository(db), jobService)
	if err != nil {
		slog.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("jobs imported", slog.Int("count", n), slog.String("email", *email))
}

// populate decodes a JSON array of jobs from r and imports them for the user
// with the given email. Nothing is stored unless every job is valid.
func populate(ctx context.Context, r io.Reader, email string, users UserLookup, jobs JobImporter) (int, error) {
	var items []model.ImportJob
	dec := json.NewDecoder(r)
	if err := dec.Decode(&items); err != nil {
		return 0, fmt.Errorf("decoding jobs: %w", err)
	}

	user, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return 0, fmt.Errorf("%w: %s", errUserNotFound, email)
	}

	n, err := jobs.ImportJobs(ctx, user.ID, items)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				slog.Warn("invalid job", slog.String("field", fe.Field), slog.String("message", fe.Message))
			}
		}
		return 0, err
	}
	return n, nil
}
