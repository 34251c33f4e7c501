package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/forgo/jobtrack/internal/database"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// ============================================================================
// Fake database
// ============================================================================

type fakeDB struct {
	queries []string
	vars    []map[string]interface{}
	results []interface{}
	err     error
}

func (f *fakeDB) Connect(ctx context.Context) error { return nil }
func (f *fakeDB) Close() error                      { return nil }
func (f *fakeDB) Ping(ctx context.Context) error    { return nil }

func (f *fakeDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	f.queries = append(f.queries, query)
	f.vars = append(f.vars, vars)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	results, err := f.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	rows := statementRows(results, 0)
	if len(rows) == 0 {
		return nil, database.ErrNotFound
	}
	return rows[0], nil
}

func (f *fakeDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := f.Query(ctx, query, vars)
	return err
}

func okResult(rows ...interface{}) map[string]interface{} {
	return map[string]interface{}{"status": "OK", "result": rows}
}

func jobRow(key, position string, created time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":           models.RecordID{Table: "job", ID: key},
		"company":      "Acme",
		"position":     position,
		"status":       "pending",
		"job_type":     "full-time",
		"job_location": "my city",
		"created_by":   models.RecordID{Table: "user", ID: "alice"},
		"created_at":   models.CustomDateTime{Time: created},
		"updated_at":   created.Format(time.RFC3339),
	}
}

// ============================================================================
// List
// ============================================================================

func TestJobRepository_List_SingleRoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{results: []interface{}{
		okResult(jobRow("a", "Engineer", created), jobRow("b", "Designer", created)),
		okResult(map[string]interface{}{"count": uint64(23)}),
	}}
	repo := NewJobRepository(db)

	status := model.JobStatusPending
	jobs, total, err := repo.List(context.Background(), model.JobQuery{
		OwnerID: "user:alice",
		Search:  "  ENG ",
		Status:  &status,
		Sort:    model.JobSortPositionAZ,
		Page:    3,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(db.queries) != 1 {
		t.Fatalf("expected one request, got %d", len(db.queries))
	}
	q := db.queries[0]
	for _, want := range []string{
		"ORDER BY position ASC",
		"LIMIT 10 START 20",
		"SELECT count() AS count FROM job",
		"status = $status",
		"string::contains(string::lowercase(position), $search)",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q: %s", want, q)
		}
	}
	if strings.Contains(q, "job_type = $job_type") {
		t.Errorf("unexpected job_type filter: %s", q)
	}
	if db.vars[0]["search"] != "eng" {
		t.Errorf("search = %v, want lower-cased trimmed term", db.vars[0]["search"])
	}

	if total != 23 {
		t.Errorf("total = %d, want 23", total)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != "job:a" || jobs[0].CreatedBy != "user:alice" {
		t.Errorf("unexpected ids: %s %s", jobs[0].ID, jobs[0].CreatedBy)
	}
	if !jobs[0].CreatedAt.Equal(created) || !jobs[0].UpdatedAt.Equal(created) {
		t.Errorf("timestamps not parsed: %v %v", jobs[0].CreatedAt, jobs[0].UpdatedAt)
	}
}

func TestJobRepository_List_SortOrders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sort model.JobSort
		want string
	}{
		{model.JobSortLatest, "ORDER BY created_at DESC"},
		{model.JobSortOldest, "ORDER BY created_at ASC"},
		{model.JobSortPositionAZ, "ORDER BY position ASC"},
		{model.JobSortPositionZA, "ORDER BY position DESC"},
		{"", "ORDER BY created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			t.Parallel()
			db := &fakeDB{results: []interface{}{okResult(), okResult()}}
			_, total, err := NewJobRepository(db).List(context.Background(), model.JobQuery{
				OwnerID: "user:alice", Sort: tt.sort, Page: 1, Limit: 10,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if total != 0 {
				t.Errorf("total = %d, want 0", total)
			}
			if !strings.Contains(db.queries[0], tt.want) {
				t.Errorf("query missing %q: %s", tt.want, db.queries[0])
			}
		})
	}
}

func TestJobRepository_List_WrapsErrors(t *testing.T) {
	t.Parallel()

	db := &fakeDB{err: database.ErrConnection}
	_, _, err := NewJobRepository(db).List(context.Background(), model.JobQuery{OwnerID: "user:a", Page: 1, Limit: 10})
	if !errors.Is(err, database.ErrConnection) {
		t.Errorf("expected wrapped ErrConnection, got %v", err)
	}
}

// ============================================================================
// Owner-scoped mutations
// ============================================================================

func TestJobRepository_UpdateForOwner(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{results: []interface{}{okResult(jobRow("a", "Lead", created))}}
	repo := NewJobRepository(db)

	job, err := repo.UpdateForOwner(context.Background(), "job:a", "user:alice", map[string]interface{}{
		"position": "Lead",
		"status":   "interview",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job == nil || job.Position != "Lead" {
		t.Fatalf("unexpected job: %+v", job)
	}

	q := db.queries[0]
	if !strings.Contains(q, "SET position = $position, status = $status, updated_at = time::now()") {
		t.Errorf("unexpected SET clause: %s", q)
	}
	if !strings.Contains(q, "created_by = type::record($owner)") || !strings.Contains(q, "RETURN AFTER") {
		t.Errorf("update not owner scoped: %s", q)
	}
}

func TestJobRepository_UpdateForOwner_NoMatch(t *testing.T) {
	t.Parallel()

	db := &fakeDB{results: []interface{}{okResult()}}
	job, err := NewJobRepository(db).UpdateForOwner(context.Background(), "job:a", "user:bob", map[string]interface{}{"company": "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job != nil {
		t.Errorf("expected nil job, got %+v", job)
	}
}

func TestJobRepository_UpdateForOwner_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	_, err := NewJobRepository(db).UpdateForOwner(context.Background(), "job:a", "user:a", map[string]interface{}{"created_by": "user:b"})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if len(db.queries) != 0 {
		t.Error("no query should be sent")
	}
}

func TestJobRepository_DeleteForOwner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []interface{}
		want    bool
	}{
		{"deleted", []interface{}{okResult(jobRow("a", "x", time.Now()))}, true},
		{"no match", []interface{}{okResult()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := &fakeDB{results: tt.results}
			deleted, err := NewJobRepository(db).DeleteForOwner(context.Background(), "job:a", "user:alice")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if deleted != tt.want {
				t.Errorf("deleted = %v, want %v", deleted, tt.want)
			}
		})
	}
}

func TestJobRepository_CreateMany_OneTransaction(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	created := time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)
	jobs := []*model.Job{
		{Company: "A", Position: "P1", Status: model.JobStatusPending, JobType: model.JobTypeRemote, CreatedBy: "user:a", CreatedAt: created},
		{Company: "B", Position: "P2", Status: model.JobStatusDeclined, JobType: model.JobTypeFullTime, CreatedBy: "user:a"},
	}

	if err := NewJobRepository(db).CreateMany(context.Background(), jobs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.queries) != 1 {
		t.Fatalf("expected one request, got %d", len(db.queries))
	}
	if !strings.HasPrefix(db.queries[0], "BEGIN TRANSACTION;") {
		t.Errorf("expected transaction: %s", db.queries[0])
	}

	var explicit, defaulted int
	for k, v := range db.vars[0] {
		if !strings.HasSuffix(k, "_created_at") {
			continue
		}
		if v == nil {
			defaulted++
		} else {
			explicit++
		}
	}
	if explicit != 1 || defaulted != 1 {
		t.Errorf("explicit=%d defaulted=%d, want 1 and 1", explicit, defaulted)
	}
}

// ============================================================================
// Aggregates
// ============================================================================

func TestJobRepository_CountByStatus(t *testing.T) {
	t.Parallel()

	db := &fakeDB{results: []interface{}{okResult(
		map[string]interface{}{"status": "pending", "count": uint64(4)},
		map[string]interface{}{"status": "declined", "count": int64(2)},
	)}}

	counts, err := NewJobRepository(db).CountByStatus(context.Background(), "user:alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.StatusCounts{Pending: 4, Interview: 0, Declined: 2}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
	if !strings.Contains(db.queries[0], "GROUP BY status") {
		t.Errorf("unexpected query: %s", db.queries[0])
	}
}

func TestJobRepository_CountByMonth(t *testing.T) {
	t.Parallel()

	db := &fakeDB{results: []interface{}{okResult(
		map[string]interface{}{"year": uint64(2024), "month": uint64(3), "count": uint64(5)},
		map[string]interface{}{"year": uint64(2024), "month": uint64(1), "count": uint64(2)},
	)}}

	months, err := NewJobRepository(db).CountByMonth(context.Background(), "user:alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 2 || months[0] != (model.MonthCount{Year: 2024, Month: 3, Count: 5}) {
		t.Errorf("unexpected months: %+v", months)
	}
	q := db.queries[0]
	if !strings.Contains(q, "GROUP BY year, month ORDER BY year DESC, month DESC LIMIT 6") {
		t.Errorf("unexpected query: %s", q)
	}
}
