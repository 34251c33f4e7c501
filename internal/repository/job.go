package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/forgo/jobtrack/internal/database"
	"github.com/forgo/jobtrack/internal/model"
)

// MonthlyStatsWindow is how many of the most recent months CountByMonth returns
const MonthlyStatsWindow = 6

// updatableJobFields are the columns UpdateForOwner may SET
var updatableJobFields = map[string]bool{
	"company":      true,
	"position":     true,
	"status":       true,
	"job_type":     true,
	"job_location": true,
}

// JobRepository handles job data access. Every method except Create and
// CreateMany is scoped by owner so a caller can never see or touch another
// user's records.
type JobRepository struct {
	db database.Database
}

// NewJobRepository creates a new job repository
func NewJobRepository(db database.Database) *JobRepository {
	return &JobRepository{db: db}
}

const createJobQuery = `
	CREATE job CONTENT {
		company: $company,
		position: $position,
		status: $status,
		job_type: $job_type,
		job_location: $job_location,
		created_by: type::record($created_by),
		created_at: IF $created_at THEN <datetime>$created_at ELSE time::now() END,
		updated_at: time::now()
	}
`

func createJobVars(job *model.Job) map[string]interface{} {
	var createdAt *time.Time
	if !job.CreatedAt.IsZero() {
		createdAt = &job.CreatedAt
	}
	return map[string]interface{}{
		"company":      job.Company,
		"position":     job.Position,
		"status":       string(job.Status),
		"job_type":     string(job.JobType),
		"job_location": job.JobLocation,
		"created_by":   job.CreatedBy,
		"created_at":   timeOrNone(createdAt),
	}
}

// Create stores a new job. A non-zero CreatedAt is kept, otherwise the
// database assigns the current time.
func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	result, err := r.db.Query(ctx, createJobQuery, createJobVars(job))
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	row := firstRow(result)
	if row == nil {
		return errors.New("create job: no result returned")
	}

	created := parseJob(row)
	job.ID = created.ID
	job.CreatedAt = created.CreatedAt
	job.UpdatedAt = created.UpdatedAt
	return nil
}

// CreateMany stores all jobs in a single transaction
func (r *JobRepository) CreateMany(ctx context.Context, jobs []*model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tb := database.NewTxBuilder()
	for _, job := range jobs {
		tb.Add(createJobQuery, createJobVars(job))
	}

	if _, err := database.ExecuteTransaction(ctx, r.db, tb); err != nil {
		return fmt.Errorf("import jobs: %w", err)
	}
	return nil
}

// jobFilter builds the owner-scoped conditions shared by the page and count
// statements of List
func jobFilter(q model.JobQuery, projection string) *selectQuery {
	sq := newSelect("job", projection, jobFields).
		Where("created_by = type::record($owner)", "owner", q.OwnerID)

	if search := strings.TrimSpace(q.Search); search != "" {
		sq.Where("string::contains(string::lowercase(position), $search)", "search", strings.ToLower(search))
	}
	if q.Status != nil {
		sq.Where("status = $status", "status", string(*q.Status))
	}
	if q.JobType != nil {
		sq.Where("job_type = $job_type", "job_type", string(*q.JobType))
	}
	return sq
}

func applyJobSort(sq *selectQuery, s model.JobSort) {
	switch s {
	case model.JobSortOldest:
		sq.OrderBy("created_at", sortAsc)
	case model.JobSortPositionAZ:
		sq.OrderBy("position", sortAsc)
	case model.JobSortPositionZA:
		sq.OrderBy("position", sortDesc)
	default:
		sq.OrderBy("created_at", sortDesc)
	}
}

// List returns one page of the owner's jobs matching q and the total number
// of matches. Both statements go to the database in one request.
func (r *JobRepository) List(ctx context.Context, q model.JobQuery) ([]*model.Job, int, error) {
	sq := jobFilter(q, "*")
	applyJobSort(sq, q.Sort)
	sq.Limit(q.Limit).Start(q.Offset())

	pageQuery, vars, err := sq.Build()
	if err != nil {
		return nil, 0, err
	}
	countQuery, _, err := sq.BuildCount()
	if err != nil {
		return nil, 0, err
	}

	result, err := r.db.Query(ctx, pageQuery+";\n"+countQuery+";", vars)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	rows := statementRows(result, 0)
	jobs := make([]*model.Job, 0, len(rows))
	for _, row := range rows {
		if data, ok := row.(map[string]interface{}); ok {
			jobs = append(jobs, parseJob(data))
		}
	}

	return jobs, extractCount(result, 1), nil
}

// GetForOwner retrieves a job owned by ownerID, returning nil when it does
// not exist or belongs to someone else
func (r *JobRepository) GetForOwner(ctx context.Context, id, ownerID string) (*model.Job, error) {
	query := `SELECT * FROM job WHERE id = type::record($id) AND created_by = type::record($owner) LIMIT 1`
	vars := map[string]interface{}{
		"id":    id,
		"owner": ownerID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	row := firstRow(result)
	if row == nil {
		return nil, nil
	}
	return parseJob(row), nil
}

// UpdateForOwner applies updates to a job owned by ownerID in a single
// conditional statement and returns the stored record, or nil when nothing
// matched
func (r *JobRepository) UpdateForOwner(ctx context.Context, id, ownerID string, updates map[string]interface{}) (*model.Job, error) {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		if !updatableJobFields[k] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vars := map[string]interface{}{
		"id":    id,
		"owner": ownerID,
	}
	setClauses := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%s", k, k))
		vars[k] = updates[k]
	}
	setClauses = append(setClauses, "updated_at = time::now()")

	query := fmt.Sprintf(
		`UPDATE job SET %s WHERE id = type::record($id) AND created_by = type::record($owner) RETURN AFTER`,
		strings.Join(setClauses, ", "),
	)

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	row := firstRow(result)
	if row == nil {
		return nil, nil
	}
	return parseJob(row), nil
}

// DeleteForOwner removes a job owned by ownerID and reports whether a record
// was deleted
func (r *JobRepository) DeleteForOwner(ctx context.Context, id, ownerID string) (bool, error) {
	query := `DELETE job WHERE id = type::record($id) AND created_by = type::record($owner) RETURN BEFORE`
	vars := map[string]interface{}{
		"id":    id,
		"owner": ownerID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	return firstRow(result) != nil, nil
}

// CountByStatus counts the owner's jobs per status. Statuses with no jobs
// are reported as zero.
func (r *JobRepository) CountByStatus(ctx context.Context, ownerID string) (model.StatusCounts, error) {
	query, vars, err := newSelect("job", "status, count() AS count", jobFields).
		Where("created_by = type::record($owner)", "owner", ownerID).
		GroupBy("status").
		Build()
	if err != nil {
		return model.StatusCounts{}, err
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return model.StatusCounts{}, fmt.Errorf("count jobs by status: %w", err)
	}

	var counts model.StatusCounts
	for _, row := range statementRows(result, 0) {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		n := getInt(data, "count")
		switch model.JobStatus(getString(data, "status")) {
		case model.JobStatusPending:
			counts.Pending += n
		case model.JobStatusInterview:
			counts.Interview += n
		case model.JobStatusDeclined:
			counts.Declined += n
		}
	}
	return counts, nil
}

// CountByMonth counts the owner's jobs per (year, month) of creation for the
// most recent MonthlyStatsWindow months that have any jobs, newest first
func (r *JobRepository) CountByMonth(ctx context.Context, ownerID string) ([]model.MonthCount, error) {
	query, vars, err := newSelect("job", "time::year(created_at) AS year, time::month(created_at) AS month, count() AS count", jobFields).
		Where("created_by = type::record($owner)", "owner", ownerID).
		GroupBy("year", "month").
		OrderBy("year", sortDesc).
		OrderBy("month", sortDesc).
		Limit(MonthlyStatsWindow).
		Build()
	if err != nil {
		return nil, err
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("count jobs by month: %w", err)
	}

	rows := statementRows(result, 0)
	months := make([]model.MonthCount, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		months = append(months, model.MonthCount{
			Year:  getInt(data, "year"),
			Month: getInt(data, "month"),
			Count: getInt(data, "count"),
		})
	}
	return months, nil
}

func parseJob(data map[string]interface{}) *model.Job {
	return &model.Job{
		ID:          convertSurrealID(data["id"]),
		Company:     getString(data, "company"),
		Position:    getString(data, "position"),
		Status:      model.JobStatus(getString(data, "status")),
		JobType:     model.JobType(getString(data, "job_type")),
		JobLocation: getString(data, "job_location"),
		CreatedBy:   convertSurrealID(data["created_by"]),
		CreatedAt:   getTime(data, "created_at"),
		UpdatedAt:   getTime(data, "updated_at"),
	}
}
