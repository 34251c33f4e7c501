package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/forgo/jobtrack/internal/model"
)

// MaxImportJobs caps a single ImportJobs call
const MaxImportJobs = 1000

// JobRepository defines the interface for job storage. Every owner-scoped
// method returns nil (or false) rather than an error when nothing matched.
type JobRepository interface {
	List(ctx context.Context, q model.JobQuery) ([]*model.Job, int, error)
	GetForOwner(ctx context.Context, id, ownerID string) (*model.Job, error)
	Create(ctx context.Context, job *model.Job) error
	CreateMany(ctx context.Context, jobs []*model.Job) error
	UpdateForOwner(ctx context.Context, id, ownerID string, updates map[string]interface{}) (*model.Job, error)
	DeleteForOwner(ctx context.Context, id, ownerID string) (bool, error)
	CountByStatus(ctx context.Context, ownerID string) (model.StatusCounts, error)
	CountByMonth(ctx context.Context, ownerID string) ([]model.MonthCount, error)
}

// JobService handles owner-scoped job operations
type JobService struct {
	jobRepo JobRepository
}

// JobServiceConfig holds configuration for the job service
type JobServiceConfig struct {
	JobRepo JobRepository
}

// NewJobService creates a new job service
func NewJobService(cfg JobServiceConfig) *JobService {
	return &JobService{
		jobRepo: cfg.JobRepo,
	}
}

// ListJobsParams are the raw listing query parameters
type ListJobsParams struct {
	Search  string
	Status  string
	JobType string
	Sort    string
	Page    string
	Limit   string
}

// ParseJobQuery turns raw listing parameters into a typed query for callerID.
// Unknown status or job type values are rejected; an unknown sort and
// unusable page or limit values fall back to their defaults.
func ParseJobQuery(callerID string, p ListJobsParams) (model.JobQuery, error) {
	q := model.JobQuery{
		OwnerID: callerID,
		Search:  strings.TrimSpace(p.Search),
		Sort:    model.ParseJobSort(strings.TrimSpace(p.Sort)),
		Page:    positiveOr(p.Page, model.DefaultJobPage),
		Limit:   positiveOr(p.Limit, model.DefaultJobLimit),
	}

	var fields []model.FieldError

	if status := strings.TrimSpace(p.Status); status != "" && status != model.FilterAll {
		s := model.JobStatus(status)
		if s.IsValid() {
			q.Status = &s
		} else {
			fields = append(fields, model.FieldError{Field: "status", Message: "status must be one of all, pending, interview, declined"})
		}
	}

	if jobType := strings.TrimSpace(p.JobType); jobType != "" && jobType != model.FilterAll {
		t := model.JobType(jobType)
		if t.IsValid() {
			q.JobType = &t
		} else {
			fields = append(fields, model.FieldError{Field: "jobType", Message: "jobType must be one of all, full-time, part-time, internship, remote"})
		}
	}

	if err := NewValidationError(fields); err != nil {
		return model.JobQuery{}, err
	}
	return q, nil
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// ListJobs returns one page of the caller's jobs
func (s *JobService) ListJobs(ctx context.Context, callerID string, params ListJobsParams) (*model.JobPage, error) {
	q, err := ParseJobQuery(callerID, params)
	if err != nil {
		return nil, err
	}

	jobs, total, err := s.jobRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}

	return &model.JobPage{
		Jobs:       jobs,
		TotalJobs:  total,
		NumOfPages: q.PageCount(total),
		Page:       q.Page,
		Limit:      q.Limit,
	}, nil
}

// GetJob returns one of the caller's jobs. A job owned by someone else is
// reported exactly like a missing one.
func (s *JobService) GetJob(ctx context.Context, callerID, jobID string) (*model.Job, error) {
	id, ok := normalizeJobID(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}

	job, err := s.jobRepo.GetForOwner(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// CreateJob stores a new job owned by the caller
func (s *JobService) CreateJob(ctx context.Context, callerID string, req model.CreateJobRequest) (*model.Job, error) {
	if err := NewValidationError(req.Validate()); err != nil {
		return nil, err
	}

	job := req.ToJob(callerID)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJob applies a partial update to one of the caller's jobs. An empty
// patch returns the job unchanged.
func (s *JobService) UpdateJob(ctx context.Context, callerID, jobID string, req model.UpdateJobRequest) (*model.Job, error) {
	if err := NewValidationError(req.Validate()); err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return s.GetJob(ctx, callerID, jobID)
	}

	id, ok := normalizeJobID(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}

	job, err := s.jobRepo.UpdateForOwner(ctx, id, callerID, req.Fields())
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// DeleteJob removes one of the caller's jobs
func (s *JobService) DeleteJob(ctx context.Context, callerID, jobID string) error {
	id, ok := normalizeJobID(jobID)
	if !ok {
		return ErrJobNotFound
	}

	deleted, err := s.jobRepo.DeleteForOwner(ctx, id, callerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrJobNotFound
	}
	return nil
}

// ShowStats returns the caller's per-status totals and application counts
// for the most recent months with activity, oldest first
func (s *JobService) ShowStats(ctx context.Context, callerID string) (*model.JobStats, error) {
	counts, err := s.jobRepo.CountByStatus(ctx, callerID)
	if err != nil {
		return nil, err
	}

	months, err := s.jobRepo.CountByMonth(ctx, callerID)
	if err != nil {
		return nil, err
	}

	monthly := make([]model.MonthlyApplications, len(months))
	for i, m := range months {
		monthly[len(months)-1-i] = model.MonthlyApplications{
			Date:  monthLabel(m.Year, m.Month),
			Count: m.Count,
		}
	}

	return &model.JobStats{
		DefaultStats:        counts,
		MonthlyApplications: monthly,
	}, nil
}

// monthLabel formats a year and 1-based month as "Jan 2024"
func monthLabel(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// ImportJobs validates and stores jobs for the caller in one transaction.
// Either every job is stored or none is.
func (s *JobService) ImportJobs(ctx context.Context, callerID string, items []model.ImportJob) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if len(items) > MaxImportJobs {
		return 0, fieldError("jobs", fmt.Sprintf("at most %d jobs can be imported at once", MaxImportJobs))
	}

	var fields []model.FieldError
	jobs := make([]*model.Job, 0, len(items))
	for i, item := range items {
		for _, fe := range item.Validate() {
			fields = append(fields, model.FieldError{
				Field:   fmt.Sprintf("jobs[%d].%s", i, fe.Field),
				Message: fe.Message,
			})
		}

		job := item.ToJob(callerID)
		if item.CreatedAt != nil {
			job.CreatedAt = item.CreatedAt.UTC()
		}
		jobs = append(jobs, job)
	}
	if err := NewValidationError(fields); err != nil {
		return 0, err
	}

	if err := s.jobRepo.CreateMany(ctx, jobs); err != nil {
		return 0, err
	}
	return len(jobs), nil
}
