package model

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// JobStatus is the application stage of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusInterview JobStatus = "interview"
	JobStatusDeclined  JobStatus = "declined"
)

// JobStatuses lists every status in presentation order
var JobStatuses = []JobStatus{JobStatusPending, JobStatusInterview, JobStatusDeclined}

// IsValid reports whether s is a known status
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusInterview, JobStatusDeclined:
		return true
	}
	return false
}

// JobType is the employment type of a job
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

// JobTypes lists every job type
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeRemote}

// IsValid reports whether t is a known job type
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeRemote:
		return true
	}
	return false
}

// Job field constraints
const (
	MaxCompanyLength     = 50
	MaxPositionLength    = 100
	MaxJobLocationLength = 100

	DefaultJobLocation = "my city"
)

// Job is a tracked job application. CreatedBy is the owning user's record id
// and never changes after creation.
type Job struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Status      JobStatus `json:"status"`
	JobType     JobType   `json:"job_type"`
	JobLocation string    `json:"job_location"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateJobRequest is the body of POST /jobs. There is deliberately no owner
// field: the owner always comes from the authenticated caller.
type CreateJobRequest struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Status      *string `json:"status,omitempty"`
	JobType     *string `json:"job_type,omitempty"`
	JobLocation *string `json:"job_location,omitempty"`
}

// Validate checks required fields and enum domains
func (r *CreateJobRequest) Validate() []FieldError {
	var errors []FieldError

	company := strings.TrimSpace(r.Company)
	if company == "" {
		errors = append(errors, FieldError{Field: "company", Message: "company is required"})
	} else if utf8.RuneCountInString(company) > MaxCompanyLength {
		errors = append(errors, FieldError{Field: "company", Message: "company must be 50 characters or less"})
	}

	position := strings.TrimSpace(r.Position)
	if position == "" {
		errors = append(errors, FieldError{Field: "position", Message: "position is required"})
	} else if utf8.RuneCountInString(position) > MaxPositionLength {
		errors = append(errors, FieldError{Field: "position", Message: "position must be 100 characters or less"})
	}

	errors = append(errors, validateJobEnums(r.Status, r.JobType)...)

	if r.JobLocation != nil && utf8.RuneCountInString(strings.TrimSpace(*r.JobLocation)) > MaxJobLocationLength {
		errors = append(errors, FieldError{Field: "job_location", Message: "job_location must be 100 characters or less"})
	}

	return errors
}

// ToJob builds a Job with defaults applied. ownerID is the caller's user id.
func (r *CreateJobRequest) ToJob(ownerID string) *Job {
	job := &Job{
		Company:     strings.TrimSpace(r.Company),
		Position:    strings.TrimSpace(r.Position),
		Status:      JobStatusPending,
		JobType:     JobTypeFullTime,
		JobLocation: DefaultJobLocation,
		CreatedBy:   ownerID,
	}
	if r.Status != nil && *r.Status != "" {
		job.Status = JobStatus(*r.Status)
	}
	if r.JobType != nil && *r.JobType != "" {
		job.JobType = JobType(*r.JobType)
	}
	if r.JobLocation != nil && strings.TrimSpace(*r.JobLocation) != "" {
		job.JobLocation = strings.TrimSpace(*r.JobLocation)
	}
	return job
}

// UpdateJobRequest is the body of PATCH /jobs/{id}. Nil fields are left as is.
type UpdateJobRequest struct {
	Company     *string `json:"company,omitempty"`
	Position    *string `json:"position,omitempty"`
	Status      *string `json:"status,omitempty"`
	JobType     *string `json:"job_type,omitempty"`
	JobLocation *string `json:"job_location,omitempty"`
}

// Validate rejects present-but-empty company/position and unknown enum values
func (r *UpdateJobRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Company != nil {
		if company := strings.TrimSpace(*r.Company); company == "" {
			errors = append(errors, FieldError{Field: "company", Message: "company cannot be empty"})
		} else if utf8.RuneCountInString(company) > MaxCompanyLength {
			errors = append(errors, FieldError{Field: "company", Message: "company must be 50 characters or less"})
		}
	}
	if r.Position != nil {
		if position := strings.TrimSpace(*r.Position); position == "" {
			errors = append(errors, FieldError{Field: "position", Message: "position cannot be empty"})
		} else if utf8.RuneCountInString(position) > MaxPositionLength {
			errors = append(errors, FieldError{Field: "position", Message: "position must be 100 characters or less"})
		}
	}
	if r.Status != nil && *r.Status == "" {
		errors = append(errors, FieldError{Field: "status", Message: "status cannot be empty"})
	}
	if r.JobType != nil && *r.JobType == "" {
		errors = append(errors, FieldError{Field: "job_type", Message: "job_type cannot be empty"})
	}
	errors = append(errors, validateJobEnums(r.Status, r.JobType)...)

	if r.JobLocation != nil && utf8.RuneCountInString(strings.TrimSpace(*r.JobLocation)) > MaxJobLocationLength {
		errors = append(errors, FieldError{Field: "job_location", Message: "job_location must be 100 characters or less"})
	}

	return errors
}

// IsEmpty reports whether the patch changes nothing
func (r *UpdateJobRequest) IsEmpty() bool {
	return r.Company == nil && r.Position == nil && r.Status == nil && r.JobType == nil && r.JobLocation == nil
}

// Fields returns the patch as store field names to values
func (r *UpdateJobRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Company != nil {
		fields["company"] = strings.TrimSpace(*r.Company)
	}
	if r.Position != nil {
		fields["position"] = strings.TrimSpace(*r.Position)
	}
	if r.Status != nil {
		fields["status"] = *r.Status
	}
	if r.JobType != nil {
		fields["job_type"] = *r.JobType
	}
	if r.JobLocation != nil {
		fields["job_location"] = strings.TrimSpace(*r.JobLocation)
	}
	return fields
}

func validateJobEnums(status, jobType *string) []FieldError {
	var errors []FieldError
	if status != nil && *status != "" && !JobStatus(*status).IsValid() {
		errors = append(errors, FieldError{Field: "status", Message: "status must be one of pending, interview, declined"})
	}
	if jobType != nil && *jobType != "" && !JobType(*jobType).IsValid() {
		errors = append(errors, FieldError{Field: "job_type", Message: "job_type must be one of full-time, part-time, internship, remote"})
	}
	return errors
}

// JobSort is the ordering applied to a job listing
type JobSort string

const (
	JobSortLatest     JobSort = "latest"
	JobSortOldest     JobSort = "oldest"
	JobSortPositionAZ JobSort = "a-z"
	JobSortPositionZA JobSort = "z-a"
)

// ParseJobSort maps a query value to a sort; anything unknown is JobSortLatest
func ParseJobSort(s string) JobSort {
	switch JobSort(s) {
	case JobSortOldest, JobSortPositionAZ, JobSortPositionZA:
		return JobSort(s)
	}
	return JobSortLatest
}

// Listing defaults
const (
	DefaultJobPage  = 1
	DefaultJobLimit = 10

	// FilterAll disables the status or job type filter
	FilterAll = "all"
)

// JobQuery is a validated, owner-scoped listing request. Nil Status/JobType
// means no filter on that field.
type JobQuery struct {
	OwnerID string
	Search  string
	Status  *JobStatus
	JobType *JobType
	Sort    JobSort
	Page    int
	Limit   int
}

// Offset returns the number of matching jobs skipped before this page. It
// saturates at math.MaxInt instead of wrapping.
func (q JobQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// PageCount returns how many pages of q.Limit jobs it takes to hold total
func (q JobQuery) PageCount(total int) int {
	if total <= 0 || q.Limit <= 0 {
		return 0
	}
	pages := total / q.Limit
	if total%q.Limit != 0 {
		pages++
	}
	return pages
}

// JobPage is one page of a listing plus totals computed before paging
type JobPage struct {
	Jobs       []*Job `json:"jobs"`
	TotalJobs  int    `json:"total_jobs"`
	NumOfPages int    `json:"num_of_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// StatusCounts always carries every status, zero when unused
type StatusCounts struct {
	Pending   int `json:"pending"`
	Interview int `json:"interview"`
	Declined  int `json:"declined"`
}

// Total returns the sum over all statuses
func (c StatusCounts) Total() int {
	return c.Pending + c.Interview + c.Declined
}

// MonthCount is the raw (year, month) aggregate returned by the store
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// MonthlyApplications is one presentation row of the monthly chart
type MonthlyApplications struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// JobStats is the response of GET /jobs/stats
type JobStats struct {
	DefaultStats        StatusCounts          `json:"default_stats"`
	MonthlyApplications []MonthlyApplications `json:"monthly_applications"`
}

// ImportJob is one record of a bulk import. CreatedAt, when set, backdates
// the job so historical monthly stats can be seeded.
type ImportJob struct {
	CreateJobRequest
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
