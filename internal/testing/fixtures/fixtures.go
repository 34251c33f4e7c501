package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/jobtrack/internal/database"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/internal/repository"
)

// DefaultPassword is the plain-text password of every fixture user
const DefaultPassword = "testpass123"

// Factory creates test entities in the database
type Factory struct {
	users *repository.UserRepository
	jobs  *repository.JobRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		users: repository.NewUserRepository(db),
		jobs:  repository.NewJobRepository(db),
	}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Name     string
	Email    string
	Password string
	LastName string
	Location string
}

// CreateUser creates a user with optional customizations. The returned user
// carries no hash.
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		Name:     "user" + id[:6],
		Email:    fmt.Sprintf("user_%s@test.local", id),
		Password: DefaultPassword,
		LastName: model.DefaultLastName,
		Location: model.DefaultLocation,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}
	hashStr := string(hash)

	user := &model.User{
		Name:     o.Name,
		Email:    o.Email,
		Hash:     &hashStr,
		LastName: o.LastName,
		Location: o.Location,
	}
	if err := f.users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}

	user.Hash = nil
	return user
}

// WithEmail sets the user's email
func WithEmail(email string) func(*UserOpts) {
	return func(o *UserOpts) { o.Email = email }
}

// WithPassword sets the user's plain-text password
func WithPassword(password string) func(*UserOpts) {
	return func(o *UserOpts) { o.Password = password }
}

// ============================================================================
// Job Fixtures
// ============================================================================

// JobOpts customizes job creation
type JobOpts struct {
	Company     string
	Position    string
	Status      model.JobStatus
	JobType     model.JobType
	JobLocation string
	CreatedAt   time.Time
}

// CreateJob creates a job owned by owner
func (f *Factory) CreateJob(t *testing.T, owner *model.User, opts ...func(*JobOpts)) *model.Job {
	t.Helper()

	o := &JobOpts{
		Company:     "Company " + randomID(),
		Position:    "Engineer",
		Status:      model.JobStatusPending,
		JobType:     model.JobTypeFullTime,
		JobLocation: model.DefaultJobLocation,
	}
	for _, fn := range opts {
		fn(o)
	}

	job := &model.Job{
		Company:     o.Company,
		Position:    o.Position,
		Status:      o.Status,
		JobType:     o.JobType,
		JobLocation: o.JobLocation,
		CreatedBy:   owner.ID,
		CreatedAt:   o.CreatedAt,
	}
	if err := f.jobs.Create(ctx(t), job); err != nil {
		t.Fatalf("fixtures: failed to create job: %v", err)
	}
	return job
}

// CreateJobs creates n default jobs owned by owner
func (f *Factory) CreateJobs(t *testing.T, owner *model.User, n int) []*model.Job {
	t.Helper()

	jobs := make([]*model.Job, 0, n)
	for i := 0; i < n; i++ {
		jobs = append(jobs, f.CreateJob(t, owner))
	}
	return jobs
}

// WithCompany sets the job's company
func WithCompany(company string) func(*JobOpts) {
	return func(o *JobOpts) { o.Company = company }
}

// WithPosition sets the job's position
func WithPosition(position string) func(*JobOpts) {
	return func(o *JobOpts) { o.Position = position }
}

// WithStatus sets the job's status
func WithStatus(status model.JobStatus) func(*JobOpts) {
	return func(o *JobOpts) { o.Status = status }
}

// WithJobType sets the job's type
func WithJobType(jobType model.JobType) func(*JobOpts) {
	return func(o *JobOpts) { o.JobType = jobType }
}

// WithCreatedAt backdates the job
func WithCreatedAt(at time.Time) func(*JobOpts) {
	return func(o *JobOpts) { o.CreatedAt = at.UTC() }
}
