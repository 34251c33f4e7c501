package handler

import (
	"context"
	"net/http"

	"github.com/forgo/jobtrack/internal/middleware"
	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/internal/service"
)

// JobService is the subset of service.JobService the handlers use
type JobService interface {
	ListJobs(ctx context.Context, callerID string, params service.ListJobsParams) (*model.JobPage, error)
	GetJob(ctx context.Context, callerID, jobID string) (*model.Job, error)
	CreateJob(ctx context.Context, callerID string, req model.CreateJobRequest) (*model.Job, error)
	UpdateJob(ctx context.Context, callerID, jobID string, req model.UpdateJobRequest) (*model.Job, error)
	DeleteJob(ctx context.Context, callerID, jobID string) error
	ShowStats(ctx context.Context, callerID string) (*model.JobStats, error)
}

// JobHandler handles job endpoints. Every route requires authentication.
type JobHandler struct {
	jobService JobService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
	}
}

func jobLinks(job *model.Job) map[string]string {
	return map[string]string{"self": "/api/v1/jobs/" + job.ID}
}

// callerID returns the authenticated user or writes a 401
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := middleware.GetUserID(r.Context())
	if id == "" {
		WriteError(w, model.NewUnauthorizedError("authentication invalid"))
		return "", false
	}
	return id, true
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.jobService.ListJobs(r.Context(), userID, service.ListJobsParams{
		Search:  q.Get("search"),
		Status:  q.Get("status"),
		JobType: q.Get("jobType"),
		Sort:    q.Get("sort"),
		Page:    q.Get("page"),
		Limit:   q.Get("limit"),
	})
	if err != nil {
		writeServiceError(w, r, err, "list jobs")
		return
	}

	WriteCollection(w, http.StatusOK, page.Jobs, &PaginationInfo{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalJobs:  page.TotalJobs,
		NumOfPages: page.NumOfPages,
	})
}

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req model.CreateJobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	job, err := h.jobService.CreateJob(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err, "create job")
		return
	}

	w.Header().Set("Location", "/api/v1/jobs/"+job.ID)
	WriteData(w, http.StatusCreated, job, jobLinks(job))
}

// GetJob handles GET /api/v1/jobs/{id}
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "get job")
		return
	}

	WriteData(w, http.StatusOK, job, jobLinks(job))
}

// UpdateJob handles PATCH /api/v1/jobs/{id}
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req model.UpdateJobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	job, err := h.jobService.UpdateJob(r.Context(), userID, r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err, "update job")
		return
	}

	WriteData(w, http.StatusOK, job, jobLinks(job))
}

// DeleteJob handles DELETE /api/v1/jobs/{id}
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, "delete job")
		return
	}

	WriteData(w, http.StatusOK, MessageResponse{Message: "job removed"}, nil)
}

// ShowStats handles GET /api/v1/jobs/stats
func (h *JobHandler) ShowStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	stats, err := h.jobService.ShowStats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "show stats")
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}
