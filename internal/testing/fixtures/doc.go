// Package fixtures provides test data factories for integration tests.
//
// Each factory method creates entities with sensible defaults, stores them
// through the real repositories and returns the populated model.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	user := f.CreateUser(t)
//	job := f.CreateJob(t, user, fixtures.WithStatus(model.JobStatusInterview))
//	old := f.CreateJob(t, user, fixtures.WithCreatedAt(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
package fixtures
