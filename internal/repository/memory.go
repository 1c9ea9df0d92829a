package repository

import (
	"context"
	"sync"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryStore keeps jobs and applications in insertion order. It is safe for
// concurrent use and is meant for local development and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	jobs         []domain.Job
	applications []domain.Application
	now          func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

func (m *MemoryStore) Jobs() domain.JobRepository {
	return memoryJobRepository{m}
}

func (m *MemoryStore) Applications() domain.ApplicationRepository {
	return memoryApplicationRepository{m}
}

type memoryJobRepository struct {
	*MemoryStore
}

func (m memoryJobRepository) List(_ context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := lo.Filter(m.jobs, func(j domain.Job, _ int) bool {
		return filter.HREmail == "" || j.HREmail == filter.HREmail
	})
	return lo.Map(jobs, func(j domain.Job, _ int) domain.Job { return copyJob(j) }), nil
}

func (m memoryJobRepository) GetByID(_ context.Context, id string) (domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := lo.Find(m.jobs, func(j domain.Job) bool { return j.ID == id })
	if !ok {
		return domain.Job{}, domain.ErrNotFound
	}
	return copyJob(job), nil
}

func (m memoryJobRepository) Create(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.ID = uuid.NewString()
	job.CreatedAt = m.now()
	m.jobs = append(m.jobs, copyJob(*job))
	return nil
}

type memoryApplicationRepository struct {
	*MemoryStore
}

func matchesApplication(filter domain.ApplicationFilter, a domain.Application) bool {
	return (filter.JobID == "" || a.JobID == filter.JobID) &&
		(filter.ApplicantUID == "" || a.ApplicantUID == filter.ApplicantUID) &&
		(filter.ApplicantEmail == "" || a.ApplicantEmail == filter.ApplicantEmail)
}

func (m memoryApplicationRepository) List(_ context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	apps := lo.Filter(m.applications, func(a domain.Application, _ int) bool {
		return matchesApplication(filter, a)
	})
	return lo.Map(apps, func(a domain.Application, _ int) domain.Application { return copyApplication(a) }), nil
}

func (m memoryApplicationRepository) Create(_ context.Context, app *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app.ID = uuid.NewString()
	app.CreatedAt = m.now()
	m.applications = append(m.applications, copyApplication(*app))
	return nil
}

func (m memoryApplicationRepository) UpdateStatus(_ context.Context, id string, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(m.applications, func(a domain.Application) bool { return a.ID == id })
	if !ok {
		return false, domain.ErrNotFound
	}
	if m.applications[idx].Status == status {
		return false, nil
	}
	m.applications[idx].Status = status
	return true, nil
}

func (m memoryApplicationRepository) CountByJobID(_ context.Context, jobID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.CountBy(m.applications, func(a domain.Application) bool { return a.JobID == jobID }), nil
}

func copyJob(j domain.Job) domain.Job {
	j.Extra = copyExtra(j.Extra)
	return j
}

func copyApplication(a domain.Application) domain.Application {
	a.Extra = copyExtra(a.Extra)
	return a
}

func copyExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	return lo.MapValues(extra, func(v any, _ string) any { return copyValue(v) })
}

// copyValue clones the containers produced by decoding JSON; scalars are
// immutable and returned as is.
func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyExtra(v)
	case []any:
		if v == nil {
			return v
		}
		return lo.Map(v, func(item any, _ int) any { return copyValue(item) })
	default:
		return v
	}
}
