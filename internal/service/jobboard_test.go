package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/bjarke-xyz/careercode/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

// countingApplications records store calls and optionally fails them.
type countingApplications struct {
	domain.ApplicationRepository
	calls   atomic.Int32
	failFor string
}

func (c *countingApplications) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.Application, error) {
	c.calls.Add(1)
	return c.ApplicationRepository.List(ctx, f)
}

func (c *countingApplications) CountByJobID(ctx context.Context, jobID string) (int, error) {
	c.calls.Add(1)
	if c.failFor != "" && jobID == c.failFor {
		return 0, errStoreDown
	}
	return c.ApplicationRepository.CountByJobID(ctx, jobID)
}

type failingJobs struct {
	domain.JobRepository
	failFor string
}

func (f failingJobs) GetByID(ctx context.Context, id string) (domain.Job, error) {
	if id == f.failFor {
		return domain.Job{}, errStoreDown
	}
	return f.JobRepository.GetByID(ctx, id)
}

type fixture struct {
	store *repository.MemoryStore
	j1    domain.Job
	j2    domain.Job
	other domain.Job
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	f := fixture{
		store: store,
		j1:    domain.Job{HREmail: "r@x.com", Company: "Acme", Title: "SRE", CompanyLogo: "acme.png"},
		j2:    domain.Job{HREmail: "r@x.com", Company: "Acme", Title: "Backend", CompanyLogo: "acme.png"},
		other: domain.Job{HREmail: "o@x.com", Company: "Globex", Title: "PM", CompanyLogo: "globex.png"},
	}
	for _, j := range []*domain.Job{&f.j1, &f.j2, &f.other} {
		require.NoError(t, store.Jobs().Create(ctx, j))
	}
	for _, a := range []domain.Application{
		{JobID: f.j1.ID, ApplicantUID: "U1", ApplicantEmail: "a@y.com", Status: "pending"},
		{JobID: f.j1.ID, ApplicantUID: "U2", ApplicantEmail: "b@z.com", Status: "pending"},
		{JobID: f.j2.ID, ApplicantUID: "U2", ApplicantEmail: "b@z.com", Status: "pending"},
	} {
		app := a
		require.NoError(t, store.Applications().Create(ctx, &app))
	}
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJobsWithCounts(t *testing.T) {
	f := newFixture(t)
	board := NewJobBoard(discardLogger(), f.store.Jobs(), f.store.Applications())

	jobs, err := board.JobsWithCounts(context.Background(), "r@x.com")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, f.j1.ID, jobs[0].ID)
	assert.Equal(t, 2, jobs[0].ApplicationCount)
	assert.Equal(t, f.j2.ID, jobs[1].ID)
	assert.Equal(t, 1, jobs[1].ApplicationCount)
}

func TestJobsWithCountsKeepsOrderWithManyJobs(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	ids := make([]string, 0)
	for i := 0; i < 20; i++ {
		job := domain.Job{HREmail: "r@x.com", Company: "Acme", Title: "Role"}
		require.NoError(t, store.Jobs().Create(ctx, &job))
		ids = append(ids, job.ID)
		for n := 0; n < i; n++ {
			app := domain.Application{JobID: job.ID, ApplicantUID: "U", ApplicantEmail: "a@y.com"}
			require.NoError(t, store.Applications().Create(ctx, &app))
		}
	}
	board := NewJobBoard(discardLogger(), store.Jobs(), store.Applications())

	jobs, err := board.JobsWithCounts(ctx, "r@x.com")
	require.NoError(t, err)
	require.Len(t, jobs, 20)
	for i, j := range jobs {
		assert.Equal(t, ids[i], j.ID)
		assert.Equal(t, i, j.ApplicationCount)
	}
}

func TestJobsWithCountsNoJobs(t *testing.T) {
	f := newFixture(t)
	board := NewJobBoard(discardLogger(), f.store.Jobs(), f.store.Applications())

	jobs, err := board.JobsWithCounts(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobsWithCountsRequiresEmail(t *testing.T) {
	f := newFixture(t)
	board := NewJobBoard(discardLogger(), f.store.Jobs(), f.store.Applications())

	_, err := board.JobsWithCounts(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestJobsWithCountsStoreErrorAborts(t *testing.T) {
	f := newFixture(t)
	apps := &countingApplications{ApplicationRepository: f.store.Applications(), failFor: f.j2.ID}
	board := NewJobBoard(discardLogger(), f.store.Jobs(), apps)

	jobs, err := board.JobsWithCounts(context.Background(), "r@x.com")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, jobs)
}

func TestApplicationsWithJobDetails(t *testing.T) {
	f := newFixture(t)
	board := NewJobBoard(discardLogger(), f.store.Jobs(), f.store.Applications())
	caller := domain.Identity{Email: "a@y.com"}

	apps, err := board.ApplicationsWithJobDetails(context.Background(), caller, "U1", "a@y.com")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, f.j1.ID, apps[0].JobID)
	require.NotNil(t, apps[0].Job)
	assert.Equal(t, "Acme", apps[0].Job.Company)
	assert.Equal(t, "SRE", apps[0].Job.Title)
	assert.Equal(t, "acme.png", apps[0].Job.CompanyLogo)
}

func TestApplicationsWithJobDetailsMultipleJobs(t *testing.T) {
	f := newFixture(t)
	board := NewJobBoard(discardLogger(), f.store.Jobs(), f.store.Applications())

	apps, err := board.ApplicationsWithJobDetails(context.Background(), domain.Identity{Email: "b@z.com"}, "U2", "b@z.com")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "SRE", apps[0].Job.Title)
	assert.Equal(t, "Backend", apps[1].Job.Title)
}

func TestApplicationsWithJobDetailsForbidden(t *testing.T) {
	f := newFixture(t)
	apps := &countingApplications{ApplicationRepository: f.store.Applications()}
	board := NewJobBoard(discardLogger(), f.store.Jobs(), apps)

	got, err := board.ApplicationsWithJobDetails(context.Background(), domain.Identity{Email: "b@z.com"}, "U1", "a@y.com")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Nil(t, got)
	assert.Zero(t, apps.calls.Load())
}

func TestApplicationsWithJobDetailsRejectsMissingInput(t *testing.T) {
	f := newFixture(t)
	board := NewJobBoard(discardLogger(), f.store.Jobs(), f.store.Applications())
	ctx := context.Background()

	_, err := board.ApplicationsWithJobDetails(ctx, domain.Identity{}, "U1", "a@y.com")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = board.ApplicationsWithJobDetails(ctx, domain.Identity{Email: "a@y.com"}, "U1", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = board.ApplicationsWithJobDetails(ctx, domain.Identity{Email: "a@y.com"}, "", "a@y.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApplicationsWithJobDetailsOrphanedJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orphan := domain.Application{JobID: "deleted-job", ApplicantUID: "U1", ApplicantEmail: "a@y.com"}
	require.NoError(t, f.store.Applications().Create(ctx, &orphan))
	board := NewJobBoard(discardLogger(), f.store.Jobs(), f.store.Applications())

	apps, err := board.ApplicationsWithJobDetails(ctx, domain.Identity{Email: "a@y.com"}, "U1", "a@y.com")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.NotNil(t, apps[0].Job)
	assert.Equal(t, orphan.ID, apps[1].ID)
	assert.Nil(t, apps[1].Job)
}

func TestApplicationsWithJobDetailsStoreErrorAborts(t *testing.T) {
	f := newFixture(t)
	board := NewJobBoard(discardLogger(), failingJobs{JobRepository: f.store.Jobs(), failFor: f.j1.ID}, f.store.Applications())

	apps, err := board.ApplicationsWithJobDetails(context.Background(), domain.Identity{Email: "b@z.com"}, "U2", "b@z.com")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, apps)
}
