package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// defaultFanOut bounds the store round-trips a single composite read keeps in
// flight.
const defaultFanOut = 4

// JobBoard composes the job and application repositories into the board's
// composite reads.
type JobBoard struct {
	logger       *slog.Logger
	jobs         domain.JobRepository
	applications domain.ApplicationRepository
	fanOut       int
}

func NewJobBoard(logger *slog.Logger, jobs domain.JobRepository, applications domain.ApplicationRepository) *JobBoard {
	return &JobBoard{
		logger:       logger,
		jobs:         jobs,
		applications: applications,
		fanOut:       defaultFanOut,
	}
}

// JobsWithCounts returns the jobs owned by hrEmail, each with the number of
// applications whose jobId equals the job's identifier.
func (b *JobBoard) JobsWithCounts(ctx context.Context, hrEmail string) ([]domain.JobWithCount, error) {
	if hrEmail == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	jobs, err := b.jobs.List(ctx, domain.JobFilter{HREmail: hrEmail})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	result := make([]domain.JobWithCount, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fanOut)
	for i, job := range jobs {
		g.Go(func() error {
			count, err := b.applications.CountByJobID(gctx, job.ID)
			if err != nil {
				return fmt.Errorf("failed to count applications of job %v: %w", job.ID, err)
			}
			result[i] = domain.JobWithCount{Job: job, ApplicationCount: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplicationsWithJobDetails returns the caller's own applications, each
// carrying its job's company, title and logo. The caller must be the
// applicant: a mismatching email fails with domain.ErrForbidden before any
// store access. Applications whose job no longer exists are returned without
// job details.
func (b *JobBoard) ApplicationsWithJobDetails(ctx context.Context, caller domain.Identity, applicantUID string, applicantEmail string) ([]domain.ApplicationWithJob, error) {
	if caller.Email == "" {
		return nil, domain.ErrUnauthenticated
	}
	if applicantEmail == "" {
		return nil, &domain.ValidationError{Field: "applicantEmail", Reason: "is required"}
	}
	if caller.Email != applicantEmail {
		return nil, fmt.Errorf("%w: session is not %v", domain.ErrForbidden, applicantEmail)
	}
	if applicantUID == "" {
		return nil, &domain.ValidationError{Field: "applicantUID", Reason: "is required"}
	}

	apps, err := b.applications.List(ctx, domain.ApplicationFilter{
		ApplicantUID:   applicantUID,
		ApplicantEmail: applicantEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	jobIDs := lo.Uniq(lo.Map(apps, func(a domain.Application, _ int) string { return a.JobID }))
	summaries, err := b.jobSummaries(ctx, jobIDs)
	if err != nil {
		return nil, err
	}

	return lo.Map(apps, func(a domain.Application, _ int) domain.ApplicationWithJob {
		return domain.ApplicationWithJob{Application: a, Job: summaries[a.JobID]}
	}), nil
}

// jobSummaries fetches every job in ids once. Missing jobs map to nil.
func (b *JobBoard) jobSummaries(ctx context.Context, ids []string) (map[string]*domain.JobSummary, error) {
	found := make([]*domain.JobSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			job, err := b.jobs.GetByID(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				b.logger.Warn("application references missing job", "jobId", id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get job %v: %w", id, err)
			}
			found[i] = &domain.JobSummary{
				Company:     job.Company,
				Title:       job.Title,
				CompanyLogo: job.CompanyLogo,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	summaries := make(map[string]*domain.JobSummary, len(ids))
	for i, id := range ids {
		summaries[id] = found[i]
	}
	return summaries, nil
}
