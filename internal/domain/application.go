package domain

import (
	"context"
	"strings"
	"time"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusInReview = "in-review"
	ApplicationStatusRejected = "rejected"
	ApplicationStatusAccepted = "accepted"
)

// Application is a candidate's submission against a Job. JobID is the string
// form of the Job's identifier and is not enforced by the store.
type Application struct {
	ID             string
	JobID          string
	ApplicantUID   string
	ApplicantEmail string
	Status         string
	Extra          map[string]any
	CreatedAt      time.Time
}

type applicationJSON struct {
	ID             string     `json:"_id,omitempty"`
	JobID          string     `json:"jobId"`
	ApplicantUID   string     `json:"applicantUID"`
	ApplicantEmail string     `json:"applicantEmail"`
	Status         string     `json:"status"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

var applicationKeys = []string{
	"_id", "jobId", "applicantUID", "applicantEmail", "status", "createdAt",
	"company", "title", "company_logo",
}

func (a Application) wire() applicationJSON {
	w := applicationJSON{
		ID:             a.ID,
		JobID:          a.JobID,
		ApplicantUID:   a.ApplicantUID,
		ApplicantEmail: a.ApplicantEmail,
		Status:         a.Status,
	}
	if !a.CreatedAt.IsZero() {
		w.CreatedAt = &a.CreatedAt
	}
	return w
}

func (a Application) MarshalJSON() ([]byte, error) {
	return mergeJSON(a.wire(), a.Extra)
}

func (a *Application) UnmarshalJSON(data []byte) error {
	var w applicationJSON
	extra, err := splitJSON(data, &w, applicationKeys)
	if err != nil {
		return err
	}
	*a = Application{
		ID:             w.ID,
		JobID:          w.JobID,
		ApplicantUID:   w.ApplicantUID,
		ApplicantEmail: w.ApplicantEmail,
		Status:         w.Status,
		Extra:          extra,
	}
	if w.CreatedAt != nil {
		a.CreatedAt = *w.CreatedAt
	}
	return nil
}

// Validate checks the submission and defaults Status to pending.
func (a *Application) Validate() error {
	if strings.TrimSpace(a.JobID) == "" {
		return required("jobId")
	}
	if strings.TrimSpace(a.ApplicantUID) == "" {
		return required("applicantUID")
	}
	if strings.TrimSpace(a.ApplicantEmail) == "" {
		return required("applicantEmail")
	}
	if !strings.Contains(a.ApplicantEmail, "@") {
		return &ValidationError{Field: "applicantEmail", Reason: "must be an email address"}
	}
	if a.Status == "" {
		a.Status = ApplicationStatusPending
	}
	return nil
}

// JobSummary holds the display fields copied from an application's job.
type JobSummary struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	CompanyLogo string `json:"company_logo"`
}

// ApplicationWithJob is an Application enriched with its job's display
// fields. Job is nil when the referenced posting no longer exists.
type ApplicationWithJob struct {
	Application
	Job *JobSummary
}

func (a ApplicationWithJob) MarshalJSON() ([]byte, error) {
	known := struct {
		applicationJSON
		*JobSummary
	}{a.wire(), a.Job}
	return mergeJSON(known, a.Extra)
}

// ApplicationFilter selects applications by exact match on the non-empty
// fields. The zero value selects everything.
type ApplicationFilter struct {
	JobID          string
	ApplicantUID   string
	ApplicantEmail string
}

type ApplicationRepository interface {
	List(context.Context, ApplicationFilter) ([]Application, error)
	Create(context.Context, *Application) error
	// UpdateStatus sets only the status of the application and reports
	// whether it differed from the stored one. Returns ErrNotFound when no
	// application has the id.
	UpdateStatus(ctx context.Context, id string, status string) (bool, error)
	CountByJobID(ctx context.Context, jobID string) (int, error)
}
