package domain

import (
	"context"
	"strings"
	"time"
)

// Job is a posting owned by the hiring account identified by HREmail. Extra
// holds any posting fields beyond the ones the board itself reads.
type Job struct {
	ID          string
	HREmail     string
	Company     string
	Title       string
	CompanyLogo string
	Extra       map[string]any
	CreatedAt   time.Time
}

type jobJSON struct {
	ID          string     `json:"_id,omitempty"`
	HREmail     string     `json:"hr_email"`
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	CompanyLogo string     `json:"company_logo,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

var jobKeys = []string{"_id", "hr_email", "company", "title", "company_logo", "createdAt", "application_count"}

func (j Job) wire() jobJSON {
	w := jobJSON{
		ID:          j.ID,
		HREmail:     j.HREmail,
		Company:     j.Company,
		Title:       j.Title,
		CompanyLogo: j.CompanyLogo,
	}
	if !j.CreatedAt.IsZero() {
		w.CreatedAt = &j.CreatedAt
	}
	return w
}

func (j Job) MarshalJSON() ([]byte, error) {
	return mergeJSON(j.wire(), j.Extra)
}

func (j *Job) UnmarshalJSON(data []byte) error {
	var w jobJSON
	extra, err := splitJSON(data, &w, jobKeys)
	if err != nil {
		return err
	}
	*j = Job{
		ID:          w.ID,
		HREmail:     w.HREmail,
		Company:     w.Company,
		Title:       w.Title,
		CompanyLogo: w.CompanyLogo,
		Extra:       extra,
	}
	if w.CreatedAt != nil {
		j.CreatedAt = *w.CreatedAt
	}
	return nil
}

// Validate checks the fields a posting must carry to be listed.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.HREmail) == "" {
		return required("hr_email")
	}
	if !strings.Contains(j.HREmail, "@") {
		return &ValidationError{Field: "hr_email", Reason: "must be an email address"}
	}
	if strings.TrimSpace(j.Company) == "" {
		return required("company")
	}
	if strings.TrimSpace(j.Title) == "" {
		return required("title")
	}
	return nil
}

// JobWithCount is a Job annotated with the number of applications that
// reference it.
type JobWithCount struct {
	Job
	ApplicationCount int
}

func (j JobWithCount) MarshalJSON() ([]byte, error) {
	known := struct {
		jobJSON
		ApplicationCount int `json:"application_count"`
	}{j.wire(), j.ApplicationCount}
	return mergeJSON(known, j.Extra)
}

// JobFilter selects jobs by exact match on the non-empty fields.
type JobFilter struct {
	HREmail string
}

type JobRepository interface {
	List(context.Context, JobFilter) ([]Job, error)
	GetByID(context.Context, string) (Job, error)
	Create(context.Context, *Job) error
}
