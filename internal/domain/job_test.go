package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobUnmarshalKeepsExtraFields(t *testing.T) {
	payload := `{
		"hr_email": "r@x.com",
		"company": "Acme",
		"title": "Backend Engineer",
		"company_logo": "https://acme.test/logo.png",
		"salaryRange": {"min": 100, "max": 150, "currency": "usd"},
		"requirements": ["go", "sql"],
		"application_count": 99
	}`
	var job Job
	require.NoError(t, json.Unmarshal([]byte(payload), &job))

	assert.Equal(t, "r@x.com", job.HREmail)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "https://acme.test/logo.png", job.CompanyLogo)
	assert.Contains(t, job.Extra, "salaryRange")
	assert.Contains(t, job.Extra, "requirements")
	assert.NotContains(t, job.Extra, "application_count")
	assert.NotContains(t, job.Extra, "company")
}

func TestJobExtraNumbersSurviveRoundTrip(t *testing.T) {
	payload := `{"hr_email":"r@x.com","company":"Acme","title":"SRE","reqId":9007199254740993,"nested":{"n":1e400}}`
	var job Job
	require.NoError(t, json.Unmarshal([]byte(payload), &job))
	assert.Equal(t, json.Number("9007199254740993"), job.Extra["reqId"])

	b, err := json.Marshal(job)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"reqId":9007199254740993`)
	assert.Contains(t, string(b), `"nested":{"n":1e400}`)
}

func TestJobMarshalFlattensExtra(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job := Job{
		ID:        "j1",
		HREmail:   "r@x.com",
		Company:   "Acme",
		Title:     "SRE",
		CreatedAt: created,
		Extra:     map[string]any{"location": "remote", "company": "ignored"},
	}
	b, err := json.Marshal(job)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "j1", got["_id"])
	assert.Equal(t, "remote", got["location"])
	assert.Equal(t, "Acme", got["company"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["createdAt"])
	assert.NotContains(t, got, "company_logo")
}

func TestJobWithCountMarshal(t *testing.T) {
	j := JobWithCount{
		Job:              Job{ID: "j1", HREmail: "r@x.com", Company: "Acme", Title: "SRE", Extra: map[string]any{"type": "full-time"}},
		ApplicationCount: 2,
	}
	b, err := json.Marshal(j)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.EqualValues(t, 2, got["application_count"])
	assert.Equal(t, "full-time", got["type"])
	assert.Equal(t, "j1", got["_id"])
}

func TestJobUnmarshalWrongType(t *testing.T) {
	var job Job
	err := json.Unmarshal([]byte(`{"hr_email":"r@x.com","company":"Acme","title":5}`), &job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestJobValidate(t *testing.T) {
	tests := []struct {
		name  string
		job   Job
		field string
	}{
		{"valid", Job{HREmail: "r@x.com", Company: "Acme", Title: "SRE"}, ""},
		{"missing email", Job{Company: "Acme", Title: "SRE"}, "hr_email"},
		{"bad email", Job{HREmail: "recruiter", Company: "Acme", Title: "SRE"}, "hr_email"},
		{"missing company", Job{HREmail: "r@x.com", Title: "SRE"}, "company"},
		{"blank title", Job{HREmail: "r@x.com", Company: "Acme", Title: "  "}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
