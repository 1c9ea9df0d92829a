package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type updateStatusInput struct {
	Status string `json:"status"`
}

type updateResponse struct {
	MatchedCount  int `json:"matchedCount"`
	ModifiedCount int `json:"modifiedCount"`
}

func (s *server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.applicationRepository.List(r.Context(), domain.ApplicationFilter{})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, apps)
}

func (s *server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	jobId := chi.URLParam(r, "job-id")
	apps, err := s.applicationRepository.List(r.Context(), domain.ApplicationFilter{JobID: jobId})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, apps)
}

func (s *server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var app domain.Application
	if err := decodeJSON(w, r, &app); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	app.ID = ""
	app.CreatedAt = time.Time{}
	if err := app.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.applicationRepository.Create(r.Context(), &app); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.logger.Info("created application", "applicationId", app.ID, "jobId", app.JobID)
	jsonResponse(w, http.StatusCreated, insertResponse{InsertedID: app.ID})
}

// handleUpdateApplicationStatus only ever changes status; any other field in
// the body is ignored.
func (s *server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	appId := chi.URLParam(r, "application-id")
	var input updateStatusInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		s.errorResponse(w, r, &domain.ValidationError{Field: "status", Reason: "is required"})
		return
	}
	modified, err := s.applicationRepository.UpdateStatus(r.Context(), appId, status)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.logger.Info("updated application status", "applicationId", appId, "status", status, "modified", modified)
	jsonResponse(w, http.StatusOK, updateResponse{MatchedCount: 1, ModifiedCount: lo.Ternary(modified, 1, 0)})
}

func (s *server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		s.errorResponse(w, r, domain.ErrUnauthenticated)
		return
	}
	query := r.URL.Query()
	apps, err := s.board.ApplicationsWithJobDetails(r.Context(), identity, query.Get("applicantUID"), query.Get("applicantEmail"))
	if err != nil {
		if status, _ := errorStatus(err); status == http.StatusForbidden {
			s.logger.Warn("applicant email mismatch", "sessionEmail", identity.Email, "applicantEmail", query.Get("applicantEmail"))
		}
		s.errorResponse(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, apps)
}
