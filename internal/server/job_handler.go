package server

import (
	"net/http"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/go-chi/chi/v5"
)

type insertResponse struct {
	InsertedID string `json:"insertedId"`
}

func (s *server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := domain.JobFilter{HREmail: r.URL.Query().Get("email")}
	jobs, err := s.jobRepository.List(r.Context(), filter)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, jobs)
}

func (s *server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobId := chi.URLParam(r, "job-id")
	job, err := s.jobRepository.GetByID(r.Context(), jobId)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

func (s *server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job domain.Job
	if err := decodeJSON(w, r, &job); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	job.ID = ""
	job.CreatedAt = time.Time{}
	if err := job.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.jobRepository.Create(r.Context(), &job); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.logger.Info("created job", "jobId", job.ID, "hrEmail", job.HREmail)
	jsonResponse(w, http.StatusCreated, insertResponse{InsertedID: job.ID})
}

func (s *server) handleListJobsWithCounts(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.board.JobsWithCounts(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, jobs)
}
