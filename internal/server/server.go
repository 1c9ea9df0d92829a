package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/bjarke-xyz/careercode/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Options struct {
	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool
	// AllowedOrigins lists CORS origins; "*" or empty allows any origin.
	AllowedOrigins []string
}

type server struct {
	logger *slog.Logger

	sessions *service.SessionSigner
	board    *service.JobBoard

	jobRepository         domain.JobRepository
	applicationRepository domain.ApplicationRepository

	opts Options
}

func NewServer(logger *slog.Logger, sessions *service.SessionSigner, jobRepo domain.JobRepository, appRepo domain.ApplicationRepository, opts Options) *server {
	return &server{
		logger:                logger,
		sessions:              sessions,
		board:                 service.NewJobBoard(logger, jobRepo, appRepo),
		jobRepository:         jobRepo,
		applicationRepository: appRepo,
		opts:                  opts,
	}
}

func (s *server) Server(port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *server) corsHandler() func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(s.opts.AllowedOrigins) == 0 || (len(s.opts.AllowedOrigins) == 1 && s.opts.AllowedOrigins[0] == "*") {
		// Credentialed requests need the origin echoed back rather than "*".
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		opts.AllowedOrigins = s.opts.AllowedOrigins
	}
	return cors.Handler(opts)
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(instrument)
	r.Use(s.corsHandler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "career code server")
	})
	r.Get("/up", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "up!")
	})

	r.Post("/jwt", s.handleIssueToken)
	r.Post("/logout", s.handleLogout)

	r.Get("/jobs", s.handleListJobs)
	r.Post("/jobs", s.handleCreateJob)
	r.Get("/jobs/applications", s.handleListJobsWithCounts)
	r.Get("/jobs/{job-id}", s.handleGetJob)

	r.Get("/applications", s.handleListApplications)
	r.Post("/applications", s.handleCreateApplication)
	r.Patch("/applications/{application-id}", s.handleUpdateApplicationStatus)
	r.Get("/applications/job/{job-id}", s.handleListJobApplications)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionVerifier)
		r.Get("/application", s.handleListMyApplications)
	})
	return r
}
