package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/finora/internal/api/middleware"
)

// Handlers groups everything NewRouter serves. A nil Jobs or Advisor
// handler leaves its routes unregistered.
type Handlers struct {
	Statements *StatementsHandler
	Jobs       *JobsHandler
	Advisor    *AdvisorHandler
}

// NewRouter registers the API routes.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Statements endpoints
	mux.HandleFunc("/api/statements/ingest", post(h.Statements.Ingest))
	if h.Jobs != nil {
		mux.HandleFunc("/api/statements/jobs", post(h.Jobs.EnqueueIngestion))

		// Jobs endpoints
		mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				h.Jobs.ListJobs(w, r)
			} else {
				middleware.MethodNotAllowed(w, http.MethodGet)
			}
		})

		mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				// Extract job ID from path
				jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
				if jobID == "" {
					middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
					return
				}
				h.Jobs.GetJob(w, r, jobID)
			} else {
				middleware.MethodNotAllowed(w, http.MethodGet)
			}
		})
	}

	// Advisor endpoints
	if h.Advisor != nil {
		mux.HandleFunc("/api/analyze", post(h.Advisor.Analyze))
		mux.HandleFunc("/api/financial-chat", post(h.Advisor.Chat))
		mux.HandleFunc("/api/parse-expenses", post(h.Advisor.ParseExpenses))
	}

	mux.HandleFunc("/api/insights", post(Insights))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}

func post(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			next(w, r)
		} else {
			middleware.MethodNotAllowed(w, http.MethodPost)
		}
	}
}
