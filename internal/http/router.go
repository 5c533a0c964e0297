package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hospital-finder/internal/middleware"
)

type Router struct {
	chi.Router
}

// NewRouter builds the middleware stack shared by every route. requestTimeout
// bounds a whole request, including the model calls it makes.
func NewRouter(allowedOrigins []string, requestTimeout time.Duration) *Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	return &Router{r}
}

func (r *Router) RegisterHospitalRoutes(h *HospitalHandler) {
	h.RegisterRoutes(r)
}

func (r *Router) RegisterDisputeRoutes(h *DisputeHandler) {
	h.RegisterRoutes(r)
}

func (r *Router) RegisterHealthRoutes() {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}
