package handler

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"devregistry/metrics"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://localhost:8081",
	"http://localhost:8082",
	"http://localhost:3000",
}

type RouterConfig struct {
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
}

// NewRouter wires the developer routes behind the origin allow-list and CORS.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	router := httprouter.New()

	router.POST("/developers", h.instrument(cfg.Metrics, "/developers", h.CreateDeveloper))
	router.GET("/developers", h.instrument(cfg.Metrics, "/developers", h.GetDevelopers))
	router.GET("/developers/:id", h.instrument(cfg.Metrics, "/developers/:id", h.GetDeveloper))
	router.PATCH("/developers/:id", h.instrument(cfg.Metrics, "/developers/:id", h.UpdateDeveloper))
	router.DELETE("/developers/:id", h.instrument(cfg.Metrics, "/developers/:id", h.DeleteDeveloper))
	router.GET("/health", h.Health)

	if cfg.Gatherer != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	var chain http.Handler = router
	chain = corsHandler(chain)
	chain = h.rejectForeignOrigins(origins)(chain)
	chain = middleware.Recoverer(chain)
	chain = middleware.RequestID(chain)
	return chain
}

// rejectForeignOrigins answers 403 to any request whose Origin header is not
// on the allow-list. Requests without an Origin header pass through.
func (h *Handler) rejectForeignOrigins(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && !slices.Contains(allowed, origin) {
				h.logger.WithField("origin", origin).Warn("rejected cross-origin request")
				h.writeError(w, http.StatusForbidden, "origin not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) instrument(m *metrics.Metrics, route string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next(ww, r, ps)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if m != nil {
			m.ObserveRequest(r.Method, route, strconv.Itoa(status), start)
		}
		h.logger.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"duration":   time.Since(start).String(),
		}).Info("handled request")
	}
}
