package httpx

import (
	"github.com/ariefcatur/erp-lite/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"net/http"
	"time"
)

// Routes is implemented by every handler group.
type Routes interface {
	Register(r chi.Router)
}

// NewRouter mounts every group both at the root and under /api.
func NewRouter(log *logrus.Entry, groups ...Routes) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(metrics.InstrumentHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	mount := func(r chi.Router) {
		for _, g := range groups {
			g.Register(r)
		}
	}
	r.Route("/api", mount)
	mount(r)
	return r
}

// RequestLogger logs one line per request with its status and latency.
func RequestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote":      r.RemoteAddr,
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request")
			} else {
				entry.Info("request")
			}
		})
	}
}
