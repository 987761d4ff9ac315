package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter builds the admin and reporting HTTP surface
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger,
	)

	r.Get("/healthz", app.Health)

	r.Route("/donations", func(r chi.Router) {
		r.Post("/", app.RecordDonation)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetDonation)
			r.Post("/allocate", app.AllocateDonation)
			r.Post("/allocations", app.AllocateDirected)
		})
	})

	r.Route("/needs", func(r chi.Router) {
		r.Get("/", app.ListNeeds)
		r.Post("/", app.DeclareNeed)
	})

	r.Post("/beneficiaries", app.RegisterBeneficiary)

	r.Route("/sweeps", func(r chi.Router) {
		r.Post("/", app.Sweep)
		r.Get("/latest", app.LatestSweep)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/needs", app.TotalsByNeed)
		r.Get("/beneficiaries", app.TotalsByBeneficiary)
		r.Get("/donors", app.TotalsByDonor)
		r.Get("/summary", app.FundsSummary)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"requestID": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
