package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/vbonduro/konsinyasi/internal/auth"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/feed"
	"github.com/vbonduro/konsinyasi/internal/journey"
	"github.com/vbonduro/konsinyasi/internal/service"
	"github.com/vbonduro/konsinyasi/internal/state"
	"github.com/vbonduro/konsinyasi/internal/stock"
	"github.com/vbonduro/konsinyasi/internal/timeutil"
)

// Services bundles everything the HTTP layer dispatches to. Reads go to
// State; every write goes through one of the services.
type Services struct {
	Dropoffs *service.TransactionService
	Returns  *service.TransactionService
	Catalog  *service.CatalogService
	Admin    *service.AdminService
	Journey  *journey.Manager
	State    *state.Store
	Feed     *feed.Hub
	Issuer   *auth.Issuer
}

type Options struct {
	AllowedOrigins []string
	// Templates holds the view shell; see package templates.
	Templates embed.FS
}

type Server struct {
	svc       Services
	templates embed.FS
	mux       *http.ServeMux
	handler   http.Handler
	tmplFuncs template.FuncMap
	origins   []string
	logger    *slog.Logger
	now       func() time.Time
}

func NewServer(svc Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		svc:       svc,
		templates: opts.Templates,
		mux:       http.NewServeMux(),
		origins:   opts.AllowedOrigins,
		logger:    logger,
		now:       time.Now,
	}
	s.tmplFuncs = template.FuncMap{
		"rupiah":   stock.FormatRupiah,
		"datetime": s.formatTimestamp,
		"clock":    s.formatClock,
		"inc":      func(i int) int { return i + 1 },
	}
	s.registerRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	s.handler = requestLogger(s.logger, instrument(c.Handler(securityHeaders(s.mux))))
	return s
}

func (s *Server) registerRoutes() {
	// View shell.
	s.mux.HandleFunc("GET /{$}", s.handleStockPage)
	s.mux.HandleFunc("GET /riwayat/{collection}", s.handleHistoryPage)
	s.mux.HandleFunc("GET /canvasing", s.handleCanvasingPage)

	// Session and admin gate.
	s.mux.HandleFunc("POST /api/session", s.handleSignIn)
	s.mux.HandleFunc("POST /api/admin/unlock", s.handleUnlock)
	s.mux.HandleFunc("PUT /api/admin/password", s.requireAdmin(s.handleChangePassword))

	// Drop-offs and returns.
	for _, ts := range []*service.TransactionService{s.svc.Dropoffs, s.svc.Returns} {
		base := "/api/" + string(ts.Collection())
		s.mux.HandleFunc("GET "+base, s.handleListTransactions(ts.Collection()))
		s.mux.HandleFunc("POST "+base, s.requireSession(s.handleSubmitTransactions(ts)))
		s.mux.HandleFunc("DELETE "+base+"/{id}", s.requireAdmin(s.handleDeleteTransaction(ts)))
		s.mux.HandleFunc("GET "+base+"/export", s.handleExportTransactions(ts.Collection()))
	}

	// Catalogs and stock.
	s.mux.HandleFunc("GET /api/products", s.handleListProducts)
	s.mux.HandleFunc("POST /api/products", s.requireAdmin(s.handleAddProduct))
	s.mux.HandleFunc("PUT /api/products/prices", s.requireAdmin(s.handleUpdatePrices))
	s.mux.HandleFunc("GET /api/partners", s.handleListEntries(domain.CollectionPartners))
	s.mux.HandleFunc("POST /api/partners", s.requireAdmin(s.handleAddEntry(domain.CollectionPartners)))
	s.mux.HandleFunc("GET /api/employees", s.handleListEntries(domain.CollectionEmployees))
	s.mux.HandleFunc("POST /api/employees", s.requireAdmin(s.handleAddEntry(domain.CollectionEmployees)))
	s.mux.HandleFunc("GET /api/stock", s.handleStock)

	// Canvasing.
	s.mux.HandleFunc("GET /api/attendance", s.handleListAttendance)
	s.mux.HandleFunc("POST /api/attendance", s.requireSession(s.handleClockIn))
	s.mux.HandleFunc("GET /api/attendance/export", s.requireAdmin(s.handleExportCanvasing))
	s.mux.HandleFunc("POST /api/attendance/{id}/visits", s.requireSession(s.handleReportVisit))
	s.mux.HandleFunc("POST /api/attendance/{id}/clock-out", s.requireSession(s.handleClockOut))
	s.mux.HandleFunc("GET /api/attendance/{id}/journey/{index}/photo", s.handleGetPhoto)
	s.mux.HandleFunc("DELETE /api/attendance/{id}/journey/{index}/photo", s.requireAdmin(s.handleRedactPhoto))

	// Live feeds.
	s.mux.HandleFunc("GET /ws/{collection}", s.handleFeed)

	// Ops.
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 60 * time.Second,
		// No write timeout: feed connections stay open indefinitely.
		IdleTimeout: 120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	feeds := make(map[domain.Collection]string, len(domain.Collections))
	status := "ok"
	for _, c := range domain.Collections {
		if err := s.svc.State.Err(c); err != nil {
			feeds[c] = err.Error()
			status = "degraded"
			continue
		}
		feeds[c] = "ok"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status, "feeds": feeds})
}

func (s *Server) formatTimestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return timeutil.Format(*t, s.svc.State.Location(), timeutil.DisplayDateTime)
}

func (s *Server) formatClock(t time.Time) string {
	return timeutil.Format(t, s.svc.State.Location(), timeutil.DisplayTime)
}
