// Package httpapi exposes the authentication flows over HTTP. It owns the
// router, the session cookie, and the mapping from service errors to status
// codes; all flow logic lives in the accounts service.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/secureapp/internal/logging"
	"github.com/dmitrijs2005/secureapp/internal/server/accounts"
	"github.com/dmitrijs2005/secureapp/internal/server/config"
	"github.com/dmitrijs2005/secureapp/internal/server/sessions"
)

const cookieName = "secureapp_session"

type Server struct {
	address         string
	accounts        *accounts.Service
	sessions        *sessions.Manager
	logger          logging.Logger
	secretKey       []byte
	sessionLifetime time.Duration
	corsOrigins     []string
	staticDir       string
}

func NewServer(cfg *config.Config, l logging.Logger, as *accounts.Service, sm *sessions.Manager) *Server {
	var origins []string
	for _, o := range strings.Split(cfg.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}

	return &Server{
		address:         cfg.EndpointAddrHTTP,
		accounts:        as,
		sessions:        sm,
		logger:          l.With("module", "httpapi"),
		secretKey:       []byte(cfg.SecretKey),
		sessionLifetime: cfg.SessionLifetime,
		corsOrigins:     origins,
		staticDir:       cfg.StaticDir,
	}
}

// Router assembles the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Post("/api/register", s.handleRegister)
	r.Post("/api/verify-2fa", s.handleVerify2FA)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/login/verify", s.handleLoginVerify)
	r.Get("/api/dashboard", s.handleDashboard)
	r.Post("/api/logout", s.handleLogout)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
