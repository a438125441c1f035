// Package httpapi exposes the users and crm services as the REST API the
// console talks to.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/logging"
	"github.com/dmitrijs2005/crmconsole/internal/server/config"
	"github.com/dmitrijs2005/crmconsole/internal/server/crm"
	"github.com/dmitrijs2005/crmconsole/internal/server/users"
	"github.com/gorilla/mux"
)

// PathPrefix is where the API is mounted.
const PathPrefix = "/api"

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	users   *users.Service
	crm     *crm.Service
	logger  logging.Logger
	limiter *clientLimiter
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us *users.Service, cs *crm.Service) *HTTPServer {
	return &HTTPServer{
		address: cfg.ListenAddr,
		logger:  l.With("module", "http_server"),
		users:   us,
		crm:     cs,
		limiter: newClientLimiter(cfg.AuthRateLimit, cfg.AuthBurst),
	}
}

// Handler returns the routed API with its middleware chain.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.loggingMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	api := r.PathPrefix(PathPrefix).Subrouter()
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	a := api.PathPrefix("/auth").Subrouter()
	a.Use(s.rateLimitMiddleware)
	a.HandleFunc("/register", s.register).Methods(http.MethodPost)
	a.HandleFunc("/verify-email", s.verifyEmail).Methods(http.MethodPost)
	a.HandleFunc("/login", s.login).Methods(http.MethodPost)
	a.Handle("/me", s.authMiddleware(http.HandlerFunc(s.me))).Methods(http.MethodGet)

	su := api.PathPrefix("/superuser").Subrouter()
	su.Use(s.authMiddleware, requireRole(users.RoleSuperuser))
	su.HandleFunc("/dashboard", s.dashboard).Methods(http.MethodGet)
	su.HandleFunc("/users", s.createUser).Methods(http.MethodPost)
	su.HandleFunc("/users/{id:[0-9]+}", s.updateUser).Methods(http.MethodPut)
	su.HandleFunc("/users/{id:[0-9]+}", s.deleteUser).Methods(http.MethodDelete)
	su.HandleFunc("/users/{id:[0-9]+}/toggle-active", s.toggleUser).Methods(http.MethodPatch)

	c := api.PathPrefix("/crm").Subrouter()
	c.Use(s.authMiddleware)
	c.HandleFunc("/customers/latest", s.latestCustomers).Methods(http.MethodGet)
	c.HandleFunc("/customers", s.listCustomers).Methods(http.MethodGet)
	c.HandleFunc("/customers", s.createCustomer).Methods(http.MethodPost)
	c.HandleFunc("/customers/{id:[0-9]+}", s.updateCustomer).Methods(http.MethodPatch, http.MethodPut)
	c.HandleFunc("/customers/{id:[0-9]+}", s.deleteCustomer).Methods(http.MethodDelete)
	c.HandleFunc("/stats", s.stats).Methods(http.MethodGet)

	return r
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
