// Package rest exposes the gateway over HTTP: the combined login/signup
// endpoint, the token-protected contacts endpoint and two utility routes.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/directory"
	"github.com/dmitrijs2005/authgate/internal/server/users"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// Authenticator runs the signup/login flow.
type Authenticator interface {
	Authenticate(ctx context.Context, c users.Credentials) (*users.Result, error)
}

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Server struct {
	address     string
	logger      logging.Logger
	users       Authenticator
	tokens      TokenVerifier
	contacts    directory.ContactsSource
	corsOrigins []string
}

func NewServer(address string, l logging.Logger, us Authenticator, tv TokenVerifier, cs directory.ContactsSource, corsOrigins []string) *Server {
	return &Server{
		address:     address,
		logger:      l.With("module", "rest"),
		users:       us,
		tokens:      tv,
		contacts:    cs,
		corsOrigins: corsOrigins,
	}
}

// Handler builds the router. Routes accept any method.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.HandleFunc("/login", s.login)
	r.HandleFunc("/hello", s.hello)
	r.HandleFunc("/getTokenSecret", s.getTokenSecret)
	r.With(s.accessTokenMiddleware).HandleFunc("/getContacts", s.getContacts)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Requests outlive ctx cancellation; Shutdown drains them.
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		_ = srv.Close()
		return err
	}

	// Serve returns as soon as Shutdown starts; wait for the drain.
	if err := <-stopped; err != nil {
		s.logger.Error(context.Background(), "shutdown error", "error", err)
		return err
	}
	return nil
}
