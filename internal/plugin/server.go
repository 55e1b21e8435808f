package plugin

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
)

// Server exposes the Service to the frontend over HTTP
type Server struct {
	service *Service
	auth    BasicAuth
	mux     *http.ServeMux
	handler http.Handler

	mu   sync.Mutex
	http *http.Server
}

// BasicAuth is the optional username and password guarding /api
type BasicAuth struct {
	Username string
	Password string
}

// NewServer builds a Server on a fresh mux
func NewServer(service *Service, auth BasicAuth) *Server {
	return NewServerWithMux(service, auth, http.NewServeMux())
}

// NewServerWithMux builds a Server that registers its routes on mux
func NewServerWithMux(service *Service, auth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{service: service, auth: auth, mux: mux}
	s.routes()
	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         3600,
	}).Handler(s.mux)
	return s
}

// authorized reports whether r carries the configured credentials. An
// empty BasicAuth lets everything through.
func (s *Server) authorized(r *http.Request) bool {
	if s.auth == (BasicAuth{}) {
		return true
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.auth.Password)) == 1
	return userOK && passOK
}

// withAuth rejects requests without valid credentials
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authorized(r) {
			next(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", `Basic realm="Deck Translate"`)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
}

// routes wires the API onto the mux. Only the health check is public.
func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/screenshot", s.withAuth(s.handleScreenshot))
	s.mux.HandleFunc("POST /api/translate", s.withAuth(s.handleTranslate))
	s.mux.HandleFunc("GET /api/settings", s.withAuth(s.handleGetSettings))
	s.mux.HandleFunc("PUT /api/settings", s.withAuth(s.handleSaveSettings))
	s.mux.HandleFunc("GET /api/languages", s.withAuth(s.handleLanguages))
}

// Handler returns the mux wrapped with CORS so the overlay frontend can call it
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(addr string) error {
	slog.Info("Listening", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a server started with Start
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ServeHTTP lets the Server be mounted directly as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
