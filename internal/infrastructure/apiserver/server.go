// Package apiserver is an in-memory reference implementation of the academy
// REST backend. It exists so the client can be exercised end-to-end without a
// real deployment: tests and the `academyctl serve` command run it, nothing
// else should. It deliberately has no database and no registration flow.
package apiserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/academyhq/academy-client/internal/core/domain"
)

// Config holds the reference server settings.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
}

// Server is the reference backend. All state lives in memory.
type Server struct {
	echo   *echo.Echo
	secret string
	ttl    time.Duration
	log    zerolog.Logger

	mu        sync.Mutex
	accounts  map[string]*account // keyed by email
	byID      map[string]*account
	resources map[domain.ResourceType][]domain.Entity
	nextID    int
}

type account struct {
	identity     domain.Identity
	passwordHash []byte
}

// New builds a Server with all routes registered.
func New(cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	s := &Server{
		secret:    cfg.JWTSecret,
		ttl:       cfg.TokenTTL,
		log:       cfg.Logger,
		accounts:  make(map[string]*account),
		byID:      make(map[string]*account),
		resources: make(map[domain.ResourceType][]domain.Entity),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = newHTTPErrorHandler(cfg.Logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	// A per-instance registry keeps multiple servers (httptest spins one up
	// per test) from colliding on collector registration.
	registry := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "academy_refserver",
		Registerer: registry,
	}))

	e.POST("/auth/login", s.handleLogin)
	e.POST("/auth/logout", s.handleLogout)
	e.GET("/auth/me", s.handleMe)

	guarded := e.Group("", s.requireSession)
	guarded.GET("/:resource", s.handleList)
	guarded.POST("/:resource", s.handleCreate)
	guarded.PUT("/:resource/:id", s.handleUpdate)
	guarded.DELETE("/:resource/:id", s.handleDelete)

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	s.echo = e
	return s
}

// Handler exposes the server as an http.Handler for httptest and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr, blocking until shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// SeedAccount registers an account the reference server will accept logins
// for. The password is bcrypt-hashed at seed time.
func (s *Server) SeedAccount(identity domain.Identity, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &account{identity: identity, passwordHash: hash}
	s.accounts[identity.Email] = acc
	s.byID[identity.ID] = acc
	return nil
}

// SeedResource loads entities into a resource collection.
func (s *Server) SeedResource(resource domain.ResourceType, entities ...domain.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		s.resources[resource] = append(s.resources[resource], e.Clone())
	}
}
