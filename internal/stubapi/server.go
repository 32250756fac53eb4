package stubapi

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Server wraps the HTTP listener serving the stub catalog API.
type Server struct {
	settings Settings
	store    *Store
	logger   *zap.Logger

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore serves an existing store instead of building one from settings.
func WithStore(store *Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// NewServer prepares a stub server using the provided settings.
func NewServer(settings Settings, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.store == nil {
		if settings.Seed {
			s.store = NewSeededStore()
		} else {
			s.store = NewStore()
		}
	}
	return s
}

// Store exposes the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the gin engine without binding a listener.
func (s *Server) Handler() http.Handler {
	return NewRouter(s.store, s.settings.PerPage, s.logger)
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("stubapi: server is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("stubapi: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "stubapi: listen %s", addr)
	}
	s.listener = listener
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("stubapi: serve error", zap.Error(err))
		}
	}()
	s.logger.Info("stubapi: listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "stubapi: shutdown")
	}
	return nil
}

// BaseURL returns the URL clients should use. Once started it reflects the
// bound listener, so port 0 settings resolve to the real port.
func (s *Server) BaseURL() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return s.settings.URL()
}
