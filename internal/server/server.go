package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	defaultGracePeriod = 3 * time.Second
	acceptRetryDelay   = 5 * time.Millisecond
)

// New returns a stopped Server for config and routes. Configuration is
// validated by Start.
func New(config Config, routes []Route, opts ...Option) *Server {
	if config.GracePeriod <= 0 {
		config.GracePeriod = defaultGracePeriod
	}
	s := &Server{
		config:   config,
		router:   NewRouter(routes),
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) validate() error {
	if s.config.Port <= 0 || s.config.Port > 65535 {
		return fmt.Errorf("%w: port %d is not a valid TCP port", ErrConfig, s.config.Port)
	}
	if s.router.Len() == 0 {
		return fmt.Errorf("%w: no routes defined", ErrConfig)
	}
	return nil
}

func (s *Server) address() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Start binds the configured port and begins accepting connections. Cancelling
// ctx stops the server as if Stop had been called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateStarting || s.state == StateRunning {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: server is already %s", ErrLifecycle, state)
	}
	if err := s.validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateStarting
	s.mu.Unlock()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.address())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateFailed
		s.err = fmt.Errorf("%w: %w", ErrBind, err)
		s.logger.Error("server not running", "addr", s.address(), "err", err)
		return s.err
	}

	s.listener = listener
	s.addr = listener.Addr()
	s.done = make(chan struct{})
	s.inflight = &sync.WaitGroup{}
	s.state = StateRunning
	s.err = nil

	s.logger.Info("server started", "addr", s.addr.String())

	s.acceptWG.Add(1)
	go s.acceptLoop(listener, s.done, s.inflight)
	go s.watch(ctx, s.done)

	return nil
}

func (s *Server) acceptLoop(listener net.Listener, done <-chan struct{}, inflight *sync.WaitGroup) {
	defer s.acceptWG.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-done:
				return // shutdown in progress
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.logger.Warn("error accepting connection", "err", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		inflight.Add(1)
		go s.handleConnection(conn, inflight)
	}
}

func (s *Server) watch(ctx context.Context, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		if err := s.Stop(); err != nil && !errors.Is(err, ErrLifecycle) {
			s.logger.Warn("stop after context cancellation", "err", err)
		}
	case <-done:
	}
}

// Stop closes the listener and waits up to the grace period for connections
// that have not been answered yet. Connections held open without a reply are
// left to their peers.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning || s.stopping {
		s.mu.Unlock()
		return fmt.Errorf("%w: server is not running", ErrLifecycle)
	}
	s.stopping = true
	listener := s.listener
	inflight := s.inflight
	close(s.done)
	s.mu.Unlock()

	s.logger.Info("shutting down", "addr", s.addr.String())

	closeErr := listener.Close()
	s.acceptWG.Wait()

	drained := make(chan struct{})
	go func() {
		inflight.Wait()
		close(drained)
	}()

	// wait for either in-flight connections to finish or the grace period to run out
	select {
	case <-drained:
	case <-time.After(s.config.GracePeriod):
		s.logger.Warn("grace period exceeded, cancelling unanswered connections")
		s.connections.Range(func(key, value any) bool {
			if cancel, ok := value.(context.CancelFunc); ok {
				cancel()
				s.logger.Debug("connection cancelled due to shutdown", "conn", key)
			}
			return true
		})
	}

	s.mu.Lock()
	s.state = StateStopped
	s.stopping = false
	s.listener = nil
	s.mu.Unlock()

	s.logger.Info("shutdown complete", "held", s.held.Load())

	if closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		return fmt.Errorf("close listener: %w", closeErr)
	}
	return nil
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool {
	return s.State() == StateRunning
}

// Err returns the error from the last failed Start, or nil.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Addr returns the address bound by the most recent successful Start, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// HeldConnections returns the number of connections currently held open without a reply.
func (s *Server) HeldConnections() int {
	return int(s.held.Load())
}
