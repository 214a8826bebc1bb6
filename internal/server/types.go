package server

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrConfig reports an unusable server configuration.
	ErrConfig = errors.New("invalid server config")
	// ErrBind wraps the listener error when the port cannot be bound.
	ErrBind = errors.New("bind failed")
	// ErrLifecycle reports a start or stop call made in the wrong state.
	ErrLifecycle = errors.New("invalid lifecycle transition")
	// ErrDecode reports a request body that is not valid JSON.
	ErrDecode = errors.New("malformed request body")
	// ErrBodyTooLarge reports a request body over the read limit.
	ErrBodyTooLarge = errors.New("request body too large")
)

// State is the lifecycle state of a Server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is notified when connections enter and leave the no-reply state.
type Observer interface {
	ConnectionHung()
	HungConnectionReleased()
}

type nopObserver struct{}

func (nopObserver) ConnectionHung()         {}
func (nopObserver) HungConnectionReleased() {}

type (
	Config struct {
		Host        string
		Port        int
		GracePeriod time.Duration
	}

	Option func(*Server)

	Server struct {
		config   Config
		router   *Router
		logger   *slog.Logger
		observer Observer

		mu       sync.Mutex
		state    State
		stopping bool
		err      error
		listener net.Listener
		addr     net.Addr
		done     chan struct{}
		inflight *sync.WaitGroup // connections accepted by the current run

		acceptWG    sync.WaitGroup
		connections sync.Map // uuid.UUID -> context.CancelFunc, connections not yet replied to
		held        atomic.Int64
	}
)

// WithLogger sets the server logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver attaches an Observer for hung connections.
func WithObserver(o Observer) Option {
	return func(s *Server) {
		if o != nil {
			s.observer = o
		}
	}
}
