package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	notFoundMessage     = "404 - method not found"
	bodyTooLargeMessage = "413 - request body too large"

	maxBodyBytes = 1 << 20
)

// ErrorReply renders err as a 500 reply.
func ErrorReply(err error) Reply {
	return Respond(http.StatusInternalServerError, fmt.Sprintf("error 500 - %v", err))
}

func (s *Server) handleConnection(conn net.Conn, inflight *sync.WaitGroup) {
	id := uuid.New()
	logger := s.logger.With("conn", id.String(), "remote", conn.RemoteAddr().String())

	// create a cancellable context so Stop can abort connections still being read
	connectionCtx, cancelConnection := context.WithCancel(context.Background())
	s.connections.Store(id, cancelConnection)
	deadlineSet := make(chan struct{})
	stopDeadline := context.AfterFunc(connectionCtx, func() {
		_ = conn.SetDeadline(time.Now())
		close(deadlineSet)
	})

	reader := bufio.NewReader(conn)
	reply, ok := s.serve(reader, conn, logger)

	if !stopDeadline() {
		// cancelled after the request was served; undo the deadline so a held
		// connection still waits for its peer
		<-deadlineSet
		_ = conn.SetDeadline(time.Time{})
	}
	s.connections.Delete(id)
	cancelConnection()
	inflight.Done()

	if !ok || reply.Responds() {
		closeConn(conn, logger)
		return
	}
	s.hold(reader, conn, logger)
}

// serve reads one request, dispatches it and writes the reply if there is one.
// It returns false when no complete request could be read.
func (s *Server) serve(reader *bufio.Reader, conn net.Conn, logger *slog.Logger) (Reply, bool) {
	req, err := http.ReadRequest(reader)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			logger.Debug("error reading request", "err", err)
		}
		return Reply{}, false
	}

	var reply Reply
	body, err := readBody(req)
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		logger.Warn("rejecting request body", "err", err)
		reply = Respond(http.StatusRequestEntityTooLarge, bodyTooLargeMessage)
	case err != nil:
		logger.Debug("error reading request body", "err", err)
		return Reply{}, false
	default:
		reply = s.dispatch(req, body, logger)
	}
	if reply.Responds() {
		if err := writeReply(conn, req, reply); err != nil {
			logger.Debug("error writing reply", "err", err)
		}
	}
	return reply, true
}

func (s *Server) dispatch(req *http.Request, body []byte, logger *slog.Logger) (reply Reply) {
	logger = logger.With("method", req.Method, "path", req.URL.Path)

	payload, err := decodePayload(body)
	if err != nil {
		logger.Warn("rejecting request body", "err", err)
		return ErrorReply(err)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panic", "panic", r)
			reply = ErrorReply(fmt.Errorf("handler panic: %v", r))
		}
	}()

	reply, found := s.router.Route(req.Method, req.URL.Path, payload)
	if !found {
		logger.Debug("no route")
		return Respond(http.StatusNotFound, notFoundMessage)
	}
	return reply
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(req *http.Request) ([]byte, error) {
	defer req.Body.Close()

	if req.ContentLength > maxBodyBytes {
		return nil, fmt.Errorf("%w: content length %d", ErrBodyTooLarge, req.ContentLength)
	}
	body, err := io.ReadAll(http.MaxBytesReader(nil, req.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	return body, err
}

// decodePayload returns nil for an empty body and the decoded JSON value otherwise.
func decodePayload(body []byte) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return payload, nil
}

func writeReply(conn net.Conn, req *http.Request, reply Reply) error {
	resp := &http.Response{
		StatusCode:    reply.Code(),
		ProtoMajor:    1,
		ProtoMinor:    1,
		Request:       req,
		Header:        http.Header{"Content-Type": {"text/plain"}},
		Body:          io.NopCloser(strings.NewReader(reply.Message())),
		ContentLength: int64(len(reply.Message())),
		Close:         true,
	}
	return resp.Write(conn)
}

// hold keeps an unanswered connection open until the peer closes it.
func (s *Server) hold(reader *bufio.Reader, conn net.Conn, logger *slog.Logger) {
	s.held.Add(1)
	s.observer.ConnectionHung()
	logger.Debug("holding connection without reply")

	_, _ = io.Copy(io.Discard, reader)

	s.held.Add(-1)
	s.observer.HungConnectionReleased()
	closeConn(conn, logger)
	logger.Debug("peer released held connection")
}

func closeConn(conn net.Conn, logger *slog.Logger) {
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.Debug("error closing connection", "err", err)
	}
}
