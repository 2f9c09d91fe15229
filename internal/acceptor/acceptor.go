// Package acceptor owns the loopback TCP listener and the per-connection
// handler lifecycle (§4.1). It is deliberately raw-TCP rather than
// net/http.Server: the spec's wire format is hand-parsed HTTP/1.1 over a
// single request/response exchange per connection, with no keep-alive.
package acceptor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/docker/go-units"
	"golang.org/x/sync/errgroup"

	"github.com/clauderelay/proxypool/internal/adapter/debughttp"
	"github.com/clauderelay/proxypool/internal/adapter/dispatcher"
	"github.com/clauderelay/proxypool/internal/adapter/pool"
	"github.com/clauderelay/proxypool/internal/adapter/proxyhttp"
	"github.com/clauderelay/proxypool/internal/adapter/security"
	"github.com/clauderelay/proxypool/internal/core/domain"
	"github.com/clauderelay/proxypool/internal/logger"
)

// RestartPause is how long Stop and Start are separated during Restart, to
// let the OS release the port (§4.1).
const RestartPause = 500 * time.Millisecond

// Acceptor binds 127.0.0.1:<port>, spawns one handler per accepted
// connection, and supports idempotent start/stop/restart (§4.1, §6).
type Acceptor struct {
	registry     *pool.Registry
	dispatcher   *dispatcher.Dispatcher
	debugHandler *debughttp.Handler
	rateLimiter  *security.LoopbackRateLimiter
	logger       *logger.StyledLogger
	port         func() int

	mu       sync.Mutex
	listener net.Listener
	group    *errgroup.Group
	stopped  chan struct{}
}

// New wires an Acceptor to its collaborators. port is re-read from the
// ConfigProvider on every Start so a config reload can change the bind port
// before the next restart.
func New(
	registry *pool.Registry,
	disp *dispatcher.Dispatcher,
	debugHandler *debughttp.Handler,
	rateLimiter *security.LoopbackRateLimiter,
	log *logger.StyledLogger,
	port func() int,
) *Acceptor {
	return &Acceptor{
		registry:     registry,
		dispatcher:   disp,
		debugHandler: debugHandler,
		rateLimiter:  rateLimiter,
		logger:       log,
		port:         port,
	}
}

// Start binds the loopback port and begins accepting connections. Failure to
// bind is fatal to Start; failure to accept one connection is logged and the
// loop continues (§4.1).
func (a *Acceptor) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener != nil {
		return errors.New("acceptor already started")
	}

	addr := fmt.Sprintf("127.0.0.1:%d", a.port())
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	a.listener = listener
	a.stopped = make(chan struct{})
	group := &errgroup.Group{}
	a.group = group
	a.logger.Info("proxy pool listening", "addr", addr)

	group.Go(func() error {
		a.acceptLoop(listener, a.stopped, group)
		return nil
	})
	return nil
}

// acceptLoop accepts connections and hands each one to its own goroutine
// coordinated through group, so Stop's errgroup.Wait() drains every
// outstanding handler (§4.1).
func (a *Acceptor) acceptLoop(listener net.Listener, stopped chan struct{}, group *errgroup.Group) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-stopped:
				return
			default:
			}
			a.logger.Warn("accept failed, continuing", "err", err)
			continue
		}

		group.Go(func() error {
			a.handleConnection(conn)
			return nil
		})
	}
}

// Stop is idempotent. It closes the listening socket and lets outstanding
// handlers finish their current request; it does not forcibly cancel
// in-flight attempts (§4.1, §5).
func (a *Acceptor) Stop() error {
	a.mu.Lock()
	listener := a.listener
	stopped := a.stopped
	group := a.group
	a.listener = nil
	a.mu.Unlock()

	if listener == nil {
		return nil
	}

	close(stopped)
	err := listener.Close()
	if group != nil {
		_ = group.Wait()
	}
	a.logger.Info("proxy pool stopped")
	return err
}

// Restart stops, pauses briefly to let the OS release the port, then starts
// again (§4.1).
func (a *Acceptor) Restart() error {
	if err := a.Stop(); err != nil {
		return err
	}
	time.Sleep(RestartPause)
	return a.Start()
}

// handleConnection scopes one accepted connection to a single
// request/response exchange, then closes it (no keep-alive, §4.1).
func (a *Acceptor) handleConnection(conn net.Conn) {
	defer conn.Close()

	if a.rateLimiter != nil && !a.rateLimiter.Allow() {
		writeResponse(conn, proxyhttp.NewJSONErrorResponse(http.StatusTooManyRequests, "rate limit exceeded"))
		return
	}

	req, err := proxyhttp.ReadRequest(conn)
	if err != nil {
		a.replyToProtocolError(conn, err)
		return
	}

	if a.debugHandler.Matches(req) {
		writeResponse(conn, a.debugHandler.Serve())
		return
	}

	snapshot := a.registry.Snapshot()
	resp := a.dispatcher.Dispatch(context.Background(), snapshot, req)
	writeResponse(conn, resp)
}

func (a *Acceptor) replyToProtocolError(conn net.Conn, err error) {
	if errors.Is(err, proxyhttp.ErrConnectionClosed) {
		return
	}

	var protoErr *domain.ClientProtocolError
	if errors.As(err, &protoErr) {
		args := []any{"reason", protoErr.Reason, "status", protoErr.Status}
		if protoErr.Reason == "oversized_headers" {
			args = append(args, "bytes_buffered", units.HumanSize(float64(protoErr.ObservedBytes)))
		}
		a.logger.Debug("client protocol error", args...)
		resp := proxyhttp.NewJSONErrorResponse(protoErr.Status, protoErr.Error())
		writeResponse(conn, resp)
		return
	}

	a.logger.Warn("connection read error, closing silently", "err", err)
}

func writeResponse(conn net.Conn, resp proxyhttp.Response) {
	_, _ = conn.Write(resp.Serialize())
}
