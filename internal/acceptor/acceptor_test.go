package acceptor

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauderelay/proxypool/internal/adapter/debughttp"
	"github.com/clauderelay/proxypool/internal/adapter/dispatcher"
	"github.com/clauderelay/proxypool/internal/adapter/pool"
	"github.com/clauderelay/proxypool/internal/adapter/scheduler"
	"github.com/clauderelay/proxypool/internal/adapter/security"
	"github.com/clauderelay/proxypool/internal/config"
	"github.com/clauderelay/proxypool/internal/core/domain"
	"github.com/clauderelay/proxypool/internal/logger"
	"github.com/clauderelay/proxypool/internal/observability"
	"github.com/clauderelay/proxypool/theme"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

type fakeProvider struct{ upstreams []*domain.Upstream }

func (f *fakeProvider) SnapshotPool() []*domain.Upstream { return f.upstreams }
func (f *fakeProvider) Port() int                        { return 0 }
func (f *fakeProvider) RequestTimeoutSeconds() int       { return 5 }
func (f *fakeProvider) PenaltyIncrement() int            { return 10 }
func (f *fakeProvider) PenaltyDecrement() int            { return 1 }

func newTestAcceptor(t *testing.T, port int, upstreams []*domain.Upstream) *Acceptor {
	t.Helper()
	health := pool.NewHealthMap()
	registry := pool.NewRegistry(&fakeProvider{upstreams: upstreams})
	sched := scheduler.New(health)
	rec := observability.New()
	styled := logger.NewStyledLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), theme.Default())
	disp := dispatcher.New(sched, health, rec, styled, 5*time.Second, 10, 1)
	debugHandler := debughttp.New(rec, health, func() map[uuid.UUID]string { return nil })
	rateLimiter := security.NewLoopbackRateLimiter(config.RateLimitConfig{})

	return New(registry, disp, debugHandler, rateLimiter, styled, func() int { return port })
}

func sendRawRequest(t *testing.T, port int, raw string) string {
	t.Helper()
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	return statusLine
}

func TestAcceptor_StartStop_Idempotent(t *testing.T) {
	a := newTestAcceptor(t, freePort(t), nil)

	require.NoError(t, a.Start())
	assert.Error(t, a.Start())
	assert.NoError(t, a.Stop())
	assert.NoError(t, a.Stop())
}

func TestAcceptor_DispatchesToUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	up, ok := domain.NewUpstream(uuid.New(), domain.UpstreamConfig{
		Name: "primary", BaseURL: upstream.URL, Credential: "sk-test",
	})
	require.True(t, ok)

	port := freePort(t)
	a := newTestAcceptor(t, port, []*domain.Upstream{up})
	require.NoError(t, a.Start())
	defer a.Stop()

	time.Sleep(20 * time.Millisecond)
	statusLine := sendRawRequest(t, port, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")

	assert.Contains(t, statusLine, "200")
}

func TestAcceptor_DebugHealthEndpoint(t *testing.T) {
	port := freePort(t)
	a := newTestAcceptor(t, port, nil)
	require.NoError(t, a.Start())
	defer a.Stop()

	time.Sleep(20 * time.Millisecond)
	statusLine := sendRawRequest(t, port, "GET /internal/health HTTP/1.1\r\nHost: localhost\r\n\r\n")

	assert.Contains(t, statusLine, "200")
}

func TestAcceptor_MalformedRequest_Returns400(t *testing.T) {
	port := freePort(t)
	a := newTestAcceptor(t, port, nil)
	require.NoError(t, a.Start())
	defer a.Stop()

	time.Sleep(20 * time.Millisecond)
	statusLine := sendRawRequest(t, port, "NOTVALIDREQUESTLINE\r\n\r\n")

	assert.Contains(t, statusLine, "400")
}
