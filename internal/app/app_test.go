package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/luisbfsousa/mect-sub001/internal/config"
	testhelpers "github.com/luisbfsousa/mect-sub001/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPServerInstrumentsRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	server := newHTTPServer(serverParams{Config: &config.Config{RunAddress: ":9999"}, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.ReadHeaderTimeout != readHeaderTimeout {
		t.Fatalf("expected read header timeout %v, got %v", readHeaderTimeout, server.ReadHeaderTimeout)
	}

	resp := httptest.NewRecorder()
	server.Handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if resp.Code != http.StatusOK || resp.Body.String() != "pong" {
		t.Fatalf("expected wrapped router to answer, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestRegisterLifecycleServesUntilStopped(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	// Reserve a free port, then hand it to the server.
	reserved, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := reserved.Addr().String()
	_ = reserved.Close()

	server := &http.Server{Addr: addr, Handler: mux}
	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     server,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})
	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if _, err := http.Get("http://" + addr + "/"); err == nil {
		t.Fatal("expected server to be closed after stop")
	}
}

func TestRegisterLifecycleRejectsBadAddress(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     discardLogger(),
		Server:     &http.Server{Addr: "bad addr"},
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail for an unusable address")
	}
}

func TestServeRequestsShutdownOnFailure(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	// A closed listener makes Serve fail with something other than ErrServerClosed.
	_ = ln.Close()

	serve(lifecycleParams{
		Shutdowner: shutdowner,
		Logger:     discardLogger(),
		Server:     &http.Server{},
	}, ln)

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}
}

func TestLifecycleRecorderStopsInReverse(t *testing.T) {
	var order []string
	recorder := &testhelpers.LifecycleRecorder{}
	for _, name := range []string{"first", "second"} {
		recorder.Hooks = append(recorder.Hooks, fxHook(name, &order))
	}
	if err := recorder.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("expected reverse stop order, got %v", order)
	}
}

func fxHook(name string, order *[]string) fx.Hook {
	return fx.Hook{OnStop: func(context.Context) error {
		*order = append(*order, name)
		return nil
	}}
}
