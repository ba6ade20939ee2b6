package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"isuumo/internal/cache"
	"isuumo/internal/condition"
	"isuumo/internal/config"
	"isuumo/internal/http/handlers"
	applog "isuumo/internal/log"
	"isuumo/internal/repos"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	app   *fiber.App
	db    *sqlx.DB
	store *cache.Memory
	clock *testClock
}

func testConfig() config.Config {
	return config.Config{
		ListLimit:      20,
		NazotteLimit:   50,
		MaxPerPage:     100,
		CacheTTL:       60 * time.Second,
		MaxUploadBytes: 1 << 20,
	}
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	return newEnvWith(t, testConfig())
}

func newEnvWith(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:", 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	cat, err := condition.Load("")
	if err != nil {
		t.Fatal(err)
	}
	clk := &testClock{now: time.Date(2020, 9, 1, 10, 0, 0, 0, time.UTC)}
	store := cache.NewMemory(cache.WithClock(clk.Now))
	app := handlers.NewApp(handlers.NewDeps(db, cfg, cat, store), cfg)
	return &testEnv{app: app, db: db, store: store, clock: clk}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func (e *testEnv) get(t *testing.T, target string) (*http.Response, string) {
	t.Helper()
	return e.do(t, httptest.NewRequest("GET", target, nil))
}

func (e *testEnv) postJSON(t *testing.T, target, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return v
}

// observeLogs swaps the process logger for an in-memory one until the test ends.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := applog.L()
	applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(prev) })
	return logs
}
