package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"taskhub/configs"
	v1 "taskhub/internal/api/v1"
	"taskhub/internal/api/v1/handlers"
	"taskhub/internal/config"
	"taskhub/internal/middleware"
	"taskhub/internal/repository"
	myws "taskhub/internal/websocket"
	"taskhub/pkg/database"
	"taskhub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testEnv is one app over a private in-memory database.
type testEnv struct {
	app    *fiber.App
	deps   *config.Dependencies
	cache  *recordingCache
	events *eventConn
}

// recordingCache never hits; it remembers what handlers stored and evicted.
type recordingCache struct {
	mu      sync.Mutex
	stored  []string
	evicted []string
}

func (c *recordingCache) Get(context.Context, string, any) bool { return false }

func (c *recordingCache) Set(_ context.Context, key string, _ any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = append(c.stored, key)
}

func (c *recordingCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, keys...)
}

func (c *recordingCache) wasStored(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.stored, key)
}

func (c *recordingCache) wasEvicted(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.evicted, key)
}

func (c *recordingCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored, c.evicted = nil, nil
}

// eventConn is a hub client that queues every broadcast event.
type eventConn struct {
	ch chan myws.Event
}

func (e *eventConn) WriteMessage(_ int, data []byte) error {
	var ev myws.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	select {
	case e.ch <- ev:
	default:
	}
	return nil
}

func (e *eventConn) Close() error { return nil }

// nextEvent waits for the next broadcast event.
func (e *testEnv) nextEvent(t *testing.T) myws.Event {
	t.Helper()
	select {
	case ev := <-e.events.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no hub event received")
		return myws.Event{}
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.InitNopLoggers()

	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.CreateTableIfNotExists(db, database.DriverSQLite))

	cfg := configs.Config{
		AppEnv:        "test",
		DBDriver:      database.DriverSQLite,
		JWTSecret:     "test-secret",
		EncryptionKey: "test-encryption-key",
		BcryptCost:    bcrypt.MinCost,
		ClientURL:     "http://client.test",
		ServerURL:     "http://server.test",
		UploadDir:     t.TempDir(),
	}

	hub := myws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)

	events := &eventConn{ch: make(chan myws.Event, 256)}
	hub.Register(&myws.Client{Conn: events})

	rc := &recordingCache{}
	deps := config.NewDependencies(cfg, db, rc, hub)
	require.NoError(t, repository.SeedDefaultCategories(context.Background(), deps.Categories))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.JSONErrorHandler})
	app.Use(middleware.ErrorHandler())
	v1.RegisterRoutes(app, handlers.New(deps))

	return &testEnv{app: app, deps: deps, cache: rc, events: events}
}

// result is a decoded response envelope.
type result struct {
	Status int
	Body   map[string]any
	Resp   *http.Response
}

func (r result) data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

func (r result) list() []any {
	l, _ := r.Body["data"].([]any)
	return l
}

// do sends body as JSON; session is the raw token cookie, or "".
func (e *testEnv) do(t *testing.T, method, path string, body any, session string) result {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("Cookie", middleware.SessionCookie+"="+session)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) result {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := result{Status: resp.StatusCode, Resp: resp}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

func sessionFrom(t *testing.T, r result) string {
	t.Helper()
	for _, c := range r.Resp.Cookies() {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			return c.Value
		}
	}
	t.Fatalf("expected %s cookie in response", middleware.SessionCookie)
	return ""
}

// register creates an account and returns its session token and id.
func (e *testEnv) register(t *testing.T, username string) (string, string) {
	t.Helper()
	r := e.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"firstName": "Test",
		"lastName":  "User",
		"username":  username,
		"email":     username + "@example.com",
		"password":  "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	return sessionFrom(t, r), r.data()["id"].(string)
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
