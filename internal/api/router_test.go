package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tasklane/task-api/internal/api/handler"
	"github.com/tasklane/task-api/internal/core/service"
	"github.com/tasklane/task-api/internal/infrastructure/db/postgres"
	"github.com/tasklane/task-api/internal/infrastructure/queue"
)

type testServer struct {
	e          *echo.Echo
	db         *gorm.DB
	dispatcher *queue.Dispatcher
}

// newTestServer wires the real services over gorm repositories backed by an
// in-memory sqlite database.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	users := postgres.NewUserRepository(db)
	tasks := postgres.NewTaskRepository(db)

	dispatcher := queue.NewDispatcher(2, postgres.NewActivityRepository(db), zerolog.Nop())
	dispatcher.Start(context.Background())
	t.Cleanup(func() { _ = dispatcher.Stop(context.Background()) })

	credentials := service.NewCredentialService("test-secret", bcrypt.MinCost)

	e := NewRouter(Dependencies{
		Log:      zerolog.Nop(),
		Auth:     service.NewAuthService(users, credentials, zerolog.Nop()),
		Tasks:    service.NewTaskService(tasks, users, dispatcher, nil, zerolog.Nop()),
		Verifier: credentials,
		Checks: map[string]handler.Checker{
			"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		},
		Registry: prometheus.NewRegistry(),
	})

	return &testServer{e: e, db: db, dispatcher: dispatcher}
}

// do sends a request and returns the status code and decoded JSON body.
func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid json from %s %s: %v", method, path, err)
		}
	}
	return rec.Code, out
}

func (s *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/register", "",
		`{"name":"`+name+`","email":"`+email+`","password":"secret1"}`)
	if code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d %v", email, code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in %v", email, body)
	}
	return token
}

func expect(t *testing.T, step string, code, want int, body map[string]any) {
	t.Helper()
	if code != want {
		t.Fatalf("%s: expected %d, got %d %v", step, want, code, body)
	}
}

func TestRouter_TaskLifecycle(t *testing.T) {
	s := newTestServer(t)

	ana := s.register(t, "Ana", "ana@example.com")
	luis := s.register(t, "Luis", "luis@example.com")

	code, body := s.do(t, http.MethodPost, "/api/register", "",
		`{"name":"Ana","email":"ana@example.com","password":"secret1"}`)
	expect(t, "duplicate register", code, http.StatusConflict, body)
	if body["error"] != "email already in use" {
		t.Fatalf("unexpected error body: %v", body)
	}

	code, body = s.do(t, http.MethodPost, "/api/login", "", `{"email":"ana@example.com","password":"secret1"}`)
	expect(t, "login", code, http.StatusOK, body)
	code, body = s.do(t, http.MethodPost, "/api/login", "", `{"email":"ana@example.com","password":"nope!!"}`)
	expect(t, "bad login", code, http.StatusUnauthorized, body)

	code, body = s.do(t, http.MethodGet, "/api/tasks", "", "")
	expect(t, "no token", code, http.StatusUnauthorized, body)

	code, body = s.do(t, http.MethodPost, "/api/tasks", ana, `{"title":"Buy milk","completed":true}`)
	expect(t, "create", code, http.StatusCreated, body)
	if body["completed"] != false || body["deleted"] != false {
		t.Fatalf("new task must be active and incomplete: %v", body)
	}
	id := int64(body["id"].(float64))
	path := "/api/tasks/" + strconv.FormatInt(id, 10)

	code, body = s.do(t, http.MethodGet, path, luis, "")
	expect(t, "foreign get", code, http.StatusForbidden, body)

	code, body = s.do(t, http.MethodPatch, path, ana, `{"completed":true}`)
	expect(t, "patch", code, http.StatusOK, body)
	if body["completed"] != true || body["title"] != "Buy milk" {
		t.Fatalf("unexpected patched task: %v", body)
	}

	code, body = s.do(t, http.MethodPut, path, ana, `{"title":"Buy oat milk"}`)
	expect(t, "incomplete put", code, http.StatusBadRequest, body)

	code, body = s.do(t, http.MethodPatch, path, ana, `{"owner_id":2}`)
	expect(t, "owner change", code, http.StatusForbidden, body)

	code, body = s.do(t, http.MethodDelete, path, ana, "")
	expect(t, "delete", code, http.StatusOK, body)

	code, body = s.do(t, http.MethodGet, "/api/tasks", ana, "")
	expect(t, "list after delete", code, http.StatusNotFound, body)

	code, body = s.do(t, http.MethodGet, path, ana, "")
	expect(t, "get deleted", code, http.StatusNotFound, body)

	code, body = s.do(t, http.MethodPatch, path+"/restore", luis, "")
	expect(t, "foreign restore", code, http.StatusForbidden, body)

	code, body = s.do(t, http.MethodPatch, path+"/restore", ana, "")
	expect(t, "restore", code, http.StatusOK, body)

	code, body = s.do(t, http.MethodPatch, path+"/restore", ana, "")
	expect(t, "restore active", code, http.StatusBadRequest, body)

	code, body = s.do(t, http.MethodGet, "/api/tasks?completed=true", ana, "")
	expect(t, "list after restore", code, http.StatusOK, body)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.dispatcher.Stop(ctx); err != nil {
		t.Fatalf("dispatcher stop: %v", err)
	}
	var events int64
	if err := s.db.Table("task_events").Where("task_id = ?", id).Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	// created, updated, deleted, restored
	if events != 4 {
		t.Fatalf("expected 4 activity events, got %d", events)
	}
}

func TestRouter_Operations(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}
