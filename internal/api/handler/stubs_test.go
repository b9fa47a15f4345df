package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tasklane/task-api/internal/api/middleware"
	"github.com/tasklane/task-api/internal/core/domain"
	"github.com/tasklane/task-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

// stubTaskService fails loudly when a test reaches a method it did not set.
type stubTaskService struct {
	createFn  func(ctx context.Context, input ports.CreateTaskInput) (*ports.CreateTaskResult, error)
	listFn    func(ctx context.Context, actor int64, filter domain.TaskFilter) ([]*domain.Task, error)
	getFn     func(ctx context.Context, id, actor int64) (*domain.Task, error)
	fullFn    func(ctx context.Context, id, actor int64, u ports.TaskUpdate) (*domain.Task, error)
	partialFn func(ctx context.Context, id, actor int64, u ports.TaskUpdate) (*domain.Task, error)
	deleteFn  func(ctx context.Context, id, actor int64) error
	restoreFn func(ctx context.Context, id, actor int64) error
}

var errUnexpectedCall = errors.New("unexpected call")

func (s *stubTaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*ports.CreateTaskResult, error) {
	if s.createFn == nil {
		return nil, errUnexpectedCall
	}
	return s.createFn(ctx, input)
}

func (s *stubTaskService) ListTasks(ctx context.Context, actor int64, filter domain.TaskFilter) ([]*domain.Task, error) {
	if s.listFn == nil {
		return nil, errUnexpectedCall
	}
	return s.listFn(ctx, actor, filter)
}

func (s *stubTaskService) GetTask(ctx context.Context, id, actor int64) (*domain.Task, error) {
	if s.getFn == nil {
		return nil, errUnexpectedCall
	}
	return s.getFn(ctx, id, actor)
}

func (s *stubTaskService) FullUpdateTask(ctx context.Context, id, actor int64, u ports.TaskUpdate) (*domain.Task, error) {
	if s.fullFn == nil {
		return nil, errUnexpectedCall
	}
	return s.fullFn(ctx, id, actor, u)
}

func (s *stubTaskService) PartialUpdateTask(ctx context.Context, id, actor int64, u ports.TaskUpdate) (*domain.Task, error) {
	if s.partialFn == nil {
		return nil, errUnexpectedCall
	}
	return s.partialFn(ctx, id, actor, u)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, id, actor int64) error {
	if s.deleteFn == nil {
		return errUnexpectedCall
	}
	return s.deleteFn(ctx, id, actor)
}

func (s *stubTaskService) RestoreTask(ctx context.Context, id, actor int64) error {
	if s.restoreFn == nil {
		return errUnexpectedCall
	}
	return s.restoreFn(ctx, id, actor)
}

// newContext builds an echo context for a JSON request. A positive actor is
// stored the way the Auth middleware does.
func newContext(method, target string, body io.Reader, actor int64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor > 0 {
		c.Set(middleware.ContextUserID, actor)
	}
	return c, rec
}

// withID sets the :id path parameter.
func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

// assertHTTPError fails unless err is an *echo.HTTPError with the given code.
func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
}
