package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasklane/task-api/internal/api/metrics"
	"github.com/tasklane/task-api/internal/core/ports"
)

// HeaderIdempotentReplayed is set on a create response that returned an
// existing task for a repeated Idempotency-Key.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

// TaskHandler handles HTTP requests for task operations. Every route is
// mounted behind the Auth middleware.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func observe(operation string, err error) {
	metrics.TaskOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createTaskRequest  true   "Task"
// @Success      201              {object}  taskResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) (err error) {
	defer func() { observe("create", err) }()

	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	result, err := h.service.CreateTask(c.Request().Context(), ports.CreateTaskInput{
		OwnerID:        actor,
		Title:          req.Title,
		Description:    req.Description,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	replayed := "false"
	if result.AlreadyExisted {
		replayed = "true"
		c.Response().Header().Set(HeaderIdempotentReplayed, "true")
	}
	metrics.TasksCreatedTotal.WithLabelValues(replayed).Inc()

	return c.JSON(http.StatusCreated, toTaskResponse(result.Task))
}

// List handles GET /api/tasks.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        title        query     string  false  "Exact title"
// @Param        description  query     string  false  "Exact description"
// @Param        completed    query     bool    false  "Completion flag"
// @Success      200          {array}   taskResponse
// @Failure      400          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) (err error) {
	defer func() { observe("list", err) }()

	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	filter, err := taskFilterQuery(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListTasks(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) (err error) {
	defer func() { observe("get", err) }()

	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	task, err := h.service.GetTask(c.Request().Context(), id, actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Replace handles PUT /api/tasks/:id.
//
// @Summary      Replace a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task id"
// @Param        body  body      updateTaskRequest  true  "title, description and completed are all required"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Replace(c echo.Context) (err error) {
	defer func() { observe("put", err) }()

	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	task, err := h.service.FullUpdateTask(c.Request().Context(), id, actor, toTaskUpdate(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Patch handles PATCH /api/tasks/:id.
//
// @Summary      Partially update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task id"
// @Param        body  body      updateTaskRequest  true  "At least one of title, description, completed"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tasks/{id} [patch]
func (h *TaskHandler) Patch(c echo.Context) (err error) {
	defer func() { observe("patch", err) }()

	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	task, err := h.service.PartialUpdateTask(c.Request().Context(), id, actor, toTaskUpdate(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id. The task is soft-deleted.
//
// @Summary      Soft-delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) (err error) {
	defer func() { observe("delete", err) }()

	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTask(c.Request().Context(), id, actor); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "task deleted"})
}

// Restore handles PATCH /api/tasks/:id/restore.
//
// @Summary      Restore a soft-deleted task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id}/restore [patch]
func (h *TaskHandler) Restore(c echo.Context) (err error) {
	defer func() { observe("restore", err) }()

	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	if err := h.service.RestoreTask(c.Request().Context(), id, actor); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "task restored"})
}

func actorAndID(c echo.Context) (int64, int64, error) {
	actor, err := ctxActor(c)
	if err != nil {
		return 0, 0, err
	}
	id, err := taskIDParam(c)
	if err != nil {
		return 0, 0, err
	}
	return actor, id, nil
}
