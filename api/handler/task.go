package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/api/transport"
	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/pkg/httpcontext"
	"github.com/sitepulse/backend/usecase/lifecycle"
)

type TaskHandler struct {
	baseHandler
	manager *lifecycle.Manager
}

func NewTaskHandler(manager *lifecycle.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary List suggested tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.manager.PendingTasks(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Run an injection and evaluation sweep now
// @Tags tasks
// @Router /api/v1/tasks/sweep [post]
func (h *TaskHandler) Sweep(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.manager.InjectTasks(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	completed, err := h.manager.EvaluateTasks(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"completed_task_ids": completed,
	})
}

// @Summary Mark a task completed by the user
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(ctx *fasthttp.RequestCtx) {
	h.withTaskID(ctx, h.manager.CompleteTask)
}

// @Summary Acknowledge a celebration
// @Tags tasks
// @Router /api/v1/tasks/{id}/celebrate [post]
func (h *TaskHandler) Celebrate(ctx *fasthttp.RequestCtx) {
	h.withTaskID(ctx, h.manager.Celebrate)
}

// @Summary Dismiss a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/dismiss [post]
func (h *TaskHandler) Dismiss(ctx *fasthttp.RequestCtx) {
	h.withTaskID(ctx, h.manager.DismissTask)
}

// @Summary Snooze a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/snooze [post]
func (h *TaskHandler) Snooze(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	var req transport.SnoozeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.manager.SnoozeTask(stdCtx, id, domain.SnoozeDuration(req.Duration)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

func (h *TaskHandler) withTaskID(ctx *fasthttp.RequestCtx, op func(stdCtx context.Context, taskID string) error) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := op(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
