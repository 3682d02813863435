package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dailydo/backend/api/transport"
	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/pkg/httpcontext"
	"github.com/dailydo/backend/repository"
	"github.com/dailydo/backend/usecase/reconcile"
)

type TaskHandler struct {
	baseHandler
	registry *reconcile.Registry
}

func NewTaskHandler(registry *reconcile.Registry, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		registry:    registry,
	}
}

// @Summary Current task snapshot
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	engine := h.registry.Engine(userID)
	snap := engine.Snapshot()

	if snap.Version == 0 {
		// First touch for this user: populate before answering.
		stdCtx, cancel := h.requestContext(ctx)
		defer cancel()

		refreshed, err := engine.Refresh(stdCtx)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		snap = refreshed
	}

	h.respondSuccess(ctx, http.StatusOK, snap)
}

// @Summary Force a reconciliation pass
// @Tags tasks
// @Router /api/v1/tasks/refresh [post]
func (h *TaskHandler) Refresh(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snap, err := h.registry.Engine(userID).Refresh(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snap)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload.Wrap(err))
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task := req.ToTask()
	if err := h.registry.Engine(userID).AddTask(stdCtx, task); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, task)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondError(ctx, domain.ErrInvalidPayload.WithMessage("missing task id"))
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload.Wrap(err))
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	patch := toPatch(&req)
	if err := h.registry.Engine(userID).UpdateTask(stdCtx, id, patch); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"id": id})
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondError(ctx, domain.ErrInvalidPayload.WithMessage("missing task id"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.registry.Engine(userID).DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Toggle today's completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleCompletion(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondError(ctx, domain.ErrInvalidPayload.WithMessage("missing task id"))
		return
	}

	var req transport.ToggleRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload.Wrap(err))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	engine := h.registry.Engine(userID)
	if err := engine.ToggleCompletion(stdCtx, id, req.Completed); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, engine.Snapshot())
}

// @Summary Today's task stats
// @Tags stats
// @Router /api/v1/stats [get]
func (h *TaskHandler) GetStats(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	engine := h.registry.Engine(userID)
	if engine.Snapshot().Version == 0 {
		stdCtx, cancel := h.requestContext(ctx)
		defer cancel()
		if _, err := engine.Refresh(stdCtx); err != nil {
			h.respondError(ctx, err)
			return
		}
	}
	h.respondSuccess(ctx, http.StatusOK, engine.Stats())
}

func toPatch(req *transport.TaskUpdateRequest) repository.TaskPatch {
	patch := repository.TaskPatch{
		Title:          req.Title,
		ScheduledTime:  req.ScheduledTime,
		RepeatDays:     req.RepeatDays,
		Category:       req.Category,
		ReminderOffset: req.ReminderOffset,
		IsActive:       req.IsActive,
	}
	if req.RepeatType != nil {
		repeat := domain.RepeatType(*req.RepeatType)
		patch.RepeatType = &repeat
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		patch.Priority = &priority
	}
	return patch
}

func (h *TaskHandler) userID(ctx *fasthttp.RequestCtx) string {
	userID := string(ctx.Request.Header.Peek("X-User-ID"))
	if userID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
	}
	return userID
}
