package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dailydo/backend/api/transport"
	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/pkg/httpcontext"
	"github.com/dailydo/backend/usecase/history"
)

type HistoryHandler struct {
	baseHandler
	uc *history.UseCase
}

func NewHistoryHandler(uc *history.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Completion history
// @Tags history
// @Router /api/v1/history [get]
func (h *HistoryHandler) GetHistory(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}

	window := history.Window(ctx.QueryArgs().Peek("window"))
	switch window {
	case "", history.WindowAll:
		window = history.WindowAll
	case history.WindowWeek, history.WindowMonth:
	default:
		h.respondError(ctx, domain.ErrInvalidPayload.WithMessage("window must be all, week or month"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	records, err := h.uc.ListCompletions(stdCtx, userID, window)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, records)
}

// @Summary Trailing-week completion rollup
// @Tags stats
// @Router /api/v1/stats/weekly [get]
func (h *HistoryHandler) GetWeeklyStats(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Weekly(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

func (h *HistoryHandler) requireUser(ctx *fasthttp.RequestCtx) string {
	userID := string(ctx.Request.Header.Peek("X-User-ID"))
	if userID == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
	}
	return userID
}
