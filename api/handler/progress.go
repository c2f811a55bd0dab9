package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/api/transport"
	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/pkg/httpcontext"
	"github.com/sitepulse/backend/usecase/badges"
	"github.com/sitepulse/backend/usecase/goals"
)

type ProgressHandler struct {
	baseHandler
	badges  *badges.Engine
	streaks *goals.Evaluator
}

func NewProgressHandler(badgeEngine *badges.Engine, streaks *goals.Evaluator, adapter *httpcontext.Adapter, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		baseHandler: newBaseHandler(adapter, logger),
		badges:      badgeEngine,
		streaks:     streaks,
	}
}

// @Summary List badges with progress
// @Tags progress
// @Router /api/v1/badges [get]
func (h *ProgressHandler) ListBadges(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	list, err := h.badges.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, list)
}

// @Summary Badge progress
// @Tags progress
// @Router /api/v1/badges/{id} [get]
func (h *ProgressHandler) BadgeProgress(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing badge id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	progress, err := h.badges.Progress(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, progress)
}

// @Summary Activity streak for a goal
// @Tags progress
// @Router /api/v1/streaks [get]
func (h *ProgressHandler) Streak(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()

	spec := goals.GoalSpec{
		Category:     domain.ActivityCategory(args.Peek("category")),
		Type:         string(args.Peek("type")),
		Interval:     goals.Interval(args.Peek("interval")),
		AllowedBreak: parseInt(string(args.Peek("allowed_break")), 0),
	}
	if spec.Category == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing category", nil))
		return
	}

	from, err := time.Parse(time.RFC3339, string(args.Peek("from")))
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "from must be RFC3339", nil))
		return
	}
	spec.From = from
	if to, err := time.Parse(time.RFC3339, string(args.Peek("to"))); err == nil {
		spec.To = to
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.streaks.For(stdCtx, spec)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}
