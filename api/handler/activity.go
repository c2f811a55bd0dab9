package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/api/transport"
	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/pkg/httpcontext"
	"github.com/sitepulse/backend/repository"
	"github.com/sitepulse/backend/usecase/scoring"
)

type ActivityHandler struct {
	baseHandler
	activities repository.ActivityRepository
	calc       *scoring.Calculator
}

func NewActivityHandler(activities repository.ActivityRepository, calc *scoring.Calculator, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		activities:  activities,
		calc:        calc,
	}
}

// @Summary Report a site activity
// @Tags activities
// @Router /api/v1/activities [post]
func (h *ActivityHandler) Report(ctx *fasthttp.RequestCtx) {
	var req transport.ActivityReportRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	activity, err := parseActivity(req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.activities.Append(stdCtx, activity); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, activity)
}

// @Summary List activities
// @Tags activities
// @Router /api/v1/activities [get]
func (h *ActivityHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.ActivityFilter{
		Category: domain.ActivityCategory(ctx.QueryArgs().Peek("category")),
		Type:     string(ctx.QueryArgs().Peek("type")),
		TargetID: string(ctx.QueryArgs().Peek("target_id")),
		Limit:    parseInt(string(ctx.QueryArgs().Peek("limit")), 100),
	}
	if from, err := time.Parse(time.RFC3339, string(ctx.QueryArgs().Peek("from"))); err == nil {
		filter.From = from
	}
	if to, err := time.Parse(time.RFC3339, string(ctx.QueryArgs().Peek("to"))); err == nil {
		filter.To = to
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	activities, err := h.activities.Query(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, activities)
}

// @Summary Delete activities
// @Tags activities
// @Router /api/v1/activities [delete]
func (h *ActivityHandler) Delete(ctx *fasthttp.RequestCtx) {
	var req transport.ActivityDeleteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.IDs) == 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing activity ids", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.activities.Delete(stdCtx, req.IDs); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Current point value of an activity
// @Tags activities
// @Router /api/v1/activities/{id}/score [get]
func (h *ActivityHandler) Score(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing activity id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	activity, err := h.activities.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	points, err := h.calc.Points(stdCtx, *activity, time.Now().UTC())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"activity_id": activity.ID,
		"points":      points,
	})
}

func parseActivity(req transport.ActivityReportRequest) (*domain.Activity, error) {
	category := domain.ActivityCategory(req.Category)
	switch category {
	case domain.CategoryContent, domain.CategoryMaintenance, domain.CategorySuggestedTask:
	default:
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown activity category")
	}
	if req.Type == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "missing activity type")
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return nil, domain.NewError(domain.ErrCodeInvalid, "occurred_at must be RFC3339")
		}
		occurredAt = parsed.UTC()
	}

	return &domain.Activity{
		Category:   category,
		Type:       req.Type,
		OccurredAt: occurredAt,
		TargetID:   req.TargetID,
		ActorID:    req.ActorID,
	}, nil
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
