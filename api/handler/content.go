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
)

type ContentHandler struct {
	baseHandler
	contents   repository.ContentRepository
	activities repository.ActivityRepository
}

func NewContentHandler(contents repository.ContentRepository, activities repository.ActivityRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		contents:    contents,
		activities:  activities,
	}
}

// @Summary Index a content item
// @Tags contents
// @Router /api/v1/contents [put]
func (h *ContentHandler) Upsert(ctx *fasthttp.RequestCtx) {
	var req transport.ContentUpsertRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}
	if !validKind(req.Kind) || req.ID <= 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "kind must be post or term and id positive", nil))
		return
	}

	createdAt := time.Now().UTC()
	if req.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, req.CreatedAt); err == nil {
			createdAt = parsed.UTC()
		}
	}

	item := &repository.ContentItem{
		Kind:      req.Kind,
		ID:        req.ID,
		Title:     req.Title,
		CreatedAt: createdAt,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.contents.Save(stdCtx, item); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, item)
}

// @Summary List indexed content
// @Tags contents
// @Router /api/v1/contents [get]
func (h *ContentHandler) List(ctx *fasthttp.RequestCtx) {
	kind := string(ctx.QueryArgs().Peek("kind"))
	if kind == "" {
		kind = domain.TargetPost
	}
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 100)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.contents.List(stdCtx, kind, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// @Summary Remove a content item from the index
// @Tags contents
// @Router /api/v1/contents/{kind}/{id} [delete]
func (h *ContentHandler) Delete(ctx *fasthttp.RequestCtx) {
	kind, _ := ctx.UserValue("kind").(string)
	rawID, _ := ctx.UserValue("id").(string)
	id := int64(parseInt(rawID, 0))
	if !validKind(kind) || id <= 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid content reference", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.contents.Delete(stdCtx, domain.TargetRef{Kind: kind, ID: id}); err != nil {
		h.respondError(ctx, err)
		return
	}

	// The content's own activities go with it; its scores collapse to zero.
	recorded, err := h.activities.Query(stdCtx, repository.ActivityFilter{
		Category: domain.CategoryContent,
		TargetID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if len(recorded) > 0 {
		ids := make([]string, 0, len(recorded))
		for _, a := range recorded {
			ids = append(ids, a.ID)
		}
		if err := h.activities.Delete(stdCtx, ids); err != nil {
			h.respondError(ctx, err)
			return
		}
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func validKind(kind string) bool {
	return kind == domain.TargetPost || kind == domain.TargetTerm
}
