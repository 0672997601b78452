package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuefen/wearwise/internal/domain/auth"
	"github.com/yuefen/wearwise/internal/domain/closet"
	"github.com/yuefen/wearwise/internal/domain/packing"
	"github.com/yuefen/wearwise/internal/domain/rotation"
	"github.com/yuefen/wearwise/internal/domain/search"
	"github.com/yuefen/wearwise/internal/domain/stylist"
	apperrors "github.com/yuefen/wearwise/pkg/errors"
	"github.com/yuefen/wearwise/pkg/util"
)

// ImageResolver turns a stored image key into a fetchable URL. The object
// storage adapter implements it; nil when storage is disabled.
type ImageResolver interface {
	URL(ctx context.Context, key string) (string, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	closetSvc  closet.Service
	stylistSvc stylist.Service
	rotation   rotation.Tracker
	planner    packing.Planner
	searchSvc  search.Service
	authSvc    auth.Service
	images     ImageResolver
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler. The image resolver may be nil
// when object storage is disabled.
func NewHandler(
	closetSvc closet.Service,
	stylistSvc stylist.Service,
	tracker rotation.Tracker,
	planner packing.Planner,
	searchSvc search.Service,
	authSvc auth.Service,
	images ImageResolver,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		closetSvc:  closetSvc,
		stylistSvc: stylistSvc,
		rotation:   tracker,
		planner:    planner,
		searchSvc:  searchSvc,
		authSvc:    authSvc,
		images:     images,
		logger:     logger.With("component", "http.handler"),
	}
}

type suggestRequest struct {
	Context stylist.RawContext `json:"context"`
	TopN    *int               `json:"topN,omitempty"`
}

const defaultTopN = 3

// SuggestOutfits ranks outfit candidates for one wearing occasion.
func (h *Handler) SuggestOutfits(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	topN := defaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}

	reqCtx, err := stylist.Normalize(req.Context, util.NowUTC())
	if err != nil {
		abortWithError(c, domainHTTPError(err, "suggest_failed"))
		return
	}
	snap, err := h.closetSvc.Snapshot(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "suggest_failed"))
		return
	}
	outfits, err := h.stylistSvc.Suggest(c.Request.Context(), claims.UserID, snap, reqCtx, topN)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "suggest_failed"))
		return
	}
	resp := gin.H{"outfits": outfits}
	if len(reqCtx.Caveats) > 0 {
		resp["caveats"] = reqCtx.Caveats
	}
	c.JSON(http.StatusOK, resp)
}

type packRequest struct {
	TripDays int                  `json:"tripDays"`
	Context  *stylist.RawContext  `json:"context,omitempty"`
	Contexts []stylist.RawContext `json:"contexts,omitempty"`
}

// PackTrip builds a minimal capsule covering every day of a trip.
func (h *Handler) PackTrip(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req packRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	raws := req.Contexts
	if len(raws) == 0 && req.Context != nil {
		raws = []stylist.RawContext{*req.Context}
	}

	now := util.NowUTC()
	contexts := make([]stylist.Context, 0, len(raws))
	for _, raw := range raws {
		reqCtx, err := stylist.Normalize(raw, now)
		if err != nil {
			abortWithError(c, domainHTTPError(err, "pack_failed"))
			return
		}
		contexts = append(contexts, reqCtx)
	}

	snap, err := h.closetSvc.Snapshot(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "pack_failed"))
		return
	}
	plan, err := h.planner.Pack(c.Request.Context(), claims.UserID, snap, contexts, req.TripDays)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "pack_failed"))
		return
	}
	c.JSON(http.StatusOK, plan)
}

type wearRequest struct {
	ItemIDs []string `json:"itemIds"`
	At      string   `json:"at,omitempty"`
}

// RecordWear marks items as worn at a given time, defaulting to now.
func (h *Handler) RecordWear(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req wearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	at := util.NowUTC()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "at must be RFC 3339", err))
			return
		}
		at = parsed.UTC()
	}
	if err := h.rotation.RecordWorn(c.Request.Context(), claims.UserID, req.ItemIDs, at); err != nil {
		abortWithError(c, domainHTTPError(err, "wear_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": len(req.ItemIDs), "at": at.Format(time.RFC3339)})
}

// WornToday lists the item ids recorded as worn during the current UTC day.
func (h *Handler) WornToday(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	ids, err := h.rotation.WornToday(c.Request.Context(), claims.UserID, util.NowUTC())
	if err != nil {
		abortWithError(c, domainHTTPError(err, "wear_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"itemIds": ids})
}

// SearchItems returns wardrobe items similar to an anchor item or free-text query.
func (h *Handler) SearchItems(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req search.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	matches, err := h.searchSvc.Similar(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "search_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// domainHTTPError maps domain error codes onto HTTP statuses, falling back to
// a 500 with the supplied code.
func domainHTTPError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, "invalid_request"), apperrors.IsCode(err, "invalid_context"), apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "not_found"):
		status = http.StatusNotFound
		code = "not_found"
	case apperrors.IsCode(err, "stale_wear_record"):
		status = http.StatusConflict
		code = "stale_wear_record"
	case apperrors.IsCode(err, "insufficient_wardrobe"):
		status = http.StatusUnprocessableEntity
		code = "insufficient_wardrobe"
	case apperrors.IsCode(err, "storage_disabled"):
		status = http.StatusServiceUnavailable
		code = "storage_disabled"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
