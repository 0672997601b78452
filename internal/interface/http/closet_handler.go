package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuefen/wearwise/internal/domain/catalog"
	"github.com/yuefen/wearwise/internal/domain/closet"
)

type itemView struct {
	catalog.Item
	ImageURL string `json:"imageUrl,omitempty"`
}

func (h *Handler) itemView(c *gin.Context, item catalog.Item) itemView {
	view := itemView{Item: item}
	if item.ImageKey == "" || h.images == nil {
		return view
	}
	url, err := h.images.URL(c.Request.Context(), item.ImageKey)
	if err != nil {
		h.logger.Warn("failed to resolve image url", "item", item.ID, "error", err)
		return view
	}
	view.ImageURL = url
	return view
}

// CreateItem adds a wardrobe item.
func (h *Handler) CreateItem(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var in closet.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	item, err := h.closetSvc.Create(c.Request.Context(), claims.UserID, in)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "closet_error"))
		return
	}
	c.JSON(http.StatusCreated, h.itemView(c, item))
}

// UpdateItem replaces an item's attributes.
func (h *Handler) UpdateItem(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var in closet.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	item, err := h.closetSvc.Update(c.Request.Context(), claims.UserID, c.Param("id"), in)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "closet_error"))
		return
	}
	c.JSON(http.StatusOK, h.itemView(c, item))
}

// DeleteItem removes an item from the wardrobe.
func (h *Handler) DeleteItem(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	if err := h.closetSvc.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		abortWithError(c, domainHTTPError(err, "closet_error"))
		return
	}
	c.Status(http.StatusNoContent)
}

// GetItem returns a single wardrobe item.
func (h *Handler) GetItem(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	item, err := h.closetSvc.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		abortWithError(c, domainHTTPError(err, "closet_error"))
		return
	}
	c.JSON(http.StatusOK, h.itemView(c, item))
}

// ListItems returns the user's entire wardrobe.
func (h *Handler) ListItems(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	items, err := h.closetSvc.List(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "closet_error"))
		return
	}
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, h.itemView(c, item))
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

const maxImageBytes = 8 << 20

// UploadItemImage accepts a multipart photo upload and links it to the item.
func (h *Handler) UploadItemImage(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err))
		return
	}
	if fileHeader.Size > maxImageBytes {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "invalid_request", "image exceeds size limit", nil))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", "failed to read file", err))
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	item, err := h.closetSvc.AttachImage(c.Request.Context(), claims.UserID, c.Param("id"), data, mimeType)
	if err != nil {
		abortWithError(c, domainHTTPError(err, "storage_error"))
		return
	}
	c.JSON(http.StatusOK, h.itemView(c, item))
}
