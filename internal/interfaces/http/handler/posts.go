package handler

import (
	"context"

	appintegration "github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/application/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PostEditor reads and edits per-post metadata
type PostEditor interface {
	Posts(ctx context.Context, tenantKey string) ([]integration.MergedFeedItem, error)
	Get(ctx context.Context, tenantKey, mediaID string) (*integration.PostMeta, error)
	Update(ctx context.Context, tenantKey, mediaID string, req appintegration.UpdatePostMetaRequest) (*integration.PostMeta, error)
}

var _ PostEditor = (*appintegration.PostMetaService)(nil)

// PostsHandler serves the post curation screen
type PostsHandler struct {
	BaseHandler
	posts PostEditor
}

// NewPostsHandler creates a new PostsHandler
func NewPostsHandler(posts PostEditor) *PostsHandler {
	return &PostsHandler{posts: posts}
}

// List returns the shop's remote media with pin, hide and product metadata, hidden items included.
// GET /api/v1/posts
func (h *PostsHandler) List(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	items, err := h.posts.Posts(c.Request.Context(), shop)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if items == nil {
		items = []integration.MergedFeedItem{}
	}
	h.Success(c, items)
}

// Get returns the metadata of one media item.
// GET /api/v1/posts/:mediaId
func (h *PostsHandler) Get(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	meta, err := h.posts.Get(c.Request.Context(), shop, c.Param("mediaId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToPostMetaResponse(meta))
}

// Update applies a partial metadata change and queues a sync.
// PUT /api/v1/posts/:mediaId
func (h *PostsHandler) Update(c *gin.Context) {
	shop, ok := h.requireShop(c)
	if !ok {
		return
	}

	var req appintegration.UpdatePostMetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	meta, err := h.posts.Update(c.Request.Context(), shop, c.Param("mediaId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appintegration.ToPostMetaResponse(meta))
}
