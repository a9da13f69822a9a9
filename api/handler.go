package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/extension"
	"github.com/kbukum/pipegen/server"
	"github.com/kbukum/pipegen/validation"
)

// Handler exposes the extension operations over HTTP.
type Handler struct {
	ext   *extension.Extension
	inbox *extension.Inbox
}

// NewHandler creates a Handler. inbox may be nil, in which case the
// notices endpoint always answers with an empty list.
func NewHandler(ext *extension.Extension, inbox *extension.Inbox) *Handler {
	return &Handler{ext: ext, inbox: inbox}
}

// Register mounts the API under /api/v1.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.POST("/catalog", h.LoadCatalog)
	v1.GET("/pipelines", h.Pipelines)
	v1.GET("/prefix", h.GetPrefix)
	v1.PUT("/prefix", h.SetPrefix)
	v1.POST("/microflows", h.CreateMicroflow)
	v1.GET("/microflows", h.ListMicroflows)
	v1.POST("/microflows/:id/open", h.OpenMicroflow)
	v1.GET("/modules", h.Modules)
	v1.GET("/notices", h.Notices)
}

// LoadCatalog handles POST /api/v1/catalog.
func (h *Handler) LoadCatalog(c *gin.Context) {
	var req LoadCatalogRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.ext.LoadCatalog(c.Request.Context(), req.URL)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, CatalogSummary{
		BaseURL:   cat.BaseURL,
		Pipelines: len(cat.Pipelines),
		FetchedAt: cat.FetchedAt.UTC().Format(time.RFC3339),
	})
}

// Pipelines handles GET /api/v1/pipelines.
func (h *Handler) Pipelines(c *gin.Context) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		server.RespondWithError(c, errors.InvalidInput("query", "page and per_page must be integers"))
		return
	}
	if err := validation.Validate(q); err != nil {
		server.RespondWithError(c, err)
		return
	}

	page, err := h.ext.Pipelines(c.Request.Context(), q.Page, q.PerPage)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, page.Pipelines, &server.Meta{
		Page:       page.Page.Number,
		PageSize:   page.Page.PerPage,
		Total:      page.Total,
		TotalPages: page.Page.TotalPages,
	})
}

// GetPrefix handles GET /api/v1/prefix.
func (h *Handler) GetPrefix(c *gin.Context) {
	server.RespondOK(c, PrefixRequest{Prefix: h.ext.Prefix()})
}

// SetPrefix handles PUT /api/v1/prefix.
func (h *Handler) SetPrefix(c *gin.Context) {
	var req PrefixRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.ext.SetPrefix(c.Request.Context(), req.Prefix); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, PrefixRequest{Prefix: h.ext.Prefix()})
}

// CreateMicroflow handles POST /api/v1/microflows.
func (h *Handler) CreateMicroflow(c *gin.Context) {
	var req CreateMicroflowRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	if req.DryRun {
		tmpl, err := h.ext.Preview(ctx, req.Pipeline)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, tmpl)
		return
	}

	res, err := h.ext.CreateMicroflow(ctx, req.Pipeline, req.Module)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, res)
}

// ListMicroflows handles GET /api/v1/microflows.
func (h *Handler) ListMicroflows(c *gin.Context) {
	existing, err := h.ext.DiscoverExisting(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, existing)
}

// OpenMicroflow handles POST /api/v1/microflows/:id/open.
func (h *Handler) OpenMicroflow(c *gin.Context) {
	doc, err := h.ext.OpenMicroflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, doc)
}

// Modules handles GET /api/v1/modules.
func (h *Handler) Modules(c *gin.Context) {
	modules, err := h.ext.Modules(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, modules)
}

// Notices handles GET /api/v1/notices. Reading drains the inbox.
func (h *Handler) Notices(c *gin.Context) {
	if h.inbox == nil {
		server.RespondOK(c, []extension.Notice{})
		return
	}
	server.RespondOK(c, h.inbox.Drain())
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		server.RespondWithError(c, errors.InvalidInput("body", "request body must be a JSON object"))
		return false
	}
	return true
}
