package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mminv/internal/domain/inventory"
	"mminv/internal/infrastructure/http/v1/dto"
)

// ViewHandler handles HTTP requests for the sorted views and the
// transactional submit flows.
type ViewHandler struct {
	*BaseHandler
	workspace *inventory.Workspace
}

// NewViewHandler creates a new view handler.
func NewViewHandler(base *BaseHandler, ws *inventory.Workspace) *ViewHandler {
	return &ViewHandler{
		BaseHandler: base,
		workspace:   ws,
	}
}

// List handles GET /api/v1/:view — the view's rows in current sort order.
func (h *ViewHandler) List(c *gin.Context) {
	snap, err := h.workspace.Snapshot(c.Param("view"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromViewSnapshot(snap))
}

// Sort handles POST /api/v1/:view/sort — re-sorts the view by a column.
func (h *ViewHandler) Sort(c *gin.Context) {
	var req dto.SortRequest
	if !h.BindJSON(c, &req) {
		return
	}

	name := c.Param("view")
	if err := h.workspace.Sort(name, req.Column); err != nil {
		h.Error(c, err)
		return
	}

	snap, err := h.workspace.Snapshot(name)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromViewSnapshot(snap))
}

// SetInputs handles PUT /api/v1/:view/inputs — records transient quantities
// on a transactional view.
func (h *ViewHandler) SetInputs(c *gin.Context) {
	var req dto.InputsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.workspace.SetInputs(c.Param("view"), req.Inputs); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ClearInputs handles POST /api/v1/:view/clear — blanks all transient
// quantities on a transactional view.
func (h *ViewHandler) ClearInputs(c *gin.Context) {
	if err := h.workspace.ClearInputs(c.Param("view")); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Submit handles POST /api/v1/:view/submit — validates and applies the
// current batch. The outgoing flow reports any purchase orders it created.
func (h *ViewHandler) Submit(c *gin.Context) {
	summaries, err := h.workspace.Submit(c.Request.Context(), c.Param("view"))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrderSummaries(summaries))
}
