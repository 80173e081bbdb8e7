package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkiryanov/officebook/internal/repository"
)

// WorkflowHandler exposes the active approval step sequence so booking
// forms can show users the path their request will take.
type WorkflowHandler struct {
	workflows repository.WorkflowRepository
}

func NewWorkflowHandler(workflows repository.WorkflowRepository) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

func (h *WorkflowHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.get)
}

func (h *WorkflowHandler) get(c *gin.Context) {
	workflow, err := h.workflows.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": workflow.Nodes()})
}
