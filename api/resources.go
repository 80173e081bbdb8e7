package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/nkiryanov/officebook/internal/service/resources"
)

type ResourceHandler struct {
	service resources.ResourceUseCase
}

type resourceResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Capacity *int     `json:"capacity,omitempty"`
	Location string   `json:"location"`
	Features []string `json:"features"`
	Status   string   `json:"status"`
}

func NewResourceHandler(service resources.ResourceUseCase) *ResourceHandler {
	return &ResourceHandler{service: service}
}

func (h *ResourceHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *ResourceHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]resourceResponse, 0, len(list))
	for i := range list {
		out = append(out, toResourceResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ResourceHandler) get(c *gin.Context) {
	res, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResourceResponse(res))
}

func toResourceResponse(r *domain.Resource) resourceResponse {
	return resourceResponse{
		ID:       r.ID,
		Name:     r.Name,
		Type:     string(r.Type),
		Capacity: r.Capacity,
		Location: r.Location,
		Features: r.Features,
		Status:   string(r.Status),
	}
}
