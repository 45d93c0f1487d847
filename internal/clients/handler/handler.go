// Package handler exposes client accounts over HTTP.
package handler

import (
	"net/http"

	"estate_sales_backend/internal/clients/repository"
	"estate_sales_backend/internal/clients/service"
	"estate_sales_backend/internal/clients/transport"
	"estate_sales_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles client HTTP requests.
type Handler struct {
	svc *service.Service
}

// New creates a new clients handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the client routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	clients, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, clientResponse(&clients[i]))
	}
	httpkit.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	client, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, clientResponse(client))
}

func clientResponse(c *repository.Client) transport.ClientResponse {
	return transport.ClientResponse{
		ID:        c.ID,
		FullName:  c.FullName,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}
