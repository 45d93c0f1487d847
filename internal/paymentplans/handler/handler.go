// Package handler exposes installment plans over HTTP.
package handler

import (
	"net/http"
	"time"

	"estate_sales_backend/internal/paymentplans/domain"
	"estate_sales_backend/internal/paymentplans/service"
	"estate_sales_backend/internal/paymentplans/transport"
	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/platform/httpkit"
	"estate_sales_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles authenticated plan requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new payment plans handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the plan routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.listBySale)
	rg.GET("/:id", h.get)
	rg.POST("/:id/cancel", h.cancel)
}

func actorFrom(c *gin.Context) (rbac.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return rbac.Actor{}, false
	}
	return rbac.Actor{ID: id.UserID(), Roles: id.Roles()}, true
}

func (h *Handler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var firstDue time.Time
	if req.FirstDueDate != "" {
		firstDue, _ = time.Parse("2006-01-02", req.FirstDueDate)
	}

	plan, err := h.svc.CreatePlan(c.Request.Context(), actor, service.CreatePlanInput{
		SaleID:       req.SaleID,
		Amount:       req.Amount,
		Frequency:    domain.Frequency(req.Frequency),
		IntervalDays: req.IntervalDays,
		FirstDueDate: firstDue,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.FromDomain(plan))
}

func (h *Handler) cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}

	plan, err := h.svc.CancelPlan(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDomain(plan))
}

func (h *Handler) get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}

	plan, err := h.svc.GetPlan(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDomain(plan))
}

func (h *Handler) listBySale(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	saleID, err := uuid.Parse(c.Query("saleId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "saleId query parameter is required", nil)
		return
	}

	plans, err := h.svc.ListBySale(c.Request.Context(), actor, saleID)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, transport.FromDomain(&plans[i]))
	}
	httpkit.OK(c, out)
}
