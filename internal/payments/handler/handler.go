// Package handler exposes the payment ledger over HTTP.
package handler

import (
	"net/http"

	"estate_sales_backend/internal/payments/service"
	"estate_sales_backend/internal/payments/transport"
	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/internal/sales/domain"
	"estate_sales_backend/platform/httpkit"
	"estate_sales_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles authenticated payment requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new payments handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the payment routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.addPayment)
	rg.GET("", h.listBySale)
	rg.GET("/:id", h.get)
	rg.DELETE("/:id", h.deletePayment)
}

func actorFrom(c *gin.Context) (rbac.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return rbac.Actor{}, false
	}
	return rbac.Actor{ID: id.UserID(), Roles: id.Roles()}, true
}

func (h *Handler) addPayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.svc.AddPayment(c.Request.Context(), actor, service.AddPaymentInput{
		SaleID: req.SaleID,
		Amount: req.Amount,
		Type:   domain.PaymentType(req.Type),
		Method: domain.PaymentMethod(req.Method),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.FromAllocation(result))
}

func (h *Handler) deletePayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}

	if httpkit.HandleError(c, h.svc.DeletePayment(c.Request.Context(), actor, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}

	payment, err := h.svc.GetPayment(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromPayment(payment))
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

	payments, err := h.svc.ListBySale(c.Request.Context(), actor, saleID)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, transport.FromPayment(&payments[i]))
	}
	httpkit.OK(c, out)
}
