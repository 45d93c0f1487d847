package handler

import (
	"net/http"

	"estate_sales_backend/internal/sales/domain"
	"estate_sales_backend/internal/sales/service"
	"estate_sales_backend/internal/sales/transport"
	"estate_sales_backend/platform/httpkit"
	"estate_sales_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// PublicHandler handles unauthenticated purchase applications from the
// public site.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

// NewPublicHandler creates a new public sales handler.
func NewPublicHandler(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes mounts the public routes on the given group.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.submitApplication)
}

func (h *PublicHandler) submitApplication(c *gin.Context) {
	var req transport.PublicSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sale, err := h.svc.AddPublicSale(c.Request.Context(), service.PublicSaleInput{
		PropertyKind: domain.PropertyKind(req.PropertyKind),
		PropertyID:   req.PropertyID,
		Applicant:    applicantFrom(req.Applicant),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	// The applicant only needs the reference, not the ledger.
	httpkit.JSON(c, http.StatusCreated, gin.H{
		"id":     sale.ID,
		"code":   sale.Code,
		"status": string(sale.Status),
	})
}
