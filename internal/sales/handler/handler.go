// Package handler exposes the sale lifecycle over HTTP.
package handler

import (
	"net/http"

	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/internal/sales/domain"
	"estate_sales_backend/internal/sales/service"
	"estate_sales_backend/internal/sales/transport"
	"estate_sales_backend/platform/httpkit"
	"estate_sales_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles authenticated sale requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new sales handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the sale routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.addSale)
	rg.POST("/by-client", h.addSaleByExistingClient)
	rg.POST("/:id/approve", h.approveSale)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
}

func actorFrom(c *gin.Context) (rbac.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return rbac.Actor{}, false
	}
	return rbac.Actor{ID: id.UserID(), Roles: id.Roles()}, true
}

func (h *Handler) addSale(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.AddSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sale, err := h.svc.AddSale(c.Request.Context(), actor, service.AddSaleInput{
		PropertyKind:     domain.PropertyKind(req.PropertyKind),
		PropertyID:       req.PropertyID,
		ReservationCode:  req.ReservationCode,
		Applicant:        applicantFrom(req.Applicant),
		Fees:             req.Fees.ToDomain(),
		AgencyFeePercent: req.AgencyFeePercent,
		Discount:         req.Discount,
		PaymentMethod:    domain.PaymentMethod(req.PaymentMethod),
		PaidAmount:       req.PaidAmount,
		AgentID:          req.AgentID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.FromDomain(sale))
}

func (h *Handler) addSaleByExistingClient(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.ExistingClientSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sale, err := h.svc.AddSaleByExistingClient(c.Request.Context(), actor, service.ExistingClientSaleInput{
		ClientID:         req.ClientID,
		PropertyKind:     domain.PropertyKind(req.PropertyKind),
		PropertyID:       req.PropertyID,
		ReservationCode:  req.ReservationCode,
		Fees:             req.Fees.ToDomain(),
		AgencyFeePercent: req.AgencyFeePercent,
		Discount:         req.Discount,
		PaymentMethod:    domain.PaymentMethod(req.PaymentMethod),
		PaidAmount:       req.PaidAmount,
		AgentID:          req.AgentID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.FromDomain(sale))
}

func (h *Handler) approveSale(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid sale id", nil)
		return
	}

	// The body is optional; approval without an initial payment sends none.
	var req transport.ApproveSaleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	sale, err := h.svc.ApproveSale(c.Request.Context(), actor, service.ApproveSaleInput{
		SaleID:        saleID,
		PaidAmount:    req.PaidAmount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDomain(sale))
}

func (h *Handler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	params := service.ListParams{Status: c.Query("status")}
	if raw := c.Query("clientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid clientId", nil)
			return
		}
		params.ClientID = &id
	}

	sales, err := h.svc.ListSales(c.Request.Context(), actor, params)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, transport.FromDomain(&sales[i]))
	}
	httpkit.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid sale id", nil)
		return
	}

	sale, err := h.svc.GetSale(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDomain(sale))
}

func applicantFrom(p transport.ApplicantPayload) domain.ApplicantProfile {
	return domain.ApplicantProfile{
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		Occupation:     p.Occupation,
		Address:        p.Address,
		NextOfKinName:  p.NextOfKinName,
		NextOfKinPhone: p.NextOfKinPhone,
	}
}
