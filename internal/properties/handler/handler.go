// Package handler exposes the property inventory over HTTP.
package handler

import (
	"net/http"

	"estate_sales_backend/internal/properties/repository"
	"estate_sales_backend/internal/properties/service"
	"estate_sales_backend/internal/properties/transport"
	"estate_sales_backend/platform/httpkit"
	"estate_sales_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles property inventory HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new properties handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the property routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/estates", h.createEstate)
	rg.GET("/estates", h.listEstates)
	rg.POST("/layouts", h.createLayout)
	rg.GET("/layouts", h.listLayouts)
	rg.POST("/houses", h.createHouse)
	rg.GET("/houses", h.listHouses)
	rg.GET("/houses/:id", h.getHouse)
	rg.POST("/plots", h.createPlot)
	rg.GET("/plots", h.listPlots)
	rg.GET("/plots/:id", h.getPlot)
}

func (h *Handler) createEstate(c *gin.Context) {
	var req transport.CreateEstateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	estate, err := h.svc.CreateEstate(c.Request.Context(), req.Name, req.Location, req.TotalUnits)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, estateResponse(estate))
}

func (h *Handler) listEstates(c *gin.Context) {
	estates, err := h.svc.ListEstates(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.EstateResponse, 0, len(estates))
	for i := range estates {
		out = append(out, estateResponse(&estates[i]))
	}
	httpkit.OK(c, out)
}

func (h *Handler) createLayout(c *gin.Context) {
	var req transport.CreateLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	layout, err := h.svc.CreateLayout(c.Request.Context(), req.Name, req.Location, req.TotalPlots)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, layoutResponse(layout))
}

func (h *Handler) listLayouts(c *gin.Context) {
	layouts, err := h.svc.ListLayouts(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.LayoutResponse, 0, len(layouts))
	for i := range layouts {
		out = append(out, layoutResponse(&layouts[i]))
	}
	httpkit.OK(c, out)
}

func (h *Handler) createHouse(c *gin.Context) {
	var req transport.CreateHouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	house, err := h.svc.CreateHouse(c.Request.Context(), req.EstateID, req.Code, req.HouseType, req.Price)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, houseResponse(house))
}

func (h *Handler) listHouses(c *gin.Context) {
	estateID, ok := optionalUUIDQuery(c, "estateId")
	if !ok {
		return
	}
	houses, err := h.svc.ListHouses(c.Request.Context(), estateID, c.Query("status"))
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.HouseResponse, 0, len(houses))
	for i := range houses {
		out = append(out, houseResponse(&houses[i]))
	}
	httpkit.OK(c, out)
}

func (h *Handler) getHouse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid house id", nil)
		return
	}
	prop, err := h.svc.Locate(c.Request.Context(), service.KindHouse, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prop)
}

func (h *Handler) createPlot(c *gin.Context) {
	var req transport.CreatePlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	plot, err := h.svc.CreatePlot(c.Request.Context(), req.LayoutID, req.PlotNumber, req.SizeSqm, req.Price)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, plotResponse(plot))
}

func (h *Handler) listPlots(c *gin.Context) {
	layoutID, ok := optionalUUIDQuery(c, "layoutId")
	if !ok {
		return
	}
	plots, err := h.svc.ListPlots(c.Request.Context(), layoutID, c.Query("status"))
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]transport.PlotResponse, 0, len(plots))
	for i := range plots {
		out = append(out, plotResponse(&plots[i]))
	}
	httpkit.OK(c, out)
}

func (h *Handler) getPlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid plot id", nil)
		return
	}
	prop, err := h.svc.Locate(c.Request.Context(), service.KindPlot, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, prop)
}

func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return nil, false
	}
	return &id, true
}

func estateResponse(e *repository.Estate) transport.EstateResponse {
	return transport.EstateResponse{
		ID: e.ID, Name: e.Name, Location: e.Location,
		TotalUnits: e.TotalUnits, SoldUnits: e.SoldUnits, CreatedAt: e.CreatedAt,
	}
}

func layoutResponse(l *repository.Layout) transport.LayoutResponse {
	return transport.LayoutResponse{
		ID: l.ID, Name: l.Name, Location: l.Location,
		TotalPlots: l.TotalPlots, SoldPlots: l.SoldPlots, CreatedAt: l.CreatedAt,
	}
}

func houseResponse(h *repository.House) transport.HouseResponse {
	return transport.HouseResponse{
		ID: h.ID, EstateID: h.EstateID, Code: h.Code, HouseType: h.HouseType,
		Price: h.Price, Status: h.Status, ClientID: h.ClientID, SaleID: h.SaleID,
		CreatedAt: h.CreatedAt,
	}
}

func plotResponse(p *repository.Plot) transport.PlotResponse {
	return transport.PlotResponse{
		ID: p.ID, LayoutID: p.LayoutID, PlotNumber: p.PlotNumber, SizeSqm: p.SizeSqm,
		Price: p.Price, Status: p.Status, ClientID: p.ClientID, SaleID: p.SaleID,
		CreatedAt: p.CreatedAt,
	}
}
