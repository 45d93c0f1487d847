// Package transport defines the request and response shapes for the
// properties HTTP API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateEstateRequest struct {
	Name       string `json:"name" validate:"required"`
	Location   string `json:"location"`
	TotalUnits int    `json:"totalUnits" validate:"gte=0"`
}

type CreateLayoutRequest struct {
	Name       string `json:"name" validate:"required"`
	Location   string `json:"location"`
	TotalPlots int    `json:"totalPlots" validate:"gte=0"`
}

type CreateHouseRequest struct {
	EstateID  uuid.UUID `json:"estateId" validate:"required"`
	Code      string    `json:"code" validate:"required"`
	HouseType string    `json:"houseType"`
	Price     int64     `json:"price" validate:"gt=0"`
}

type CreatePlotRequest struct {
	LayoutID   uuid.UUID `json:"layoutId" validate:"required"`
	PlotNumber string    `json:"plotNumber" validate:"required"`
	SizeSqm    float64   `json:"sizeSqm" validate:"gte=0"`
	Price      int64     `json:"price" validate:"gt=0"`
}

type EstateResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	TotalUnits int       `json:"totalUnits"`
	SoldUnits  int       `json:"soldUnits"`
	CreatedAt  time.Time `json:"createdAt"`
}

type LayoutResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	TotalPlots int       `json:"totalPlots"`
	SoldPlots  int       `json:"soldPlots"`
	CreatedAt  time.Time `json:"createdAt"`
}

type HouseResponse struct {
	ID        uuid.UUID  `json:"id"`
	EstateID  uuid.UUID  `json:"estateId"`
	Code      string     `json:"code"`
	HouseType string     `json:"houseType"`
	Price     int64      `json:"price"`
	Status    string     `json:"status"`
	ClientID  *uuid.UUID `json:"clientId,omitempty"`
	SaleID    *uuid.UUID `json:"saleId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type PlotResponse struct {
	ID         uuid.UUID  `json:"id"`
	LayoutID   uuid.UUID  `json:"layoutId"`
	PlotNumber string     `json:"plotNumber"`
	SizeSqm    float64    `json:"sizeSqm"`
	Price      int64      `json:"price"`
	Status     string     `json:"status"`
	ClientID   *uuid.UUID `json:"clientId,omitempty"`
	SaleID     *uuid.UUID `json:"saleId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
