// Package service exposes the property inventory to handlers and to the
// sales module, which locates a property before opening a sale on it.
package service

import (
	"context"

	"estate_sales_backend/internal/properties/repository"
	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
)

// Property kinds understood by Locate.
const (
	KindHouse = "HOUSE"
	KindPlot  = "PLOT"
)

// Property is the kind-independent view of a sellable unit.
type Property struct {
	ID      uuid.UUID
	Kind    string
	Code    string
	Price   int64
	Status  string
	GroupID uuid.UUID  // owning estate or layout
	SaleID  *uuid.UUID // set once the property is SOLD
}

// Service provides property inventory operations.
type Service struct {
	repo *repository.Repository
}

// New creates a new properties service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Locate resolves a property by kind and id into the unified view.
func (s *Service) Locate(ctx context.Context, kind string, id uuid.UUID) (*Property, error) {
	switch kind {
	case KindHouse:
		h, err := s.repo.GetHouse(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Property{ID: h.ID, Kind: KindHouse, Code: h.Code, Price: h.Price, Status: h.Status, GroupID: h.EstateID, SaleID: h.SaleID}, nil
	case KindPlot:
		p, err := s.repo.GetPlot(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Property{ID: p.ID, Kind: KindPlot, Code: p.PlotNumber, Price: p.Price, Status: p.Status, GroupID: p.LayoutID, SaleID: p.SaleID}, nil
	default:
		return nil, apperr.Validation("unknown property kind")
	}
}

// Inventory management passthroughs.

func (s *Service) CreateEstate(ctx context.Context, name, location string, totalUnits int) (*repository.Estate, error) {
	return s.repo.CreateEstate(ctx, name, location, totalUnits)
}

func (s *Service) ListEstates(ctx context.Context) ([]repository.Estate, error) {
	return s.repo.ListEstates(ctx)
}

func (s *Service) CreateLayout(ctx context.Context, name, location string, totalPlots int) (*repository.Layout, error) {
	return s.repo.CreateLayout(ctx, name, location, totalPlots)
}

func (s *Service) ListLayouts(ctx context.Context) ([]repository.Layout, error) {
	return s.repo.ListLayouts(ctx)
}

func (s *Service) CreateHouse(ctx context.Context, estateID uuid.UUID, code, houseType string, price int64) (*repository.House, error) {
	return s.repo.CreateHouse(ctx, estateID, code, houseType, price)
}

func (s *Service) ListHouses(ctx context.Context, estateID *uuid.UUID, status string) ([]repository.House, error) {
	return s.repo.ListHouses(ctx, estateID, status)
}

func (s *Service) CreatePlot(ctx context.Context, layoutID uuid.UUID, plotNumber string, sizeSqm float64, price int64) (*repository.Plot, error) {
	return s.repo.CreatePlot(ctx, layoutID, plotNumber, sizeSqm, price)
}

func (s *Service) ListPlots(ctx context.Context, layoutID *uuid.UUID, status string) ([]repository.Plot, error) {
	return s.repo.ListPlots(ctx, layoutID, status)
}
