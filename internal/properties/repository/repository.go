package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Database models ───────────────────────────────────────────────────────────

// Estate groups houses and tracks its sold-unit counter.
type Estate struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	Location   string    `db:"location"`
	TotalUnits int       `db:"total_units"`
	SoldUnits  int       `db:"sold_units"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Layout groups plots and tracks its sold-plot counter.
type Layout struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	Location   string    `db:"location"`
	TotalPlots int       `db:"total_plots"`
	SoldPlots  int       `db:"sold_plots"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// House is one sellable housing unit in an estate.
type House struct {
	ID        uuid.UUID  `db:"id"`
	EstateID  uuid.UUID  `db:"estate_id"`
	Code      string     `db:"code"`
	HouseType string     `db:"house_type"`
	Price     int64      `db:"price"`
	Status    string     `db:"status"`
	ClientID  *uuid.UUID `db:"client_id"`
	SaleID    *uuid.UUID `db:"sale_id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Plot is one sellable plot of land in a layout.
type Plot struct {
	ID         uuid.UUID  `db:"id"`
	LayoutID   uuid.UUID  `db:"layout_id"`
	PlotNumber string     `db:"plot_number"`
	SizeSqm    float64    `db:"size_sqm"`
	Price      int64      `db:"price"`
	Status     string     `db:"status"`
	ClientID   *uuid.UUID `db:"client_id"`
	SaleID     *uuid.UUID `db:"sale_id"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

const (
	houseNotFoundMsg = "house not found"
	plotNotFoundMsg  = "plot not found"
)

// Repository provides database operations for the property inventory.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new properties repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ── Estates & layouts ─────────────────────────────────────────────────────────

func (r *Repository) CreateEstate(ctx context.Context, name, location string, totalUnits int) (*Estate, error) {
	var e Estate
	err := r.pool.QueryRow(ctx, `
		INSERT INTO estates (name, location, total_units)
		VALUES ($1, $2, $3)
		RETURNING id, name, location, total_units, sold_units, created_at, updated_at`,
		name, location, totalUnits,
	).Scan(&e.ID, &e.Name, &e.Location, &e.TotalUnits, &e.SoldUnits, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create estate: %w", err)
	}
	return &e, nil
}

func (r *Repository) ListEstates(ctx context.Context) ([]Estate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, location, total_units, sold_units, created_at, updated_at
		FROM estates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list estates: %w", err)
	}
	defer rows.Close()

	var estates []Estate
	for rows.Next() {
		var e Estate
		if err := rows.Scan(&e.ID, &e.Name, &e.Location, &e.TotalUnits, &e.SoldUnits, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan estate: %w", err)
		}
		estates = append(estates, e)
	}
	return estates, rows.Err()
}

func (r *Repository) CreateLayout(ctx context.Context, name, location string, totalPlots int) (*Layout, error) {
	var l Layout
	err := r.pool.QueryRow(ctx, `
		INSERT INTO layouts (name, location, total_plots)
		VALUES ($1, $2, $3)
		RETURNING id, name, location, total_plots, sold_plots, created_at, updated_at`,
		name, location, totalPlots,
	).Scan(&l.ID, &l.Name, &l.Location, &l.TotalPlots, &l.SoldPlots, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create layout: %w", err)
	}
	return &l, nil
}

func (r *Repository) ListLayouts(ctx context.Context) ([]Layout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, location, total_plots, sold_plots, created_at, updated_at
		FROM layouts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var layouts []Layout
	for rows.Next() {
		var l Layout
		if err := rows.Scan(&l.ID, &l.Name, &l.Location, &l.TotalPlots, &l.SoldPlots, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		layouts = append(layouts, l)
	}
	return layouts, rows.Err()
}

// ── Houses ────────────────────────────────────────────────────────────────────

func (r *Repository) CreateHouse(ctx context.Context, estateID uuid.UUID, code, houseType string, price int64) (*House, error) {
	var h House
	err := r.pool.QueryRow(ctx, `
		INSERT INTO houses (estate_id, code, house_type, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, estate_id, code, house_type, price, status, client_id, sale_id, created_at, updated_at`,
		estateID, code, houseType, price,
	).Scan(&h.ID, &h.EstateID, &h.Code, &h.HouseType, &h.Price, &h.Status, &h.ClientID, &h.SaleID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create house: %w", err)
	}
	return &h, nil
}

func (r *Repository) GetHouse(ctx context.Context, id uuid.UUID) (*House, error) {
	var h House
	err := r.pool.QueryRow(ctx, `
		SELECT id, estate_id, code, house_type, price, status, client_id, sale_id, created_at, updated_at
		FROM houses WHERE id = $1`, id,
	).Scan(&h.ID, &h.EstateID, &h.Code, &h.HouseType, &h.Price, &h.Status, &h.ClientID, &h.SaleID, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(houseNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("get house: %w", err)
	}
	return &h, nil
}

func (r *Repository) ListHouses(ctx context.Context, estateID *uuid.UUID, status string) ([]House, error) {
	query := `
		SELECT id, estate_id, code, house_type, price, status, client_id, sale_id, created_at, updated_at
		FROM houses WHERE 1=1`
	args := []interface{}{}
	n := 1
	if estateID != nil {
		query += fmt.Sprintf(" AND estate_id = $%d", n)
		args = append(args, *estateID)
		n++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, status)
	}
	query += " ORDER BY code"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list houses: %w", err)
	}
	defer rows.Close()

	var houses []House
	for rows.Next() {
		var h House
		if err := rows.Scan(&h.ID, &h.EstateID, &h.Code, &h.HouseType, &h.Price, &h.Status, &h.ClientID, &h.SaleID, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan house: %w", err)
		}
		houses = append(houses, h)
	}
	return houses, rows.Err()
}

// ── Plots ─────────────────────────────────────────────────────────────────────

func (r *Repository) CreatePlot(ctx context.Context, layoutID uuid.UUID, plotNumber string, sizeSqm float64, price int64) (*Plot, error) {
	var p Plot
	err := r.pool.QueryRow(ctx, `
		INSERT INTO plots (layout_id, plot_number, size_sqm, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, layout_id, plot_number, size_sqm, price, status, client_id, sale_id, created_at, updated_at`,
		layoutID, plotNumber, sizeSqm, price,
	).Scan(&p.ID, &p.LayoutID, &p.PlotNumber, &p.SizeSqm, &p.Price, &p.Status, &p.ClientID, &p.SaleID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create plot: %w", err)
	}
	return &p, nil
}

func (r *Repository) GetPlot(ctx context.Context, id uuid.UUID) (*Plot, error) {
	var p Plot
	err := r.pool.QueryRow(ctx, `
		SELECT id, layout_id, plot_number, size_sqm, price, status, client_id, sale_id, created_at, updated_at
		FROM plots WHERE id = $1`, id,
	).Scan(&p.ID, &p.LayoutID, &p.PlotNumber, &p.SizeSqm, &p.Price, &p.Status, &p.ClientID, &p.SaleID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(plotNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("get plot: %w", err)
	}
	return &p, nil
}

func (r *Repository) ListPlots(ctx context.Context, layoutID *uuid.UUID, status string) ([]Plot, error) {
	query := `
		SELECT id, layout_id, plot_number, size_sqm, price, status, client_id, sale_id, created_at, updated_at
		FROM plots WHERE 1=1`
	args := []interface{}{}
	n := 1
	if layoutID != nil {
		query += fmt.Sprintf(" AND layout_id = $%d", n)
		args = append(args, *layoutID)
		n++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, status)
	}
	query += " ORDER BY plot_number"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	defer rows.Close()

	var plots []Plot
	for rows.Next() {
		var p Plot
		if err := rows.Scan(&p.ID, &p.LayoutID, &p.PlotNumber, &p.SizeSqm, &p.Price, &p.Status, &p.ClientID, &p.SaleID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plot: %w", err)
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}
