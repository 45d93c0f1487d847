// Package adapters bridges the sales service's collaborator ports to the
// real property, reservation, client and payment services. Keeping the
// glue here lets each module expose its own types without importing the
// sales package.
package adapters

import (
	"context"

	clientssvc "estate_sales_backend/internal/clients/service"
	paymentssvc "estate_sales_backend/internal/payments/service"
	propertiessvc "estate_sales_backend/internal/properties/service"
	reservationssvc "estate_sales_backend/internal/reservations/service"
	"estate_sales_backend/internal/sales/domain"
	salessvc "estate_sales_backend/internal/sales/service"

	"github.com/google/uuid"
)

// PropertyStore adapts the properties service to the sales port.
type PropertyStore struct {
	svc *propertiessvc.Service
}

func NewPropertyStore(svc *propertiessvc.Service) *PropertyStore {
	return &PropertyStore{svc: svc}
}

func (a *PropertyStore) Find(ctx context.Context, kind domain.PropertyKind, id uuid.UUID) (*salessvc.PropertyInfo, error) {
	p, err := a.svc.Locate(ctx, string(kind), id)
	if err != nil {
		return nil, err
	}
	return &salessvc.PropertyInfo{
		ID:      p.ID,
		Kind:    domain.PropertyKind(p.Kind),
		Code:    p.Code,
		Price:   p.Price,
		Status:  domain.PropertyStatus(p.Status),
		GroupID: p.GroupID,
		SaleID:  p.SaleID,
	}, nil
}

// ReservationChecker adapts the reservations service to the sales port.
type ReservationChecker struct {
	svc *reservationssvc.Service
}

func NewReservationChecker(svc *reservationssvc.Service) *ReservationChecker {
	return &ReservationChecker{svc: svc}
}

func (a *ReservationChecker) Validate(ctx context.Context, kind domain.PropertyKind, propertyID uuid.UUID, propertyStatus domain.PropertyStatus, claimedCode, email, phone string) (*uuid.UUID, error) {
	return a.svc.Validate(ctx, string(kind), propertyID, string(propertyStatus), claimedCode, email, phone)
}

// ClientDirectory adapts the clients service to the sales port.
type ClientDirectory struct {
	svc *clientssvc.Service
}

func NewClientDirectory(svc *clientssvc.Service) *ClientDirectory {
	return &ClientDirectory{svc: svc}
}

func (a *ClientDirectory) ResolveOrCreate(ctx context.Context, name, email, phone string) (*salessvc.ClientInfo, error) {
	c, err := a.svc.ResolveOrCreate(ctx, clientssvc.Profile{Name: name, Email: email, Phone: phone})
	if err != nil {
		return nil, err
	}
	return &salessvc.ClientInfo{ID: c.ID, Name: c.FullName, Email: c.Email, Phone: c.Phone}, nil
}

func (a *ClientDirectory) ResolveOrCreateLead(ctx context.Context, name, email, phone string) (*salessvc.ClientInfo, error) {
	c, err := a.svc.ResolveOrCreateLead(ctx, clientssvc.Profile{Name: name, Email: email, Phone: phone})
	if err != nil {
		return nil, err
	}
	return &salessvc.ClientInfo{ID: c.ID, Name: c.FullName, Email: c.Email, Phone: c.Phone}, nil
}

func (a *ClientDirectory) ProvisionAccount(ctx context.Context, id uuid.UUID) error {
	return a.svc.ProvisionAccount(ctx, id)
}

func (a *ClientDirectory) GetByID(ctx context.Context, id uuid.UUID) (*salessvc.ClientInfo, error) {
	c, err := a.svc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &salessvc.ClientInfo{ID: c.ID, Name: c.FullName, Email: c.Email, Phone: c.Phone}, nil
}

// Compile-time checks against the sales ports. The payments service
// satisfies PaymentRecorder directly.
var (
	_ salessvc.PropertyStore      = (*PropertyStore)(nil)
	_ salessvc.ReservationChecker = (*ReservationChecker)(nil)
	_ salessvc.ClientDirectory    = (*ClientDirectory)(nil)
	_ salessvc.PaymentRecorder    = (*paymentssvc.Service)(nil)
)
