package service

import (
	"context"

	"estate_sales_backend/internal/sales/domain"

	"github.com/google/uuid"
)

// The sales service talks to its collaborators through narrow interfaces
// so the other modules stay behind their own boundaries. The adapters
// package bridges these to the real services.

// PropertyInfo is the sale-relevant view of a house or plot.
type PropertyInfo struct {
	ID      uuid.UUID
	Kind    domain.PropertyKind
	Code    string
	Price   int64
	Status  domain.PropertyStatus
	GroupID uuid.UUID  // owning estate or layout
	SaleID  *uuid.UUID // set once the property is SOLD
}

// PropertyStore locates properties for sale creation.
type PropertyStore interface {
	Find(ctx context.Context, kind domain.PropertyKind, id uuid.UUID) (*PropertyInfo, error)
}

// ReservationChecker validates a reservation claim before a sale may
// proceed. A matched reservation's id is returned so the sale can consume
// it; nil means the property had no hold.
type ReservationChecker interface {
	Validate(ctx context.Context, kind domain.PropertyKind, propertyID uuid.UUID, propertyStatus domain.PropertyStatus, claimedCode, email, phone string) (*uuid.UUID, error)
}

// ClientInfo is the sale-relevant view of a client account.
type ClientInfo struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
}

// ClientDirectory resolves sale applicants to client accounts.
// ResolveOrCreate provisions a credentialed account on a miss;
// ResolveOrCreateLead only records the contact, and ProvisionAccount
// upgrades such a record to a real account at approval time.
type ClientDirectory interface {
	ResolveOrCreate(ctx context.Context, name, email, phone string) (*ClientInfo, error)
	ResolveOrCreateLead(ctx context.Context, name, email, phone string) (*ClientInfo, error)
	ProvisionAccount(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClientInfo, error)
}

// PaymentRecorder applies an initial payment to a freshly created sale
// through the payment allocator, so the ledger rules and notifications
// are identical to any later payment.
type PaymentRecorder interface {
	Record(ctx context.Context, saleID uuid.UUID, amount int64, method domain.PaymentMethod, recordedBy uuid.UUID) error
}

// SaleStore is the persistence surface of the sales repository.
type SaleStore interface {
	NextSaleCode(ctx context.Context) (string, error)
	CreateSale(ctx context.Context, sale *domain.Sale, markSold bool) error
	ApproveSale(ctx context.Context, sale *domain.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, params ListParams) ([]domain.Sale, error)
	LatestByClient(ctx context.Context, clientID uuid.UUID) (*domain.Sale, error)
}

// ListParams filters the sale listing.
type ListParams struct {
	ClientID *uuid.UUID
	Status   string
}
