// Package service orchestrates the sale lifecycle: the three creation
// paths, approval of pending leads and the listing surface.
package service

import (
	"context"
	"fmt"
	"time"

	"estate_sales_backend/internal/events"
	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/internal/sales/domain"
	"estate_sales_backend/platform/apperr"
	"estate_sales_backend/platform/logger"

	"github.com/google/uuid"
)

// Sale creation sources recorded in the audit history.
const (
	sourceDirect         = "DIRECT"
	sourcePublic         = "PUBLIC"
	sourceExistingClient = "EXISTING_CLIENT"
)

// Service implements the sale lifecycle.
type Service struct {
	repo         SaleStore
	properties   PropertyStore
	reservations ReservationChecker
	clients      ClientDirectory
	payments     PaymentRecorder
	eventBus     events.Bus
	log          *logger.Logger
}

// New creates a new sales service.
func New(repo SaleStore, properties PropertyStore, reservations ReservationChecker, clients ClientDirectory, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		properties:   properties,
		reservations: reservations,
		clients:      clients,
		log:          log,
	}
}

// SetEventBus wires the event bus for post-commit notifications.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetPaymentRecorder wires the allocator used for initial payments. Set
// after construction because payments and sales depend on each other.
func (s *Service) SetPaymentRecorder(recorder PaymentRecorder) {
	s.payments = recorder
}

// AddSaleInput is the form for the privileged direct creation path.
type AddSaleInput struct {
	PropertyKind    domain.PropertyKind
	PropertyID      uuid.UUID
	ReservationCode string

	Applicant domain.ApplicantProfile

	Fees             domain.FeeSchedule
	AgencyFeePercent float64
	Discount         int64

	PaymentMethod domain.PaymentMethod
	PaidAmount    int64
	AgentID       *uuid.UUID
}

// AddSale creates a sale directly: locates the property, validates any
// reservation, computes fees, resolves the client, marks the property
// SOLD and records the initial payment through the allocator.
func (s *Service) AddSale(ctx context.Context, actor rbac.Actor, input AddSaleInput) (*domain.Sale, error) {
	if err := rbac.Require(actor, rbac.CapabilityManageSales); err != nil {
		return nil, err
	}

	prop, err := s.properties.Find(ctx, input.PropertyKind, input.PropertyID)
	if err != nil {
		return nil, err
	}

	reservationID, err := s.reservations.Validate(ctx, prop.Kind, prop.ID, prop.Status,
		input.ReservationCode, input.Applicant.Email, input.Applicant.Phone)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.ResolveOrCreate(ctx, input.Applicant.Name, input.Applicant.Email, input.Applicant.Phone)
	if err != nil {
		return nil, err
	}

	initialPaid := input.PaidAmount
	if input.PaymentMethod == domain.MethodFullPayment {
		initialPaid = 0 // resolved after totals are known
	}

	sale, err := s.buildSale(ctx, prop, client, input.Applicant, input.Fees, input.AgencyFeePercent, input.Discount)
	if err != nil {
		return nil, err
	}
	if input.PaymentMethod == domain.MethodFullPayment {
		initialPaid = sale.TotalPayable
	}

	sale.ReservationID = reservationID
	sale.AgentID = input.AgentID
	sale.CreatedBy = &actor.ID
	// The sale commits PENDING; the initial allocation below is what
	// advances it to ACTIVE, so a failed payment never strands an ACTIVE
	// sale with an empty ledger.
	sale.AppendHistory(domain.HistoryEntry{
		Action:   domain.ActionCreate,
		ActionBy: actor.ID,
		Create:   &domain.CreatePayload{Source: sourceDirect, TotalPayable: sale.TotalPayable, InitialPaid: initialPaid},
	})

	if err := s.repo.CreateSale(ctx, sale, true); err != nil {
		return nil, err
	}
	s.log.LedgerMutation("sale_created", sale.ID.String(), sale.TotalPayable, 0)

	if initialPaid > 0 && s.payments != nil {
		if err := s.payments.Record(ctx, sale.ID, initialPaid, input.PaymentMethod, actor.ID); err != nil {
			// The sale exists; the initial payment can be re-recorded.
			s.log.Error("initial payment failed", "sale_id", sale.ID, "error", err)
			return nil, err
		}
		return s.repo.GetByID(ctx, sale.ID)
	}
	return sale, nil
}

// PublicSaleInput is the form for an unauthenticated purchase application.
type PublicSaleInput struct {
	PropertyKind domain.PropertyKind
	PropertyID   uuid.UUID
	Applicant    domain.ApplicantProfile
}

// AddPublicSale records a purchase application from the public site. The
// property must be AVAILABLE and keeps its status; the lead does not
// reserve the unit.
func (s *Service) AddPublicSale(ctx context.Context, input PublicSaleInput) (*domain.Sale, error) {
	prop, err := s.properties.Find(ctx, input.PropertyKind, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop.Status != domain.PropertyAvailable {
		return nil, apperr.Conflict("property is not available for sale")
	}

	// A public application binds to a client record but does not provision
	// credentials; the account is provisioned if the sale is approved.
	client, err := s.clients.ResolveOrCreateLead(ctx, input.Applicant.Name, input.Applicant.Email, input.Applicant.Phone)
	if err != nil {
		return nil, err
	}

	sale, err := s.buildSale(ctx, prop, client, input.Applicant, domain.FeeSchedule{}, 0, 0)
	if err != nil {
		return nil, err
	}
	sale.Status = domain.SalePending
	sale.AppendHistory(domain.HistoryEntry{
		Action:   domain.ActionCreate,
		ActionBy: client.ID,
		Create:   &domain.CreatePayload{Source: sourcePublic, TotalPayable: sale.TotalPayable},
	})

	if err := s.repo.CreateSale(ctx, sale, false); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewPurchaseApplicationSubmitted(
			sale.ID, sale.Code, client.ID,
			input.Applicant.Name, input.Applicant.Email, input.Applicant.Phone,
			string(prop.Kind), sale.TotalPayable))
	}
	return sale, nil
}

// ExistingClientSaleInput is the form for a sale opened for a known client.
type ExistingClientSaleInput struct {
	ClientID        uuid.UUID
	PropertyKind    domain.PropertyKind
	PropertyID      uuid.UUID
	ReservationCode string

	Fees             domain.FeeSchedule
	AgencyFeePercent float64
	Discount         int64

	PaymentMethod domain.PaymentMethod
	PaidAmount    int64
	AgentID       *uuid.UUID
}

// AddSaleByExistingClient opens a sale for a client supplied by id. The
// extended applicant profile is copied from the client's most recent
// prior sale instead of being re-entered.
func (s *Service) AddSaleByExistingClient(ctx context.Context, actor rbac.Actor, input ExistingClientSaleInput) (*domain.Sale, error) {
	if err := rbac.Require(actor, rbac.CapabilityManageSales); err != nil {
		return nil, err
	}

	client, err := s.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	applicant := domain.ApplicantProfile{Name: client.Name, Email: client.Email, Phone: client.Phone}
	if prior, err := s.repo.LatestByClient(ctx, client.ID); err == nil {
		applicant = prior.Applicant
		applicant.Name = client.Name
		applicant.Email = client.Email
		applicant.Phone = client.Phone
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	return s.AddSale(ctx, actor, AddSaleInput{
		PropertyKind:     input.PropertyKind,
		PropertyID:       input.PropertyID,
		ReservationCode:  input.ReservationCode,
		Applicant:        applicant,
		Fees:             input.Fees,
		AgencyFeePercent: input.AgencyFeePercent,
		Discount:         input.Discount,
		PaymentMethod:    input.PaymentMethod,
		PaidAmount:       input.PaidAmount,
		AgentID:          input.AgentID,
	})
}

// ApproveSaleInput carries the optional initial payment recorded at
// approval time.
type ApproveSaleInput struct {
	SaleID        uuid.UUID
	PaidAmount    int64
	PaymentMethod domain.PaymentMethod
}

// ApproveSale promotes a PENDING sale to ACTIVE: fees are re-derived from
// the property's current price, the registration fee is marked settled,
// the client account is provisioned, the property moves to SOLD and any
// initial payment is recorded.
func (s *Service) ApproveSale(ctx context.Context, actor rbac.Actor, input ApproveSaleInput) (*domain.Sale, error) {
	if err := rbac.Require(actor, rbac.CapabilityApproveSales); err != nil {
		return nil, err
	}

	sale, err := s.repo.GetByID(ctx, input.SaleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != domain.SalePending {
		return nil, apperr.Conflict("sale is not pending approval")
	}

	prop, err := s.properties.Find(ctx, sale.PropertyKind, sale.PropertyID)
	if err != nil {
		return nil, err
	}
	// A direct sale marks the property SOLD at creation even while
	// PENDING, so only a different sale's claim blocks approval.
	if prop.Status == domain.PropertySold && (prop.SaleID == nil || *prop.SaleID != sale.ID) {
		return nil, apperr.Conflict("property is no longer available")
	}

	// Fees are re-derived from the current price, preserving the agency
	// percentage implied by the original figures.
	percent := 0.0
	if sale.PropertyPayable > 0 {
		percent = float64(sale.AgencyFee) / float64(sale.PropertyPayable) * 100
	}
	sale.PropertyPayable = prop.Price
	sale.AgencyFee, sale.TotalPayable = domain.ComputeTotals(prop.Price, sale.Fees, percent, sale.Discount)
	if sale.TotalPayable <= 0 {
		return nil, domain.ErrNothingPayable
	}

	now := time.Now()
	sale.Status = domain.SaleActive
	sale.RegistrationFeesStatus = domain.RegistrationPaid
	sale.ApprovedBy = &actor.ID
	sale.ApprovedAt = &now
	sale.AppendHistory(domain.HistoryEntry{
		Action:   domain.ActionUpdate,
		ActionBy: actor.ID,
		Update:   &domain.UpdatePayload{Operation: "APPROVE", PaidAmount: sale.PaidAmount},
	})

	if err := s.repo.ApproveSale(ctx, sale); err != nil {
		return nil, err
	}
	s.log.LedgerMutation("sale_approved", sale.ID.String(), sale.TotalPayable, sale.PaidAmount)

	// Leads from the public site carry an uncredentialed client record;
	// approval turns it into a real account. The approval stands even if
	// provisioning fails.
	if err := s.clients.ProvisionAccount(ctx, sale.ClientID); err != nil {
		s.log.Warn("client account provisioning failed", "client_id", sale.ClientID.String(), "error", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewSaleApproved(sale.ID, sale.Code,
			sale.Applicant.Name, sale.Applicant.Email, sale.Applicant.Phone))
	}

	if input.PaidAmount > 0 && s.payments != nil {
		if err := s.payments.Record(ctx, sale.ID, input.PaidAmount, input.PaymentMethod, actor.ID); err != nil {
			return nil, err
		}
		return s.repo.GetByID(ctx, sale.ID)
	}
	return sale, nil
}

// GetSale returns a sale, restricted to management or the owning client.
func (s *Service) GetSale(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*domain.Sale, error) {
	if err := rbac.Require(actor, rbac.CapabilityViewLedger); err != nil {
		return nil, err
	}
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManagement() && sale.ClientID != actor.ID {
		return nil, apperr.Forbidden("insufficient permissions")
	}
	return sale, nil
}

// ListSales lists sales. Clients are restricted to their own.
func (s *Service) ListSales(ctx context.Context, actor rbac.Actor, params ListParams) ([]domain.Sale, error) {
	if err := rbac.Require(actor, rbac.CapabilityViewLedger); err != nil {
		return nil, err
	}
	if !actor.IsManagement() {
		params.ClientID = &actor.ID
	}
	return s.repo.List(ctx, params)
}

// buildSale assembles the common skeleton of a new sale.
func (s *Service) buildSale(ctx context.Context, prop *PropertyInfo, client *ClientInfo, applicant domain.ApplicantProfile, fees domain.FeeSchedule, agencyFeePercent float64, discount int64) (*domain.Sale, error) {
	code, err := s.repo.NextSaleCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("next sale code: %w", err)
	}

	agencyFee, total := domain.ComputeTotals(prop.Price, fees, agencyFeePercent, discount)
	if total < 0 {
		return nil, apperr.Validation("computed total payable is negative")
	}

	return &domain.Sale{
		ID:                     uuid.New(),
		Code:                   code,
		TransactionRef:         uuid.NewString(),
		ClientID:               client.ID,
		PropertyKind:           prop.Kind,
		PropertyID:             prop.ID,
		Status:                 domain.SalePending,
		PaymentStatus:          domain.PaymentUnpaid,
		RegistrationFeesStatus: domain.RegistrationUnpaid,
		PropertyPayable:        prop.Price,
		Discount:               discount,
		AgencyFee:              agencyFee,
		Fees:                   fees,
		TotalPayable:           total,
		Applicant:              applicant,
	}, nil
}
