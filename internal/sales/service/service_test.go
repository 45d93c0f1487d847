package service

import (
	"context"
	"testing"

	"estate_sales_backend/internal/events"
	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/internal/sales/domain"
	"estate_sales_backend/platform/apperr"
	"estate_sales_backend/platform/logger"

	"github.com/google/uuid"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeSaleStore struct {
	sales      map[uuid.UUID]*domain.Sale
	lastMarked bool
	codeSeq    int
	latest     *domain.Sale
}

func newFakeSaleStore() *fakeSaleStore {
	return &fakeSaleStore{sales: make(map[uuid.UUID]*domain.Sale)}
}

func (f *fakeSaleStore) NextSaleCode(context.Context) (string, error) {
	f.codeSeq++
	return uuid.NewString()[:8], nil
}

func (f *fakeSaleStore) CreateSale(_ context.Context, sale *domain.Sale, markSold bool) error {
	copied := *sale
	f.sales[sale.ID] = &copied
	f.lastMarked = markSold
	return nil
}

func (f *fakeSaleStore) ApproveSale(_ context.Context, sale *domain.Sale) error {
	copied := *sale
	f.sales[sale.ID] = &copied
	return nil
}

func (f *fakeSaleStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Sale, error) {
	if s, ok := f.sales[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, apperr.NotFound("sale not found")
}

func (f *fakeSaleStore) List(context.Context, ListParams) ([]domain.Sale, error) {
	return nil, nil
}

func (f *fakeSaleStore) LatestByClient(context.Context, uuid.UUID) (*domain.Sale, error) {
	if f.latest == nil {
		return nil, apperr.NotFound("sale not found")
	}
	return f.latest, nil
}

type fakePropertyStore struct {
	property *PropertyInfo
}

func (f *fakePropertyStore) Find(_ context.Context, _ domain.PropertyKind, _ uuid.UUID) (*PropertyInfo, error) {
	if f.property == nil {
		return nil, apperr.NotFound("house not found")
	}
	copied := *f.property
	return &copied, nil
}

type fakeReservations struct {
	reservationID *uuid.UUID
	err           error
}

func (f *fakeReservations) Validate(context.Context, domain.PropertyKind, uuid.UUID, domain.PropertyStatus, string, string, string) (*uuid.UUID, error) {
	return f.reservationID, f.err
}

type fakeClients struct {
	client      *ClientInfo
	leads       int
	provisioned []uuid.UUID
}

func (f *fakeClients) ResolveOrCreate(_ context.Context, name, email, phone string) (*ClientInfo, error) {
	if f.client != nil {
		return f.client, nil
	}
	return &ClientInfo{ID: uuid.New(), Name: name, Email: email, Phone: phone}, nil
}

func (f *fakeClients) ResolveOrCreateLead(ctx context.Context, name, email, phone string) (*ClientInfo, error) {
	f.leads++
	return f.ResolveOrCreate(ctx, name, email, phone)
}

func (f *fakeClients) ProvisionAccount(_ context.Context, id uuid.UUID) error {
	f.provisioned = append(f.provisioned, id)
	return nil
}

func (f *fakeClients) GetByID(_ context.Context, id uuid.UUID) (*ClientInfo, error) {
	if f.client != nil && f.client.ID == id {
		return f.client, nil
	}
	return nil, apperr.NotFound("client not found")
}

type recordedPayment struct {
	saleID uuid.UUID
	amount int64
	method domain.PaymentMethod
}

type fakeRecorder struct {
	store    *fakeSaleStore
	recorded []recordedPayment
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, saleID uuid.UUID, amount int64, method domain.PaymentMethod, _ uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, recordedPayment{saleID, amount, method})
	if s, ok := f.store.sales[saleID]; ok {
		if err := s.ApplyPayment(amount, domain.PaymentGeneral); err != nil {
			return err
		}
	}
	return nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func manager() rbac.Actor {
	return rbac.Actor{ID: uuid.New(), Roles: []string{rbac.RoleManager}}
}

func availableHouse() *PropertyInfo {
	return &PropertyInfo{
		ID:      uuid.New(),
		Kind:    domain.PropertyHouse,
		Code:    "H-01",
		Price:   1_000_000,
		Status:  domain.PropertyAvailable,
		GroupID: uuid.New(),
	}
}

func newService(store *fakeSaleStore, prop *PropertyInfo) (*Service, *fakeRecorder, *recordingBus) {
	recorder := &fakeRecorder{store: store}
	bus := &recordingBus{}
	svc := New(store, &fakePropertyStore{property: prop}, &fakeReservations{}, &fakeClients{}, logger.New("development"))
	svc.SetEventBus(bus)
	svc.SetPaymentRecorder(recorder)
	return svc, recorder, bus
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestAddSaleRequiresManagementRole(t *testing.T) {
	svc, _, _ := newService(newFakeSaleStore(), availableHouse())

	actor := rbac.Actor{ID: uuid.New(), Roles: []string{rbac.RoleClient}}
	_, err := svc.AddSale(context.Background(), actor, AddSaleInput{})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestAddSaleFullPaymentSettlesThroughAllocator(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	svc, recorder, _ := newService(store, prop)

	sale, err := svc.AddSale(context.Background(), manager(), AddSaleInput{
		PropertyKind:     domain.PropertyHouse,
		PropertyID:       prop.ID,
		Applicant:        domain.ApplicantProfile{Name: "Ada Obi", Email: "ada@example.com"},
		Fees:             domain.FeeSchedule{Facility: 50_000},
		AgencyFeePercent: 5,
		PaymentMethod:    domain.MethodFullPayment,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sale.TotalPayable != 1_100_000 {
		t.Fatalf("total payable = %d, want 1100000", sale.TotalPayable)
	}
	if len(recorder.recorded) != 1 || recorder.recorded[0].amount != 1_100_000 {
		t.Fatalf("recorded payments = %+v, want one of 1100000", recorder.recorded)
	}
	if !store.lastMarked {
		t.Fatal("direct sale must mark the property sold")
	}
	if sale.PaymentStatus != domain.PaymentPaid || sale.Status != domain.SalePurchased {
		t.Fatalf("sale %s/%s, want PAID/PURCHASED", sale.PaymentStatus, sale.Status)
	}
}

func TestAddSaleWithoutPaymentStaysPending(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	svc, recorder, _ := newService(store, prop)

	sale, err := svc.AddSale(context.Background(), manager(), AddSaleInput{
		PropertyKind: domain.PropertyHouse,
		PropertyID:   prop.ID,
		Applicant:    domain.ApplicantProfile{Name: "Ada Obi", Email: "ada@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sale.Status != domain.SalePending {
		t.Fatalf("status = %s, want PENDING", sale.Status)
	}
	if len(recorder.recorded) != 0 {
		t.Fatal("no payment should be recorded for an unpaid sale")
	}
	if len(sale.UpdateHistory) != 1 || sale.UpdateHistory[0].Action != domain.ActionCreate {
		t.Fatalf("history = %+v, want one CREATE entry", sale.UpdateHistory)
	}
}

func TestAddSaleFailedInitialPaymentLeavesPending(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	svc, recorder, _ := newService(store, prop)
	recorder.err = apperr.Internal("payments unavailable")

	_, err := svc.AddSale(context.Background(), manager(), AddSaleInput{
		PropertyKind:  domain.PropertyHouse,
		PropertyID:    prop.ID,
		Applicant:     domain.ApplicantProfile{Name: "Ada Obi", Email: "ada@example.com"},
		PaymentMethod: domain.MethodFullPayment,
	})
	if err == nil {
		t.Fatal("expected the allocation failure to surface")
	}

	// The committed sale must not claim money it never received.
	if len(store.sales) != 1 {
		t.Fatalf("stored %d sales, want the committed one", len(store.sales))
	}
	for _, sale := range store.sales {
		if sale.Status != domain.SalePending {
			t.Fatalf("status = %s, want PENDING after a failed initial payment", sale.Status)
		}
		if sale.PaidAmount != 0 || sale.PaymentStatus != domain.PaymentUnpaid {
			t.Fatalf("ledger shows paid=%d %s, want untouched", sale.PaidAmount, sale.PaymentStatus)
		}
	}
}

func TestAddPublicSaleCreatesPendingLead(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	clients := &fakeClients{}
	bus := &recordingBus{}
	svc := New(store, &fakePropertyStore{property: prop}, &fakeReservations{}, clients, logger.New("development"))
	svc.SetEventBus(bus)

	sale, err := svc.AddPublicSale(context.Background(), PublicSaleInput{
		PropertyKind: domain.PropertyHouse,
		PropertyID:   prop.ID,
		Applicant:    domain.ApplicantProfile{Name: "Chidi Okeke", Email: "chidi@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sale.Status != domain.SalePending {
		t.Fatalf("status = %s, want PENDING", sale.Status)
	}
	if sale.PaymentStatus != domain.PaymentUnpaid {
		t.Fatalf("payment status = %s, want UNPAID", sale.PaymentStatus)
	}
	if store.lastMarked {
		t.Fatal("a public lead must not change the property status")
	}
	if clients.leads != 1 {
		t.Fatalf("lead resolutions = %d, want 1", clients.leads)
	}
	if len(clients.provisioned) != 0 {
		t.Fatal("a public application must not provision a client account")
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	if _, ok := bus.published[0].(*events.PurchaseApplicationSubmitted); !ok {
		t.Fatalf("published %T, want PurchaseApplicationSubmitted", bus.published[0])
	}
}

func TestAddPublicSaleRejectsUnavailableProperty(t *testing.T) {
	prop := availableHouse()
	prop.Status = domain.PropertyReserved
	svc, _, _ := newService(newFakeSaleStore(), prop)

	_, err := svc.AddPublicSale(context.Background(), PublicSaleInput{
		PropertyKind: domain.PropertyHouse,
		PropertyID:   prop.ID,
		Applicant:    domain.ApplicantProfile{Name: "Chidi Okeke", Email: "chidi@example.com"},
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestAddSaleByExistingClientCopiesProfile(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	clientID := uuid.New()

	store.latest = &domain.Sale{Applicant: domain.ApplicantProfile{
		Name:           "Old Name",
		Occupation:     "Engineer",
		Address:        "12 Marina Rd",
		NextOfKinName:  "Ngozi Okeke",
		NextOfKinPhone: "+2348000000001",
	}}

	recorder := &fakeRecorder{store: store}
	svc := New(store, &fakePropertyStore{property: prop}, &fakeReservations{},
		&fakeClients{client: &ClientInfo{ID: clientID, Name: "Chidi Okeke", Email: "chidi@example.com"}},
		logger.New("development"))
	svc.SetPaymentRecorder(recorder)

	sale, err := svc.AddSaleByExistingClient(context.Background(), manager(), ExistingClientSaleInput{
		ClientID:     clientID,
		PropertyKind: domain.PropertyHouse,
		PropertyID:   prop.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sale.Applicant.Occupation != "Engineer" || sale.Applicant.NextOfKinName != "Ngozi Okeke" {
		t.Fatalf("profile not copied from prior sale: %+v", sale.Applicant)
	}
	if sale.Applicant.Name != "Chidi Okeke" {
		t.Fatalf("contact fields must come from the client record, got %q", sale.Applicant.Name)
	}
	if sale.ClientID != clientID {
		t.Fatalf("sale bound to %s, want %s", sale.ClientID, clientID)
	}
}

func TestApproveSalePromotesPendingLead(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	clients := &fakeClients{}
	bus := &recordingBus{}
	svc := New(store, &fakePropertyStore{property: prop}, &fakeReservations{}, clients, logger.New("development"))
	svc.SetEventBus(bus)
	svc.SetPaymentRecorder(&fakeRecorder{store: store})

	lead, err := svc.AddPublicSale(context.Background(), PublicSaleInput{
		PropertyKind: domain.PropertyHouse,
		PropertyID:   prop.ID,
		Applicant:    domain.ApplicantProfile{Name: "Chidi Okeke", Email: "chidi@example.com"},
	})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	// Price changed since the application came in.
	prop.Price = 1_200_000

	approved, err := svc.ApproveSale(context.Background(), manager(), ApproveSaleInput{SaleID: lead.ID})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if approved.Status != domain.SaleActive {
		t.Fatalf("status = %s, want ACTIVE", approved.Status)
	}
	if approved.RegistrationFeesStatus != domain.RegistrationPaid {
		t.Fatalf("registration fees = %s, want PAID", approved.RegistrationFeesStatus)
	}
	if approved.TotalPayable != 1_200_000 {
		t.Fatalf("total payable = %d, want re-derived 1200000", approved.TotalPayable)
	}
	if approved.ApprovedBy == nil || approved.ApprovedAt == nil {
		t.Fatal("approval audit fields not set")
	}
	if len(clients.provisioned) != 1 || clients.provisioned[0] != approved.ClientID {
		t.Fatalf("provisioned %v, want the sale's client %s", clients.provisioned, approved.ClientID)
	}

	sawApproved := false
	for _, e := range bus.published {
		if _, ok := e.(*events.SaleApproved); ok {
			sawApproved = true
		}
	}
	if !sawApproved {
		t.Fatal("expected a sale-approved event")
	}
}

func TestApproveSaleRejectsNonPending(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	svc, _, _ := newService(store, prop)

	sale, err := svc.AddSale(context.Background(), manager(), AddSaleInput{
		PropertyKind:  domain.PropertyHouse,
		PropertyID:    prop.ID,
		Applicant:     domain.ApplicantProfile{Name: "Ada Obi", Email: "ada@example.com"},
		PaymentMethod: domain.MethodFullPayment,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	_, err = svc.ApproveSale(context.Background(), manager(), ApproveSaleInput{SaleID: sale.ID})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestGetSaleRestrictsClientsToOwnSales(t *testing.T) {
	store := newFakeSaleStore()
	prop := availableHouse()
	svc, _, _ := newService(store, prop)

	sale, err := svc.AddPublicSale(context.Background(), PublicSaleInput{
		PropertyKind: domain.PropertyHouse,
		PropertyID:   prop.ID,
		Applicant:    domain.ApplicantProfile{Name: "Chidi Okeke", Email: "chidi@example.com"},
	})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	owner := rbac.Actor{ID: sale.ClientID, Roles: []string{rbac.RoleClient}}
	if _, err := svc.GetSale(context.Background(), owner, sale.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}

	stranger := rbac.Actor{ID: uuid.New(), Roles: []string{rbac.RoleClient}}
	if _, err := svc.GetSale(context.Background(), stranger, sale.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}
