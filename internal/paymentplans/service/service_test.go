package service

import (
	"context"
	"testing"
	"time"

	"estate_sales_backend/internal/events"
	"estate_sales_backend/internal/paymentplans/domain"
	"estate_sales_backend/internal/rbac"
	"estate_sales_backend/platform/apperr"
	"estate_sales_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeSale struct {
	code     string
	clientID uuid.UUID
}

type fakeStore struct {
	plans map[uuid.UUID]*domain.Plan
	sales map[uuid.UUID]fakeSale
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		plans: make(map[uuid.UUID]*domain.Plan),
		sales: make(map[uuid.UUID]fakeSale),
	}
}

func (f *fakeStore) Create(_ context.Context, plan *domain.Plan) error {
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Plan, error) {
	if p, ok := f.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperr.NotFound("plan not found")
}

func (f *fakeStore) ListBySale(_ context.Context, saleID uuid.UUID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range f.plans {
		if p.SaleID == saleID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListDue(_ context.Context, cutoff time.Time) ([]DuePlan, error) {
	var out []DuePlan
	for _, p := range f.plans {
		if p.Status == domain.StatusActive && !p.NextDueDate.After(cutoff) {
			out = append(out, DuePlan{
				Plan:        *p,
				SaleCode:    f.sales[p.SaleID].code,
				ClientEmail: "client@example.com",
			})
		}
	}
	return out, nil
}

func (f *fakeStore) Advance(_ context.Context, id uuid.UUID, nextDue time.Time) error {
	if p, ok := f.plans[id]; ok && p.Status == domain.StatusActive {
		p.NextDueDate = nextDue
	}
	return nil
}

func (f *fakeStore) SetStatus(_ context.Context, id uuid.UUID, status domain.Status, entry domain.HistoryEntry) error {
	if p, ok := f.plans[id]; ok {
		p.Status = status
		p.UpdateHistory = append(p.UpdateHistory, entry)
		return nil
	}
	return apperr.NotFound("plan not found")
}

func (f *fakeStore) FindSale(_ context.Context, saleID uuid.UUID) (*SaleRef, error) {
	if s, ok := f.sales[saleID]; ok {
		return &SaleRef{ID: saleID, ClientID: s.clientID}, nil
	}
	return nil, apperr.NotFound("sale not found")
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

var testClientID = uuid.MustParse("7f4a7c60-2f6f-4c7e-9a76-52cb7af0e2a1")

func newTestService() (*Service, *fakeStore, *recordingBus, uuid.UUID) {
	store := newFakeStore()
	saleID := uuid.New()
	store.sales[saleID] = fakeSale{code: "SAL-2026-00042", clientID: testClientID}

	bus := &recordingBus{}
	svc := New(store, logger.New("development"))
	svc.SetEventBus(bus)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) }
	return svc, store, bus, saleID
}

func manager() rbac.Actor {
	return rbac.Actor{ID: uuid.New(), Roles: []string{rbac.RoleManager}}
}

func TestCreatePlanComputesFirstDueDate(t *testing.T) {
	svc, store, _, saleID := newTestService()

	plan, err := svc.CreatePlan(context.Background(), manager(), CreatePlanInput{
		SaleID:    saleID,
		Amount:    250_000,
		Frequency: domain.FrequencyMonthly,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	if !plan.NextDueDate.Equal(want) {
		t.Fatalf("first due date = %v, want %v", plan.NextDueDate, want)
	}
	if !plan.StartDate.Equal(want) {
		t.Fatalf("start date = %v, want %v", plan.StartDate, want)
	}
	if plan.ClientID != testClientID {
		t.Fatalf("plan bound to client %s, want the sale's client %s", plan.ClientID, testClientID)
	}
	if plan.Status != domain.StatusActive {
		t.Fatalf("status = %s, want ACTIVE", plan.Status)
	}
	if len(plan.UpdateHistory) != 1 || plan.UpdateHistory[0].Action != domain.ActionCreate {
		t.Fatalf("history = %+v, want one CREATE entry", plan.UpdateHistory)
	}
	if _, ok := store.plans[plan.ID]; !ok {
		t.Fatal("plan not persisted")
	}
}

func TestCreatePlanRejectsUnknownSale(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreatePlan(context.Background(), manager(), CreatePlanInput{
		SaleID:    uuid.New(),
		Amount:    100_000,
		Frequency: domain.FrequencyWeekly,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("got %v, want not-found", err)
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc, _, _, saleID := newTestService()

	cases := []struct {
		name  string
		input CreatePlanInput
	}{
		{"zero amount", CreatePlanInput{SaleID: saleID, Frequency: domain.FrequencyMonthly}},
		{"unknown frequency", CreatePlanInput{SaleID: saleID, Amount: 100, Frequency: "DAILY"}},
		{"custom without interval", CreatePlanInput{SaleID: saleID, Amount: 100, Frequency: domain.FrequencyCustom}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePlan(context.Background(), manager(), tc.input)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestCreatePlanRequiresCapability(t *testing.T) {
	svc, _, _, saleID := newTestService()

	client := rbac.Actor{ID: uuid.New(), Roles: []string{rbac.RoleClient}}
	_, err := svc.CreatePlan(context.Background(), client, CreatePlanInput{
		SaleID: saleID, Amount: 100, Frequency: domain.FrequencyMonthly,
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestCancelPlanIsTerminal(t *testing.T) {
	svc, _, _, saleID := newTestService()

	plan, err := svc.CreatePlan(context.Background(), manager(), CreatePlanInput{
		SaleID: saleID, Amount: 100_000, Frequency: domain.FrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := svc.CancelPlan(context.Background(), manager(), plan.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	last := cancelled.UpdateHistory[len(cancelled.UpdateHistory)-1]
	if last.Action != domain.ActionCancel {
		t.Fatalf("last history action = %s, want CANCEL", last.Action)
	}

	_, err = svc.CancelPlan(context.Background(), manager(), plan.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict on re-cancel", err)
	}
}

func TestDispatchDuePublishesAndRollsForward(t *testing.T) {
	svc, store, bus, saleID := newTestService()

	plan, err := svc.CreatePlan(context.Background(), manager(), CreatePlanInput{
		SaleID:       saleID,
		Amount:       500_000,
		Frequency:    domain.FrequencyMonthly,
		FirstDueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := svc.DispatchDue(context.Background())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if n != 1 {
		t.Fatalf("dispatched %d reminders, want 1", n)
	}

	due, ok := bus.published[0].(*events.PaymentPlanDue)
	if !ok {
		t.Fatalf("published %T, want PaymentPlanDue", bus.published[0])
	}
	if due.SaleCode != "SAL-2026-00042" || due.Amount != 500_000 {
		t.Fatalf("event carries %s/%d", due.SaleCode, due.Amount)
	}
	if due.DueDateISO != "2026-03-10" {
		t.Fatalf("due date = %s, want 2026-03-10", due.DueDateISO)
	}

	rolled := store.plans[plan.ID].NextDueDate
	want := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	if !rolled.Equal(want) {
		t.Fatalf("rolled due date = %v, want %v", rolled, want)
	}

	// The rolled-forward plan is no longer due.
	n, err = svc.DispatchDue(context.Background())
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if n != 0 {
		t.Fatalf("dispatched %d reminders after roll-forward, want 0", n)
	}
}

func TestDispatchDueSkipsInactivePlans(t *testing.T) {
	svc, _, bus, saleID := newTestService()

	plan, err := svc.CreatePlan(context.Background(), manager(), CreatePlanInput{
		SaleID:       saleID,
		Amount:       500_000,
		Frequency:    domain.FrequencyWeekly,
		FirstDueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CancelPlan(context.Background(), manager(), plan.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	n, err := svc.DispatchDue(context.Background())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if n != 0 || len(bus.published) != 0 {
		t.Fatalf("dispatched %d reminders for a cancelled plan", n)
	}
}
