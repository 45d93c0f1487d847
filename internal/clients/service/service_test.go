package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"estate_sales_backend/internal/clients/repository"
	"estate_sales_backend/internal/events"
	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	byContact map[string]*repository.Client
	created   []*repository.Client
}

func (f *fakeStore) Create(_ context.Context, fullName, email, phone, passwordHash string) (*repository.Client, error) {
	c := &repository.Client{ID: uuid.New(), FullName: fullName, Email: email, Phone: phone, PasswordHash: passwordHash}
	f.created = append(f.created, c)
	return c, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Client, error) {
	for _, c := range f.created {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperr.NotFound("client not found")
}

func (f *fakeStore) FindByContact(_ context.Context, email, phone string) (*repository.Client, error) {
	if c, ok := f.byContact[email]; ok && email != "" {
		return c, nil
	}
	if c, ok := f.byContact[phone]; ok && phone != "" {
		return c, nil
	}
	return nil, apperr.NotFound("client not found")
}

func (f *fakeStore) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	for _, c := range f.created {
		if c.ID == id {
			c.PasswordHash = hash
			return nil
		}
	}
	return apperr.NotFound("client not found")
}

func (f *fakeStore) List(_ context.Context) ([]repository.Client, error) {
	return nil, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

type accountConfig struct{}

func (accountConfig) GetDefaultClientPassword() string { return "changeme123" }
func (accountConfig) GetPhoneRegion() string           { return "NG" }

func TestResolveOrCreateFindsExisting(t *testing.T) {
	existing := &repository.Client{ID: uuid.New(), FullName: "Ada Obi", Email: "ada@example.com"}
	store := &fakeStore{byContact: map[string]*repository.Client{"ada@example.com": existing}}
	svc := New(store, accountConfig{})

	got, err := svc.ResolveOrCreate(context.Background(), Profile{Name: "Ada Obi", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("resolved to %s, want existing %s", got.ID, existing.ID)
	}
	if len(store.created) != 0 {
		t.Fatal("must not create a new account when one exists")
	}
}

func TestResolveOrCreateProvisionsNewAccount(t *testing.T) {
	store := &fakeStore{byContact: map[string]*repository.Client{}}
	svc := New(store, accountConfig{})
	bus := &recordingBus{}
	svc.SetEventBus(bus)

	got, err := svc.ResolveOrCreate(context.Background(), Profile{
		Name:  "Chidi Okeke",
		Email: "chidi@example.com",
		Phone: "08012345678",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d accounts, want 1", len(store.created))
	}
	if got.Phone != "+2348012345678" {
		t.Fatalf("phone = %q, want E.164 normalized", got.Phone)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("changeme123")); err != nil {
		t.Fatal("default credential not set")
	}

	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	created, ok := bus.published[0].(*events.ClientAccountCreated)
	if !ok {
		t.Fatalf("published %T, want ClientAccountCreated", bus.published[0])
	}
	if created.ClientID != got.ID {
		t.Fatalf("event client id = %s, want %s", created.ClientID, got.ID)
	}
}

func TestResolveOrCreateLeadSkipsCredential(t *testing.T) {
	store := &fakeStore{byContact: map[string]*repository.Client{}}
	svc := New(store, accountConfig{})
	bus := &recordingBus{}
	svc.SetEventBus(bus)

	got, err := svc.ResolveOrCreateLead(context.Background(), Profile{
		Name:  "Chidi Okeke",
		Email: "chidi@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PasswordHash != "" {
		t.Fatal("a lead must not carry a credential")
	}
	if len(bus.published) != 0 {
		t.Fatalf("published %d events, want none for a lead", len(bus.published))
	}
}

func TestProvisionAccountSetsCredentialOnce(t *testing.T) {
	store := &fakeStore{byContact: map[string]*repository.Client{}}
	svc := New(store, accountConfig{})
	bus := &recordingBus{}
	svc.SetEventBus(bus)

	lead, err := svc.ResolveOrCreateLead(context.Background(), Profile{
		Name:  "Chidi Okeke",
		Email: "chidi@example.com",
	})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	if err := svc.ProvisionAccount(context.Background(), lead.ID); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(store.created[0].PasswordHash), []byte("changeme123")); err != nil {
		t.Fatal("default credential not set on provisioning")
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	if _, ok := bus.published[0].(*events.ClientAccountCreated); !ok {
		t.Fatalf("published %T, want ClientAccountCreated", bus.published[0])
	}

	// Re-provisioning an already credentialed client is a no-op.
	if err := svc.ProvisionAccount(context.Background(), lead.ID); err != nil {
		t.Fatalf("second provision: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events after re-provision, want still 1", len(bus.published))
	}
}

func TestResolveOrCreateRequiresContact(t *testing.T) {
	svc := New(&fakeStore{byContact: map[string]*repository.Client{}}, accountConfig{})

	_, err := svc.ResolveOrCreate(context.Background(), Profile{Name: "No Contact"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}
