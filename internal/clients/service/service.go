// Package service provisions and resolves client accounts for sales.
package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"estate_sales_backend/internal/clients/repository"
	"estate_sales_backend/internal/events"
	"estate_sales_backend/platform/apperr"
	"estate_sales_backend/platform/config"
	"estate_sales_backend/platform/phone"

	"github.com/google/uuid"
)

// Store is the slice of the repository the service needs.
type Store interface {
	Create(ctx context.Context, fullName, email, phone, passwordHash string) (*repository.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Client, error)
	FindByContact(ctx context.Context, email, phone string) (*repository.Client, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	List(ctx context.Context) ([]repository.Client, error)
}

// Profile is the contact block used to resolve or provision a client.
type Profile struct {
	Name  string
	Email string
	Phone string
}

// Service resolves sale applicants to client accounts.
type Service struct {
	repo     Store
	cfg      config.ClientAccountConfig
	eventBus events.Bus
}

// New creates a new clients service.
func New(repo Store, cfg config.ClientAccountConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// SetEventBus wires the event bus for account-created notifications.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// GetByID returns a client by id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*repository.Client, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all clients.
func (s *Service) List(ctx context.Context) ([]repository.Client, error) {
	return s.repo.List(ctx)
}

// ResolveOrCreate finds an existing client by phone or email, or
// provisions a new account with the default initial credential and emits
// an account-created event. This runs at most once per sale.
func (s *Service) ResolveOrCreate(ctx context.Context, p Profile) (*repository.Client, error) {
	existing, created, err := s.resolveOrInsert(ctx, p, true)
	if err != nil {
		return nil, err
	}
	if created && s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewClientAccountCreated(existing.ID, existing.FullName, existing.Email, existing.Phone))
	}
	return existing, nil
}

// ResolveOrCreateLead resolves a public applicant to a client record
// without provisioning credentials or announcing an account. The record
// becomes a real account through ProvisionAccount when the sale is
// approved.
func (s *Service) ResolveOrCreateLead(ctx context.Context, p Profile) (*repository.Client, error) {
	client, _, err := s.resolveOrInsert(ctx, p, false)
	return client, err
}

// ProvisionAccount sets the default initial credential on a client that
// has none yet and emits the account-created event. Already credentialed
// clients are left untouched.
func (s *Service) ProvisionAccount(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client.PasswordHash != "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.GetDefaultClientPassword()), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default credential: %w", err)
	}
	if err := s.repo.SetPasswordHash(ctx, id, string(hash)); err != nil {
		return err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewClientAccountCreated(client.ID, client.FullName, client.Email, client.Phone))
	}
	return nil
}

func (s *Service) resolveOrInsert(ctx context.Context, p Profile, credentialed bool) (*repository.Client, bool, error) {
	if p.Email == "" && p.Phone == "" {
		return nil, false, apperr.Validation("client email or phone is required")
	}

	normalized := phone.NormalizeE164(p.Phone, s.cfg.GetPhoneRegion())

	existing, err := s.repo.FindByContact(ctx, p.Email, normalized)
	if err == nil {
		return existing, false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, false, err
	}

	hash := ""
	if credentialed {
		hashed, err := bcrypt.GenerateFromPassword([]byte(s.cfg.GetDefaultClientPassword()), bcrypt.DefaultCost)
		if err != nil {
			return nil, false, fmt.Errorf("hash default credential: %w", err)
		}
		hash = string(hashed)
	}

	created, err := s.repo.Create(ctx, p.Name, p.Email, normalized, hash)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
