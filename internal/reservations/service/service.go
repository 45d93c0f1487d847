// Package service implements the reservation check that gates every sale
// on a reserved or sold property.
package service

import (
	"context"
	"strings"

	"estate_sales_backend/internal/reservations/repository"
	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
)

// Property statuses the validator cares about.
const (
	statusReserved = "RESERVED"
	statusSold     = "SOLD"
)

// Finder is the slice of the repository the validator needs.
type Finder interface {
	FindByProperty(ctx context.Context, propertyKind string, propertyID uuid.UUID) (*repository.Reservation, error)
}

// Service validates reservation claims against the reservation store.
type Service struct {
	repo Finder
}

// New creates a new reservations service.
func New(repo Finder) *Service {
	return &Service{repo: repo}
}

// Validate checks whether a sale may proceed on the property given its
// current status and the applicant's claimed reservation code or contact
// details. On a matched reservation its id is returned so the sale can
// reference and consume it; for an available property the id is nil.
func (s *Service) Validate(ctx context.Context, propertyKind string, propertyID uuid.UUID, propertyStatus, claimedCode, email, phone string) (*uuid.UUID, error) {
	if propertyStatus == statusSold {
		return nil, apperr.Conflict("property is not available for sale")
	}
	if propertyStatus != statusReserved {
		return nil, nil
	}

	res, err := s.repo.FindByProperty(ctx, propertyKind, propertyID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Conflict("property is reserved but no reservation record exists")
		}
		return nil, err
	}

	if claimedCode != "" && res.Code == claimedCode {
		return &res.ID, nil
	}
	if matchContact(res.ClientEmail, email) || matchContact(res.ClientPhone, phone) {
		return &res.ID, nil
	}
	return nil, apperr.Conflict("property is reserved by another client")
}

func matchContact(stored, claimed string) bool {
	stored = strings.TrimSpace(strings.ToLower(stored))
	claimed = strings.TrimSpace(strings.ToLower(claimed))
	return stored != "" && stored == claimed
}
