package service

import (
	"context"
	"testing"

	"estate_sales_backend/internal/reservations/repository"
	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeFinder struct {
	reservation *repository.Reservation
	err         error
}

func (f *fakeFinder) FindByProperty(_ context.Context, _ string, _ uuid.UUID) (*repository.Reservation, error) {
	return f.reservation, f.err
}

func TestValidateAvailableProperty(t *testing.T) {
	svc := New(&fakeFinder{err: apperr.NotFound("reservation not found")})

	resID, err := svc.Validate(context.Background(), "HOUSE", uuid.New(), "AVAILABLE", "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resID != nil {
		t.Fatal("expected no reservation id for an available property")
	}
}

func TestValidateSoldPropertyRejected(t *testing.T) {
	svc := New(&fakeFinder{})

	_, err := svc.Validate(context.Background(), "HOUSE", uuid.New(), "SOLD", "RES-1", "a@b.c", "")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestValidateReservedCodeMatch(t *testing.T) {
	res := &repository.Reservation{ID: uuid.New(), Code: "RES-42", ClientEmail: "holder@example.com"}
	svc := New(&fakeFinder{reservation: res})

	resID, err := svc.Validate(context.Background(), "PLOT", uuid.New(), "RESERVED", "RES-42", "other@example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resID == nil || *resID != res.ID {
		t.Fatalf("expected reservation id %s, got %v", res.ID, resID)
	}
}

func TestValidateReservedContactMatch(t *testing.T) {
	res := &repository.Reservation{ID: uuid.New(), Code: "RES-42", ClientPhone: "+2348012345678"}
	svc := New(&fakeFinder{reservation: res})

	resID, err := svc.Validate(context.Background(), "PLOT", uuid.New(), "RESERVED", "", "", "+2348012345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resID == nil || *resID != res.ID {
		t.Fatalf("expected reservation id %s, got %v", res.ID, resID)
	}
}

func TestValidateReservedMismatchRejected(t *testing.T) {
	res := &repository.Reservation{ID: uuid.New(), Code: "RES-42", ClientEmail: "holder@example.com", ClientPhone: "+2348000000000"}
	svc := New(&fakeFinder{reservation: res})

	_, err := svc.Validate(context.Background(), "HOUSE", uuid.New(), "RESERVED", "WRONG", "stranger@example.com", "+2348111111111")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestValidateReservedWithoutRecordRejected(t *testing.T) {
	svc := New(&fakeFinder{err: apperr.NotFound("reservation not found")})

	_, err := svc.Validate(context.Background(), "HOUSE", uuid.New(), "RESERVED", "RES-1", "", "")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestValidateEmptyContactNeverMatches(t *testing.T) {
	res := &repository.Reservation{ID: uuid.New(), Code: "RES-42"}
	svc := New(&fakeFinder{reservation: res})

	_, err := svc.Validate(context.Background(), "HOUSE", uuid.New(), "RESERVED", "", "", "")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}
