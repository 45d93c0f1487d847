// Package transport defines the request and response shapes for the
// clients HTTP API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}
