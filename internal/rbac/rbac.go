// Package rbac centralizes role and capability checks for the back office.
// Services call Require before any state-changing operation so authorization
// rules live in one place instead of being scattered across handlers.
package rbac

import (
	"github.com/google/uuid"

	"estate_sales_backend/platform/apperr"
)

// Role names as they appear in JWT claims.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleAgent   = "AGENT"
	RoleClient  = "CLIENT"
)

// Capability identifies a guarded operation.
type Capability string

const (
	CapabilityManageSales    Capability = "sales:manage"
	CapabilityApproveSales   Capability = "sales:approve"
	CapabilityRecordPayments Capability = "payments:record"
	CapabilityDeletePayments Capability = "payments:delete"
	CapabilityManagePlans    Capability = "plans:manage"
	CapabilityViewLedger     Capability = "ledger:view"
)

// Actor is the authenticated caller as seen by domain services.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// roleCapabilities maps each role to the capabilities it grants.
// Client accounts can view their own ledger but never mutate it.
var roleCapabilities = map[string][]Capability{
	RoleAdmin: {
		CapabilityManageSales,
		CapabilityApproveSales,
		CapabilityRecordPayments,
		CapabilityDeletePayments,
		CapabilityManagePlans,
		CapabilityViewLedger,
	},
	RoleManager: {
		CapabilityManageSales,
		CapabilityApproveSales,
		CapabilityRecordPayments,
		CapabilityDeletePayments,
		CapabilityManagePlans,
		CapabilityViewLedger,
	},
	RoleAgent: {
		CapabilityManageSales,
		CapabilityRecordPayments,
		CapabilityManagePlans,
		CapabilityViewLedger,
	},
	RoleClient: {
		CapabilityViewLedger,
	},
}

// Has reports whether the actor holds the capability through any role.
func (a Actor) Has(capability Capability) bool {
	for _, role := range a.Roles {
		for _, granted := range roleCapabilities[role] {
			if granted == capability {
				return true
			}
		}
	}
	return false
}

// IsManagement reports whether the actor holds a back-office role.
func (a Actor) IsManagement() bool {
	for _, role := range a.Roles {
		if role == RoleAdmin || role == RoleManager || role == RoleAgent {
			return true
		}
	}
	return false
}

// Require returns a Forbidden error unless the actor holds the capability.
func Require(actor Actor, capability Capability) error {
	if actor.Has(capability) {
		return nil
	}
	return apperr.Forbidden("insufficient permissions")
}
