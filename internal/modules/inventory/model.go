package inventory

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// OwnerType identifies which entity a stock operation addresses.
type OwnerType string

const (
	OwnerCatalogItem OwnerType = "CATALOG_ITEM"
	OwnerVariation   OwnerType = "VARIATION"
)

// OwnerRef addresses the row whose stock is being read or mutated.
type OwnerRef struct {
	Type OwnerType `json:"owner_type"`
	ID   uuid.UUID `json:"owner_id"`
}

// Unlimited is the availability reported for owners that do not track
// inventory.
const Unlimited = math.MaxInt

// State holds an owner's stock counters. Available is always derived, never
// stored.
type State struct {
	Quantity       int  `json:"quantity"`
	Reserved       int  `json:"reserved"`
	TrackInventory bool `json:"track_inventory"`
}

// Available returns max(0, quantity - reserved), or Unlimited when the owner
// does not track inventory.
func (s *State) Available() int {
	if !s.TrackInventory {
		return Unlimited
	}
	if s.Quantity <= s.Reserved {
		return 0
	}
	return s.Quantity - s.Reserved
}

// Adjustment is the immutable audit record written for every quantity
// change. Quantity holds the signed delta actually applied after clamping,
// so QuantityAfter - QuantityBefore == Quantity always holds.
type Adjustment struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	OwnerType      OwnerType `json:"owner_type"`
	OwnerID        uuid.UUID `json:"owner_id"`
	UserID         uuid.UUID `json:"user_id"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	Quantity       int       `json:"quantity"`
	Reason         string    `json:"reason"`
	Notes          string    `json:"notes,omitempty"`
	ReferenceType  string    `json:"reference_type,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Reasons and reference types written by the canonical ledger operations.
const (
	ReasonSale   = "Sale"
	ReasonReturn = "Return"
	ReasonManual = "Manual adjustment"

	ReferenceSale   = "sale"
	ReferenceReturn = "return"
)
