package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists owner stock counters and the append-only adjustment
// log.
type Repository interface {
	// GetState reads the owner's current counters without locking.
	GetState(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) (*State, error)

	// Mutate serializes against concurrent mutations of the same owner: it
	// locks the owner row, hands the current state to fn, then writes the
	// updated counters and, when fn returns one, the adjustment row — all in
	// one transaction. An error from fn aborts with no writes. Mutations of
	// different owners do not block one another.
	Mutate(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, fn func(st *State) (*Adjustment, error)) (*Adjustment, error)

	// VariationStates returns the stock counters of the item's active
	// variations.
	VariationStates(ctx context.Context, tenantID, itemID uuid.UUID) ([]*State, error)

	// ListAdjustments returns the owner's audit records, most recent first.
	ListAdjustments(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*Adjustment, error)
}
