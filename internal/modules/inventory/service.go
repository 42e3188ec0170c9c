package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when the owner row does not resolve within the
	// tenant.
	ErrNotFound = errors.New("stock owner not found")
	// ErrTrackingDisabled is returned by every mutating operation on an
	// owner with track_inventory=false. Nothing is written.
	ErrTrackingDisabled = errors.New("inventory tracking disabled")
	// ErrInsufficientStock is returned when a reservation would exceed the
	// owner's quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrValidation is returned for malformed operations, e.g. a
	// non-positive sale quantity.
	ErrValidation = errors.New("invalid stock operation")
)

// Service defines the inventory ledger business logic. Every quantity change
// is applied and audited atomically; concurrent operations against one owner
// serialize at the storage layer.
type Service interface {
	// Available returns max(0, quantity - reserved), Unlimited for untracked
	// owners. For a catalog item that owns active variations it is the sum
	// of the variations' availability instead of the item's raw counters.
	Available(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) (int, error)

	// Reserve holds qty units against future commitment. Quantity is
	// untouched and no audit record is written.
	Reserve(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int) error
	// Release frees previously reserved units, flooring reserved at zero.
	Release(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int) error

	// DecrementForSale reduces quantity by qty, clamped at zero; the audit
	// record carries the delta actually applied. Reserved is untouched.
	DecrementForSale(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int, saleReferenceID string, userID uuid.UUID) (*Adjustment, error)
	// IncrementForReturn adds qty back to quantity.
	IncrementForReturn(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int, returnReferenceID string, userID uuid.UUID) (*Adjustment, error)
	// Adjust applies a signed delta with free-form reason and metadata.
	Adjust(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, req AdjustRequest, userID uuid.UUID) (*Adjustment, error)

	// History returns the owner's adjustments, most recent first.
	History(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*Adjustment, error)
}

// AdjustRequest holds the data for a free-form inventory adjustment.
type AdjustRequest struct {
	Quantity      int    `json:"quantity"` // signed delta
	Reason        string `json:"reason"`
	Notes         string `json:"notes"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
}

type service struct {
	repo Repository
}

// NewService creates a new inventory ledger service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Available(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) (int, error) {
	st, err := s.repo.GetState(ctx, tenantID, owner)
	if err != nil {
		return 0, err
	}
	if !st.TrackInventory {
		return Unlimited, nil
	}
	if owner.Type == OwnerCatalogItem {
		variations, err := s.repo.VariationStates(ctx, tenantID, owner.ID)
		if err != nil {
			return 0, err
		}
		if len(variations) > 0 {
			// Stock lives on the variations; the item's raw counters do not
			// count. Untracked variations contribute nothing to the sum.
			total := 0
			for _, v := range variations {
				if v.TrackInventory {
					total += v.Available()
				}
			}
			return total, nil
		}
	}
	return st.Available(), nil
}

func (s *service) Reserve(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve quantity must be positive: %w", ErrValidation)
	}
	_, err := s.repo.Mutate(ctx, tenantID, owner, func(st *State) (*Adjustment, error) {
		if !st.TrackInventory {
			return nil, ErrTrackingDisabled
		}
		if st.Reserved+qty > st.Quantity {
			return nil, fmt.Errorf("cannot reserve %d of %d (%d already reserved): %w",
				qty, st.Quantity, st.Reserved, ErrInsufficientStock)
		}
		st.Reserved += qty
		return nil, nil
	})
	return err
}

func (s *service) Release(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release quantity must be positive: %w", ErrValidation)
	}
	_, err := s.repo.Mutate(ctx, tenantID, owner, func(st *State) (*Adjustment, error) {
		if !st.TrackInventory {
			return nil, ErrTrackingDisabled
		}
		st.Reserved -= qty
		if st.Reserved < 0 {
			st.Reserved = 0
		}
		return nil, nil
	})
	return err
}

func (s *service) DecrementForSale(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int, saleReferenceID string, userID uuid.UUID) (*Adjustment, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("sale quantity must be positive: %w", ErrValidation)
	}
	return s.applyDelta(ctx, tenantID, owner, -qty, ReasonSale, "", ReferenceSale, saleReferenceID, userID)
}

func (s *service) IncrementForReturn(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, qty int, returnReferenceID string, userID uuid.UUID) (*Adjustment, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("return quantity must be positive: %w", ErrValidation)
	}
	return s.applyDelta(ctx, tenantID, owner, qty, ReasonReturn, "", ReferenceReturn, returnReferenceID, userID)
}

func (s *service) Adjust(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, req AdjustRequest, userID uuid.UUID) (*Adjustment, error) {
	reason := req.Reason
	if reason == "" {
		reason = ReasonManual
	}
	return s.applyDelta(ctx, tenantID, owner, req.Quantity, reason, req.Notes, req.ReferenceType, req.ReferenceID, userID)
}

func (s *service) History(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*Adjustment, error) {
	return s.repo.ListAdjustments(ctx, tenantID, owner)
}

// applyDelta performs the clamped quantity mutation and its audit write as
// one atomic unit.
func (s *service) applyDelta(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, delta int, reason, notes, referenceType, referenceID string, userID uuid.UUID) (*Adjustment, error) {
	return s.repo.Mutate(ctx, tenantID, owner, func(st *State) (*Adjustment, error) {
		if !st.TrackInventory {
			return nil, ErrTrackingDisabled
		}
		before := st.Quantity
		after := before + delta
		if after < 0 {
			after = 0
		}
		st.Quantity = after
		return &Adjustment{
			ID:             uuid.New(),
			TenantID:       tenantID,
			OwnerType:      owner.Type,
			OwnerID:        owner.ID,
			UserID:         userID,
			QuantityBefore: before,
			QuantityAfter:  after,
			Quantity:       after - before,
			Reason:         reason,
			Notes:          notes,
			ReferenceType:  referenceType,
			ReferenceID:    referenceID,
		}, nil
	})
}
