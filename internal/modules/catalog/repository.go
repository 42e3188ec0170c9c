package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for catalog item and variation storage.
type Repository interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItemByID(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Item, error)
	UpdateItem(ctx context.Context, item *Item) error

	// CreateVariations inserts the batch in a single transaction.
	CreateVariations(ctx context.Context, variations []*Variation) error
	// GetVariationByID resolves the variation regardless of tombstone state.
	GetVariationByID(ctx context.Context, tenantID, id uuid.UUID) (*Variation, error)
	ListVariations(ctx context.Context, tenantID, itemID uuid.UUID, scope VariationScope) ([]*Variation, error)
	UpdateVariation(ctx context.Context, v *Variation) error
	// TombstoneVariation sets deleted_at on an active variation and reports
	// whether a row was retired.
	TombstoneVariation(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}
