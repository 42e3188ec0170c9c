package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Item is a sellable catalog entry. Its own quantity/reserved fields only
// count toward availability while it has no variations; once variations
// exist they carry the stock.
type Item struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	Name           string    `json:"name"`
	SKU            *string   `json:"sku,omitempty"` // unique per tenant when set
	Price          float64   `json:"price"`
	Description    string    `json:"description,omitempty"`
	Manufacturer   string    `json:"manufacturer,omitempty"`
	PartNumber     string    `json:"part_number,omitempty"`
	Category       string    `json:"category,omitempty"`
	Quantity       int       `json:"quantity"`
	Reserved       int       `json:"reserved"`
	TrackInventory bool      `json:"track_inventory"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Variation is one concrete sellable unit of an item, identified among its
// siblings by the Options map (attribute slug → selected option value).
// Options never change after generation. A non-nil DeletedAt retires the
// variation without removing the row.
type Variation struct {
	ID             uuid.UUID         `json:"id"`
	ItemID         uuid.UUID         `json:"item_id"`
	TenantID       uuid.UUID         `json:"tenant_id"`
	SKU            string            `json:"sku"`
	Price          float64           `json:"price"`
	Quantity       int               `json:"quantity"`
	Reserved       int               `json:"reserved"`
	TrackInventory bool              `json:"track_inventory"`
	Options        map[string]string `json:"options"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// VariationScope selects which variations a listing returns.
type VariationScope string

const (
	// ScopeActive excludes tombstoned variations. This is the default.
	ScopeActive VariationScope = "ACTIVE"
	// ScopeAll returns every variation regardless of tombstone state.
	ScopeAll VariationScope = "ALL"
	// ScopeDeleted returns only tombstoned variations.
	ScopeDeleted VariationScope = "DELETED"
)

// ListFilter narrows and orders an item listing. Sort fields are restricted
// to the externally queryable columns.
type ListFilter struct {
	Category string
	Search   string
	SortBy   string
	SortDesc bool
}
