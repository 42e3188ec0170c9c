package attribute

import (
	"time"

	"github.com/google/uuid"
)

// DataType determines which values an attribute accepts.
type DataType string

const (
	TypeText        DataType = "TEXT"
	TypeNumber      DataType = "NUMBER"
	TypeBoolean     DataType = "BOOLEAN"
	TypeSelect      DataType = "SELECT"
	TypeMultiSelect DataType = "MULTISELECT"
)

// OwnerType identifies the kind of entity an assignment belongs to.
type OwnerType string

const (
	OwnerCatalogItem OwnerType = "CATALOG_ITEM"
	OwnerVariation   OwnerType = "VARIATION"
)

// OwnerRef addresses the entity an assignment is attached to.
type OwnerRef struct {
	Type OwnerType `json:"owner_type"`
	ID   uuid.UUID `json:"owner_id"`
}

// Attribute is a named, typed schema field that catalog items and variations
// can carry values for. Changing DataType re-scopes validation for future
// assignments only; stored assignments are left as-is.
type Attribute struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	DataType       DataType  `json:"data_type"`
	IsConfigurable bool      `json:"is_configurable"`
	IsRequired     bool      `json:"is_required"`
	IsFilterable   bool      `json:"is_filterable"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Option is one predefined legal value for a SELECT/MULTISELECT attribute.
type Option struct {
	ID          uuid.UUID `json:"id"`
	AttributeID uuid.UUID `json:"attribute_id"`
	Value       string    `json:"value"`
	Code        string    `json:"code,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// Assignment stores the value of one attribute on one owner. Exactly one of
// OptionID / CustomValue is set: predefined SELECT values reference the
// option row, everything else (including MULTISELECT arrays) is stored as a
// custom text value.
type Assignment struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	OwnerType   OwnerType  `json:"owner_type"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	AttributeID uuid.UUID  `json:"attribute_id"`
	OptionID    *uuid.UUID `json:"option_id,omitempty"`
	CustomValue *string    `json:"custom_value,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DisplayRow pairs an attribute with the raw and rendered value stored on an
// owner, for listing on detail screens.
type DisplayRow struct {
	Attribute *Attribute `json:"attribute"`
	Value     any        `json:"value"`
	Display   string     `json:"display"`
}
