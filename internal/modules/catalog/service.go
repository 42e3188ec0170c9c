package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chisomo/mercato-backend/internal/modules/attribute"
)

var (
	// ErrNotFound is returned when an item or variation id does not resolve
	// within the tenant.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrValidation is returned for malformed requests, e.g. generating
	// variations over a non-configurable attribute.
	ErrValidation = errors.New("invalid catalog request")
	// ErrDuplicate is returned for a sku already taken within the tenant or
	// an options combination already present on the item.
	ErrDuplicate = errors.New("duplicate catalog entry")
)

// AttributeSource is the slice of the attribute registry the variation
// generator needs. attribute.Service satisfies it.
type AttributeSource interface {
	GetAttribute(ctx context.Context, tenantID, id uuid.UUID) (*attribute.Attribute, error)
	ListOptions(ctx context.Context, tenantID, attributeID uuid.UUID) ([]*attribute.Option, error)
}

// Service defines catalog business logic: item CRUD, variation generation,
// and tombstone retirement.
type Service interface {
	CreateItem(ctx context.Context, tenantID uuid.UUID, req ItemRequest) (*Item, error)
	GetItem(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Item, error)
	UpdateItem(ctx context.Context, tenantID, id uuid.UUID, req ItemRequest) (*Item, error)

	// GenerateVariations expands the given configurable attributes into one
	// variation per combination of their options. Attributes without options
	// are dropped from the combination space; combinations already present
	// on the item are skipped. Returns the variations created by this call.
	GenerateVariations(ctx context.Context, tenantID, itemID uuid.UUID, attributeIDs []uuid.UUID) ([]*Variation, error)

	GetVariation(ctx context.Context, tenantID, id uuid.UUID) (*Variation, error)
	ListVariations(ctx context.Context, tenantID, itemID uuid.UUID, scope VariationScope) ([]*Variation, error)
	// UpdateVariation mutates only the addressed variation's own fields; the
	// options map and identity are immutable.
	UpdateVariation(ctx context.Context, tenantID, id uuid.UUID, req UpdateVariationRequest) (*Variation, error)
	// DeleteVariation tombstones the variation. Siblings and the parent item
	// are untouched; the row remains retrievable.
	DeleteVariation(ctx context.Context, tenantID, id uuid.UUID) error
}

// ItemRequest holds the data for creating or updating a catalog item.
type ItemRequest struct {
	Name           string  `json:"name"`
	SKU            *string `json:"sku"`
	Price          float64 `json:"price"`
	Description    string  `json:"description"`
	Manufacturer   string  `json:"manufacturer"`
	PartNumber     string  `json:"part_number"`
	Category       string  `json:"category"`
	Quantity       int     `json:"quantity"`
	TrackInventory bool    `json:"track_inventory"`
}

// GenerateVariationsRequest is the payload for variation generation.
type GenerateVariationsRequest struct {
	AttributeIDs []uuid.UUID `json:"attribute_ids"`
}

// UpdateVariationRequest carries the partial fields of a variation update.
// Nil fields are left unchanged.
type UpdateVariationRequest struct {
	SKU            *string  `json:"sku"`
	Price          *float64 `json:"price"`
	Quantity       *int     `json:"quantity"`
	Reserved       *int     `json:"reserved"`
	TrackInventory *bool    `json:"track_inventory"`
}

type service struct {
	repo  Repository
	attrs AttributeSource
}

// NewService creates a new catalog service.
func NewService(repo Repository, attrs AttributeSource) Service {
	return &service{repo: repo, attrs: attrs}
}

func (s *service) CreateItem(ctx context.Context, tenantID uuid.UUID, req ItemRequest) (*Item, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	item := &Item{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Name:           req.Name,
		SKU:            req.SKU,
		Price:          req.Price,
		Description:    req.Description,
		Manufacturer:   req.Manufacturer,
		PartNumber:     req.PartNumber,
		Category:       req.Category,
		Quantity:       req.Quantity,
		TrackInventory: req.TrackInventory,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, tenantID, id uuid.UUID) (*Item, error) {
	return s.repo.GetItemByID(ctx, tenantID, id)
}

func (s *service) ListItems(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Item, error) {
	return s.repo.ListItems(ctx, tenantID, filter)
}

func (s *service) UpdateItem(ctx context.Context, tenantID, id uuid.UUID, req ItemRequest) (*Item, error) {
	item, err := s.repo.GetItemByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	item.Name = req.Name
	item.SKU = req.SKU
	item.Price = req.Price
	item.Description = req.Description
	item.Manufacturer = req.Manufacturer
	item.PartNumber = req.PartNumber
	item.Category = req.Category
	item.TrackInventory = req.TrackInventory
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GenerateVariations(ctx context.Context, tenantID, itemID uuid.UUID, attributeIDs []uuid.UUID) ([]*Variation, error) {
	item, err := s.repo.GetItemByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	// Resolve each attribute to an axis, preserving the caller's order.
	// Attributes with no defined options do not contribute to the space.
	axes := make([]axis, 0, len(attributeIDs))
	for _, attributeID := range attributeIDs {
		attr, err := s.attrs.GetAttribute(ctx, tenantID, attributeID)
		if err != nil {
			return nil, err
		}
		if !attr.IsConfigurable {
			return nil, fmt.Errorf("attribute %q is not configurable: %w", attr.Slug, ErrValidation)
		}
		options, err := s.attrs.ListOptions(ctx, tenantID, attributeID)
		if err != nil {
			return nil, err
		}
		if len(options) == 0 {
			continue
		}
		axes = append(axes, axis{slug: attr.Slug, options: options})
	}
	combos := expand(axes)
	if len(combos) == 0 {
		return []*Variation{}, nil
	}

	existing, err := s.repo.ListVariations(ctx, tenantID, itemID, ScopeActive)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[combinationKey(v.Options)] = true
	}

	baseSKU := attribute.Slugify(item.Name)
	if item.SKU != nil && *item.SKU != "" {
		baseSKU = *item.SKU
	}

	variations := make([]*Variation, 0, len(combos))
	for _, options := range combos {
		key := combinationKey(options)
		if seen[key] {
			continue
		}
		seen[key] = true
		variations = append(variations, &Variation{
			ID:             uuid.New(),
			ItemID:         item.ID,
			TenantID:       tenantID,
			SKU:            variationSKU(baseSKU, axes, options),
			Price:          item.Price,
			TrackInventory: item.TrackInventory,
			Options:        options,
		})
	}
	if len(variations) == 0 {
		return []*Variation{}, nil
	}
	if err := s.repo.CreateVariations(ctx, variations); err != nil {
		return nil, err
	}
	return variations, nil
}

func (s *service) GetVariation(ctx context.Context, tenantID, id uuid.UUID) (*Variation, error) {
	return s.repo.GetVariationByID(ctx, tenantID, id)
}

func (s *service) ListVariations(ctx context.Context, tenantID, itemID uuid.UUID, scope VariationScope) ([]*Variation, error) {
	if scope == "" {
		scope = ScopeActive
	}
	return s.repo.ListVariations(ctx, tenantID, itemID, scope)
}

func (s *service) UpdateVariation(ctx context.Context, tenantID, id uuid.UUID, req UpdateVariationRequest) (*Variation, error) {
	v, err := s.repo.GetVariationByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.SKU != nil {
		v.SKU = *req.SKU
	}
	if req.Price != nil {
		v.Price = *req.Price
	}
	if req.Quantity != nil {
		v.Quantity = *req.Quantity
	}
	if req.Reserved != nil {
		v.Reserved = *req.Reserved
	}
	if req.TrackInventory != nil {
		v.TrackInventory = *req.TrackInventory
	}
	if err := s.repo.UpdateVariation(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) DeleteVariation(ctx context.Context, tenantID, id uuid.UUID) error {
	retired, err := s.repo.TombstoneVariation(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !retired {
		// Either absent or already tombstoned; only the former is an error.
		if _, err := s.repo.GetVariationByID(ctx, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}
