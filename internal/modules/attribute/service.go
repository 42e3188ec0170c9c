package attribute

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	// ErrNotFound is returned when an attribute or assignment id does not
	// resolve within the tenant.
	ErrNotFound = errors.New("attribute not found")
	// ErrValidation is returned when a value fails the attribute's type
	// check or references an unknown option.
	ErrValidation = errors.New("invalid attribute value")
)

// RequirePolicy controls whether empty values on required attributes are
// rejected at assignment time or deferred to the form layer.
type RequirePolicy string

const (
	// RequireDeferred leaves required-ness to the caller; assignment only
	// performs the type-level check.
	RequireDeferred RequirePolicy = "DEFERRED"
	// RequireOnAssign rejects empty values for required attributes.
	RequireOnAssign RequirePolicy = "ON_ASSIGN"
)

// Service defines the attribute registry business logic.
type Service interface {
	DefineAttribute(ctx context.Context, tenantID uuid.UUID, req DefineAttributeRequest) (*Attribute, error)
	UpdateAttribute(ctx context.Context, tenantID, id uuid.UUID, req UpdateAttributeRequest) (*Attribute, error)
	GetAttribute(ctx context.Context, tenantID, id uuid.UUID) (*Attribute, error)
	ListAttributes(ctx context.Context, tenantID uuid.UUID, configurableOnly bool) ([]*Attribute, error)

	DefineOption(ctx context.Context, tenantID, attributeID uuid.UUID, req DefineOptionRequest) (*Option, error)
	// ListOptions returns the attribute's options in sort order. The
	// attribute must resolve within the tenant.
	ListOptions(ctx context.Context, tenantID, attributeID uuid.UUID) ([]*Option, error)

	// ValidateValue runs the type-level check for a value against the
	// attribute's declared data type and option set.
	ValidateValue(ctx context.Context, tenantID, attributeID uuid.UUID, value any) (bool, error)

	// AssignAttribute validates and stores a value, overwriting any existing
	// assignment for the same (owner, attribute) pair.
	AssignAttribute(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID, value any) (*Assignment, error)
	// AssignAttributes applies each entry independently; failures for one
	// attribute do not roll back the others.
	AssignAttributes(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, values map[uuid.UUID]any) (*BulkAssignResult, error)
	// RemoveAttribute reports whether an assignment existed.
	RemoveAttribute(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (bool, error)

	// GetValue returns the stored option's value or the custom value, nil
	// when the owner has no assignment for the attribute.
	GetValue(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (any, error)
	// DisplayValue renders an assignment for display; MULTISELECT values are
	// comma-joined.
	DisplayValue(ctx context.Context, tenantID uuid.UUID, a *Assignment) (string, error)
	AttributesForDisplay(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*DisplayRow, error)
}

// DefineAttributeRequest holds the data for creating or updating an attribute.
type DefineAttributeRequest struct {
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	DataType       DataType `json:"data_type"`
	IsConfigurable bool     `json:"is_configurable"`
	IsRequired     bool     `json:"is_required"`
	IsFilterable   bool     `json:"is_filterable"`
}

// UpdateAttributeRequest holds a partial update; nil fields are left
// untouched.
type UpdateAttributeRequest struct {
	Name           *string   `json:"name"`
	Slug           *string   `json:"slug"`
	DataType       *DataType `json:"data_type"`
	IsConfigurable *bool     `json:"is_configurable"`
	IsRequired     *bool     `json:"is_required"`
	IsFilterable   *bool     `json:"is_filterable"`
}

// DefineOptionRequest holds the data for adding a predefined option.
type DefineOptionRequest struct {
	Value     string `json:"value"`
	Code      string `json:"code"`
	SortOrder int    `json:"sort_order"`
}

// BulkAssignResult reports the outcome of a bulk assignment, entry by entry.
type BulkAssignResult struct {
	Applied []*Assignment        `json:"applied"`
	Failed  map[uuid.UUID]string `json:"failed,omitempty"`
}

type service struct {
	repo          Repository
	assignments   AssignmentRepository
	optionCache   *cache.Cache
	requirePolicy RequirePolicy
}

// NewService creates a new attribute registry service. Option sets are
// read-mostly, so they are cached with a short TTL and invalidated when an
// option is defined.
func NewService(repo Repository, assignments AssignmentRepository, policy RequirePolicy) Service {
	if policy == "" {
		policy = RequireDeferred
	}
	return &service{
		repo:          repo,
		assignments:   assignments,
		optionCache:   cache.New(5*time.Minute, 10*time.Minute),
		requirePolicy: policy,
	}
}

func (s *service) DefineAttribute(ctx context.Context, tenantID uuid.UUID, req DefineAttributeRequest) (*Attribute, error) {
	if err := validDataType(req.DataType); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}
	a := &Attribute{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Name:           req.Name,
		Slug:           slug,
		DataType:       req.DataType,
		IsConfigurable: req.IsConfigurable,
		IsRequired:     req.IsRequired,
		IsFilterable:   req.IsFilterable,
	}
	if err := s.repo.CreateAttribute(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAttribute applies the request to an existing attribute. A data type
// change re-scopes validation for future assignments only; stored assignments
// are not re-validated or migrated.
func (s *service) UpdateAttribute(ctx context.Context, tenantID, id uuid.UUID, req UpdateAttributeRequest) (*Attribute, error) {
	a, err := s.repo.GetAttributeByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.DataType != nil {
		if err := validDataType(*req.DataType); err != nil {
			return nil, err
		}
		a.DataType = *req.DataType
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Slug != nil {
		a.Slug = *req.Slug
	}
	if req.IsConfigurable != nil {
		a.IsConfigurable = *req.IsConfigurable
	}
	if req.IsRequired != nil {
		a.IsRequired = *req.IsRequired
	}
	if req.IsFilterable != nil {
		a.IsFilterable = *req.IsFilterable
	}
	if err := s.repo.UpdateAttribute(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) GetAttribute(ctx context.Context, tenantID, id uuid.UUID) (*Attribute, error) {
	return s.repo.GetAttributeByID(ctx, tenantID, id)
}

func (s *service) ListAttributes(ctx context.Context, tenantID uuid.UUID, configurableOnly bool) ([]*Attribute, error) {
	return s.repo.ListAttributes(ctx, tenantID, configurableOnly)
}

func (s *service) DefineOption(ctx context.Context, tenantID, attributeID uuid.UUID, req DefineOptionRequest) (*Option, error) {
	if req.Value == "" {
		return nil, fmt.Errorf("option value is required: %w", ErrValidation)
	}
	if _, err := s.repo.GetAttributeByID(ctx, tenantID, attributeID); err != nil {
		return nil, err
	}
	o := &Option{
		ID:          uuid.New(),
		AttributeID: attributeID,
		Value:       req.Value,
		Code:        req.Code,
		SortOrder:   req.SortOrder,
	}
	if err := s.repo.CreateOption(ctx, o); err != nil {
		return nil, err
	}
	s.optionCache.Delete(attributeID.String())
	return o, nil
}

func (s *service) ListOptions(ctx context.Context, tenantID, attributeID uuid.UUID) ([]*Option, error) {
	if _, err := s.repo.GetAttributeByID(ctx, tenantID, attributeID); err != nil {
		return nil, err
	}
	return s.cachedOptions(ctx, attributeID)
}

func (s *service) ValidateValue(ctx context.Context, tenantID, attributeID uuid.UUID, value any) (bool, error) {
	a, err := s.repo.GetAttributeByID(ctx, tenantID, attributeID)
	if err != nil {
		return false, err
	}
	opts, err := s.cachedOptions(ctx, attributeID)
	if err != nil {
		return false, err
	}
	return ValidateValue(a, opts, value), nil
}

func (s *service) AssignAttribute(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID, value any) (*Assignment, error) {
	a, err := s.repo.GetAttributeByID(ctx, tenantID, attributeID)
	if err != nil {
		return nil, err
	}
	opts, err := s.cachedOptions(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	if s.requirePolicy == RequireOnAssign && a.IsRequired && isEmptyValue(value) {
		return nil, fmt.Errorf("attribute %q is required: %w", a.Slug, ErrValidation)
	}
	if !ValidateValue(a, opts, value) {
		return nil, fmt.Errorf("value does not satisfy %s attribute %q: %w", a.DataType, a.Slug, ErrValidation)
	}

	assignment := &Assignment{
		ID:          uuid.New(),
		TenantID:    tenantID,
		OwnerType:   owner.Type,
		OwnerID:     owner.ID,
		AttributeID: a.ID,
	}
	// SELECT values that match a predefined option are stored as a reference;
	// everything else, MULTISELECT arrays included, becomes a custom value.
	if a.DataType == TypeSelect {
		o := matchOption(opts, value.(string))
		assignment.OptionID = &o.ID
	} else {
		stored, err := encodeCustomValue(a.DataType, value)
		if err != nil {
			return nil, err
		}
		assignment.CustomValue = &stored
	}
	if err := s.assignments.UpsertAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *service) AssignAttributes(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, values map[uuid.UUID]any) (*BulkAssignResult, error) {
	result := &BulkAssignResult{Failed: map[uuid.UUID]string{}}
	for attributeID, value := range values {
		a, err := s.AssignAttribute(ctx, tenantID, owner, attributeID, value)
		if err != nil {
			result.Failed[attributeID] = err.Error()
			continue
		}
		result.Applied = append(result.Applied, a)
	}
	return result, nil
}

func (s *service) RemoveAttribute(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (bool, error) {
	return s.assignments.DeleteAssignment(ctx, tenantID, owner, attributeID)
}

func (s *service) GetValue(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (any, error) {
	assignment, err := s.assignments.GetAssignment(ctx, tenantID, owner, attributeID)
	if err != nil || assignment == nil {
		return nil, err
	}
	return s.rawValue(ctx, tenantID, assignment)
}

func (s *service) DisplayValue(ctx context.Context, tenantID uuid.UUID, a *Assignment) (string, error) {
	attr, err := s.repo.GetAttributeByID(ctx, tenantID, a.AttributeID)
	if err != nil {
		return "", err
	}
	return s.renderValue(ctx, attr, a)
}

func (s *service) AttributesForDisplay(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*DisplayRow, error) {
	assignments, err := s.assignments.ListAssignments(ctx, tenantID, owner)
	if err != nil {
		return nil, err
	}
	rows := make([]*DisplayRow, 0, len(assignments))
	for _, assignment := range assignments {
		attr, err := s.repo.GetAttributeByID(ctx, tenantID, assignment.AttributeID)
		if err != nil {
			return nil, err
		}
		raw, err := s.rawValue(ctx, tenantID, assignment)
		if err != nil {
			return nil, err
		}
		display, err := s.renderValue(ctx, attr, assignment)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &DisplayRow{Attribute: attr, Value: raw, Display: display})
	}
	return rows, nil
}

// rawValue resolves an assignment to the option's value or the custom value.
// MULTISELECT custom values are decoded back into their element list.
func (s *service) rawValue(ctx context.Context, tenantID uuid.UUID, a *Assignment) (any, error) {
	if a.OptionID != nil {
		o, err := s.optionByID(ctx, a.AttributeID, *a.OptionID)
		if err != nil {
			return nil, err
		}
		return o.Value, nil
	}
	if a.CustomValue == nil {
		return nil, nil
	}
	attr, err := s.repo.GetAttributeByID(ctx, tenantID, a.AttributeID)
	if err != nil {
		return nil, err
	}
	if attr.DataType == TypeMultiSelect {
		items, err := decodeMultiValue(*a.CustomValue)
		if err != nil {
			return nil, err
		}
		return items, nil
	}
	return *a.CustomValue, nil
}

func (s *service) renderValue(ctx context.Context, attr *Attribute, a *Assignment) (string, error) {
	if a.OptionID != nil {
		o, err := s.optionByID(ctx, a.AttributeID, *a.OptionID)
		if err != nil {
			return "", err
		}
		return o.Value, nil
	}
	if a.CustomValue == nil {
		return "", nil
	}
	if attr.DataType == TypeMultiSelect {
		items, err := decodeMultiValue(*a.CustomValue)
		if err != nil {
			return "", err
		}
		return strings.Join(items, ", "), nil
	}
	return *a.CustomValue, nil
}

func (s *service) optionByID(ctx context.Context, attributeID, optionID uuid.UUID) (*Option, error) {
	opts, err := s.cachedOptions(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	for _, o := range opts {
		if o.ID == optionID {
			return o, nil
		}
	}
	return nil, fmt.Errorf("option %s: %w", optionID, ErrNotFound)
}

func (s *service) cachedOptions(ctx context.Context, attributeID uuid.UUID) ([]*Option, error) {
	key := attributeID.String()
	if cached, ok := s.optionCache.Get(key); ok {
		return cached.([]*Option), nil
	}
	opts, err := s.repo.ListOptionsByAttribute(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	s.optionCache.Set(key, opts, cache.DefaultExpiration)
	return opts, nil
}

func validDataType(dt DataType) error {
	switch dt {
	case TypeText, TypeNumber, TypeBoolean, TypeSelect, TypeMultiSelect:
		return nil
	}
	return fmt.Errorf("unknown data type %q: %w", dt, ErrValidation)
}

// Slugify turns a display name into a lowercase slug (e.g. "Part Number" →
// "part-number").
func Slugify(name string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
