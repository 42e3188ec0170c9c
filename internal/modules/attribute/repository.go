package attribute

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for attribute schema storage.
type Repository interface {
	CreateAttribute(ctx context.Context, a *Attribute) error
	GetAttributeByID(ctx context.Context, tenantID, id uuid.UUID) (*Attribute, error)
	ListAttributes(ctx context.Context, tenantID uuid.UUID, configurableOnly bool) ([]*Attribute, error)
	UpdateAttribute(ctx context.Context, a *Attribute) error

	CreateOption(ctx context.Context, o *Option) error
	// ListOptionsByAttribute returns options ordered by sort order, then value.
	ListOptionsByAttribute(ctx context.Context, attributeID uuid.UUID) ([]*Option, error)
}

// AssignmentRepository defines the interface for stored attribute values.
type AssignmentRepository interface {
	// UpsertAssignment overwrites any existing assignment for the same
	// (owner, attribute) pair.
	UpsertAssignment(ctx context.Context, a *Assignment) error
	// GetAssignment returns nil, nil when the owner has no value for the
	// attribute.
	GetAssignment(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (*Assignment, error)
	ListAssignments(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*Assignment, error)
	// DeleteAssignment reports whether an assignment existed.
	DeleteAssignment(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (bool, error)
}
