package attribute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ---- Attributes & options ----

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateAttribute(ctx context.Context, a *Attribute) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attributes
		  (id, tenant_id, name, slug, data_type, is_configurable, is_required, is_filterable)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.TenantID, a.Name, a.Slug, a.DataType,
		a.IsConfigurable, a.IsRequired, a.IsFilterable)
	return err
}

func (r *postgresRepo) GetAttributeByID(ctx context.Context, tenantID, id uuid.UUID) (*Attribute, error) {
	a := &Attribute{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, slug, data_type, is_configurable, is_required, is_filterable, created_at, updated_at
		FROM attributes WHERE id=$1 AND tenant_id=$2`, id, tenantID).
		Scan(&a.ID, &a.TenantID, &a.Name, &a.Slug, &a.DataType,
			&a.IsConfigurable, &a.IsRequired, &a.IsFilterable, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attribute %s: %w", id, ErrNotFound)
	}
	return a, err
}

func (r *postgresRepo) ListAttributes(ctx context.Context, tenantID uuid.UUID, configurableOnly bool) ([]*Attribute, error) {
	query := `
		SELECT id, tenant_id, name, slug, data_type, is_configurable, is_required, is_filterable, created_at, updated_at
		FROM attributes WHERE tenant_id=$1`
	if configurableOnly {
		query += ` AND is_configurable=true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attrs []*Attribute
	for rows.Next() {
		a := &Attribute{}
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Name, &a.Slug, &a.DataType,
			&a.IsConfigurable, &a.IsRequired, &a.IsFilterable, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func (r *postgresRepo) UpdateAttribute(ctx context.Context, a *Attribute) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attributes
		SET name=$1, slug=$2, data_type=$3, is_configurable=$4, is_required=$5, is_filterable=$6, updated_at=NOW()
		WHERE id=$7 AND tenant_id=$8`,
		a.Name, a.Slug, a.DataType, a.IsConfigurable, a.IsRequired, a.IsFilterable, a.ID, a.TenantID)
	return err
}

func (r *postgresRepo) CreateOption(ctx context.Context, o *Option) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attribute_options (id, attribute_id, value, code, sort_order)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.AttributeID, o.Value, o.Code, o.SortOrder)
	return err
}

func (r *postgresRepo) ListOptionsByAttribute(ctx context.Context, attributeID uuid.UUID) ([]*Option, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, attribute_id, value, code, sort_order, created_at
		FROM attribute_options WHERE attribute_id=$1 ORDER BY sort_order, value`, attributeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var opts []*Option
	for rows.Next() {
		o := &Option{}
		if err := rows.Scan(&o.ID, &o.AttributeID, &o.Value, &o.Code, &o.SortOrder, &o.CreatedAt); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// ---- Assignments ----

type assignmentPostgres struct{ db *sql.DB }

func NewAssignmentPostgresRepository(db *sql.DB) AssignmentRepository {
	return &assignmentPostgres{db: db}
}

func (r *assignmentPostgres) UpsertAssignment(ctx context.Context, a *Assignment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attribute_assignments
		  (id, tenant_id, owner_type, owner_id, attribute_id, option_id, custom_value)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (owner_type, owner_id, attribute_id)
		DO UPDATE SET option_id=EXCLUDED.option_id, custom_value=EXCLUDED.custom_value, updated_at=NOW()`,
		a.ID, a.TenantID, a.OwnerType, a.OwnerID, a.AttributeID, a.OptionID, a.CustomValue)
	return err
}

func (r *assignmentPostgres) GetAssignment(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (*Assignment, error) {
	a := &Assignment{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, owner_type, owner_id, attribute_id, option_id, custom_value, created_at, updated_at
		FROM attribute_assignments
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3 AND attribute_id=$4`,
		tenantID, owner.Type, owner.ID, attributeID).
		Scan(&a.ID, &a.TenantID, &a.OwnerType, &a.OwnerID, &a.AttributeID,
			&a.OptionID, &a.CustomValue, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *assignmentPostgres) ListAssignments(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, owner_type, owner_id, attribute_id, option_id, custom_value, created_at, updated_at
		FROM attribute_assignments
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3
		ORDER BY created_at`, tenantID, owner.Type, owner.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []*Assignment
	for rows.Next() {
		a := &Assignment{}
		if err := rows.Scan(&a.ID, &a.TenantID, &a.OwnerType, &a.OwnerID, &a.AttributeID,
			&a.OptionID, &a.CustomValue, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *assignmentPostgres) DeleteAssignment(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM attribute_assignments
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3 AND attribute_id=$4`,
		tenantID, owner.Type, owner.ID, attributeID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
