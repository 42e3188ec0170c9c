package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// ownerTable maps an owner type to the table carrying its stock counters.
func ownerTable(t OwnerType) (string, error) {
	switch t {
	case OwnerCatalogItem:
		return "catalog_items", nil
	case OwnerVariation:
		return "variations", nil
	}
	return "", fmt.Errorf("unknown owner type %q: %w", t, ErrValidation)
}

func (r *postgresRepo) GetState(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) (*State, error) {
	table, err := ownerTable(owner.Type)
	if err != nil {
		return nil, err
	}
	st := &State{}
	err = r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT quantity, reserved, track_inventory FROM %s WHERE id=$1 AND tenant_id=$2`, table),
		owner.ID, tenantID).Scan(&st.Quantity, &st.Reserved, &st.TrackInventory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", owner.Type, owner.ID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Mutate locks the owner row with SELECT ... FOR UPDATE so concurrent
// mutations of the same owner serialize, then writes the new counters and
// the adjustment (when any) before committing. Rows of other owners stay
// unlocked throughout.
func (r *postgresRepo) Mutate(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, fn func(st *State) (*Adjustment, error)) (*Adjustment, error) {
	table, err := ownerTable(owner.Type)
	if err != nil {
		return nil, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	st := &State{}
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT quantity, reserved, track_inventory FROM %s WHERE id=$1 AND tenant_id=$2 FOR UPDATE`, table),
		owner.ID, tenantID).Scan(&st.Quantity, &st.Reserved, &st.TrackInventory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", owner.Type, owner.ID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock stock row: %w", err)
	}

	adj, err := fn(st)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET quantity=$1, reserved=$2, updated_at=NOW() WHERE id=$3 AND tenant_id=$4`, table),
		st.Quantity, st.Reserved, owner.ID, tenantID); err != nil {
		return nil, fmt.Errorf("update stock row: %w", err)
	}
	if adj != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_adjustments
			  (id, tenant_id, owner_type, owner_id, user_id, quantity_before, quantity_after, quantity, reason, notes, reference_type, reference_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			adj.ID, adj.TenantID, adj.OwnerType, adj.OwnerID, adj.UserID,
			adj.QuantityBefore, adj.QuantityAfter, adj.Quantity,
			adj.Reason, adj.Notes, adj.ReferenceType, adj.ReferenceID); err != nil {
			return nil, fmt.Errorf("insert adjustment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit stock mutation: %w", err)
	}
	return adj, nil
}

func (r *postgresRepo) VariationStates(ctx context.Context, tenantID, itemID uuid.UUID) ([]*State, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT quantity, reserved, track_inventory
		FROM variations WHERE item_id=$1 AND tenant_id=$2 AND deleted_at IS NULL`, itemID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var states []*State
	for rows.Next() {
		st := &State{}
		if err := rows.Scan(&st.Quantity, &st.Reserved, &st.TrackInventory); err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

func (r *postgresRepo) ListAdjustments(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*Adjustment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, owner_type, owner_id, user_id, quantity_before, quantity_after, quantity, reason, notes, reference_type, reference_id, created_at
		FROM inventory_adjustments
		WHERE tenant_id=$1 AND owner_type=$2 AND owner_id=$3
		ORDER BY created_at DESC`, tenantID, owner.Type, owner.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var adjustments []*Adjustment
	for rows.Next() {
		a := &Adjustment{}
		if err := rows.Scan(&a.ID, &a.TenantID, &a.OwnerType, &a.OwnerID, &a.UserID,
			&a.QuantityBefore, &a.QuantityAfter, &a.Quantity,
			&a.Reason, &a.Notes, &a.ReferenceType, &a.ReferenceID, &a.CreatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}
