package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// translateErr maps Postgres unique violations onto the package sentinel so
// sku and combination clashes surface as ErrDuplicate.
func translateErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pqErr.Constraint, ErrDuplicate)
	}
	return err
}

// ---- Items ----

func (r *postgresRepo) CreateItem(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_items
		  (id, tenant_id, name, sku, price, description, manufacturer, part_number, category, quantity, reserved, track_inventory)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		item.ID, item.TenantID, item.Name, item.SKU, item.Price, item.Description,
		item.Manufacturer, item.PartNumber, item.Category,
		item.Quantity, item.Reserved, item.TrackInventory)
	return translateErr(err)
}

func scanItem(scan func(...interface{}) error) (*Item, error) {
	item := &Item{}
	err := scan(&item.ID, &item.TenantID, &item.Name, &item.SKU, &item.Price,
		&item.Description, &item.Manufacturer, &item.PartNumber, &item.Category,
		&item.Quantity, &item.Reserved, &item.TrackInventory,
		&item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

const itemColumns = `id, tenant_id, name, sku, price, description, manufacturer, part_number, category, quantity, reserved, track_inventory, created_at, updated_at`

func (r *postgresRepo) GetItemByID(ctx context.Context, tenantID, id uuid.UUID) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM catalog_items WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	return scanItem(row.Scan)
}

// sortColumns whitelists the externally orderable fields.
var sortColumns = map[string]string{
	"name":         "name",
	"sku":          "sku",
	"price":        "price",
	"manufacturer": "manufacturer",
	"part_number":  "part_number",
	"created_at":   "created_at",
}

func (r *postgresRepo) ListItems(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE tenant_id=$1`
	args := []interface{}{tenantID}
	n := 2
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category=$%d`, n)
		args = append(args, filter.Category)
		n++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d OR description ILIKE $%d OR manufacturer ILIKE $%d OR part_number ILIKE $%d)`, n, n, n, n, n)
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, column, direction)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) UpdateItem(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE catalog_items
		SET name=$1, sku=$2, price=$3, description=$4, manufacturer=$5,
		    part_number=$6, category=$7, track_inventory=$8, updated_at=NOW()
		WHERE id=$9 AND tenant_id=$10`,
		item.Name, item.SKU, item.Price, item.Description, item.Manufacturer,
		item.PartNumber, item.Category, item.TrackInventory, item.ID, item.TenantID)
	return translateErr(err)
}

// ---- Variations ----

const variationColumns = `id, item_id, tenant_id, sku, price, quantity, reserved, track_inventory, options, deleted_at, created_at, updated_at`

func (r *postgresRepo) CreateVariations(ctx context.Context, variations []*Variation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, v := range variations {
		options, err := json.Marshal(v.Options)
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO variations
			  (id, item_id, tenant_id, sku, price, quantity, reserved, track_inventory, options)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			v.ID, v.ItemID, v.TenantID, v.SKU, v.Price,
			v.Quantity, v.Reserved, v.TrackInventory, options); err != nil {
			return translateErr(err)
		}
	}
	return tx.Commit()
}

func scanVariation(scan func(...interface{}) error) (*Variation, error) {
	v := &Variation{}
	var options []byte
	err := scan(&v.ID, &v.ItemID, &v.TenantID, &v.SKU, &v.Price,
		&v.Quantity, &v.Reserved, &v.TrackInventory, &options,
		&v.DeletedAt, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &v.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return v, nil
}

func (r *postgresRepo) GetVariationByID(ctx context.Context, tenantID, id uuid.UUID) (*Variation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+variationColumns+` FROM variations WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	return scanVariation(row.Scan)
}

func (r *postgresRepo) ListVariations(ctx context.Context, tenantID, itemID uuid.UUID, scope VariationScope) ([]*Variation, error) {
	query := `SELECT ` + variationColumns + ` FROM variations WHERE item_id=$1 AND tenant_id=$2`
	switch scope {
	case ScopeAll:
	case ScopeDeleted:
		query += ` AND deleted_at IS NOT NULL`
	default:
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at, sku`

	rows, err := r.db.QueryContext(ctx, query, itemID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var variations []*Variation
	for rows.Next() {
		v, err := scanVariation(rows.Scan)
		if err != nil {
			return nil, err
		}
		variations = append(variations, v)
	}
	return variations, rows.Err()
}

func (r *postgresRepo) UpdateVariation(ctx context.Context, v *Variation) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE variations
		SET sku=$1, price=$2, quantity=$3, reserved=$4, track_inventory=$5, updated_at=NOW()
		WHERE id=$6 AND tenant_id=$7`,
		v.SKU, v.Price, v.Quantity, v.Reserved, v.TrackInventory, v.ID, v.TenantID)
	return translateErr(err)
}

func (r *postgresRepo) TombstoneVariation(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE variations SET deleted_at=NOW(), updated_at=NOW()
		WHERE id=$1 AND tenant_id=$2 AND deleted_at IS NULL`, id, tenantID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
