package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/teamates/cafe-api/internal/domain/menu"
)

const (
	menuColumns = `id, name, description, price, category, available, image, created_at, updated_at`

	listMenuSQL          = `SELECT ` + menuColumns + ` FROM menu_items ORDER BY category, name`
	listAvailableMenuSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE available ORDER BY category, name`
	getMenuItemSQL       = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`
	getMenuItemsSQL      = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ANY($1)`

	createMenuItemSQL = `INSERT INTO menu_items (id, name, description, price, category, available, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateMenuItemSQL = `UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5, available = $6, image = $7, updated_at = now()
		WHERE id = $1`

	setMenuAvailabilitySQL = `UPDATE menu_items SET available = $2, updated_at = now() WHERE id = $1`

	deleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// List returns catalog items, optionally limited to available ones.
func (r *MenuRepository) List(ctx context.Context, onlyAvailable bool) ([]menu.Item, error) {
	query := listMenuSQL
	if onlyAvailable {
		query = listAvailableMenuSQL
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// GetByID returns a single menu item by its identifier.
func (r *MenuRepository) GetByID(ctx context.Context, id string) (*menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}
	return &item, nil
}

// GetByIDs returns menu items matching any of the given IDs.
func (r *MenuRepository) GetByIDs(ctx context.Context, ids []string) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting menu items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// Create inserts a new catalog item.
func (r *MenuRepository) Create(ctx context.Context, item *menu.Item) error {
	_, err := r.pool.Exec(ctx, createMenuItemSQL,
		item.ID, item.Name, item.Description, item.Price, item.Category, item.Available, item.Image,
	)
	if err != nil {
		return fmt.Errorf("creating menu item %q: %w", item.ID, err)
	}
	return nil
}

// Update replaces all mutable fields of a catalog item.
func (r *MenuRepository) Update(ctx context.Context, item *menu.Item) error {
	tag, err := r.pool.Exec(ctx, updateMenuItemSQL,
		item.ID, item.Name, item.Description, item.Price, item.Category, item.Available, item.Image,
	)
	if err != nil {
		return fmt.Errorf("updating menu item %q: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// SetAvailability toggles the availability flag of a catalog item.
func (r *MenuRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	tag, err := r.pool.Exec(ctx, setMenuAvailabilitySQL, id, available)
	if err != nil {
		return fmt.Errorf("setting availability for %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// Delete removes a catalog item.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting menu item %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var (
		item  menu.Item
		price decimal.Decimal
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &price, &item.Category,
		&item.Available, &item.Image, &item.CreatedAt, &item.UpdatedAt,
	)
	item.Price = price
	return item, err
}
