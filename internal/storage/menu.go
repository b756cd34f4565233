package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/restaurant-orders/internal/domain/models"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

// MenuFilter отбор блюд на витрине; пустые поля не фильтруют
type MenuFilter struct {
	CategorySlug string
	Tag          models.MenuTag
}

// MenuStorage описывает методы для работы с меню.
type MenuStorage interface {
	// ListAvailable возвращает доступные для заказа блюда, отсортированные по категории и названию.
	ListAvailable(ctx context.Context, filter MenuFilter) ([]*models.MenuItem, error)
	// ListFeatured возвращает доступные блюда, отмеченные для главной страницы, не больше limit.
	ListFeatured(ctx context.Context, limit int) ([]*models.MenuItem, error)
	// ListCategories возвращает все категории по алфавиту.
	ListCategories(ctx context.Context) ([]*models.MenuCategory, error)
	// GetAvailableByID возвращает блюдо, только если оно доступно для заказа.
	GetAvailableByID(ctx context.Context, id int64) (*models.MenuItem, error)
	// GetByIDs возвращает блюда по списку идентификаторов, удалённые просто не попадают в ответ.
	GetByIDs(ctx context.Context, ids []int64) ([]*models.MenuItem, error)
}

// menuRepository — конкретная реализация MenuStorage.
type menuRepository struct {
	db *sql.DB
}

// NewMenuRepository создаёт новый репозиторий меню.
func NewMenuRepository(db *sql.DB) MenuStorage {
	return &menuRepository{db: db}
}

const menuItemColumns = `mi.id, mi.category_id, c.name, mi.name, mi.description, mi.price,
		mi.is_available, mi.is_featured, mi.tag, mi.created_at`

func (r *menuRepository) ListAvailable(ctx context.Context, filter MenuFilter) ([]*models.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items mi
		JOIN menu_categories c ON mi.category_id = c.id
		WHERE mi.is_available = TRUE`
	var args []any
	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		query += fmt.Sprintf(" AND c.slug = $%d", len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		query += fmt.Sprintf(" AND mi.tag = $%d", len(args))
	}
	query += " ORDER BY c.name, mi.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	return scanMenuItems(rows)
}

func (r *menuRepository) ListFeatured(ctx context.Context, limit int) ([]*models.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items mi
		JOIN menu_categories c ON mi.category_id = c.id
		WHERE mi.is_available = TRUE AND mi.is_featured = TRUE
		ORDER BY mi.name
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured menu items: %w", err)
	}
	defer rows.Close()

	return scanMenuItems(rows)
}

func (r *menuRepository) ListCategories(ctx context.Context) ([]*models.MenuCategory, error) {
	query := "SELECT id, name, slug, is_featured FROM menu_categories ORDER BY name"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.MenuCategory
	for rows.Next() {
		c := &models.MenuCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.IsFeatured); err != nil {
			return nil, fmt.Errorf("failed to scan menu category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *menuRepository) GetAvailableByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items mi
		JOIN menu_categories c ON mi.category_id = c.id
		WHERE mi.id = $1 AND mi.is_available = TRUE`
	item, err := scanMenuItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *menuRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items mi
		JOIN menu_categories c ON mi.category_id = c.id
		WHERE mi.id = ANY($1)
		ORDER BY mi.id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items by ids: %w", err)
	}
	defer rows.Close()

	return scanMenuItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(row rowScanner) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	err := row.Scan(&item.ID, &item.CategoryID, &item.CategoryName, &item.Name, &item.Description, &item.Price,
		&item.IsAvailable, &item.IsFeatured, &item.Tag, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func scanMenuItems(rows *sql.Rows) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
