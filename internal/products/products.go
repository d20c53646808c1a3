package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSlugTaken        = errors.New("category slug already in use")
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

const productColumns = `id, name, description, price, original_price, image_url, stock, featured, category_id, created_at, updated_at`

func (c Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	product := Product{
		ID:            uuid.NewString(),
		Name:          np.Name,
		Description:   np.Description,
		Price:         np.Price,
		OriginalPrice: np.OriginalPrice,
		ImageURL:      np.ImageURL,
		Stock:         np.Stock,
		Featured:      np.Featured,
		CategoryID:    np.CategoryID,
	}

	query := `
		INSERT INTO products (id, name, description, price, original_price, image_url, stock, featured, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := c.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.OriginalPrice,
		product.ImageURL, product.Stock, product.Featured, product.CategoryID).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Product{}, ErrCategoryNotFound
		}
		return Product{}, fmt.Errorf("inserting product: %w", err)
	}
	return product, nil
}

func (c Conf) GetProductByID(ctx context.Context, productID string) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	row := c.db.QueryRowContext(ctx, query, productID)

	product, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("querying product: %w", err)
	}
	return product, nil
}

// UpdateProductInDB overwrites all mutable fields of an existing product.
func (c Conf) UpdateProductInDB(ctx context.Context, productID string, np NewProduct) (Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, original_price = $4,
		    image_url = $5, stock = $6, featured = $7, category_id = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + productColumns
	row := c.db.QueryRowContext(ctx, query,
		np.Name, np.Description, np.Price, np.OriginalPrice,
		np.ImageURL, np.Stock, np.Featured, np.CategoryID, productID)

	product, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Product{}, ErrCategoryNotFound
		}
		return Product{}, fmt.Errorf("updating product: %w", err)
	}
	return product, nil
}

func (c Conf) DeleteProductFromDB(ctx context.Context, productID string) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListProductsFromDB returns the catalog, newest first, optionally filtered
// by category and featured flag.
func (c Conf) ListProductsFromDB(ctx context.Context, categoryID string, featured *bool) ([]Product, error) {
	var conditions []string
	var args []any

	if categoryID != "" {
		args = append(args, categoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if featured != nil {
		args = append(args, *featured)
		conditions = append(conditions, fmt.Sprintf("featured = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	return c.queryProducts(ctx, query, args...)
}

// SearchProducts matches product names case-insensitively.
func (c Conf) SearchProducts(ctx context.Context, search string) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name ILIKE $1 ORDER BY created_at DESC`
	return c.queryProducts(ctx, query, "%"+search+"%")
}

func (c Conf) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

func scanProduct(scan func(dest ...any) error) (Product, error) {
	var product Product
	err := scan(&product.ID, &product.Name, &product.Description, &product.Price,
		&product.OriginalPrice, &product.ImageURL, &product.Stock, &product.Featured,
		&product.CategoryID, &product.CreatedAt, &product.UpdatedAt)
	return product, err
}

func (c Conf) InsertCategory(ctx context.Context, nc NewCategory) (Category, error) {
	category := Category{
		ID:          uuid.NewString(),
		Name:        nc.Name,
		Slug:        nc.Slug,
		Description: nc.Description,
		ImageURL:    nc.ImageURL,
	}

	query := `
		INSERT INTO categories (id, name, slug, description, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	err := c.db.QueryRowContext(ctx, query,
		category.ID, category.Name, category.Slug, category.Description, category.ImageURL).
		Scan(&category.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrSlugTaken
		}
		return Category{}, fmt.Errorf("inserting category: %w", err)
	}
	return category, nil
}

func (c Conf) ListCategories(ctx context.Context) ([]Category, error) {
	query := `SELECT id, name, slug, description, image_url, created_at FROM categories ORDER BY name`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug,
			&category.Description, &category.ImageURL, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

func (c Conf) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	query := `SELECT id, name, slug, description, image_url, created_at FROM categories WHERE slug = $1`
	var category Category
	err := c.db.QueryRowContext(ctx, query, slug).Scan(&category.ID, &category.Name,
		&category.Slug, &category.Description, &category.ImageURL, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrCategoryNotFound
		}
		return Category{}, fmt.Errorf("querying category: %w", err)
	}
	return category, nil
}
