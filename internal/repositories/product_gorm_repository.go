package repositories

import (
	"context"
	"fmt"

	"catalogbench/internal/index"
	"catalogbench/internal/models"

	"gorm.io/gorm"
)

const (
	// insertChunk keeps each INSERT statement under the bind-variable limit of
	// older sqlite builds.
	insertChunk = 250
	loadChunk   = 1000
)

// GORMProductRepository persists records through GORM and answers queries
// from in-memory indices that are extended on every insert and rebuilt from
// the table by Load.
type GORMProductRepository struct {
	db      *gorm.DB
	catalog *index.Catalog
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
// Call Load before serving queries against a previously seeded catalog.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db:      db,
		catalog: index.New(),
	}
}

// Load reads every persisted record, in primary key order, into the indices.
// It is a no-op once the indices hold data.
func (r *GORMProductRepository) Load(ctx context.Context) error {
	if r.catalog.Len() > 0 {
		return nil
	}

	var batch []models.Product
	res := r.db.WithContext(ctx).FindInBatches(&batch, loadChunk, func(tx *gorm.DB, _ int) error {
		return r.catalog.Add(batch)
	})
	if res.Error != nil {
		return fmt.Errorf("failed to load catalog: %w", res.Error)
	}
	return nil
}

// Count returns the number of rows in the products table.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// InsertBatch writes products in a single transaction and then indexes them.
func (r *GORMProductRepository) InsertBatch(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	if err := validateBatch(products); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(products, insertChunk).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}

	if err := r.catalog.Add(products); err != nil {
		return fmt.Errorf("failed to index products: %w", err)
	}
	return nil
}

// Search answers a substring query from the in-memory indices.
func (r *GORMProductRepository) Search(ctx context.Context, field models.SearchField, pattern string, limit int) ([]models.Product, error) {
	return r.catalog.Search(ctx, field, pattern, limit)
}

// FindByBarcode looks a barcode up in the exact-match index.
func (r *GORMProductRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	p, ok := r.catalog.FindExact(barcode)
	if !ok {
		return nil, fmt.Errorf("%w: barcode %s", ErrProductNotFound, barcode)
	}
	return &p, nil
}

// SearchSQL runs the same substring query directly against the database,
// bypassing the in-memory indices. It exists to compare the two paths.
func (r *GORMProductRepository) SearchSQL(ctx context.Context, field models.SearchField, pattern string, limit int) ([]models.Product, error) {
	contains := "instr(%s, ?) > 0"
	if r.db.Dialector.Name() == "postgres" {
		contains = "strpos(%s, ?) > 0"
	}

	q := r.db.WithContext(ctx).Model(&models.Product{})
	switch field {
	case models.SearchFieldCode, models.SearchFieldTitle, models.SearchFieldBarcode:
		q = q.Where(fmt.Sprintf(contains, string(field)), pattern)
	default:
		q = q.Where(fmt.Sprintf(contains, "code"), pattern).
			Or(fmt.Sprintf(contains, "title"), pattern).
			Or(fmt.Sprintf(contains, "barcode"), pattern)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var products []models.Product
	if err := q.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}
