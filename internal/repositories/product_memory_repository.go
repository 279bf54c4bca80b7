package repositories

import (
	"context"
	"fmt"

	"catalogbench/internal/index"
	"catalogbench/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Nothing survives a restart; it backs tests and throwaway benchmark runs.
type MemoryProductRepository struct {
	catalog *index.Catalog
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		catalog: index.New(),
	}
}

// Count returns the number of records held.
func (r *MemoryProductRepository) Count(ctx context.Context) (int64, error) {
	return int64(r.catalog.Len()), nil
}

// InsertBatch validates and appends products.
func (r *MemoryProductRepository) InsertBatch(ctx context.Context, products []models.Product) error {
	if err := validateBatch(products); err != nil {
		return err
	}
	if err := r.catalog.Add(products); err != nil {
		return fmt.Errorf("failed to index products: %w", err)
	}
	return nil
}

// Search runs a substring query against the in-memory indices.
func (r *MemoryProductRepository) Search(ctx context.Context, field models.SearchField, pattern string, limit int) ([]models.Product, error) {
	return r.catalog.Search(ctx, field, pattern, limit)
}

// FindByBarcode looks a barcode up in the exact-match index.
func (r *MemoryProductRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	p, ok := r.catalog.FindExact(barcode)
	if !ok {
		return nil, fmt.Errorf("%w: barcode %s", ErrProductNotFound, barcode)
	}
	return &p, nil
}
