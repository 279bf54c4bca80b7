package repositories

import (
	"context"
	"errors"
	"fmt"

	"catalogbench/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrProductNotFound is returned by FindByBarcode when no record carries
	// the barcode.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct is returned when a record in a batch violates the
	// catalog constraints.
	ErrInvalidProduct = errors.New("invalid product")
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
	// InsertBatch appends records. Callers guarantee ids are unique and may
	// reuse the slice once the call returns.
	InsertBatch(ctx context.Context, products []models.Product) error
	// Search returns at most limit records whose field contains pattern.
	Search(ctx context.Context, field models.SearchField, pattern string, limit int) ([]models.Product, error)
	// FindByBarcode returns the first inserted record with the exact barcode.
	FindByBarcode(ctx context.Context, barcode string) (*models.Product, error)
}

var validate = validator.New()

func validateBatch(products []models.Product) error {
	for i := range products {
		if err := validate.Struct(&products[i]); err != nil {
			return fmt.Errorf("%w: id %d: %v", ErrInvalidProduct, products[i].ID, err)
		}
	}
	return nil
}
