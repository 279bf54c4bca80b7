// Package index keeps catalog records in memory together with the lookup
// structures used to answer substring and exact-barcode queries.
package index

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"catalogbench/internal/models"
)

// ErrCapacity is returned when a batch would overflow the 32-bit row space.
var ErrCapacity = errors.New("index: row capacity exceeded")

// cancelCheckEvery bounds how many candidate rows are visited between
// context checks during a search.
const cancelCheckEvery = 1024

// Catalog is an append-only, in-memory record set with three substring
// indices (code, title, barcode) and an exact barcode index.
//
// Rows are numbered in insertion order. Search results are returned in row
// order, so identical store contents and patterns always yield the same slice.
type Catalog struct {
	mu      sync.RWMutex
	rows    []models.Product
	code    *ngramIndex
	title   *ngramIndex
	barcode *ngramIndex
	// exact maps a barcode to the first row that carried it.
	exact map[string]uint32
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		code:    newNgramIndex(),
		title:   newNgramIndex(),
		barcode: newNgramIndex(),
		exact:   make(map[string]uint32),
	}
}

// Len returns the number of records held.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Add appends products and extends every index with just the new rows.
func (c *Catalog) Add(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if uint64(len(c.rows))+uint64(len(products)) > math.MaxUint32 {
		return ErrCapacity
	}
	base := uint32(len(c.rows))
	c.rows = append(c.rows, products...)

	var g errgroup.Group
	g.Go(func() error {
		for i := range products {
			c.code.add(base+uint32(i), products[i].Code)
		}
		return nil
	})
	g.Go(func() error {
		for i := range products {
			c.title.add(base+uint32(i), products[i].Title)
		}
		return nil
	})
	g.Go(func() error {
		for i := range products {
			c.barcode.add(base+uint32(i), products[i].Barcode)
		}
		return nil
	})
	g.Go(func() error {
		for i := range products {
			if _, ok := c.exact[products[i].Barcode]; !ok {
				c.exact[products[i].Barcode] = base + uint32(i)
			}
		}
		return nil
	})
	return g.Wait()
}

// Search returns up to limit records whose field contains pattern as a
// case-sensitive substring. A limit <= 0 means no cap. An empty pattern
// matches every record.
//
// The context is checked while candidates are verified; a cancelled search
// returns ctx.Err().
func (c *Catalog) Search(ctx context.Context, field models.SearchField, pattern string, limit int) ([]models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if pattern == "" {
		n := len(c.rows)
		if limit > 0 && limit < n {
			n = limit
		}
		out := make([]models.Product, n)
		copy(out, c.rows[:n])
		return out, nil
	}

	candidates, exact := c.candidates(field, pattern)
	if candidates == nil || candidates.IsEmpty() {
		return []models.Product{}, nil
	}

	capHint := int(candidates.GetCardinality())
	if limit > 0 && limit < capHint {
		capHint = limit
	}
	out := make([]models.Product, 0, capHint)

	it := candidates.Iterator()
	for visited := 0; it.HasNext(); visited++ {
		if visited%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := it.Next()
		p := c.rows[row]
		if !exact && !matches(field, &p, pattern) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FindExact returns the first inserted record whose barcode equals barcode.
func (c *Catalog) FindExact(barcode string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.exact[barcode]
	if !ok {
		return models.Product{}, false
	}
	return c.rows[row], true
}

func (c *Catalog) candidates(field models.SearchField, pattern string) (*roaring.Bitmap, bool) {
	switch field {
	case models.SearchFieldCode:
		return c.code.candidates(pattern)
	case models.SearchFieldTitle:
		return c.title.candidates(pattern)
	case models.SearchFieldBarcode:
		return c.barcode.candidates(pattern)
	}

	union := roaring.New()
	exact := true
	for _, x := range []*ngramIndex{c.code, c.title, c.barcode} {
		bm, ok := x.candidates(pattern)
		exact = exact && ok
		if bm != nil {
			union.Or(bm)
		}
	}
	return union, exact
}

func matches(field models.SearchField, p *models.Product, pattern string) bool {
	switch field {
	case models.SearchFieldCode:
		return strings.Contains(p.Code, pattern)
	case models.SearchFieldTitle:
		return strings.Contains(p.Title, pattern)
	case models.SearchFieldBarcode:
		return strings.Contains(p.Barcode, pattern)
	}
	return strings.Contains(p.Code, pattern) ||
		strings.Contains(p.Title, pattern) ||
		strings.Contains(p.Barcode, pattern)
}
