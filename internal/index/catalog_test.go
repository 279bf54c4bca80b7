package index_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"catalogbench/internal/generator"
	"catalogbench/internal/index"
	"catalogbench/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []models.Product {
	return []models.Product{
		{ID: 0, Code: "ELEC-00000", Title: "Premium LED Light 10mm", Barcode: "123456789012", Supplier: "Acme Industries", Stock: 5},
		{ID: 1, Code: "TOOL-00001", Title: "Hammer, Large, 2m", Barcode: "555000111222", Supplier: "Acme Industries", Stock: 50},
		{ID: 2, Code: "FOOD-00002", Title: "Small Organic Rice", Barcode: "987654321098", Supplier: "Acme Industries", Stock: 500},
		{ID: 3, Code: "ELEC-00003", Title: "Capacitor 5kg Basic Grade", Barcode: "123456789012", Supplier: "Acme Industries", Stock: 5000},
	}
}

func ids(products []models.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestCatalog_SearchByField(t *testing.T) {
	c := index.New()
	require.NoError(t, c.Add(fixture()))
	ctx := context.Background()

	tests := []struct {
		name    string
		field   models.SearchField
		pattern string
		want    []int64
	}{
		{"code prefix", models.SearchFieldCode, "ELEC", []int64{0, 3}},
		{"code suffix", models.SearchFieldCode, "00002", []int64{2}},
		{"short pattern", models.SearchFieldCode, "T", []int64{1}},
		{"title infix", models.SearchFieldTitle, "LED Li", []int64{0}},
		{"title case sensitive", models.SearchFieldTitle, "led", []int64{}},
		{"title no match", models.SearchFieldTitle, "Wrench", []int64{}},
		{"barcode", models.SearchFieldBarcode, "4567", []int64{0, 3}},
		{"any across fields", models.SearchFieldAny, "00", []int64{0, 1, 2, 3}},
		{"any title only", models.SearchFieldAny, "Rice", []int64{2}},
		{"any barcode only", models.SearchFieldAny, "5550", []int64{1}},
		{"grams present but not adjacent", models.SearchFieldTitle, "Ligh 10", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Search(ctx, tt.field, tt.pattern, 100)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(got))
		})
	}
}

func TestCatalog_SearchLimitAndStableOrder(t *testing.T) {
	c := index.New()
	g := generator.NewSeeded(5)
	batch := make([]models.Product, 0, 500)
	for i := int64(0); i < 500; i++ {
		batch = append(batch, g.Product(i, "ELEC"))
	}
	require.NoError(t, c.Add(batch[:250]))
	require.NoError(t, c.Add(batch[250:]))
	assert.Equal(t, 500, c.Len())

	ctx := context.Background()
	first, err := c.Search(ctx, models.SearchFieldAny, "ELEC-", 100)
	require.NoError(t, err)
	assert.Len(t, first, 100)

	second, err := c.Search(ctx, models.SearchFieldAny, "ELEC-", 100)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	all, err := c.Search(ctx, models.SearchFieldCode, "ELEC-", 0)
	require.NoError(t, err)
	assert.Len(t, all, 500)

	empty, err := c.Search(ctx, models.SearchFieldAny, "", 100)
	require.NoError(t, err)
	assert.Len(t, empty, 100)
}

func TestCatalog_SearchMatchesLinearScan(t *testing.T) {
	c := index.New()
	g := generator.NewSeeded(9)
	batch := make([]models.Product, 0, 2000)
	for i := int64(0); i < 2000; i++ {
		batch = append(batch, g.Product(i, g.RandomCategory()))
	}
	require.NoError(t, c.Add(batch))

	for _, pattern := range []string{"Oil", "Heavy-Duty", "5kg", "-0019", "Grade", "9", "Pa", "Quick-Release Pl"} {
		var want []int64
		for _, p := range batch {
			if strings.Contains(p.Code, pattern) || strings.Contains(p.Title, pattern) || strings.Contains(p.Barcode, pattern) {
				want = append(want, p.ID)
			}
		}
		got, err := c.Search(context.Background(), models.SearchFieldAny, pattern, 0)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, ids(got), "pattern %q", pattern)
	}
}

func TestCatalog_SearchCancelled(t *testing.T) {
	c := index.New()
	require.NoError(t, c.Add(fixture()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, models.SearchFieldAny, "0", 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog_FindExact(t *testing.T) {
	c := index.New()
	require.NoError(t, c.Add(fixture()))

	p, ok := c.FindExact("123456789012")
	require.True(t, ok)
	// First inserted wins on collision.
	assert.Equal(t, int64(0), p.ID)

	p, ok = c.FindExact("555000111222")
	require.True(t, ok)
	assert.Equal(t, "TOOL-00001", p.Code)

	_, ok = c.FindExact("000000000000")
	assert.False(t, ok)
	_, ok = c.FindExact("12345678901")
	assert.False(t, ok)
}

func BenchmarkCatalog_Search(b *testing.B) {
	c := index.New()
	g := generator.NewSeeded(1)
	const total = 100000
	for start := int64(0); start < total; start += 1000 {
		batch := make([]models.Product, 0, 1000)
		for id := start; id < start+1000; id++ {
			batch = append(batch, g.Product(id, g.RandomCategory()))
		}
		if err := c.Add(batch); err != nil {
			b.Fatal(err)
		}
	}

	ctx := context.Background()
	for _, pattern := range []string{"ELEC", "Premium Solar", "123", fmt.Sprintf("%05d", 4242)} {
		b.Run(pattern, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := c.Search(ctx, models.SearchFieldAny, pattern, 100); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
