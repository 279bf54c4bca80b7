// Package generator synthesizes catalog records from static vocabulary tables.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"catalogbench/internal/models"
)

// BarcodeLength is the number of digits in a generated barcode.
const BarcodeLength = 12

// Generator produces synthetic products. It is not safe for concurrent use
// because the underlying random source is not.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator drawing from rng. A nil rng gets a time-seeded source.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// NewSeeded creates a Generator whose output is reproducible for a given seed.
func NewSeeded(seed int64) *Generator {
	return New(rand.New(rand.NewSource(seed)))
}

// Categories returns the fixed category symbols.
func Categories() []string {
	out := make([]string, len(categoryKeys))
	copy(out, categoryKeys)
	return out
}

// RandomCategory draws a category uniformly.
func (g *Generator) RandomCategory() string {
	return categoryKeys[g.rng.Intn(len(categoryKeys))]
}

// Product builds the record for sequence id within category.
func (g *Generator) Product(id int64, category string) models.Product {
	return models.Product{
		ID:       id,
		Code:     GenerateCode(category, id),
		Title:    g.Title(category, id),
		Barcode:  g.Barcode(),
		Supplier: pick(g.rng, suppliers),
		Stock:    g.Stock(),
		IsActive: g.rng.Intn(100) < 75,
	}
}

// GenerateCode formats the product code, e.g. "ELEC-00042".
func GenerateCode(category string, id int64) string {
	return fmt.Sprintf("%s-%05d", category, id)
}

// Title picks the template by id mod 4 and fills it with random vocabulary.
func (g *Generator) Title(category string, id int64) string {
	items, ok := categoryItems[category]
	if !ok {
		items = categoryItems[categoryKeys[g.rng.Intn(len(categoryKeys))]]
	}
	item := pick(g.rng, items)

	switch id % 4 {
	case 0:
		return fmt.Sprintf("%s %s %s", pick(g.rng, adjectives), item, pick(g.rng, measurements))
	case 1:
		return fmt.Sprintf("%s, %s, %s", item, pick(g.rng, specifications), pick(g.rng, measurements))
	case 2:
		return fmt.Sprintf("%s %s %s", pick(g.rng, specifications), pick(g.rng, adjectives), item)
	default:
		return fmt.Sprintf("%s %s %s Grade", item, pick(g.rng, measurements), pick(g.rng, adjectives))
	}
}

// Barcode draws a 3-digit prefix and a 7-digit body and appends two check
// digits: the checksum over the first ten digits, then the checksum over the
// first eleven. Uniqueness is not enforced.
func (g *Generator) Barcode() string {
	prefix := 100 + g.rng.Intn(900)
	body := 1000000 + g.rng.Intn(9000000)
	digits := []byte(fmt.Sprintf("%03d%07d", prefix, body))
	digits = append(digits, '0'+CheckDigit(string(digits)))
	digits = append(digits, '0'+CheckDigit(string(digits)))
	return string(digits)
}

// CheckDigit computes the alternating-weight check digit over digits: weight 3
// at even positions and 1 at odd positions, counted from the most significant
// digit. Non-digit bytes are ignored.
func CheckDigit(digits string) byte {
	sum := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			continue
		}
		weight := 1
		if i%2 == 0 {
			weight = 3
		}
		sum += int(c-'0') * weight
	}
	return byte((10 - sum%10) % 10)
}

// ValidBarcode reports whether s is twelve digits whose last digit is the
// check digit of the preceding eleven.
func ValidBarcode(s string) bool {
	if len(s) != BarcodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s[BarcodeLength-1]-'0' == CheckDigit(s[:BarcodeLength-1])
}

// Stock draws from three bands: 30% in [0,10), 50% in [10,1000) and 20% in
// [1000,10000), rounded to two decimals.
func (g *Generator) Stock() float64 {
	var lo, hi float64
	switch band := g.rng.Intn(10); {
	case band <= 2:
		lo, hi = 0, 10
	case band <= 7:
		lo, hi = 10, 1000
	default:
		lo, hi = 1000, 10000
	}
	return RoundCents(lo + g.rng.Float64()*(hi-lo))
}

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}
