package e2e_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/mcncl/marshalkit/internal/marshalling"
	"github.com/mcncl/marshalkit/internal/models"
	"github.com/stretchr/testify/require"
)

type benchItem struct {
	ID       int               `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Value    float64           `json:"value" yaml:"value"`
	Active   bool              `json:"active" yaml:"active"`
	Tags     []string          `json:"tags" yaml:"tags"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
}

type benchCatalog struct {
	Items []benchItem `json:"items" yaml:"items"`
}

// generateCatalog creates a catalog with the given number of items
func generateCatalog(size int) benchCatalog {
	rng := rand.New(rand.NewSource(42))

	items := make([]benchItem, size)
	for i := range items {
		items[i] = benchItem{
			ID:     i,
			Name:   fmt.Sprintf("Item %d", i),
			Value:  rng.Float64() * 100,
			Active: i%2 == 0,
			Tags:   []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
			Metadata: map[string]string{
				"category": fmt.Sprintf("Category %d", i%5),
			},
		}
	}
	return benchCatalog{Items: items}
}

var benchSizes = []struct {
	name string
	size int
}{
	{"Items10", 10},
	{"Items100", 100},
	{"Items1000", 1000},
}

// BenchmarkMarshal benchmarks wrapping values under a root tag
func BenchmarkMarshal(b *testing.B) {
	for _, format := range []models.Format{models.FormatJSON, models.FormatYAML} {
		m, err := marshalling.New(format)
		require.NoError(b, err)

		for _, size := range benchSizes {
			b.Run(fmt.Sprintf("%s/%s", format, size.name), func(b *testing.B) {
				catalog := generateCatalog(size.size)

				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := m.Marshal(catalog, "catalog"); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkUnmarshal benchmarks the direct path against the envelope fallback
func BenchmarkUnmarshal(b *testing.B) {
	for _, format := range []models.Format{models.FormatJSON, models.FormatYAML} {
		m, err := marshalling.New(format)
		require.NoError(b, err)

		for _, size := range benchSizes {
			catalog := generateCatalog(size.size)

			wrapped, err := m.Marshal(catalog, "catalog")
			require.NoError(b, err)

			// {"items": [...]} binds to benchCatalog without unwrapping.
			direct, err := m.Marshal(catalog.Items, "items")
			require.NoError(b, err)

			b.Run(fmt.Sprintf("%s/Fallback/%s", format, size.name), func(b *testing.B) {
				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var out benchCatalog
					if err := m.Unmarshal(wrapped, &out); err != nil {
						b.Fatal(err)
					}
				}
			})

			b.Run(fmt.Sprintf("%s/Direct/%s", format, size.name), func(b *testing.B) {
				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var out benchCatalog
					if err := m.Unmarshal(direct, &out); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
