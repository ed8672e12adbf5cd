// Package catalog defines the catalog acquisition collaborator: given a
// search keyword it returns fashion items. Real scraping lives behind the
// Source interface; the SampleSource generates plausible items for demo and
// test use.
package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/okian/fitfindr/internal/domain/model"
)

// DefaultFetchSize bounds a search when the caller does not supply one.
const DefaultFetchSize = 20

// Source returns catalog items for a search keyword.
type Source interface {
	// Search returns up to max items for the keyword. Implementations own
	// their retry/timeout behavior; callers treat failures as the catalog
	// being temporarily unavailable.
	Search(ctx context.Context, keyword string, max int) ([]model.Item, error)
}

// styleCategories maps a named style to keywords that select it from a
// search phrase.
var styleCategories = map[string][]string{ //nolint:gochecknoglobals // immutable table
	"vintage":    {"vintage", "retro", "classic", "timeless"},
	"streetwear": {"street", "urban", "casual", "cool"},
	"formal":     {"elegant", "sophisticated", "professional"},
	"casual":     {"relaxed", "comfortable", "everyday"},
	"bohemian":   {"boho", "free-spirited", "artistic"},
	"minimalist": {"clean", "simple", "modern"},
}

// styleCategoryOrder fixes detection order for deterministic output.
var styleCategoryOrder = []string{"vintage", "streetwear", "formal", "casual", "bohemian", "minimalist"} //nolint:gochecknoglobals // immutable table order

// itemTemplate groups the sample titles for one category.
type itemTemplate struct {
	category model.Category
	titles   []string
}

var itemTemplates = []itemTemplate{ //nolint:gochecknoglobals // immutable sample data
	{model.CategoryTop, []string{
		"Vintage Band T-Shirt", "Oversized Hoodie", "Cropped Sweater",
		"Button-Up Shirt", "Graphic Tee", "Blouse",
	}},
	{model.CategoryBottom, []string{
		"High-Waisted Jeans", "Cargo Pants", "Midi Skirt",
		"Wide-Leg Trousers", "Shorts", "Pencil Skirt",
	}},
	{model.CategoryOuterwear, []string{
		"Denim Jacket", "Leather Jacket", "Blazer",
		"Cardigan", "Bomber Jacket", "Trench Coat",
	}},
	{model.CategoryShoes, []string{
		"Sneakers", "Boots", "Heels", "Sandals",
		"Loafers", "Ankle Boots",
	}},
	{model.CategoryAccessories, []string{
		"Crossbody Bag", "Statement Necklace", "Sunglasses",
		"Scarf", "Belt", "Watch",
	}},
}

var priceRanges = map[model.Category][]string{ //nolint:gochecknoglobals // immutable sample data
	model.CategoryTop:         {"$15-30", "$25-50", "$40-80"},
	model.CategoryBottom:      {"$20-40", "$35-60", "$50-100"},
	model.CategoryOuterwear:   {"$40-80", "$60-120", "$100-200"},
	model.CategoryShoes:       {"$30-60", "$50-100", "$80-150"},
	model.CategoryAccessories: {"$10-25", "$20-50", "$40-80"},
}

var sampleColors = []string{"black", "white", "navy", "beige", "gray", "brown"} //nolint:gochecknoglobals // immutable sample data

var sampleBrands = []string{"Zara", "H&M", "Urban Outfitters", "ASOS", "Forever 21"} //nolint:gochecknoglobals // immutable sample data

// Option applies a configuration option to the SampleSource.
type Option func(*SampleSource)

// WithRand sets the random source. Tests inject a seeded source for
// deterministic items.
func WithRand(rng *rand.Rand) Option {
	return func(s *SampleSource) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// SampleSource implements Source with generated items shaped like real
// catalog records: category templates, price ranges, brands, colors and
// engagement counters.
type SampleSource struct {
	rng *rand.Rand
}

// NewSampleSource creates a sample source with configuration options.
func NewSampleSource(opts ...Option) *SampleSource {
	s := &SampleSource{
		rng: rand.New(rand.NewSource(42)), //nolint:gosec // deterministic seed for reproducible sample data
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search generates up to max items for the keyword.
func (s *SampleSource) Search(ctx context.Context, keyword string, max int) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog search cancelled: %w", err)
	}
	if max <= 0 {
		max = DefaultFetchSize
	}

	style := DetectStyle(keyword)
	slug := slugify(keyword)
	firstToken := keyword
	if fields := strings.Fields(keyword); len(fields) > 0 {
		firstToken = fields[0]
	}

	items := make([]model.Item, 0, max)
	for i := 0; i < max; i++ {
		template := itemTemplates[s.rng.Intn(len(itemTemplates))]
		title := template.titles[s.rng.Intn(len(template.titles))]
		ranges := priceRanges[template.category]

		items = append(items, model.Item{
			ID:          fmt.Sprintf("%s_%d", slug, i+1),
			Title:       fmt.Sprintf("%s - %s Style", title, titleCase(style)),
			Description: fmt.Sprintf("Perfect %s %s for your wardrobe", style, strings.ToLower(title)),
			ImageURL:    fmt.Sprintf("https://picsum.photos/300/400?random=%d", i+1),
			SourceURL:   fmt.Sprintf("https://pinterest.com/pin/%s_%d", slug, i+1),
			Style:       style,
			Category:    template.category,
			PriceRange:  ranges[s.rng.Intn(len(ranges))],
			Colors:      s.pickColors(),
			Sizes:       []string{"XS", "S", "M", "L", "XL"},
			Brand:       sampleBrands[s.rng.Intn(len(sampleBrands))],
			Likes:       10 + s.rng.Intn(991),
			Saves:       5 + s.rng.Intn(496),
			Tags:        []string{style, string(template.category), firstToken},
		})
	}
	return items, nil
}

// DetectStyle finds the named style best matching a search phrase, defaulting
// to casual.
func DetectStyle(keyword string) string {
	lower := strings.ToLower(keyword)
	for _, style := range styleCategoryOrder {
		for _, kw := range styleCategories[style] {
			if strings.Contains(lower, kw) {
				return style
			}
		}
	}
	return "casual"
}

func (s *SampleSource) pickColors() []string {
	first := s.rng.Intn(len(sampleColors))
	second := s.rng.Intn(len(sampleColors) - 1)
	if second >= first {
		second++
	}
	return []string{sampleColors[first], sampleColors[second]}
}

func slugify(keyword string) string {
	slug := strings.ToLower(strings.TrimSpace(keyword))
	slug = strings.ReplaceAll(slug, " ", "_")
	if slug == "" {
		slug = "catalog"
	}
	return slug
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
