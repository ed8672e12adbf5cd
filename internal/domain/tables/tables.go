// Package tables holds the static rule tables driving item scoring: body
// shape compatibility, shape and style keywords, and styling tips. The
// tables are plain immutable maps loaded once at process start so the scorer
// stays a pure function of (tables, profile, item) and each table can be
// unit-tested and swapped independently.
package tables

import "github.com/okian/fitfindr/internal/domain/model"

// DefaultFitScore is used when the body shape or category has no table entry.
const DefaultFitScore = 75

// fitBase maps (body shape, category) to a base fit score.
var fitBase = map[model.BodyShape]map[model.Category]float64{ //nolint:gochecknoglobals // immutable rule table
	model.ShapeHourglass: {
		model.CategoryTop: 85, model.CategoryBottom: 80, model.CategoryDress: 90,
		model.CategoryOuterwear: 75, model.CategoryShoes: 70, model.CategoryAccessories: 80,
	},
	model.ShapePear: {
		model.CategoryTop: 90, model.CategoryBottom: 75, model.CategoryDress: 85,
		model.CategoryOuterwear: 80, model.CategoryShoes: 75, model.CategoryAccessories: 85,
	},
	model.ShapeApple: {
		model.CategoryTop: 70, model.CategoryBottom: 85, model.CategoryDress: 80,
		model.CategoryOuterwear: 90, model.CategoryShoes: 80, model.CategoryAccessories: 75,
	},
	model.ShapeRectangle: {
		model.CategoryTop: 80, model.CategoryBottom: 80, model.CategoryDress: 85,
		model.CategoryOuterwear: 85, model.CategoryShoes: 75, model.CategoryAccessories: 80,
	},
	model.ShapeInvertedTriangle: {
		model.CategoryTop: 75, model.CategoryBottom: 90, model.CategoryDress: 80,
		model.CategoryOuterwear: 70, model.CategoryShoes: 80, model.CategoryAccessories: 85,
	},
}

// shapeKeywords lists item features that flatter each body shape. Each
// substring match in an item's title or description earns a fit bonus.
var shapeKeywords = map[model.BodyShape][]string{ //nolint:gochecknoglobals // immutable rule table
	model.ShapeHourglass:        {"belted", "wrap", "fitted", "cinched", "defined"},
	model.ShapePear:             {"flowy", "a-line", "empire", "high-waisted", "structured"},
	model.ShapeApple:            {"v-neck", "wrap", "a-line", "empire", "flowy"},
	model.ShapeRectangle:        {"structured", "fitted", "belted", "layered", "textured"},
	model.ShapeInvertedTriangle: {"wide-leg", "a-line", "flowy", "layered", "textured"},
}

// styleKeywords maps a named style to the keywords that count as a style
// match. Coverage is intentionally limited to these six styles; any other
// style string falls through to the scorer's substring-match or floor paths.
var styleKeywords = map[string][]string{ //nolint:gochecknoglobals // immutable rule table
	"vintage":    {"vintage", "retro", "classic", "timeless", "antique"},
	"streetwear": {"street", "urban", "casual", "cool", "edgy"},
	"formal":     {"elegant", "sophisticated", "professional", "refined"},
	"casual":     {"relaxed", "comfortable", "everyday", "easy"},
	"bohemian":   {"boho", "free-spirited", "artistic", "flowy"},
	"minimalist": {"clean", "simple", "modern", "minimal"},
}

// categoryTips are general styling tips keyed by item category.
var categoryTips = map[model.Category][]string{ //nolint:gochecknoglobals // immutable tip table
	model.CategoryTop: {
		"Tuck in for a more polished look",
		"Layer with a jacket or cardigan",
	},
	model.CategoryBottom: {
		"Pair with a fitted top to balance proportions",
		"Consider the right footwear for the occasion",
	},
	model.CategoryOuterwear: {
		"Layer over a simple base",
		"Belt it for a more defined silhouette",
	},
}

// shapeTips are styling tips keyed by body shape.
var shapeTips = map[model.BodyShape][]string{ //nolint:gochecknoglobals // immutable tip table
	model.ShapeHourglass: {
		"Emphasize your waist with a belt",
		"Choose fitted silhouettes that follow your curves",
	},
	model.ShapePear: {
		"Balance with a statement top",
		"Draw attention upward with accessories",
	},
	model.ShapeApple: {
		"Create vertical lines with your outfit",
		"Choose pieces that skim rather than cling",
	},
}

// FitBase returns the base fit score for a (shape, category) pair, falling
// back to DefaultFitScore when either key is absent.
func FitBase(shape model.BodyShape, category model.Category) float64 {
	if row, ok := fitBase[shape]; ok {
		if score, ok := row[category]; ok {
			return score
		}
	}
	return DefaultFitScore
}

// ShapeKeywords returns the positive keywords for a body shape, nil when the
// shape has no entry.
func ShapeKeywords(shape model.BodyShape) []string {
	return shapeKeywords[shape]
}

// StyleKeywords returns the match keywords for a named style, nil for styles
// outside the covered set.
func StyleKeywords(style string) []string {
	return styleKeywords[style]
}

// CategoryTips returns the general styling tips for a category.
func CategoryTips(category model.Category) []string {
	return categoryTips[category]
}

// ShapeTips returns the body-shape-specific styling tips.
func ShapeTips(shape model.BodyShape) []string {
	return shapeTips[shape]
}
