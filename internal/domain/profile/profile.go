// Package profile resolves user profiles for recommendation requests: style
// input validation, keyword extraction, default-profile derivation and the
// boundary to the image analysis collaborator.
package profile

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/pkg/logger"
	"github.com/okian/fitfindr/pkg/metrics"
)

// Style input bounds.
const (
	minStyleLength = 2
	maxStyleLength = 100
)

// styleKeywordList holds the vocabulary recognized by keyword extraction.
var styleKeywordList = []string{ //nolint:gochecknoglobals // immutable vocabulary
	"vintage", "retro", "classic", "timeless",
	"streetwear", "urban", "casual", "cool",
	"formal", "elegant", "sophisticated",
	"bohemian", "boho", "free-spirited",
	"minimalist", "clean", "simple",
	"romantic", "feminine", "girly",
	"edgy", "alternative", "punk",
	"preppy", "academic", "ivy",
	"sporty", "athletic", "active",
	"artistic", "creative", "unique",
}

// knownStyles is the suggestion pool, most popular first.
var knownStyles = []string{ //nolint:gochecknoglobals // immutable suggestion pool
	"vintage streetwear",
	"minimalist chic",
	"bohemian",
	"athleisure",
	"cottagecore",
	"dark academia",
	"y2k",
	"normcore",
	"preppy",
	"grunge",
	"romantic",
	"edgy",
	"casual chic",
	"business casual",
	"evening wear",
}

// styleDefault is one entry in the default-profile table.
type styleDefault struct {
	shape       model.BodyShape
	height      string
	emphasize   []string
	silhouettes []string
	colors      []string
	confidence  float64
}

// styleDefaultOrder fixes the match order: the first style name found as a
// substring of the requested style wins.
var styleDefaultOrder = []string{"vintage", "streetwear", "formal", "casual"} //nolint:gochecknoglobals // immutable table order

// styleDefaults are the assumed profiles when no image analysis is available.
var styleDefaults = map[string]styleDefault{ //nolint:gochecknoglobals // immutable rule table
	"vintage": {
		shape:       model.ShapeHourglass,
		height:      "average",
		emphasize:   []string{"waist", "curves"},
		silhouettes: []string{"fitted", "wrap", "belted", "a-line"},
		colors:      []string{"black", "navy", "burgundy", "emerald", "cream"},
		confidence:  60,
	},
	"streetwear": {
		shape:       model.ShapeRectangle,
		height:      "average",
		emphasize:   []string{"shoulders", "legs"},
		silhouettes: []string{"oversized", "relaxed", "structured"},
		colors:      []string{"black", "white", "gray", "navy", "olive"},
		confidence:  60,
	},
	"formal": {
		shape:       model.ShapeHourglass,
		height:      "average",
		emphasize:   []string{"waist", "shoulders"},
		silhouettes: []string{"fitted", "structured", "tailored"},
		colors:      []string{"black", "navy", "gray", "white", "burgundy"},
		confidence:  60,
	},
	"casual": {
		shape:       model.ShapeRectangle,
		height:      "average",
		emphasize:   []string{"comfort", "versatility"},
		silhouettes: []string{"relaxed", "comfortable", "easy"},
		colors:      []string{"blue", "white", "gray", "beige", "black"},
		confidence:  60,
	},
}

// ValidateStyle checks a style preference string: required, 2-100 characters,
// letters/digits/spaces/hyphens/ampersands only.
func ValidateStyle(style string) error {
	trimmed := strings.TrimSpace(style)
	if trimmed == "" {
		return fmt.Errorf("%w: style preference is required", ErrInvalidStyle)
	}
	if len(trimmed) < minStyleLength {
		return fmt.Errorf("%w: style preference must be at least %d characters", ErrInvalidStyle, minStyleLength)
	}
	if len(trimmed) > maxStyleLength {
		return fmt.Errorf("%w: style preference must be less than %d characters", ErrInvalidStyle, maxStyleLength)
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '&' {
			continue
		}
		return fmt.Errorf("%w: style preference contains invalid characters", ErrInvalidStyle)
	}
	return nil
}

// ExtractKeywords returns the recognized style keywords found in a style
// string, in vocabulary order.
func ExtractKeywords(style string) []string {
	lower := strings.ToLower(style)
	found := make([]string, 0, 4)
	for _, keyword := range styleKeywordList {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}

// Suggest returns up to five known styles containing the partial input,
// case-insensitive.
func Suggest(partial string) []string {
	const maxSuggestions = 5
	lower := strings.ToLower(partial)
	suggestions := make([]string, 0, maxSuggestions)
	for _, style := range knownStyles {
		if strings.Contains(strings.ToLower(style), lower) {
			suggestions = append(suggestions, style)
			if len(suggestions) == maxSuggestions {
				break
			}
		}
	}
	return suggestions
}

// DefaultProfile derives a deterministic profile from the requested style
// alone, used when no image analysis is available or the analyzer fails.
func DefaultProfile(style string) model.Profile {
	lower := strings.ToLower(style)
	for _, name := range styleDefaultOrder {
		if strings.Contains(lower, name) {
			d := styleDefaults[name]
			return model.Profile{
				ID:                uuid.NewString(),
				PreferredStyle:    style,
				BodyShape:         d.shape,
				HeightCategory:    d.height,
				Emphasize:         d.emphasize,
				Minimize:          []string{},
				Silhouettes:       d.silhouettes,
				RecommendedColors: d.colors,
				Confidence:        d.confidence,
			}
		}
	}
	// Generic fallback with lower confidence.
	return model.Profile{
		ID:                uuid.NewString(),
		PreferredStyle:    style,
		BodyShape:         model.ShapeHourglass,
		HeightCategory:    "average",
		Emphasize:         []string{"waist"},
		Minimize:          []string{},
		Silhouettes:       []string{"fitted", "comfortable"},
		RecommendedColors: []string{"black", "navy", "white"},
		Confidence:        50,
	}
}

// Analyzer is the body-shape analysis collaborator: given raw image bytes
// and the requested style, it produces a profile.
type Analyzer interface {
	AnalyzeBodyShape(ctx context.Context, image []byte, style string) (model.Profile, error)
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithAnalyzer wires the image analysis collaborator.
func WithAnalyzer(a Analyzer) Option {
	return func(r *Resolver) {
		if a != nil {
			r.analyzer = a
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver produces the profile snapshot for a recommendation request.
type Resolver struct {
	analyzer Analyzer
	logger   logger.Logger
}

// NewResolver creates a Resolver with configuration options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("profile")
	}
	return r
}

// Request carries the caller-supplied inputs for profile resolution.
type Request struct {
	UserID    string
	Style     string
	BodyShape string   // optional explicit override
	Colors    []string // optional explicit override
	Image     []byte   // optional, passed to the analyzer
}

// Resolve builds the profile for a request. An analyzer failure is never
// surfaced: the style-derived default profile substitutes for it, trading
// accuracy for availability.
func (r *Resolver) Resolve(ctx context.Context, req Request) model.Profile {
	var resolved model.Profile
	switch {
	case len(req.Image) > 0 && r.analyzer != nil:
		analyzed, err := r.analyzer.AnalyzeBodyShape(ctx, req.Image, req.Style)
		if err != nil {
			metrics.RecordAnalyzerFallback()
			r.logger.Warn(ctx, "image analysis failed; using style defaults",
				logger.String("style", req.Style),
				logger.Error(err),
			)
			resolved = DefaultProfile(req.Style)
		} else {
			resolved = analyzed
			resolved.PreferredStyle = req.Style
		}
	default:
		resolved = DefaultProfile(req.Style)
	}

	if req.UserID != "" {
		resolved.ID = req.UserID
	}
	if req.BodyShape != "" {
		resolved.BodyShape = model.ParseBodyShape(req.BodyShape)
	}
	if len(req.Colors) > 0 {
		resolved.RecommendedColors = req.Colors
	}
	return resolved
}
