// Package outfit assembles scored items into complete outfit combinations
// and measures their style cohesion.
package outfit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/pkg/metrics"
)

// Assembly limits.
const (
	defaultMaxOutfits = 5
	// Selection pool sizes per category. Picking randomly from a small pool
	// of the best items keeps repeated outfits diverse instead of always
	// reusing the single top item.
	primaryPoolSize   = 3 // top, bottom
	secondaryPoolSize = 2 // outerwear, shoes, accessories

	defaultRandomSeed = 42

	// Cohesion: fewer distinct style tags means a more coherent outfit.
	cohesionMax          = 100
	cohesionFloor        = 20
	cohesionStylePenalty = 20
	cohesionSingleItem   = 50 // one item is too little basis to judge
)

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithRand sets the random source used for pool selection. Tests inject a
// seeded source for deterministic assembly.
func WithRand(rng *rand.Rand) Option {
	return func(a *Assembler) {
		if rng != nil {
			a.rng = rng
		}
	}
}

// WithClock sets the time source used to stamp outfits.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithMaxOutfits caps how many outfits a single call may assemble.
func WithMaxOutfits(limit int) Option {
	return func(a *Assembler) {
		if limit > 0 {
			a.maxOutfits = limit
		}
	}
}

// Assembler builds outfits from ranked recommendations.
type Assembler struct {
	rng        *rand.Rand
	now        func() time.Time
	maxOutfits int
}

// New creates an Assembler. Without options it uses a fixed-seed random
// source for reproducible output.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible assembly
		now:        time.Now,
		maxOutfits: defaultMaxOutfits,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble groups items by category and builds up to maxOutfits outfits, each with
// at most one item per outfit category drawn at random from that category's
// highest-scored pool. An empty input yields an empty slice; no outfits are
// fabricated from nothing.
func (a *Assembler) Assemble(items []model.ScoredItem) []model.Outfit {
	if len(items) == 0 {
		return []model.Outfit{}
	}

	pools := buildPools(items)
	createdAt := a.now()

	count := a.maxOutfits
	if len(items) < count {
		count = len(items)
	}

	outfits := make([]model.Outfit, 0, count)
	for i := 0; i < count; i++ {
		o := model.Outfit{
			ID:        fmt.Sprintf("outfit_%d", i+1),
			Items:     make([]model.ScoredItem, 0, len(model.OutfitCategories)),
			CreatedAt: createdAt,
		}
		for _, category := range model.OutfitCategories {
			pool := pools[category]
			if len(pool) == 0 {
				continue
			}
			o.Items = append(o.Items, pool[a.rng.Intn(len(pool))])
		}
		if len(o.Items) > 0 {
			var total float64
			for _, member := range o.Items {
				total += member.Overall
			}
			o.TotalScore = round1(total / float64(len(o.Items)))
			o.StyleCohesion = Cohesion(o.Items)
		}
		outfits = append(outfits, o)
		metrics.RecordOutfitAssembled()
	}
	return outfits
}

// Cohesion measures how stylistically consistent an outfit is: 100 minus 20
// per distinct style tag, floored at 20. A single-item outfit scores a fixed
// neutral value.
func Cohesion(items []model.ScoredItem) float64 {
	if len(items) < 2 {
		return cohesionSingleItem
	}
	styles := make(map[string]struct{}, len(items))
	for _, item := range items {
		styles[strings.ToLower(item.Item.Style)] = struct{}{}
	}
	score := cohesionMax - len(styles)*cohesionStylePenalty
	if score < cohesionFloor {
		score = cohesionFloor
	}
	return float64(score)
}

// buildPools groups items by category, keeping each category sorted by
// overall score descending and truncated to its selection pool size.
func buildPools(items []model.ScoredItem) map[model.Category][]model.ScoredItem {
	grouped := make(map[model.Category][]model.ScoredItem)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	pools := make(map[model.Category][]model.ScoredItem, len(grouped))
	for category, members := range grouped {
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Overall > members[j].Overall
		})
		size := secondaryPoolSize
		if category == model.CategoryTop || category == model.CategoryBottom {
			size = primaryPoolSize
		}
		if len(members) > size {
			members = members[:size]
		}
		pools[category] = members
	}
	return pools
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
