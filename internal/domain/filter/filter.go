// Package filter narrows a catalog to items plausibly matching a profile's
// style and color preferences.
package filter

import (
	"strings"

	"github.com/okian/fitfindr/internal/domain/model"
)

// ByPreferences returns the subsequence of items passing both the style gate
// and the color gate for the given profile. Items are not mutated; the result
// is a fresh slice. Filtering is idempotent: filtering an already-filtered
// set by the same profile yields the same set.
//
// Callers that receive an empty result should fall back to the unfiltered
// catalog; see Apply.
func ByPreferences(profile model.Profile, items []model.Item) []model.Item {
	style := strings.ToLower(strings.TrimSpace(profile.PreferredStyle))
	colors := lowerAll(profile.RecommendedColors)

	filtered := make([]model.Item, 0, len(items))
	for _, item := range items {
		if styleMatch(style, item) && colorMatch(colors, item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Apply filters items and falls back to the full catalog when the filtered
// set is empty, so a non-empty catalog always yields a non-empty working set.
func Apply(profile model.Profile, items []model.Item) []model.Item {
	filtered := ByPreferences(profile, items)
	if len(filtered) == 0 {
		return items
	}
	return filtered
}

// styleMatch passes when no style preference is given, when either style text
// contains the other, or when any token of the profile style appears in the
// item style.
func styleMatch(style string, item model.Item) bool {
	if style == "" {
		return true
	}
	// Note: an item with empty style text is contained by any preference and
	// passes the gate.
	itemStyle := strings.ToLower(item.Style)
	if strings.Contains(itemStyle, style) || strings.Contains(style, itemStyle) {
		return true
	}
	for _, token := range strings.Fields(style) {
		if strings.Contains(itemStyle, token) {
			return true
		}
	}
	return false
}

// colorMatch passes when the profile lists no colors or any color matches in
// either direction, case-insensitive.
func colorMatch(colors []string, item model.Item) bool {
	if len(colors) == 0 {
		return true
	}
	itemColors := lowerAll(item.Colors)
	for _, want := range colors {
		for _, have := range itemColors {
			if want == have {
				return true
			}
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
