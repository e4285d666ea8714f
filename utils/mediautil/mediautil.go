// Package mediautil provides pure transforms over catalog item snapshots:
// deduplication, filtering, sorting, and facet extraction. Nothing here
// holds state or performs I/O.
package mediautil

import (
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"telaviva/models"
)

// SortKey selects the ordering used by Sort.
type SortKey string

const (
	SortByRating     SortKey = "rating"     // descending, missing = 0
	SortByYear       SortKey = "year"       // descending lexicographic
	SortByName       SortKey = "name"       // ascending, locale collation
	SortByPopularity SortKey = "popularity" // descending, missing = 0
)

// Deduplicate removes items sharing an id, and items sharing a normalized
// display title even across different ids. First occurrence wins; insertion
// order is preserved.
func Deduplicate(items []models.MediaItem) []models.MediaItem {
	seenIDs := make(map[string]struct{}, len(items))
	seenTitles := make(map[string]struct{}, len(items))

	result := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if _, dup := seenIDs[item.ID]; dup {
			continue
		}
		title := normalizeTitle(displayTitle(item))
		if title != "" {
			if _, dup := seenTitles[title]; dup {
				continue
			}
			seenTitles[title] = struct{}{}
		}
		seenIDs[item.ID] = struct{}{}
		result = append(result, item)
	}
	return result
}

// FilterOptions holds the conjunctive criteria for Filter. Zero-valued
// fields are ignored.
type FilterOptions struct {
	Type  string
	Genre string
	Year  string
}

// Filter returns the items matching every set criterion. An item missing the
// enrichment field a criterion references fails that criterion.
func Filter(items []models.MediaItem, opts FilterOptions) []models.MediaItem {
	result := make([]models.MediaItem, 0, len(items))
	for _, item := range items {
		if opts.Type != "" && item.Type != opts.Type {
			continue
		}
		if opts.Genre != "" && !hasGenre(item, opts.Genre) {
			continue
		}
		if opts.Year != "" && (item.Info == nil || item.Info.Year != opts.Year) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func hasGenre(item models.MediaItem, genre string) bool {
	if item.Info == nil {
		return false
	}
	for _, g := range item.Info.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of items; the input is never mutated and ties
// keep their original order.
func Sort(items []models.MediaItem, key SortKey) []models.MediaItem {
	result := append([]models.MediaItem(nil), items...)

	switch key {
	case SortByRating:
		sort.SliceStable(result, func(i, j int) bool {
			return rating(result[i]) > rating(result[j])
		})
	case SortByYear:
		sort.SliceStable(result, func(i, j int) bool {
			return year(result[i]) > year(result[j])
		})
	case SortByName:
		coll := collate.New(language.BrazilianPortuguese)
		sort.SliceStable(result, func(i, j int) bool {
			return coll.CompareString(result[i].Name, result[j].Name) < 0
		})
	case SortByPopularity:
		sort.SliceStable(result, func(i, j int) bool {
			return popularity(result[i]) > popularity(result[j])
		})
	}
	return result
}

// AllGenres extracts the unique genres across items, alphabetically sorted.
func AllGenres(items []models.MediaItem) []string {
	set := make(map[string]struct{})
	for _, item := range items {
		if item.Info == nil {
			continue
		}
		for _, g := range item.Info.Genres {
			if g != "" {
				set[g] = struct{}{}
			}
		}
	}
	genres := make([]string, 0, len(set))
	for g := range set {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// AllYears extracts the unique years across items, newest first.
func AllYears(items []models.MediaItem) []string {
	set := make(map[string]struct{})
	for _, item := range items {
		if item.Info != nil && item.Info.Year != "" {
			set[item.Info.Year] = struct{}{}
		}
	}
	years := make([]string, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

// ByActor returns the items whose cast includes the given external actor id.
func ByActor(actorID int64, items []models.MediaItem) []models.MediaItem {
	var result []models.MediaItem
	for _, item := range items {
		if item.Info == nil {
			continue
		}
		for _, member := range item.Info.Cast {
			if member.ID == actorID {
				result = append(result, item)
				break
			}
		}
	}
	return result
}

func displayTitle(item models.MediaItem) string {
	if item.Info != nil && item.Info.Title != "" {
		return item.Info.Title
	}
	return item.Name
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

func rating(item models.MediaItem) float64 {
	if item.Info == nil {
		return 0
	}
	return item.Info.Rating
}

func popularity(item models.MediaItem) float64 {
	if item.Info == nil {
		return 0
	}
	return item.Info.Popularity
}

func year(item models.MediaItem) string {
	if item.Info == nil {
		return ""
	}
	return item.Info.Year
}
