package catalog

import (
	"sort"
	"strings"

	"github.com/icco/catalog/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InitialDays is how many distinct calendar days the initial view covers.
const InitialDays = 3

// SortByRecency returns a copy of items ordered by DateCreated, newest first.
// Items whose timestamp cannot be parsed sort last; ties keep their order.
func SortByRecency(items []models.Item) []models.Item {
	sorted := make([]models.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(a, b int) bool {
		ta, tb := sorted[a].CreatedAt(), sorted[b].CreatedAt()
		if ta.IsZero() != tb.IsZero() {
			return tb.IsZero()
		}
		return ta.After(tb)
	})
	return sorted
}

// InitialView returns every item added on one of the InitialDays most recent
// distinct days, newest first. It can hold more than InitialDays items.
func InitialView(items []models.Item) []models.Item {
	sorted := SortByRecency(items)

	days := make(map[string]struct{}, InitialDays)
	for _, item := range sorted {
		if len(days) == InitialDays {
			break
		}
		days[item.Day()] = struct{}{}
	}

	view := make([]models.Item, 0, len(sorted))
	for _, item := range sorted {
		if _, ok := days[item.Day()]; ok {
			view = append(view, item)
		}
	}
	return view
}

// Options holds the selectable values for the year and genre filters.
type Options struct {
	Years  []int    `json:"years"`
	Genres []string `json:"genres"`
}

// BuildOptions derives the distinct years (newest first) and genres
// (ascending) present in items. Unknown years and unenriched items
// contribute nothing.
func BuildOptions(items []models.Item) Options {
	seenYears := make(map[int]struct{})
	seenGenres := make(map[string]struct{})
	opts := Options{Years: []int{}, Genres: []string{}}

	for _, item := range items {
		if item.ProductionYear != 0 {
			if _, ok := seenYears[item.ProductionYear]; !ok {
				seenYears[item.ProductionYear] = struct{}{}
				opts.Years = append(opts.Years, item.ProductionYear)
			}
		}
		for _, g := range item.Genres {
			if _, ok := seenGenres[g]; !ok {
				seenGenres[g] = struct{}{}
				opts.Genres = append(opts.Genres, g)
			}
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(opts.Years)))
	sort.Strings(opts.Genres)
	return opts
}

// Filter is the combination of the three filter controls. Zero values match
// everything.
type Filter struct {
	Year  int
	Genre string
	Title string

	// Touched records that a control was used even if every value is "any".
	Touched bool
}

// Active reports whether the filtered view replaces the initial view.
func (f Filter) Active() bool {
	return f.Touched || f.Year != 0 || f.Genre != "" || f.Title != ""
}

// Apply returns the items matching every criterion of f, in collection order.
func Apply(items []models.Item, f Filter) []models.Item {
	lower := cases.Lower(language.Und)
	term := lower.String(f.Title)

	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if f.Year != 0 && item.ProductionYear != f.Year {
			continue
		}
		if f.Genre != "" && !item.HasGenre(f.Genre) {
			continue
		}
		if term != "" && !strings.Contains(lower.String(item.Name), term) {
			continue
		}
		out = append(out, item)
	}
	return out
}
