package handlers

import (
	"strconv"

	"github.com/icco/catalog/lib/catalog"
	"github.com/icco/catalog/lib/tmdb"
	"github.com/icco/catalog/lib/validation"
	"github.com/icco/catalog/models"
	"golang.org/x/text/language"
)

// NotAvailable is shown in place of a missing year or genre list.
const NotAvailable = "N/A"

// Option is one entry of a selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Control describes a filter selector. Every selector is rendered by the
// same "select" template, with an "all" entry first.
type Control struct {
	ID       string
	Name     string
	Label    string
	AllLabel string
	Options  []Option
}

// Search describes the free-text title input.
type Search struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
}

// Card is the view model for one catalog item.
type Card struct {
	Name      string
	Year      int
	Genres    []string
	HasGenres bool
	AddedOn   string
	PosterURL string
	Overview  string
}

// Page is the data rendered by the home and cards templates.
type Page struct {
	Loaded   bool
	Controls []Control
	Search   Search
	Cards    []Card
}

// Renderer turns catalog state into page view models.
type Renderer struct {
	imageBaseURL string
	dateLayout   string
}

// NewRenderer formats poster URLs with imageBaseURL and dates in the
// conventional layout for lang.
func NewRenderer(imageBaseURL, lang string) *Renderer {
	return &Renderer{
		imageBaseURL: imageBaseURL,
		dateLayout:   DateLayout(lang),
	}
}

// DateLayout returns the short date layout conventional for lang.
func DateLayout(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "2006-01-02"
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	switch {
	case base.String() == "en" && region.String() == "US":
		return "1/2/2006"
	case base.String() == "en":
		return "02/01/2006"
	case base.String() == "it", base.String() == "es", base.String() == "pt":
		return "2/1/2006"
	case base.String() == "fr":
		return "02/01/2006"
	case base.String() == "de":
		return "2.1.2006"
	default:
		return "2006-01-02"
	}
}

// Page builds the full page for state filtered by f.
func (r *Renderer) Page(state *catalog.State, f catalog.Filter) Page {
	var opts catalog.Options
	if state != nil {
		opts = state.Options
	}
	return Page{
		Loaded:   state != nil && state.Loaded,
		Controls: []Control{YearControl(opts.Years, f.Year), GenreControl(opts.Genres, f.Genre)},
		Search: Search{
			Name:        validation.ParamTitle,
			Label:       "Cerca per Titolo:",
			Placeholder: "Titolo...",
			Value:       f.Title,
		},
		Cards: r.Cards(state.View(f)),
	}
}

// Cards converts items to cards, keeping their order.
func (r *Renderer) Cards(items []models.Item) []Card {
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		cards = append(cards, r.Card(item))
	}
	return cards
}

// Card builds the view of one item with "N/A" for an unparseable date.
func (r *Renderer) Card(item models.Item) Card {
	added := NotAvailable
	if created := item.CreatedAt(); !created.IsZero() {
		added = created.Local().Format(r.dateLayout)
	}
	return Card{
		Name:      item.Name,
		Year:      item.ProductionYear,
		Genres:    item.Genres,
		HasGenres: item.Genres != nil,
		AddedOn:   added,
		PosterURL: tmdb.PosterURL(r.imageBaseURL, item.PosterPath),
		Overview:  item.Overview,
	}
}

// YearControl describes the year selector with selected preselected.
func YearControl(years []int, selected int) Control {
	options := make([]Option, 0, len(years))
	for _, y := range years {
		v := strconv.Itoa(y)
		options = append(options, Option{Value: v, Label: v, Selected: y == selected})
	}
	return Control{
		ID:       "filter-year",
		Name:     validation.ParamYear,
		Label:    "Filtra per Anno:",
		AllLabel: "Tutti gli anni",
		Options:  options,
	}
}

// GenreControl describes the genre selector.
func GenreControl(genres []string, selected string) Control {
	options := make([]Option, 0, len(genres))
	for _, g := range genres {
		options = append(options, Option{Value: g, Label: g, Selected: g == selected})
	}
	return Control{
		ID:       "filter-genre",
		Name:     validation.ParamGenre,
		Label:    "Filtra per Genere:",
		AllLabel: "Tutti i generi",
		Options:  options,
	}
}
