package archive

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/matineeapp/matinee-server/internal/genre"
	"github.com/matineeapp/matinee-server/internal/normalize"
)

// docFields are the search doc fields requested from the archive.
var docFields = []string{
	"identifier",
	"title",
	"description",
	"year",
	"date",
	"downloads",
	"avg_rating",
	"num_reviews",
	"subject",
	"runtime",
}

// Item is one normalized catalog entry. Title keeps the source's raw
// form (year decorations included) because the enrichment key derives
// from it; everything else is converted to the catalog shape here.
type Item struct {
	Identifier   string   `json:"identifier"`
	Title        string   `json:"title"`
	Year         int      `json:"year,omitempty"`
	Runtime      int      `json:"runtime,omitempty"`
	Genres       []string `json:"genres"`
	Downloads    int64    `json:"downloads"`
	AvgRating    float64  `json:"avgRating,omitempty"`
	NumReviews   int      `json:"numReviews,omitempty"`
	Description  string   `json:"description,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl"`
}

// CatalogParams selects one page of the film catalog.
type CatalogParams struct {
	Query    string // free-text search, empty for a plain listing
	Sort     string // archive sort clause, e.g. "downloads desc"
	Page     int    // 1-based
	PageSize int
	Genre    string // genre slug, matched against archive subjects
}

// CatalogPage is one page of results plus the total match count.
type CatalogPage struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// rawDoc mirrors one advancedsearch result doc.
type rawDoc struct {
	Identifier  string      `json:"identifier"`
	Title       flexString  `json:"title"`
	Description flexString  `json:"description"`
	Year        flexInt     `json:"year"`
	Date        flexString  `json:"date"`
	Downloads   flexInt     `json:"downloads"`
	AvgRating   flexFloat   `json:"avg_rating"`
	NumReviews  flexInt     `json:"num_reviews"`
	Subject     flexStrings `json:"subject"`
	Runtime     flexString  `json:"runtime"`
}

// querySpecials are advancedsearch operator characters stripped from
// user-entered search text before it is embedded in the query.
var querySpecials = regexp.MustCompile(`[+\-!(){}\[\]^"~*?:\\/]`)

// FetchCatalog retrieves one page of films from the configured
// collection. Docs without an identifier are dropped.
func (c *Client) FetchCatalog(ctx context.Context, params CatalogParams) (*CatalogPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	sort := params.Sort
	if sort == "" {
		sort = "downloads desc"
	}

	clauses := []string{
		fmt.Sprintf("collection:(%s)", c.collection),
		"mediatype:(movies)",
	}
	if params.Genre != "" {
		phrase := strings.ReplaceAll(params.Genre, "-", " ")
		clauses = append(clauses, fmt.Sprintf("subject:%q", phrase))
	}
	if q := strings.TrimSpace(querySpecials.ReplaceAllString(params.Query, " ")); q != "" {
		clauses = append(clauses, "("+q+")")
	}

	query := url.Values{}
	query.Set("q", strings.Join(clauses, " AND "))
	for _, f := range docFields {
		query.Add("fl[]", f)
	}
	query.Add("sort[]", sort)
	query.Set("rows", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))
	query.Set("output", "json")

	body, err := c.doRequest(ctx, "/advancedsearch.php", query)
	if err != nil {
		return nil, wrapError("fetchCatalog", err)
	}

	var resp struct {
		Response struct {
			NumFound int      `json:"numFound"`
			Docs     []rawDoc `json:"docs"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("fetchCatalog", fmt.Errorf("parse response: %w", err))
	}

	items := make([]Item, 0, len(resp.Response.Docs))
	for i := range resp.Response.Docs {
		d := &resp.Response.Docs[i]
		if d.Identifier == "" {
			continue
		}
		items = append(items, c.itemFromDoc(d))
	}

	return &CatalogPage{
		Items: items,
		Total: resp.Response.NumFound,
	}, nil
}

// itemFromDoc converts a raw search doc into a catalog Item.
func (c *Client) itemFromDoc(d *rawDoc) Item {
	title := strings.TrimSpace(string(d.Title))

	// Year: explicit field first, then the date field, then a
	// decoration on the title itself.
	year := int(d.Year)
	if year == 0 {
		year = normalize.Year(string(d.Date))
	}
	if year == 0 {
		_, year = normalize.TitleYear(title)
	}

	genres := normalize.GenreTags(strings.Join(d.Subject, "; "))
	if len(genres) == 0 {
		genres = []string{genre.Uncategorized}
	}

	return Item{
		Identifier:   d.Identifier,
		Title:        title,
		Year:         year,
		Runtime:      normalize.Runtime(string(d.Runtime)),
		Genres:       genres,
		Downloads:    int64(d.Downloads),
		AvgRating:    float64(d.AvgRating),
		NumReviews:   int(d.NumReviews),
		Description:  htmlToMarkdown(string(d.Description)),
		ThumbnailURL: c.ThumbnailURL(d.Identifier),
	}
}
