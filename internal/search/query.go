package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Limits on the number of hits returned.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrMissingCompany is returned when a search is not scoped to a company.
var ErrMissingCompany = errors.New("search: company id is required")

// Params configures an activity search.
type Params struct {
	CompanyID string
	Query     string
	Category  string // optional exact category filter
	Limit     int
}

// Hit is a single matching activity.
type Hit struct {
	ID            string            `json:"id"`
	Score         float64           `json:"score"`
	Title         string            `json:"title"`
	Category      string            `json:"category"`
	Date          string            `json:"date"`
	EmissionValue float64           `json:"emission_value"`
	EmissionUnit  string            `json:"emission_unit"`
	Highlights    map[string]string `json:"highlights,omitempty"`
}

// Result is the outcome of a search.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Search finds a company's activities matching params.Query, best match
// first, most recent first among equal scores. Other companies' documents
// never match.
func (s *ActivityIndex) Search(ctx context.Context, params Params) (*Result, error) {
	if params.CompanyID == "" {
		return nil, ErrMissingCompany
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	req.SortBy([]string{"-_score", "-date"})
	req.Fields = []string{"title", "category", "date", "emission_value", "emission_unit"}
	if params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("description")
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		hit.Title, _ = h.Fields["title"].(string)
		hit.Category, _ = h.Fields["category"].(string)
		hit.Date, _ = h.Fields["date"].(string)
		hit.EmissionUnit, _ = h.Fields["emission_unit"].(string)
		hit.EmissionValue, _ = h.Fields["emission_value"].(float64)

		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}

	return out, nil
}

func buildQuery(params Params) query.Query {
	company := bleve.NewTermQuery(params.CompanyID)
	company.SetField("company_id")
	must := []query.Query{company}

	if params.Category != "" {
		cat := bleve.NewTermQuery(params.Category)
		cat.SetField("category")
		must = append(must, cat)
	}

	if q := strings.TrimSpace(params.Query); q != "" {
		title := bleve.NewMatchQuery(q)
		title.SetField("title")
		title.SetBoost(3.0)

		desc := bleve.NewMatchQuery(q)
		desc.SetField("description")

		label := bleve.NewMatchQuery(q)
		label.SetField("category_label")
		label.SetBoost(1.5)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		text := []query.Query{title, desc, label, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}
		must = append(must, bleve.NewDisjunctionQuery(text...))
	}

	return bleve.NewConjunctionQuery(must...)
}
