package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	wikiSearchLimit      = 5
	wikiDisambiguation   = "disambiguation"
	wikipediaSourceLabel = "Wikipedia"
)

// WikipediaClient implements CultureSummarizer on the MediaWiki search API
// and the page summary REST endpoint.
type WikipediaClient struct {
	http *HTTPClient
}

// NewWikipediaClient creates a new WikipediaClient. baseURL is the wiki
// root, e.g. https://en.wikipedia.org.
func NewWikipediaClient(baseURL string, timeout time.Duration, opts ...ClientOption) *WikipediaClient {
	return &WikipediaClient{http: NewHTTPClient("wikipedia", baseURL, timeout, opts...)}
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiSummaryResponse struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Extract     *string `json:"extract"`
	ContentURLs *struct {
		Desktop *struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// SummarizeCulture searches "<country> culture" and returns the summary of
// the matching page. The page is chosen only when the match is
// unambiguous: either a title is "Culture of <country>" or "Culture of
// the <country>", or the search yields a single hit. Several hits, or a disambiguation page, produce an
// *AmbiguousError.
func (c *WikipediaClient) SummarizeCulture(ctx context.Context, country string) (RawCultureSummary, error) {
	titles, err := c.search(ctx, country+" culture")
	if err != nil {
		return RawCultureSummary{}, err
	}

	var title string
	switch {
	case len(titles) == 0:
		return RawCultureSummary{}, fmt.Errorf("no page about the culture of %s: %w", country, ErrNotFound)
	case len(titles) == 1:
		title = titles[0]
	default:
		title = exactTitle(titles, cultureTitles(country)...)
		if title == "" {
			return RawCultureSummary{}, &AmbiguousError{Query: country, Candidates: titles}
		}
	}

	summary, err := c.summary(ctx, title)
	if err != nil {
		return RawCultureSummary{}, err
	}
	if summary.Type == wikiDisambiguation {
		return RawCultureSummary{}, &AmbiguousError{Query: country, Candidates: without(titles, title)}
	}

	out := RawCultureSummary{
		Title:   summary.Title,
		Extract: summary.Extract,
		Source:  wikipediaSourceLabel,
	}
	if out.Title == "" {
		out.Title = title
	}
	if summary.ContentURLs != nil && summary.ContentURLs.Desktop != nil && summary.ContentURLs.Desktop.Page != "" {
		page := summary.ContentURLs.Desktop.Page
		out.URL = &page
	}
	return out, nil
}

func (c *WikipediaClient) search(ctx context.Context, term string) ([]string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", term)
	q.Set("srlimit", strconv.Itoa(wikiSearchLimit))
	q.Set("format", "json")

	var resp wikiSearchResponse
	if err := c.http.GetJSON(ctx, "/w/api.php", q, &resp); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		if t := strings.TrimSpace(s.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

func (c *WikipediaClient) summary(ctx context.Context, title string) (wikiSummaryResponse, error) {
	path := "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	var resp wikiSummaryResponse
	if err := c.http.GetJSON(ctx, path, nil, &resp); err != nil {
		return wikiSummaryResponse{}, err
	}
	return resp, nil
}

// cultureTitles lists the page titles that name the culture of country,
// e.g. "Culture of Japan" and "Culture of the United States".
func cultureTitles(country string) []string {
	country = strings.TrimSpace(country)
	if rest, ok := cutPrefixFold(country, "the "); ok {
		country = rest
	}
	return []string{"Culture of " + country, "Culture of the " + country}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func exactTitle(titles []string, wants ...string) string {
	for _, t := range titles {
		for _, want := range wants {
			if strings.EqualFold(t, want) {
				return t
			}
		}
	}
	return ""
}

func without(titles []string, drop string) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if t != drop {
			out = append(out, t)
		}
	}
	return out
}
