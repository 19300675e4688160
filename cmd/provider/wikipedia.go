package main

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// wikipediaProvider fakes the search and page summary endpoints. Any
// country gets a "Culture of <country>" page; "Georgia" is ambiguous.
type wikipediaProvider struct {
	chaos  chaos
	logger *zap.Logger
}

func newWikipedia(logger *zap.Logger) *wikipediaProvider {
	return &wikipediaProvider{
		chaos:  chaos{minLatency: 20 * time.Millisecond, maxLatency: 120 * time.Millisecond},
		logger: logger,
	}
}

func (p *wikipediaProvider) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /w/api.php", p.search)
	mux.HandleFunc("GET /api/rest_v1/page/summary/{title}", p.summary)
}

func (p *wikipediaProvider) search(w http.ResponseWriter, r *http.Request) {
	if err := p.chaos.wait(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	term := strings.TrimSpace(strings.TrimSuffix(r.URL.Query().Get("srsearch"), " culture"))

	var titles []string
	switch strings.ToLower(term) {
	case "":
	case "georgia":
		titles = []string{"Georgia (country)", "Georgia (U.S. state)", "Georgian culture"}
	default:
		titles = []string{"Culture of " + term, term}
	}

	hits := make([]map[string]string, len(titles))
	for i, t := range titles {
		hits[i] = map[string]string{"title": t}
	}
	writeJSON(w, p.logger, map[string]any{"query": map[string]any{"search": hits}})
}

func (p *wikipediaProvider) summary(w http.ResponseWriter, r *http.Request) {
	title := strings.ReplaceAll(r.PathValue("title"), "_", " ")
	topic, ok := strings.CutPrefix(title, "Culture of ")
	if !ok {
		http.Error(w, `{"type":"https://mediawiki.org/wiki/HyperSwitch/errors/not_found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, p.logger, map[string]any{
		"type":  "standard",
		"title": title,
		"extract": "The culture of " + topic + " has evolved over many centuries. " +
			"It blends local traditions with outside influences! " +
			"Food and seasonal festivals play a central role. " +
			"Modern popular culture is exported worldwide.",
		"content_urls": map[string]any{"desktop": map[string]string{
			"page": "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(title, " ", "_")),
		}},
	})
}
