package normalize

import (
	"strings"
	"unicode"

	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// Culture condenses a page summary to the first few sentences.
func Culture(raw providers.RawCultureSummary, lim Limits) trip.CulturalSummary {
	lim = lim.WithDefaults()

	title := strings.TrimSpace(raw.Title)
	source := strings.TrimSpace(raw.Source)
	if title != "" {
		source = strings.TrimSpace(source + ": " + title)
	}

	return trip.CulturalSummary{
		Topic:   title,
		Summary: FirstSentences(value(raw.Extract), lim.SummarySentences),
		Source:  strings.TrimPrefix(source, ": "),
		URL:     optional(raw.URL),
	}
}

// FirstSentences returns at most n sentences of text. A sentence ends at
// '.', '!' or '?' followed by whitespace or the end of the text.
func FirstSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || text == "" {
		return text
	}

	runes := []rune(text)
	count := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		count++
		if count == n {
			return string(runes[:i+1])
		}
	}
	return text
}
