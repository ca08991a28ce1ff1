package server

import (
	"strings"

	"golang.org/x/text/language"
)

// supportedLanguages lists the label languages offered to the content
// negotiator. The configured default is always matched first; the rest cover
// the languages with broad label coverage in the public knowledge graph.
var supportedLanguages = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
	language.French,
	language.Italian,
	language.Dutch,
	language.Polish,
	language.Portuguese,
	language.Russian,
	language.Ukrainian,
	language.Swedish,
	language.Japanese,
	language.Chinese,
	language.Korean,
	language.Arabic,
	language.Turkish,
}

// languageNegotiator maps an Accept-Language header to a label language code.
type languageNegotiator struct {
	tags     []language.Tag
	matcher  language.Matcher
	fallback string
}

// newLanguageNegotiator builds a negotiator whose first preference is the
// configured default language. A default outside supportedLanguages is still
// honored because it heads the matcher list.
func newLanguageNegotiator(defaultLang string) (*languageNegotiator, error) {
	def, err := language.Parse(defaultLang)
	if err != nil {
		return nil, err
	}

	tags := make([]language.Tag, 0, len(supportedLanguages)+1)
	tags = append(tags, def)
	for _, tag := range supportedLanguages {
		if tag != def {
			tags = append(tags, tag)
		}
	}

	return &languageNegotiator{
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		fallback: languageCode(def),
	}, nil
}

// Negotiate returns the label language code for an Accept-Language header.
// An empty or malformed header falls back to the configured default.
func (n *languageNegotiator) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return n.fallback
	}

	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return n.fallback
	}

	_, index, confidence := n.matcher.Match(prefs...)
	if confidence == language.No {
		return n.fallback
	}
	return languageCode(n.tags[index])
}

// languageCode renders a tag the way the query service spells label
// languages: lowercase BCP 47, e.g. "en" or "pt-br".
func languageCode(tag language.Tag) string {
	return strings.ToLower(tag.String())
}
