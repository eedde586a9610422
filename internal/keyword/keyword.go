package keyword

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/sitescope/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultLimit is the number of keywords reported.
const DefaultLimit = 10

// stopwords is the fixed Spanish stopword list. Read-only after init.
var stopwords = func() map[string]struct{} {
	words := []string{
		"el", "la", "los", "las", "un", "una", "unos", "unas", "y", "o", "pero",
		"si", "de", "del", "al", "en", "es", "son", "por", "para", "con", "a",
		"su", "sus", "lo", "le", "les", "me", "se", "mi", "mis", "tu", "tus",
		"nos", "os", "no", "que", "como", "más", "esos", "esas", "este", "esta",
		"estos", "estas", "ser", "ha", "han", "haber", "hacer", "tener", "poder",
		"todo", "todos", "toda", "todas", "donde", "cuando", "quien", "cual",
		"sin", "sobre", "bajo", "entre", "hasta", "desde", "muy", "tal", "vez",
		"solo", "sólo",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether w is in the Spanish stopword list.
// w must already be normalized.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Join trims each fragment and joins the non-empty ones with single spaces.
func Join(fragments []string) string {
	var sb strings.Builder
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f)
	}
	return sb.String()
}

// Normalize lowercases text and removes every rune that is neither a
// letter in a-z, one of áéíóúüñ, nor whitespace. Text is composed to NFC
// first so decomposed accents survive the filter.
func Normalize(text string) string {
	// cases.Caser is stateful; a fresh one per call keeps Normalize safe
	// for concurrent use.
	lower := cases.Lower(language.Spanish).String(norm.NFC.String(text))
	return strings.Map(func(r rune) rune {
		if keep(r) {
			return r
		}
		return -1
	}, lower)
}

func keep(r rune) bool {
	if r >= 'a' && r <= 'z' {
		return true
	}
	switch r {
	case 'á', 'é', 'í', 'ó', 'ú', 'ü', 'ñ':
		return true
	}
	return unicode.IsSpace(r)
}

// Tokens splits normalized text on whitespace and drops stopwords and
// single-rune tokens.
func Tokens(normalized string) []string {
	fields := strings.Fields(normalized)
	out := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) <= 1 || IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Rank counts tokens and returns the limit most frequent, by count
// descending with ties in order of first appearance.
func Rank(tokens []string, limit int) []model.KeywordCount {
	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, w := range tokens {
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	ranked := make([]model.KeywordCount, len(order))
	for i, w := range order {
		ranked[i] = model.KeywordCount{Word: w, Count: counts[w]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TopKeywords runs the full pipeline over visible text fragments.
// Empty input yields an empty, non-nil slice.
func TopKeywords(fragments []string) []model.KeywordCount {
	return Rank(Tokens(Normalize(Join(fragments))), DefaultLimit)
}
