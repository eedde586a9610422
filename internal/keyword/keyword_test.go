package keyword

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nao1215/sitescope/internal/model"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases accented capitals", in: "ÁRBOL Niño", want: "árbol niño"},
		{name: "drops digits and punctuation", in: "SEO, 2024: ¡éxito!", want: "seo  éxito"},
		{name: "keeps diaeresis", in: "pingüino", want: "pingüino"},
		{name: "composes decomposed accents", in: "cancio\u0301n", want: "canción"},
		{name: "drops letters outside the set", in: "çà straße", want: " strae"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	got := Tokens("el análisis de la web y x seo más rápido")
	want := []string{"análisis", "web", "seo", "rápido"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestIsStopword(t *testing.T) {
	t.Parallel()

	for _, w := range []string{"el", "sólo", "solo", "más", "desde"} {
		if !IsStopword(w) {
			t.Errorf("expected %q to be a stopword", w)
		}
	}
	for _, w := range []string{"seo", "web", "mas"} {
		if IsStopword(w) {
			t.Errorf("expected %q not to be a stopword", w)
		}
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	t.Run("ties keep first appearance", func(t *testing.T) {
		t.Parallel()
		got := Rank([]string{"beta", "alfa", "beta", "gamma", "alfa", "delta"}, 10)
		want := []model.KeywordCount{
			{Word: "beta", Count: 2},
			{Word: "alfa", Count: 2},
			{Word: "gamma", Count: 1},
			{Word: "delta", Count: 1},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("limit applies", func(t *testing.T) {
		t.Parallel()
		tokens := strings.Fields("aa bb cc dd ee ff gg hh ii jj kk ll")
		if got := Rank(tokens, 10); len(got) != 10 {
			t.Errorf("expected 10 entries, got %d", len(got))
		}
	})

	t.Run("empty input is empty not nil", func(t *testing.T) {
		t.Parallel()
		got := Rank(nil, 10)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty slice, got %#v", got)
		}
	})
}

func TestTopKeywords(t *testing.T) {
	t.Parallel()

	fragments := []string{
		"  Análisis SEO  ",
		"\n",
		"El análisis web mide el SEO. El SEO importa.",
		"Análisis, análisis y más análisis!",
	}
	got := TopKeywords(fragments)

	if len(got) == 0 || got[0].Word != "análisis" || got[0].Count != 5 {
		t.Fatalf("expected 'análisis' x5 first, got %v", got)
	}
	if got[1].Word != "seo" || got[1].Count != 3 {
		t.Errorf("expected 'seo' x3 second, got %v", got[1])
	}
	if len(got) > DefaultLimit {
		t.Errorf("expected at most %d entries, got %d", DefaultLimit, len(got))
	}
	for i, kc := range got {
		if IsStopword(kc.Word) {
			t.Errorf("stopword %q in ranking", kc.Word)
		}
		if utf8.RuneCountInString(kc.Word) <= 1 {
			t.Errorf("single-rune token %q in ranking", kc.Word)
		}
		if i > 0 && kc.Count > got[i-1].Count {
			t.Errorf("ranking not sorted at %d", i)
		}
	}
}

func TestTopKeywordsEmpty(t *testing.T) {
	t.Parallel()

	if got := TopKeywords([]string{" ", "123", "!!"}); len(got) != 0 {
		t.Errorf("expected no keywords, got %v", got)
	}
}
