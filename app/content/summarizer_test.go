package content

import (
	"strings"
	"testing"

	"github.com/aivex/ai-visibility/app/database"
	"github.com/aivex/ai-visibility/app/settings"
)

func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "word"
	}
	return strings.Join(words, " ")
}

func wordCount(text string) int {
	return len(strings.Fields(strings.TrimSuffix(text, Ellipsis)))
}

func TestSummarizer_ManualStrategy(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{
		Body: makeWords(200),
		Meta: map[string]string{database.MetaSummary: "Hand written summary."},
	}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyManual

	summary := summarizer.Run(item, st)

	if summary.Text != "Hand written summary." {
		t.Errorf("Manual summary must be returned verbatim, got: %q", summary.Text)
	}
	if summary.Source != SourceManual {
		t.Errorf("Expected source %q, got %q", SourceManual, summary.Source)
	}
}

func TestSummarizer_ManualStrategy_NoMetadataFallsBack(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{Body: makeWords(10)}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyManual

	summary := summarizer.Run(item, st)

	if summary.Source != SourceBody {
		t.Errorf("Expected body fallback, got source %q", summary.Source)
	}
}

func TestSummarizer_ExcerptStrategy_StripsMarkup(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{
		Excerpt: "<p>An <em>excerpt</em> here.</p>",
		Body:    makeWords(200),
	}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyExcerpt

	summary := summarizer.Run(item, st)

	if summary.Text != "An excerpt here." {
		t.Errorf("Expected stripped excerpt, got: %q", summary.Text)
	}
	if summary.Source != SourceExcerpt {
		t.Errorf("Expected source %q, got %q", SourceExcerpt, summary.Source)
	}
}

func TestSummarizer_FirstParagraph_CapsAt80Words(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{
		Body: makeWords(150) + "\n\n" + makeWords(20),
	}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyFirstParagraph

	summary := summarizer.Run(item, st)

	if got := wordCount(summary.Text); got != 80 {
		t.Errorf("Expected 80 words, got %d", got)
	}
	if !strings.HasSuffix(summary.Text, Ellipsis) {
		t.Error("Truncated summary must end with the ellipsis marker")
	}
}

func TestSummarizer_FirstParagraph_ShortParagraphUntrimmed(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{
		Body: "Short opening paragraph.\n\n" + makeWords(200),
	}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyFirstParagraph

	summary := summarizer.Run(item, st)

	if summary.Text != "Short opening paragraph." {
		t.Errorf("Short paragraph must pass untrimmed, got: %q", summary.Text)
	}
	if strings.HasSuffix(summary.Text, Ellipsis) {
		t.Error("Untruncated summary must not carry the ellipsis marker")
	}
}

func TestSummarizer_Fallback_PrefersManual(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{
		Body: makeWords(200),
		Meta: map[string]string{database.MetaSummary: "Manual wins."},
	}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyFallback

	summary := summarizer.Run(item, st)

	if summary.Text != "Manual wins." {
		t.Errorf("Fallback must prefer the manual summary, got: %q", summary.Text)
	}
}

func TestSummarizer_Fallback_FloorsAt30Words(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{Body: makeWords(200)}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyFallback
	st.DefaultSummaryLength = 5

	summary := summarizer.Run(item, st)

	if got := wordCount(summary.Text); got != 30 {
		t.Errorf("Expected the 30-word floor, got %d words", got)
	}
	if !strings.HasSuffix(summary.Text, Ellipsis) {
		t.Error("Truncated fallback summary must end with the ellipsis marker")
	}
}

func TestSummarizer_Fallback_ShorterSourceUnchanged(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{Body: makeWords(12)}
	st := settings.Defaults()
	st.SummaryStrategy = settings.StrategyFallback

	summary := summarizer.Run(item, st)

	if got := wordCount(summary.Text); got != 12 {
		t.Errorf("Source shorter than the limit must pass through, got %d words", got)
	}
	if strings.HasSuffix(summary.Text, Ellipsis) {
		t.Error("Unchanged summary must not carry the ellipsis marker")
	}
}

func TestSummarizer_UnrecognizedStrategyUsesFallback(t *testing.T) {
	summarizer := NewSummarizer()

	item := database.ContentItem{Body: makeWords(200)}
	st := settings.Defaults()
	st.SummaryStrategy = settings.SummaryStrategy("bogus")
	st.DefaultSummaryLength = 40

	summary := summarizer.Run(item, st)

	if got := wordCount(summary.Text); got != 40 {
		t.Errorf("Expected fallback trim to 40 words, got %d", got)
	}
}
