package content

import (
	"strings"

	"github.com/aivex/ai-visibility/app/database"
	"github.com/aivex/ai-visibility/app/settings"
)

// Ellipsis marks a truncated summary.
const Ellipsis = "…"

// Hard cap for the first_paragraph strategy, and the floor below which
// the fallback strategy never trims.
const (
	firstParagraphMaxWords = 80
	fallbackMinWords       = 30
)

// Summary source tags carried in summary_source.
const (
	SourceManual         = "manual"
	SourceExcerpt        = "excerpt"
	SourceFirstParagraph = "first_paragraph"
	SourceBody           = "body"
)

// Summary is the derived summary of one content record.
type Summary struct {
	Text     string
	Strategy string
	Source   string
}

type Summarizer struct{}

func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Run derives a bounded-length summary from the record using the
// configured strategy. Pure function of its inputs.
func (s *Summarizer) Run(item database.ContentItem, st settings.Settings) Summary {
	switch st.SummaryStrategy {
	case settings.StrategyManual:
		if manual := manualSummary(item); manual != "" {
			return Summary{Text: manual, Strategy: string(settings.StrategyManual), Source: SourceManual}
		}
		return s.fallback(item, st, string(settings.StrategyManual))

	case settings.StrategyExcerpt:
		if excerpt := NormalizeBody(item.Excerpt); excerpt != "" {
			return Summary{Text: excerpt, Strategy: string(settings.StrategyExcerpt), Source: SourceExcerpt}
		}
		return s.fallback(item, st, string(settings.StrategyExcerpt))

	case settings.StrategyFirstParagraph:
		paragraphs := SplitParagraphs(item.Body)
		if len(paragraphs) > 0 {
			text, truncated := TrimWords(paragraphs[0], firstParagraphMaxWords)
			if truncated {
				text += Ellipsis
			}
			return Summary{Text: text, Strategy: string(settings.StrategyFirstParagraph), Source: SourceFirstParagraph}
		}
		return s.fallback(item, st, string(settings.StrategyFirstParagraph))

	default:
		return s.fallback(item, st, string(settings.StrategyFallback))
	}
}

// fallback prefers the manual summary, then trims the full normalized
// body to at least fallbackMinWords words.
func (s *Summarizer) fallback(item database.ContentItem, st settings.Settings, strategy string) Summary {
	if manual := manualSummary(item); manual != "" {
		return Summary{Text: manual, Strategy: strategy, Source: SourceManual}
	}

	limit := st.DefaultSummaryLength
	if limit < fallbackMinWords {
		limit = fallbackMinWords
	}

	text, truncated := TrimWords(NormalizeBody(item.Body), limit)
	if truncated {
		text += Ellipsis
	}

	return Summary{Text: text, Strategy: strategy, Source: SourceBody}
}

func manualSummary(item database.ContentItem) string {
	return strings.TrimSpace(item.Meta[database.MetaSummary])
}
