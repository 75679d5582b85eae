package settings

// SummaryStrategy selects how item summaries are derived.
type SummaryStrategy string

const (
	StrategyManual         SummaryStrategy = "manual"
	StrategyExcerpt        SummaryStrategy = "excerpt"
	StrategyFirstParagraph SummaryStrategy = "first_paragraph"
	StrategyFallback       SummaryStrategy = "fallback"
)

// Settings is the immutable snapshot of content-serving behavior.
// Components receive it by value on every call; nothing reads it
// ambiently, so a reload never changes behavior mid-request.
type Settings struct {
	DefaultSummaryLength int             `yaml:"default_summary_length" json:"default_summary_length"`
	ExposeKeywords       bool            `yaml:"expose_keywords" json:"expose_keywords"`
	EnableCache          bool            `yaml:"enable_cache" json:"enable_cache"`
	CacheTTL             int             `yaml:"cache_ttl" json:"cache_ttl"` // seconds
	AllowPublicEndpoint  bool            `yaml:"allow_public_endpoint" json:"allow_public_endpoint"`
	SummaryStrategy      SummaryStrategy `yaml:"summary_strategy" json:"summary_strategy"`
	UserAgentWhitelist   []string        `yaml:"user_agent_whitelist" json:"user_agent_whitelist"`
	ManifestFields       []string        `yaml:"manifest_fields" json:"manifest_fields"`

	RateLimit  int `yaml:"rate_limit" json:"rate_limit"`   // requests per window
	RateWindow int `yaml:"rate_window" json:"rate_window"` // seconds

	SiteName string `yaml:"site_name" json:"site_name"`
	SiteURL  string `yaml:"site_url" json:"site_url"`
	Language string `yaml:"language" json:"language"`
}

// OptionalManifestFields lists every per-item field the manifest may
// project beyond the always-present id, url and title.
var OptionalManifestFields = []string{
	"summary",
	"summary_strategy",
	"keywords",
	"audience",
	"language",
	"updated_at",
	"published_at",
	"author",
	"categories",
	"tags",
	"taxonomies",
	"images",
	"alternates",
	"schema",
	"content_hash",
	"ai_indexable",
}
