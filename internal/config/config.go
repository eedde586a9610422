package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultPageTimeout bounds the primary page request.
	DefaultPageTimeout = 10 * time.Second

	// DefaultResourceTimeout bounds each stylesheet or script request.
	DefaultResourceTimeout = 5 * time.Second

	// DefaultAssistantTimeout bounds a single generateContent call.
	DefaultAssistantTimeout = 15 * time.Second

	// DefaultResourceConcurrency is the number of sub-resources fetched at once.
	// Kept small so a page with dozens of scripts does not hammer its host.
	DefaultResourceConcurrency = 4

	// DefaultBatchSize is the number of URLs analyzed concurrently by the CLI.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "sitescope"

	// DefaultUserAgent identifies sitescope in HTTP requests.
	DefaultUserAgent = "sitescope/1.0 (+https://github.com/nao1215/sitescope)"

	// DefaultMaxBodySize limits the response body size read per request.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultListenAddress is where the HTTP surface binds.
	DefaultListenAddress = "127.0.0.1:5000"

	// DefaultRateLimit is the sustained requests per second allowed per client
	// on the costly endpoints (analysis and assistant).
	DefaultRateLimit = 1.0

	// DefaultRateBurst is the burst allowance per client.
	DefaultRateBurst = 5

	// DefaultGeminiModel is the generative model queried by the assistant.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultGeminiEndpoint is the base URL of the generative language API.
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

// Config holds all configuration options for sitescope.
// It is populated from CLI flags, the optional YAML file and the
// environment, then passed down explicitly.
type Config struct {
	// PageTimeout is the timeout for the primary page request.
	PageTimeout time.Duration

	// ResourceTimeout is the timeout for each sub-resource request.
	ResourceTimeout time.Duration

	// AssistantTimeout is the timeout for the upstream assistant call.
	AssistantTimeout time.Duration

	// ResourceConcurrency caps parallel sub-resource fetches for one analysis.
	ResourceConcurrency int

	// BatchSize is the number of concurrent analyses when several URLs are given.
	BatchSize int

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means direct connections.
	ProxyAddress string

	// RespectRobots makes the primary fetch consult robots.txt first.
	RespectRobots bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// EnvFilePath is the dotenv file consulted for secrets.
	EnvFilePath string

	// SiteConfigs holds per-host request settings loaded from the config file.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// Targets is the list of URLs to analyze.
	Targets []string

	// ListenAddress is the bind address for the serve command.
	ListenAddress string

	// RateLimit is the per-client requests per second on costly endpoints.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the per-client burst size.
	RateBurst int

	// GeminiAPIKey is the assistant credential. Empty leaves the assistant
	// unavailable without preventing startup.
	GeminiAPIKey string

	// GeminiModel is the model name used in the generateContent path.
	GeminiModel string

	// GeminiEndpoint is the API base URL.
	GeminiEndpoint string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		PageTimeout:         DefaultPageTimeout,
		ResourceTimeout:     DefaultResourceTimeout,
		AssistantTimeout:    DefaultAssistantTimeout,
		ResourceConcurrency: DefaultResourceConcurrency,
		BatchSize:           DefaultBatchSize,
		UserAgent:           DefaultUserAgent,
		MaxBodySize:         DefaultMaxBodySize,
		LogFormat:           "text",
		EnvFilePath:         DefaultEnvFile,
		ListenAddress:       DefaultListenAddress,
		RateLimit:           DefaultRateLimit,
		RateBurst:           DefaultRateBurst,
		GeminiModel:         DefaultGeminiModel,
		GeminiEndpoint:      DefaultGeminiEndpoint,
	}
}

// XDGConfigDir returns the XDG config directory for sitescope.
// On Linux: ~/.config/sitescope
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the settings shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.PageTimeout <= 0 || c.ResourceTimeout <= 0 || c.AssistantTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ResourceConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.RateLimit < 0 || (c.RateLimit > 0 && c.RateBurst <= 0) {
		return ErrInvalidRateLimit
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// ValidateTargets checks that at least one URL was given.
// Only the analyze command needs targets, so this is separate from Validate.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return nil
}
