package config

import (
	"strings"
	"time"
)

// PipelineConfig tunes how each review task is processed.
type PipelineConfig struct {
	// Concurrency bounds per-file fetch and analysis work within one review.
	Concurrency int `env:"CONCURRENCY" envDefault:"4"`

	// MaxFiles caps reviewed files per change; negative disables the cap.
	MaxFiles int `env:"MAX_FILES" envDefault:"10"`

	ListTimeout    time.Duration `env:"LIST_TIMEOUT"    envDefault:"15s"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT"   envDefault:"15s"`
	AnalyzeTimeout time.Duration `env:"ANALYZE_TIMEOUT" envDefault:"90s"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT"   envDefault:"5s"`

	// FilterFile is an optional YAML file overriding the skipped suffixes.
	FilterFile string `env:"FILTER_FILE"`

	// AllowedHosts lists repository hosts accepted for review.
	AllowedHosts []string `env:"ALLOWED_HOSTS" envDefault:"github.com"`
}

// Sanitize applies guardrails to pipeline configuration values.
func (p *PipelineConfig) Sanitize() {
	if p.Concurrency < 1 {
		p.Concurrency = 1
	}
	if p.MaxFiles == 0 {
		p.MaxFiles = 10
	}
	p.FilterFile = strings.TrimSpace(p.FilterFile)
	p.AllowedHosts = trimList(p.AllowedHosts)
}

// GitHubConfig configures the source-control adapter.
type GitHubConfig struct {
	// Token is used for submissions that carry no credentials.
	Token   string        `env:"TOKEN"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.github.com"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"10s"`
}

// Sanitize trims the token and base URL.
func (g *GitHubConfig) Sanitize() {
	g.Token = strings.TrimSpace(g.Token)
	g.BaseURL = strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	if g.Timeout <= 0 {
		g.Timeout = 10 * time.Second
	}
}

// AnalysisConfig configures the chat-completion analysis provider.
type AnalysisConfig struct {
	BaseURL         string        `env:"BASE_URL"          envDefault:"https://api.openai.com/v1"`
	APIKey          string        `env:"API_KEY"`
	Model           string        `env:"MODEL"             envDefault:"gpt-4o-mini"`
	MaxTokens       int           `env:"MAX_TOKENS"        envDefault:"2048"`
	MaxContentBytes int           `env:"MAX_CONTENT_BYTES" envDefault:"12000"`
	Timeout         time.Duration `env:"TIMEOUT"           envDefault:"60s"`
	MaxRetries      int           `env:"MAX_RETRIES"       envDefault:"3"`
	RetryBaseDelay  time.Duration `env:"RETRY_BASE_DELAY"  envDefault:"1s"`
	// CompletionPath is a JMESPath expression selecting the completion text.
	CompletionPath string `env:"COMPLETION_PATH" envDefault:"choices[0].message.content"`
}

// Sanitize applies guardrails to analysis configuration values.
func (a *AnalysisConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	a.APIKey = strings.TrimSpace(a.APIKey)
	a.Model = strings.TrimSpace(a.Model)
	if a.MaxRetries <= 0 {
		// The client reads zero as "use its default"; -1 keeps retries off.
		a.MaxRetries = -1
	}
}

// SecurityConfig holds key material for sealing submitter credentials at rest in the queue.
type SecurityConfig struct {
	// CredentialsEncryptionKey is a 64-char hex key or a passphrase. Empty leaves credentials unsealed.
	CredentialsEncryptionKey string `env:"CREDENTIALS_ENCRYPTION_KEY"`
}

// Sanitize trims the key.
func (s *SecurityConfig) Sanitize() {
	s.CredentialsEncryptionKey = strings.TrimSpace(s.CredentialsEncryptionKey)
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
