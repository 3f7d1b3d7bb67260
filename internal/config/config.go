package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"

	"github.com/lingokit/lingokit/internal/subtitle"
	"github.com/lingokit/lingokit/pkg/log"
)

// Config holds all application configuration, read from environment
// variables with sensible defaults.
//
// Environment Variables:
// Provider Configuration:
// - OPENAI_API_KEY: API key for the translation provider (required)
// - OPENAI_API_URL: API endpoint override (optional)
// - OPENAI_MODEL: Model name to use (default: gpt-4o-mini)
// - OPENAI_TEMPERATURE: Temperature for generation (default: 0.3)
//
// Translation Configuration:
// - SOURCE_LANG: Source locale code; empty enables auto-detection
// - TARGET_LANGS: Comma-separated target locale codes (required)
// - FUZZY_THRESHOLD: Minimum translation-memory match score 0-100 (default: 75)
// - BATCH_SIZE: Texts per provider call (default: 20)
// - CONCURRENCY: Parallel target languages (default: 2)
//
// Resource Configuration:
// - GLOSSARY_FILE: Glossary spreadsheet, .csv or .xlsx (optional)
// - DNT_TERMS: Comma-separated do-not-translate terms (optional)
// - TMX_FILE: Translation memory in TMX 1.4 (optional)
// - DB_PATH: SQLite cache path; empty keeps everything in memory
// - SCHEMA_DIR: Directory of JSON schema definitions for structured-JSON
//   detection; empty falls back to the built-in locale-document schema
//
// Subtitle Configuration:
// - SUBTITLE_MIN_GAP_MS: Minimum gap between cues in milliseconds (default: 0, disabled)
// - SUBTITLE_MIN_CPS: Minimum reading speed in chars/second (default: 0, disabled)
// - SUBTITLE_MAX_CPS: Maximum reading speed in chars/second (default: 0, disabled)
// - SUBTITLE_OVERLAP_POLICY: warn-only, shorten-previous or delay-next (default: warn-only)
//
// Watch Mode Configuration:
// - INPUT_DIR: Directory scanned for new files (default: /input)
// - OUTPUT_DIR: Directory for translated files (default: /output)
// - CRON_EXPR: Scan schedule (default: "0 * * * *")
//
// System Configuration:
// - LOG_LEVEL: debug, info, warn, error or fatal (default: info)

type Config struct {
	Provider  ProviderConfig  `json:"provider"`
	Translate TranslateConfig `json:"translate"`
	Resources ResourceConfig  `json:"resources"`
	Subtitle  SubtitleConfig  `json:"subtitle"`
	Watch     WatchConfig     `json:"watch"`
	LogLevel  string          `json:"log_level"`
}

// ProviderConfig holds the translation backend settings.
type ProviderConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

type TranslateConfig struct {
	SourceLang     string   `json:"source_lang"`
	TargetLangs    []string `json:"target_langs"`
	FuzzyThreshold int      `json:"fuzzy_threshold"`
	BatchSize      int      `json:"batch_size"`
	Concurrency    int      `json:"concurrency"`
}

// ResourceConfig locates the optional glossary, DNT list, translation
// memory and cache database.
type ResourceConfig struct {
	GlossaryFile string   `json:"glossary_file"`
	DNTTerms     []string `json:"dnt_terms"`
	TMXFile      string   `json:"tmx_file"`
	DBPath       string   `json:"db_path"`
	SchemaDir    string   `json:"schema_dir"`
}

type SubtitleConfig struct {
	MinGap            time.Duration          `json:"min_gap"`
	MinCharsPerSecond float64                `json:"min_cps"`
	MaxCharsPerSecond float64                `json:"max_cps"`
	OverlapPolicy     subtitle.OverlapPolicy `json:"overlap_policy"`
}

// ValidatorConfig converts the subtitle settings into the validator's
// form.
func (c SubtitleConfig) ValidatorConfig() subtitle.ValidatorConfig {
	return subtitle.ValidatorConfig{
		MinGap:            c.MinGap,
		MinCharsPerSecond: c.MinCharsPerSecond,
		MaxCharsPerSecond: c.MaxCharsPerSecond,
	}
}

type WatchConfig struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	CronExpr  string `json:"cron_expr"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Provider: ProviderConfig{
			APIKey:      getEnvString("OPENAI_API_KEY", ""),
			APIURL:      getEnvString("OPENAI_API_URL", ""),
			Model:       getEnvString("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.3),
		},
		Translate: TranslateConfig{
			SourceLang:     getEnvString("SOURCE_LANG", ""),
			TargetLangs:    getEnvList("TARGET_LANGS"),
			FuzzyThreshold: getEnvInt("FUZZY_THRESHOLD", 75),
			BatchSize:      getEnvInt("BATCH_SIZE", 20),
			Concurrency:    getEnvInt("CONCURRENCY", 2),
		},
		Resources: ResourceConfig{
			GlossaryFile: getEnvString("GLOSSARY_FILE", ""),
			DNTTerms:     getEnvList("DNT_TERMS"),
			TMXFile:      getEnvString("TMX_FILE", ""),
			DBPath:       getEnvString("DB_PATH", ""),
			SchemaDir:    getEnvString("SCHEMA_DIR", ""),
		},
		Subtitle: SubtitleConfig{
			MinGap:            time.Duration(getEnvInt("SUBTITLE_MIN_GAP_MS", 0)) * time.Millisecond,
			MinCharsPerSecond: getEnvFloat("SUBTITLE_MIN_CPS", 0),
			MaxCharsPerSecond: getEnvFloat("SUBTITLE_MAX_CPS", 0),
			OverlapPolicy:     subtitle.OverlapPolicy(getEnvString("SUBTITLE_OVERLAP_POLICY", string(subtitle.OverlapWarnOnly))),
		},
		Watch: WatchConfig{
			InputDir:  getEnvString("INPUT_DIR", "/input"),
			OutputDir: getEnvString("OUTPUT_DIR", "/output"),
			CronExpr:  getEnvString("CRON_EXPR", "0 * * * *"),
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}

	log.Debug("Config: %+v", config)

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if len(c.Translate.TargetLangs) == 0 {
		return fmt.Errorf("TARGET_LANGS is required")
	}
	for _, lang := range c.Translate.TargetLangs {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("invalid target language %q: %w", lang, err)
		}
	}
	if c.Translate.SourceLang != "" {
		if _, err := language.Parse(c.Translate.SourceLang); err != nil {
			return fmt.Errorf("invalid source language %q: %w", c.Translate.SourceLang, err)
		}
	}
	if c.Translate.FuzzyThreshold < 0 || c.Translate.FuzzyThreshold > 100 {
		return fmt.Errorf("FUZZY_THRESHOLD must be between 0 and 100")
	}
	switch c.Subtitle.OverlapPolicy {
	case subtitle.OverlapWarnOnly, subtitle.OverlapShortenPrevious, subtitle.OverlapDelayNext:
	default:
		return fmt.Errorf("invalid SUBTITLE_OVERLAP_POLICY %q", c.Subtitle.OverlapPolicy)
	}
	if c.Watch.CronExpr != "" {
		if _, err := cron.ParseStandard(c.Watch.CronExpr); err != nil {
			return fmt.Errorf("invalid CRON_EXPR: %w", err)
		}
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated environment variable, dropping
// empty entries.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ret := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ret = append(ret, trimmed)
		}
	}
	return ret
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
