package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Mirror    MirrorConfig    `yaml:"mirror"`
	Providers ProvidersConfig `yaml:"providers"`
	LLM       LLMConfig       `yaml:"llm"`
	SRS       SRSConfig       `yaml:"srs"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StoreConfig holds the local word-store settings.
type StoreConfig struct {
	Path string `yaml:"path" env:"STORE_PATH" env-default:"./data/words.json"`
}

// MirrorConfig holds the optional secondary (PostgreSQL) store settings.
// The mirror is off unless a DSN is provided.
type MirrorConfig struct {
	DSN             string        `yaml:"dsn"                env:"MIRROR_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"MIRROR_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"MIRROR_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"MIRROR_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"MIRROR_MAX_CONN_IDLE_TIME" env-default:"30m"`
	SyncTimeout     time.Duration `yaml:"sync_timeout"       env:"MIRROR_SYNC_TIMEOUT"       env-default:"15s"`
}

// Enabled reports whether a mirror location is configured.
func (c MirrorConfig) Enabled() bool {
	return c.DSN != ""
}

// ProvidersConfig holds the external dictionary and translation providers.
type ProvidersConfig struct {
	DictionaryURL  string        `yaml:"dictionary_url"  env:"PROVIDERS_DICTIONARY_URL"  env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	WiktionaryURL  string        `yaml:"wiktionary_url"  env:"PROVIDERS_WIKTIONARY_URL"  env-default:"https://en.wiktionary.org/api/rest_v1/page/definition"`
	TranslationURL string        `yaml:"translation_url" env:"PROVIDERS_TRANSLATION_URL" env-default:"https://api.mymemory.translated.net/get"`
	TTSURL         string        `yaml:"tts_url"         env:"PROVIDERS_TTS_URL"         env-default:"https://dict.youdao.com/dictvoice?type=0&audio="`
	Timeout        time.Duration `yaml:"timeout"         env:"PROVIDERS_TIMEOUT"         env-default:"10s"`
}

// LLMConfig holds the LLM fallback settings. The fallback tier is inert when
// APIKey is empty; lookups then end at the translation tier.
type LLMConfig struct {
	APIKey    string        `yaml:"api_key"    env:"LLM_API_KEY"`
	Model     string        `yaml:"model"      env:"LLM_MODEL"      env-default:"claude-3-5-haiku-latest"`
	MaxTokens int64         `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
	Timeout   time.Duration `yaml:"timeout"    env:"LLM_TIMEOUT"    env-default:"30s"`
}

// SRSConfig holds spaced-repetition parameters.
type SRSConfig struct {
	IntervalsRaw         string `yaml:"intervals"              env:"SRS_INTERVALS"              env-default:"1,2,4,7,15,30"`
	MasteredIntervalDays int    `yaml:"mastered_interval_days" env:"SRS_MASTERED_INTERVAL_DAYS" env-default:"60"`

	// Intervals is parsed from IntervalsRaw during validation.
	Intervals []int `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
