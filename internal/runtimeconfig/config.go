package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMaxRetriesInvalid = errors.New("piranha config: engine max retries must be zero or positive")
var ErrCommandTimeoutInvalid = errors.New("piranha config: command timeout must be zero or positive")
var ErrCacheTTLInvalid = errors.New("piranha config: cache default ttl must be zero or positive")
var ErrLoggingProviderRequired = errors.New("piranha config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("piranha config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("piranha config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("piranha config: logging format is invalid")
var ErrPostsFeatureRequired = errors.New("piranha config: posts feature must be enabled to configure archives")
var ErrStorageProviderUnknown = errors.New("piranha config: storage provider is invalid")
var ErrAutoInvalidateRequiresCommands = errors.New("piranha config: commands must be enabled for auto invalidation")

// Config aggregates feature flags and adapter bindings for the content
// engine. Fields intentionally use simple types so host applications can
// extend them later.
type Config struct {
	Enabled  bool
	Engine   EngineConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Archives ArchiveConfig
	Features Features
	Commands CommandsConfig
	Logging  LoggingConfig
}

// EngineConfig tunes the save/move/delete machinery.
type EngineConfig struct {
	// MaxRetries bounds optimistic retries after sibling-shift or taxonomy
	// creation conflicts.
	MaxRetries     int
	CommandTimeout time.Duration
}

// StorageConfig selects the persistence backend. "bun" uses the database
// handle the host wires in, "memory" forces the in-process repositories
// even when a handle is present.
type StorageConfig struct {
	Provider string
}

// CacheConfig captures read-cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// ArchiveConfig tunes blog archive behaviour.
type ArchiveConfig struct {
	PageSize int
}

// Features toggles module functionality.
type Features struct {
	Posts          bool
	Sites          bool
	ReusableBlocks bool
	Logger         bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled        bool
	AutoInvalidate bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for embedding hosts.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Engine: EngineConfig{
			MaxRetries:     3,
			CommandTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Provider: "bun",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Archives: ArchiveConfig{
			PageSize: 10,
		},
		Features: Features{
			Posts:          true,
			Sites:          true,
			ReusableBlocks: true,
		},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Engine.MaxRetries < 0 {
		return ErrMaxRetriesInvalid
	}
	if cfg.Engine.CommandTimeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if provider := normalizeProvider(cfg.Storage.Provider); provider != "" && !isSupportedStorageProvider(provider) {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Commands.AutoInvalidate && !cfg.Commands.Enabled {
		return ErrAutoInvalidateRequiresCommands
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if !cfg.Features.Posts && cfg.Archives.PageSize != 0 && cfg.Archives.PageSize != DefaultConfig().Archives.PageSize {
		return ErrPostsFeatureRequired
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedStorageProvider(provider string) bool {
	switch provider {
	case "bun", "memory":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
