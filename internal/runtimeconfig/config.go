package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrLoggingProviderRequired indicates the logger feature is on without a provider.
var ErrLoggingProviderRequired = errors.New("navtree config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("navtree config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("navtree config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("navtree config: logging format is invalid")
var ErrIndentWidthInvalid = errors.New("navtree config: drag indent width must be positive")
var ErrRowHeightInvalid = errors.New("navtree config: drag row height must be positive")
var ErrGestureRatioInvalid = errors.New("navtree config: drag gesture ratio must be between 0 and 1")
var ErrAdvancedCacheRequiresEnabledCache = errors.New("navtree config: advanced cache feature requires cache to be enabled")

// Config aggregates feature flags and adapter bindings for the navtree module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled       bool
	DefaultLocale string
	Navigation    NavigationConfig
	Dnd           DndConfig
	Storage       StorageConfig
	Cache         CacheConfig
	Features      Features
	Logging       LoggingConfig
}

// NavigationConfig captures menu-location defaults and URL resolution wiring.
type NavigationConfig struct {
	DefaultLocation string
	RouteConfig     *urlkit.Config
	URLKit          URLKitResolverConfig
}

// URLKitResolverConfig configures the go-urlkit based resolver.
type URLKitResolverConfig struct {
	DefaultGroup string
	LocaleGroups map[string]string
	DefaultRoute string
	SlugParam    string
	LocaleParam  string
}

// DndConfig captures the geometry thresholds driving drop projection.
// Units match whatever coordinate space the host reports pointer deltas in.
type DndConfig struct {
	IndentWidth    int
	RowHeight      int
	VerticalJitter int
	GestureRatio   float64
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// Features toggles module functionality.
type Features struct {
	Logger        bool
	AdvancedCache bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a single-menu editing session.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLocale: "en",
		Navigation: NavigationConfig{
			DefaultLocation: "header",
		},
		Dnd: DndConfig{
			IndentWidth:    24,
			RowHeight:      32,
			VerticalJitter: 12,
			GestureRatio:   0.4,
		},
		Storage: StorageConfig{
			Provider: "bun",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate enforces cross-field constraints before the module boots.
func (cfg Config) Validate() error {
	if cfg.Dnd.IndentWidth <= 0 {
		return ErrIndentWidthInvalid
	}
	if cfg.Dnd.RowHeight <= 0 {
		return ErrRowHeightInvalid
	}
	if cfg.Dnd.GestureRatio <= 0 || cfg.Dnd.GestureRatio >= 1 {
		return ErrGestureRatioInvalid
	}
	if cfg.Features.AdvancedCache && !cfg.Cache.Enabled {
		return ErrAdvancedCacheRequiresEnabledCache
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
