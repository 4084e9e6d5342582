package navtree

import "github.com/goliatone/go-navtree/internal/runtimeconfig"

var (
	ErrLoggingProviderRequired           = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown            = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid               = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid              = runtimeconfig.ErrLoggingFormatInvalid
	ErrIndentWidthInvalid                = runtimeconfig.ErrIndentWidthInvalid
	ErrRowHeightInvalid                  = runtimeconfig.ErrRowHeightInvalid
	ErrGestureRatioInvalid               = runtimeconfig.ErrGestureRatioInvalid
	ErrAdvancedCacheRequiresEnabledCache = runtimeconfig.ErrAdvancedCacheRequiresEnabledCache
)

type (
	Config               = runtimeconfig.Config
	NavigationConfig     = runtimeconfig.NavigationConfig
	URLKitResolverConfig = runtimeconfig.URLKitResolverConfig
	DndConfig            = runtimeconfig.DndConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	Features             = runtimeconfig.Features
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
