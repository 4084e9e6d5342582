package navtree

import (
	"strings"

	"github.com/goliatone/go-navtree/internal/dnd"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/internal/logging/gologger"
	"github.com/goliatone/go-navtree/internal/navigation"
	navmodels "github.com/goliatone/go-navtree/navigation"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"
)

// NavigationService exposes menu and item management plus drag sessions.
type NavigationService = navigation.Service

type (
	Menu = navmodels.Menu
	Item = navmodels.Item
)

// Re-exported drag engine types so hosts drive sessions without importing
// internal packages.
type (
	DragSession   = dnd.Session
	TreeNode      = dnd.Node
	Projection    = dnd.Projection
	ItemPlacement = dnd.ItemPlacement
	Geometry      = dnd.Geometry
)

// Module wires the navigation stack: repositories, service, drag engine,
// logging. Hosts hold one Module per process.
type Module struct {
	config   Config
	provider interfaces.LoggerProvider
	nav      navigation.Service
}

// Option customizes module construction.
type Option func(*moduleDeps)

type moduleDeps struct {
	db            *bun.DB
	provider      interfaces.LoggerProvider
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	urlResolver   navigation.URLResolver
}

// WithDB backs repositories with the provided bun database. Without it the
// module runs on in-memory repositories.
func WithDB(db *bun.DB) Option {
	return func(d *moduleDeps) {
		d.db = db
	}
}

// WithLoggerProvider overrides the configured logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(d *moduleDeps) {
		d.provider = provider
	}
}

// WithCache enables read-through caching for menu lookups.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(d *moduleDeps) {
		d.cacheService = service
		d.keySerializer = serializer
	}
}

// WithURLResolver overrides the navigation URL resolver.
func WithURLResolver(resolver navigation.URLResolver) Option {
	return func(d *moduleDeps) {
		d.urlResolver = resolver
	}
}

// New validates the configuration and wires the module.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := &moduleDeps{}
	for _, opt := range opts {
		opt(deps)
	}

	provider := deps.provider
	if provider == nil && cfg.Features.Logger && strings.EqualFold(cfg.Logging.Provider, "gologger") {
		built, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		provider = built
	}

	var menuRepo navigation.MenuRepository
	var itemRepo navigation.ItemRepository
	if deps.db != nil {
		if cfg.Cache.Enabled && deps.cacheService != nil && deps.keySerializer != nil {
			menuRepo = navigation.NewBunMenuRepositoryWithCache(deps.db, deps.cacheService, deps.keySerializer)
		} else {
			menuRepo = navigation.NewBunMenuRepository(deps.db)
		}
		itemRepo = navigation.NewBunItemRepository(deps.db)
	} else {
		menuRepo = navigation.NewMemoryMenuRepository()
		itemRepo = navigation.NewMemoryItemRepository()
	}

	resolver := deps.urlResolver
	if resolver == nil && cfg.Navigation.RouteConfig != nil {
		manager := urlkit.NewRouteManager(cfg.Navigation.RouteConfig)
		resolver = navigation.NewURLKitResolver(navigation.URLKitResolverOptions{
			Manager:      manager,
			DefaultGroup: strings.TrimSpace(cfg.Navigation.URLKit.DefaultGroup),
			LocaleGroups: cfg.Navigation.URLKit.LocaleGroups,
			DefaultRoute: strings.TrimSpace(cfg.Navigation.URLKit.DefaultRoute),
			SlugParam:    cfg.Navigation.URLKit.SlugParam,
			LocaleParam:  strings.TrimSpace(cfg.Navigation.URLKit.LocaleParam),
		})
	}

	serviceOpts := []navigation.ServiceOption{
		navigation.WithLogger(logging.NavigationLogger(provider)),
		navigation.WithSessionLogger(logging.DndLogger(provider)),
		navigation.WithGeometry(dnd.Geometry{
			IndentWidth:    cfg.Dnd.IndentWidth,
			RowHeight:      cfg.Dnd.RowHeight,
			VerticalJitter: cfg.Dnd.VerticalJitter,
			GestureRatio:   cfg.Dnd.GestureRatio,
		}),
	}
	if resolver != nil {
		serviceOpts = append(serviceOpts, navigation.WithURLResolver(resolver))
	}

	return &Module{
		config:   cfg,
		provider: provider,
		nav:      navigation.NewService(menuRepo, itemRepo, serviceOpts...),
	}, nil
}

// Navigation returns the menu/item service.
func (m *Module) Navigation() NavigationService {
	return m.nav
}

// Logger returns a module-scoped logger.
func (m *Module) Logger(name string) interfaces.Logger {
	return logging.ModuleLogger(m.provider, name)
}

// DefaultLocale returns the locale used when callers do not specify one.
func (m *Module) DefaultLocale() string {
	return m.config.DefaultLocale
}
