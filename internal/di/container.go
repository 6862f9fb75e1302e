// Package di wires repositories and services from runtime configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-storefront-cms/internal/activity"
	"github.com/goliatone/go-storefront-cms/internal/blocks"
	"github.com/goliatone/go-storefront-cms/internal/commands"
	"github.com/goliatone/go-storefront-cms/internal/importer"
	"github.com/goliatone/go-storefront-cms/internal/logging"
	"github.com/goliatone/go-storefront-cms/internal/logging/console"
	"github.com/goliatone/go-storefront-cms/internal/logging/gologger"
	"github.com/goliatone/go-storefront-cms/internal/logging/zaplogger"
	"github.com/goliatone/go-storefront-cms/internal/migrations"
	"github.com/goliatone/go-storefront-cms/internal/pages"
	"github.com/goliatone/go-storefront-cms/internal/publicpages"
	"github.com/goliatone/go-storefront-cms/internal/runtimeconfig"
	"github.com/goliatone/go-storefront-cms/internal/translations"
	"github.com/goliatone/go-storefront-cms/pkg/interfaces"
	"github.com/goliatone/go-storefront-cms/pkg/storage"
)

// Container owns the wired services. Without a database every repository is
// in memory.
type Container struct {
	Config runtimeconfig.Config

	db             *bun.DB
	ownsDB         bool
	loggerProvider interfaces.LoggerProvider
	activitySink   interfaces.ActivitySink
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	routeManager   *urlkit.RouteManager

	pageRepo             pages.PageRepository
	blockRepo            blocks.BlockRepository
	pageTranslationRepo  translations.PageTranslationRepository
	blockTranslationRepo translations.BlockTranslationRepository

	pageSvc        pages.Service
	blockSvc       blocks.Service
	translationSvc translations.Service
	publicSvc      publicpages.Service
	importer       *importer.Importer

	unsubscribe func()
}

type Option func(*Container)

// WithBunDB uses db instead of opening Config.Storage. The caller keeps
// ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) { c.db = db }
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) { c.loggerProvider = provider }
}

// WithActivitySink receives an audit record for every mutation.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) { c.activitySink = sink }
}

// WithCache overrides the page cache built from Config.Cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// NewContainer validates cfg, opens storage, applies migrations when asked to
// and wires every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Config.Validate(); err != nil {
		return nil, err
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	if err := c.configureCache(); err != nil {
		return nil, err
	}
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if c.Config.Commands.Enabled {
		c.unsubscribe = commands.Register(commands.Services{
			Pages:        c.pageSvc,
			Blocks:       c.blockSvc,
			Translations: c.translationSvc,
		}, c.loggerProvider, c.Config.Commands.MaxRetries)
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		c.loggerProvider = console.New(os.Stderr, console.WithLevel(console.ParseLevel(cfg.Level)))
	case "gologger":
		provider, err := gologger.New(gologger.Config{Level: cfg.Level, Format: cfg.Format, AddSource: cfg.AddSource, Focus: cfg.Focus})
		if err != nil {
			return fmt.Errorf("di: logging: %w", err)
		}
		c.loggerProvider = provider
	case "zap":
		provider, err := zaplogger.NewFromConfig(cfg.Level, cfg.Format)
		if err != nil {
			return fmt.Errorf("di: logging: %w", err)
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	memory := strings.EqualFold(strings.TrimSpace(c.Config.Storage.Driver), runtimeconfig.StorageMemory)
	if c.db == nil && !memory {
		db, err := storage.Open(ctx, storage.Config{
			Driver:       c.Config.Storage.Driver,
			DSN:          c.Config.Storage.DSN,
			MaxOpenConns: c.Config.Storage.MaxOpenConns,
		})
		if err != nil {
			return err
		}
		c.db = db
		c.ownsDB = true
	}
	if c.db == nil || !c.Config.Storage.AutoMigrate {
		return nil
	}
	name := migrations.DialectSQLite
	if c.db.Dialect().Name() == dialect.PG {
		name = migrations.DialectPostgres
	}
	if err := migrations.Up(c.db.DB, name); err != nil {
		_ = c.Close()
		return err
	}
	logging.ModuleLogger(c.loggerProvider, logging.StorageModule).Info("storage.migrations.applied", "dialect", name)
	return nil
}

func (c *Container) configureCache() error {
	if !c.Config.Cache.Enabled || c.db == nil {
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories() {
	if c.db != nil {
		c.pageRepo = pages.NewBunPageRepositoryWithCache(c.db, c.cacheService, c.keySerializer)
		c.blockRepo = blocks.NewBunBlockRepository(c.db)
		c.pageTranslationRepo = translations.NewBunPageTranslationRepository(c.db)
		c.blockTranslationRepo = translations.NewBunBlockTranslationRepository(c.db)
		return
	}
	c.pageRepo = pages.NewMemoryPageRepository()
	c.blockRepo = blocks.NewMemoryBlockRepository()
	c.pageTranslationRepo = translations.NewMemoryPageTranslationRepository()
	c.blockTranslationRepo = translations.NewMemoryBlockTranslationRepository()
}

func (c *Container) configureServices() error {
	cfg := c.Config
	mode, err := translations.ParseStorageMode(cfg.Translations.StorageMode)
	if err != nil {
		return err
	}
	emitter := activity.New(c.activitySink, activity.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.RootModule)))

	c.translationSvc = translations.NewService(c.pageTranslationRepo, c.blockTranslationRepo, c.blockRepo,
		translations.WithPageLookup(c.pageRepo),
		translations.WithDefaultLocale(cfg.DefaultLocale),
		translations.WithLocales(cfg.AllLocales()...),
		translations.WithStorageMode(mode),
		translations.WithResyncConcurrency(cfg.Translations.ResyncConcurrency),
		translations.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.TranslationsModule)),
		translations.WithActivity(emitter),
	)
	c.blockSvc = blocks.NewService(c.blockRepo,
		blocks.WithPageLookup(c.pageRepo),
		blocks.WithTranslationSyncer(c.translationSvc),
		blocks.WithSyncOnSettingsChange(cfg.Translations.SyncOnSettingsChange),
		blocks.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.BlocksModule)),
		blocks.WithActivity(emitter),
	)

	pageOpts := []pages.ServiceOption{
		pages.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.PagesModule)),
		pages.WithActivity(emitter),
	}
	if c.db == nil {
		// The bun page repository cascades inside its delete transaction.
		pageOpts = append(pageOpts, pages.WithDeleteHooks(c.blockSvc.DeleteForPage, c.translationSvc.OnPageDeleted))
	}
	c.pageSvc = pages.NewService(c.pageRepo, pageOpts...)

	publicOpts := []publicpages.ServiceOption{
		publicpages.WithDefaultLocale(cfg.DefaultLocale),
		publicpages.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.PublicModule)),
	}
	if routes := cfg.Routes(); routes != nil {
		c.routeManager = urlkit.NewRouteManager(routes)
		publicOpts = append(publicOpts, publicpages.WithURLBuilder(publicpages.NewURLKitBuilder(publicpages.URLKitOptions{
			Manager:      c.routeManager,
			DefaultGroup: runtimeconfig.RouteGroup,
			LocaleGroups: cfg.LocaleGroups(),
			Route:        runtimeconfig.PageRoute,
		})))
	}
	c.publicSvc = publicpages.NewService(c.pageRepo, c.blockRepo, c.pageTranslationRepo, c.blockTranslationRepo, publicOpts...)
	c.importer = importer.New(c.pageSvc, c.blockSvc, c.translationSvc,
		importer.WithLogger(logging.ModuleLogger(c.loggerProvider, logging.ImporterModule)))
	return nil
}

// Close unsubscribes command handlers and closes a database the container
// opened itself.
func (c *Container) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	var errs []error
	if c.ownsDB && c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	if syncer, ok := c.loggerProvider.(interface{ Sync() error }); ok {
		// zap returns EINVAL when stderr is a terminal.
		_ = syncer.Sync()
	}
	return errors.Join(errs...)
}

func (c *Container) DB() *bun.DB                               { return c.db }
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) RouteManager() *urlkit.RouteManager        { return c.routeManager }
func (c *Container) PageService() pages.Service                { return c.pageSvc }
func (c *Container) BlockService() blocks.Service              { return c.blockSvc }
func (c *Container) TranslationService() translations.Service  { return c.translationSvc }
func (c *Container) PublicPageService() publicpages.Service    { return c.publicSvc }
func (c *Container) Importer() *importer.Importer              { return c.importer }
func (c *Container) PageRepository() pages.PageRepository      { return c.pageRepo }
func (c *Container) BlockRepository() blocks.BlockRepository   { return c.blockRepo }
func (c *Container) CacheService() repocache.CacheService      { return c.cacheService }
func (c *Container) KeySerializer() repocache.KeySerializer    { return c.keySerializer }
func (c *Container) ActivitySink() interfaces.ActivitySink     { return c.activitySink }
func (c *Container) BlockTranslationRepository() translations.BlockTranslationRepository {
	return c.blockTranslationRepo
}
