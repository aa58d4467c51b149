// Package core wires every launcher collaborator into one Service: stores,
// the resolver, the installer, the diagnosis engine with its fixes and the
// launch preflight.
package core

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/guard"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/linker"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/resolver"
	"github.com/DonovanMods/linux-mc-launcher/internal/resource"
	"github.com/DonovanMods/linux-mc-launcher/internal/retry"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/cache"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/config"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir string // Directory for configuration files
	DataDir   string // Directory for database and persistent data
	CacheDir  string // Directory for fetched metadata

	// The fields below default to production values and exist for tests.
	HTTPClient *http.Client
	Endpoints  install.Endpoints
	Platform   minecraft.Platform
	HostArch   func() (string, error)
	Retry      *retry.Config
	// JavaCandidates replaces java discovery's candidate search.
	JavaCandidates func(configured []string) []string
}

// Service is the main orchestrator for launcher operations
type Service struct {
	config    *config.Config
	db        *db.DB
	cache     *cache.Cache
	bus       *event.Bus
	guard     *guard.Guard
	folder    minecraft.Folder
	platform  minecraft.Platform
	network   *install.Network
	installer *install.Installer
	resolver  *resolver.Resolver
	instances *config.InstanceStore
	accounts  *config.AccountStore
	catalog   *resource.Catalog
	javas     *JavaStore
	servers   *ServerStore
	engine    *diagnose.Engine
	unwire    func()
	observe   func(task.Observer)

	configDir string
	dataDir   string
	cacheDir  string
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	for _, dir := range []string{cfg.ConfigDir, cfg.DataDir, cfg.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	appConfig, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := appConfig.ApplyEnv(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Service{
		config:    appConfig,
		db:        database,
		cache:     cache.New(cfg.CacheDir),
		bus:       event.NewBus(),
		guard:     guard.New(),
		folder:    minecraft.NewFolder(appConfig.RootDir),
		platform:  cfg.Platform,
		configDir: cfg.ConfigDir,
		dataDir:   cfg.DataDir,
		cacheDir:  cfg.CacheDir,
	}
	if s.platform.Name == "" {
		s.platform = minecraft.CurrentPlatform()
	}

	if s.instances, err = config.OpenInstances(cfg.ConfigDir, appConfig, s.bus); err != nil {
		database.Close()
		return nil, fmt.Errorf("loading instances: %w", err)
	}
	if s.accounts, err = config.OpenAccounts(cfg.ConfigDir, appConfig, s.bus); err != nil {
		database.Close()
		return nil, fmt.Errorf("loading accounts: %w", err)
	}

	s.network = install.NewNetwork(install.NetworkConfig{
		Client:     cfg.HTTPClient,
		Restricted: appConfig.RestrictedNetwork,
		Mirror:     appConfig.Mirror,
		Cache:      s.cache,
		Retry:      cfg.Retry,
	})
	s.resolver = resolver.New(s.folder, s.bus)
	s.catalog = resource.NewCatalog(database, s.instances)
	s.javas = NewJavaStore(database, s.bus, appConfig.JavaPaths, cfg.JavaCandidates)
	s.servers = NewServerStore(database, s.bus)
	s.installer = install.New(install.Config{
		Folder:           s.folder,
		Platform:         s.platform,
		Network:          s.network,
		Guard:            s.guard,
		Versions:         s.resolver,
		History:          database,
		Endpoints:        cfg.Endpoints,
		Concurrency:      appConfig.DownloadConcurrency,
		ProcessorTimeout: appConfig.ProcessorTimeout,
		Java:             s.javas.DefaultPath,
	})
	s.engine = diagnose.New(diagnose.Deps{
		Folder:      s.folder,
		Platform:    s.platform,
		Instances:   s.instances,
		Versions:    s.resolver,
		Javas:       s.javas,
		Resources:   s.catalog,
		Accounts:    s.accounts,
		Servers:     s.servers,
		Guard:       s.guard,
		Bus:         s.bus,
		HostArch:    cfg.HostArch,
		PackFormats: appConfig.PackFormats,
	})
	s.registerFixes()

	return s, nil
}

// Start scans installed versions and subscribes the diagnosis engine to
// store mutations. Triggered passes use ctx.
func (s *Service) Start(ctx context.Context) error {
	if _, err := s.resolver.Refresh(ctx); err != nil {
		return err
	}
	s.unwire = s.engine.Wire(ctx, s.bus)
	ctxlog.FromContext(ctx).Debug("service started", "root", s.folder.Root, "versions", len(s.resolver.Locals()))
	return nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.unwire != nil {
		s.unwire()
		s.unwire = nil
	}
	s.engine.Wait()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ObserveTasks registers fn to receive every install task the service
// starts, for progress rendering. fn must not block.
func (s *Service) ObserveTasks(fn func(task.Observer)) {
	s.observe = fn
}

// Config returns the loaded launcher configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// ConfigDir returns the configuration directory.
func (s *Service) ConfigDir() string {
	return s.configDir
}

// Folder returns the Minecraft root.
func (s *Service) Folder() minecraft.Folder {
	return s.folder
}

// Platform returns the platform rules are evaluated for.
func (s *Service) Platform() minecraft.Platform {
	return s.platform
}

// Bus returns the event bus store mutations are published on.
func (s *Service) Bus() *event.Bus {
	return s.bus
}

// DB returns the database.
func (s *Service) DB() *db.DB {
	return s.db
}

// Guard returns the key guard shared by installs and diagnosis.
func (s *Service) Guard() *guard.Guard {
	return s.guard
}

// Cache returns the metadata cache.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// Installer returns the install operations.
func (s *Service) Installer() *install.Installer {
	return s.installer
}

// Resolver returns the version resolver.
func (s *Service) Resolver() *resolver.Resolver {
	return s.resolver
}

// Instances returns the instance store.
func (s *Service) Instances() *config.InstanceStore {
	return s.instances
}

// Accounts returns the account store.
func (s *Service) Accounts() *config.AccountStore {
	return s.accounts
}

// Catalog returns the mod and resource-pack catalog.
func (s *Service) Catalog() *resource.Catalog {
	return s.catalog
}

// Javas returns the java runtime store.
func (s *Service) Javas() *JavaStore {
	return s.javas
}

// Servers returns the server status store.
func (s *Service) Servers() *ServerStore {
	return s.servers
}

// Engine returns the diagnosis engine.
func (s *Service) Engine() *diagnose.Engine {
	return s.engine
}

// GetLinker returns the linker for the configured deployment method
func (s *Service) GetLinker() linker.Linker {
	return linker.New(s.config.LinkMethod)
}

// Diagnose runs the given checks, or every check when none is given, and
// returns the merged report.
func (s *Service) Diagnose(ctx context.Context, cats ...diagnose.Category) (domain.IssueReport, error) {
	if len(cats) == 0 {
		cats = diagnose.Categories()
	}
	err := s.engine.Diagnose(ctx, cats...)
	return s.engine.Report(), err
}

// Fix diagnoses everything, then dispatches fixes for the autofixable
// issues found.
func (s *Service) Fix(ctx context.Context) (diagnose.FixOutcome, error) {
	if err := s.engine.DiagnoseAll(ctx); err != nil {
		return diagnose.FixOutcome{}, err
	}
	return s.engine.Fix(ctx, s.engine.Issues())
}
