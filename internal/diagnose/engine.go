// Package diagnose inspects the selected instance, reports typed issues and
// dispatches registered fixes for them.
//
// Each check category owns a disjoint set of issue kinds and rewrites all of
// them on every run, so partial reports from different checks merge without
// conflict. A whole pass runs under the "diagnose" lock; each check is also
// single-flight under a key equal to its category name.
package diagnose

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/guard"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/shirou/gopsutil/v3/host"
)

// LockKey is the guard key held by a diagnosis pass and a fix dispatch.
const LockKey = "diagnose"

// Category names a check routine.
type Category string

const (
	CategoryVersion       Category = "version"
	CategoryJava          Category = "java"
	CategoryMods          Category = "mods"
	CategoryResourcePacks Category = "resourcePacks"
	CategoryUser          Category = "user"
	CategoryServer        Category = "server"
)

// Categories returns every check category in run order.
func Categories() []Category {
	return []Category{CategoryVersion, CategoryJava, CategoryMods, CategoryResourcePacks, CategoryUser, CategoryServer}
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown check category %q", s)
}

var owned = map[Category][]domain.IssueKind{
	CategoryVersion: {
		domain.IssueMissingVersion,
		domain.IssueMissingVersionJSON, domain.IssueCorruptedVersionJSON,
		domain.IssueMissingVersionJar, domain.IssueCorruptedVersionJar,
		domain.IssueMissingAssetsIndex, domain.IssueCorruptedAssetsIndex,
		domain.IssueMissingLibraries, domain.IssueCorruptedLibraries,
		domain.IssueMissingAssets, domain.IssueCorruptedAssets,
		domain.IssueBadInstall,
	},
	CategoryJava:          {domain.IssueMissingJava, domain.IssueInvalidJava, domain.IssueIncompatibleJava},
	CategoryMods:          {domain.IssueUnknownMod, domain.IssueIncompatibleMod, domain.IssueRequireForge, domain.IssueRequireFabric, domain.IssueRequireFabricAPI},
	CategoryResourcePacks: {domain.IssueIncompatibleResourcePack},
	CategoryUser:          {domain.IssueMissingAuthlibInjector},
	CategoryServer:        {domain.IssueMissingModsOnServer},
}

// Owned returns the issue kinds a category writes.
func Owned(c Category) []domain.IssueKind {
	return slices.Clone(owned[c])
}

// InstanceSource provides the selected instance.
type InstanceSource interface {
	Selected() (domain.Instance, error)
}

// VersionSource resolves runtimes to installed versions.
type VersionSource interface {
	Resolve(target domain.RuntimeVersions) (string, error)
}

// JavaSource looks up discovered java runtimes.
type JavaSource interface {
	Javas(ctx context.Context) ([]domain.JavaRecord, error)
}

// ResourceSource lists an instance's mods and enabled resource packs.
type ResourceSource interface {
	Mods(ctx context.Context, instancePath string) ([]domain.ModResource, error)
	ResourcePacks(ctx context.Context, instancePath string) ([]domain.ResourcePack, error)
}

// AccountSource provides the selected account.
type AccountSource interface {
	SelectedAccount() (domain.Account, bool)
}

// ServerSource provides the last known server status.
type ServerSource interface {
	ServerStatus(ctx context.Context, address string) (domain.ServerStatus, bool, error)
}

// Deps are the collaborators checks read from.
type Deps struct {
	Folder    minecraft.Folder
	Platform  minecraft.Platform
	Instances InstanceSource
	Versions  VersionSource
	Javas     JavaSource
	Resources ResourceSource
	Accounts  AccountSource
	Servers   ServerSource
	Guard     *guard.Guard
	Bus       *event.Bus
	// HostArch reports the kernel architecture; defaults to gopsutil.
	HostArch func() (string, error)
	// PackFormats overrides the pack_format to game-version range table.
	PackFormats map[int]string
}

type checkFunc func(ctx context.Context, e *Engine, inst domain.Instance) (domain.IssueReport, error)

// Engine runs checks and holds the merged report.
type Engine struct {
	deps     Deps
	guard    *guard.Guard
	checks   map[Category]checkFunc
	registry *Registry

	mu        sync.RWMutex
	report    domain.IssueReport
	inFlight  map[domain.IssueKind]bool
	resolving map[domain.IssueKind]bool

	triggers sync.WaitGroup
}

// New creates an engine. A nil Guard or Bus is replaced with a private one.
func New(deps Deps) *Engine {
	if deps.Guard == nil {
		deps.Guard = guard.New()
	}
	if deps.Bus == nil {
		deps.Bus = event.NewBus()
	}
	if deps.HostArch == nil {
		deps.HostArch = host.KernelArch
	}
	if deps.Platform.Name == "" {
		deps.Platform = minecraft.CurrentPlatform()
	}
	return &Engine{
		deps:  deps,
		guard: deps.Guard,
		checks: map[Category]checkFunc{
			CategoryVersion:       checkVersion,
			CategoryJava:          checkJava,
			CategoryMods:          checkMods,
			CategoryResourcePacks: checkResourcePacks,
			CategoryUser:          checkUser,
			CategoryServer:        checkServer,
		},
		registry:  NewRegistry(),
		report:    make(domain.IssueReport),
		inFlight:  make(map[domain.IssueKind]bool),
		resolving: make(map[domain.IssueKind]bool),
	}
}

// Registry returns the fix registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Report returns a copy of the merged report.
func (e *Engine) Report() domain.IssueReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.report.Clone()
}

// Issues returns the active issues in report order.
func (e *Engine) Issues() []domain.Issue {
	return e.Report().Active()
}

// Resolving reports whether issues of kind are being fixed right now.
func (e *Engine) Resolving(kind domain.IssueKind) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.resolving[kind]
}

// DiagnoseAll runs every check.
func (e *Engine) DiagnoseAll(ctx context.Context) error {
	return e.Diagnose(ctx, Categories()...)
}

// Diagnose runs the given checks under the diagnosis lock, waiting for any
// running pass or fix dispatch to finish first, and publishes the merged
// report.
func (e *Engine) Diagnose(ctx context.Context, cats ...Category) error {
	if err := e.guard.Acquire(ctx, LockKey); err != nil {
		return err
	}
	defer e.guard.Release(LockKey)
	return e.diagnoseLocked(ctx, cats)
}

// diagnoseLocked runs checks concurrently; the caller holds the lock. A
// failing check keeps its previous report and its error is returned joined
// with the others.
func (e *Engine) diagnoseLocked(ctx context.Context, cats []Category) error {
	log := ctxlog.FromContext(ctx)

	inst, err := e.deps.Instances.Selected()
	if err != nil {
		if errors.Is(err, domain.ErrNoInstanceSelected) {
			log.Debug("no instance selected, skipping diagnosis")
			return nil
		}
		return fmt.Errorf("reading selected instance: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	partials := make(map[Category]domain.IssueReport, len(cats))
	for _, c := range dedupe(cats) {
		c := c
		check, ok := e.checks[c]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown check category %q", c))
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			partial, ran, err := guard.Run(e.guard, []string{string(c)}, func() (domain.IssueReport, error) {
				return check(ctx, e, inst)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case !ran:
				log.Debug("check already running", "category", c)
			case err != nil:
				errs = append(errs, fmt.Errorf("%s check: %w", c, err))
			default:
				partials[c] = partial
			}
		}()
	}
	wg.Wait()

	e.mu.Lock()
	for _, c := range Categories() {
		if p, ok := partials[c]; ok {
			e.report.Merge(p)
		}
	}
	snapshot := e.report.Clone()
	e.mu.Unlock()

	log.Debug("diagnosis finished", "categories", len(partials), "issues", len(snapshot.Active()))
	event.Publish(e.deps.Bus, event.IssuesUpdated{Report: snapshot})
	return errors.Join(errs...)
}

// empty returns a partial report with every kind owned by c set to empty.
func empty(c Category) domain.IssueReport {
	r := make(domain.IssueReport, len(owned[c]))
	for _, k := range owned[c] {
		r[k] = []domain.Issue{}
	}
	return r
}

func dedupe(cats []Category) []Category {
	var out []Category
	for _, c := range cats {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
