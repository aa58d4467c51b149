package install

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/guard"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// ClassKey is the guard class shared by every install operation, so two
// installs never run unattended at once.
const ClassKey = "install"

// Operation names, used as guard keys, task names and history entries.
const (
	OpMinecraft        = "installMinecraft"
	OpDependencies     = "installDependencies"
	OpLibraries        = "installLibraries"
	OpAssets           = "installAssets"
	OpAssetsForVersion = "installAssetsForVersion"
	OpForge            = "installForge"
	OpInstallProfile   = "installByProfile"
	OpFabric           = "installFabric"
	OpLiteloader       = "installLiteloader"
	OpAuthlibInjector  = "installAuthlibInjector"
)

// Endpoints are the remote metadata and artifact roots.
type Endpoints struct {
	Manifest   string
	Assets     string
	ForgeMaven string
	FabricMeta string
	Liteloader string
	Authlib    string
}

// DefaultEndpoints are the official hosts.
var DefaultEndpoints = Endpoints{
	Manifest:   "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json",
	Assets:     minecraft.DefaultAssetHost,
	ForgeMaven: "https://maven.minecraftforge.net",
	FabricMeta: "https://meta.fabricmc.net",
	Liteloader: "https://dl.liteloader.com/versions/versions.json",
	Authlib:    "https://authlib-injector.yushi.moe",
}

// StageError names the stage a multi-stage install failed in.
type StageError struct {
	Operation string
	Stage     string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Operation, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// VersionRefresher rescans installed versions after an install.
type VersionRefresher interface {
	Refresh(ctx context.Context) ([]domain.LocalVersion, error)
}

// HistoryRecorder stores install outcomes.
type HistoryRecorder interface {
	RecordInstall(e db.HistoryEntry) error
}

// Config wires an Installer.
type Config struct {
	Folder    minecraft.Folder
	Platform  minecraft.Platform
	Network   *Network
	Guard     *guard.Guard
	Versions  VersionRefresher
	History   HistoryRecorder
	Endpoints Endpoints
	// Concurrency is the batch download ceiling.
	Concurrency int
	// ProcessorTimeout bounds each install processor run.
	ProcessorTimeout time.Duration
	// Java returns the java executable used to run install processors.
	Java func(ctx context.Context) (string, error)
	// ManifestMaxAge is how long a cached version manifest is trusted.
	ManifestMaxAge time.Duration
}

// Installer runs install operations.
type Installer struct {
	folder     minecraft.Folder
	platform   minecraft.Platform
	net        *Network
	guard      *guard.Guard
	versions   VersionRefresher
	history    HistoryRecorder
	endpoints  Endpoints
	limit      int
	processors *ProcessorRunner
	java       func(ctx context.Context) (string, error)
	maxAge     time.Duration
}

// New creates an installer. Zero fields of cfg get defaults.
func New(cfg Config) *Installer {
	if cfg.Network == nil {
		cfg.Network = NewNetwork(NetworkConfig{})
	}
	if cfg.Guard == nil {
		cfg.Guard = guard.New()
	}
	if cfg.Platform.Name == "" {
		cfg.Platform = minecraft.CurrentPlatform()
	}
	if cfg.Endpoints == (Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.ProcessorTimeout <= 0 {
		cfg.ProcessorTimeout = 10 * time.Minute
	}
	if cfg.Java == nil {
		cfg.Java = func(context.Context) (string, error) { return "java", nil }
	}
	if cfg.ManifestMaxAge <= 0 {
		cfg.ManifestMaxAge = time.Hour
	}
	return &Installer{
		folder:     cfg.Folder,
		platform:   cfg.Platform,
		net:        cfg.Network,
		guard:      cfg.Guard,
		versions:   cfg.Versions,
		history:    cfg.History,
		endpoints:  cfg.Endpoints,
		limit:      cfg.Concurrency,
		processors: NewProcessorRunner(cfg.ProcessorTimeout),
		java:       cfg.Java,
		maxAge:     cfg.ManifestMaxAge,
	}
}

// Folder returns the Minecraft root being installed into.
func (i *Installer) Folder() minecraft.Folder {
	return i.folder
}

// Busy reports whether any install operation is running.
func (i *Installer) Busy() bool {
	return i.guard.Busy(ClassKey)
}

// submit starts fn as a task holding the operation's guard keys. When the
// keys are busy nothing is started and ok is false. Keys are released when
// the task ends, whatever its outcome.
func submit[T any](ctx context.Context, i *Installer, op, target string, fn task.Func[T]) (h *task.Handle[T], ok bool) {
	keys := guard.Keys(ClassKey, op)
	if !i.guard.TryAcquire(keys...) {
		ctxlog.FromContext(ctx).Info("install already running", "operation", op, "target", target)
		return nil, false
	}
	h = task.Submit(ctx, op, func(c *task.Context) (T, error) {
		defer i.guard.Release(keys...)
		log := ctxlog.FromContext(c).With("operation", op, "target", target)
		log.Info("install started")
		v, err := fn(c)
		if err != nil {
			log.Warn("install failed", "error", err)
		} else {
			log.Info("install finished")
		}
		i.record(c, op, target, err)
		return v, err
	})
	return h, true
}

func (i *Installer) record(ctx context.Context, op, target string, err error) {
	if i.history == nil {
		return
	}
	e := db.HistoryEntry{Operation: op, Target: target, State: task.Succeeded.String()}
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		e.State, e.Error = task.Cancelled.String(), err.Error()
	default:
		e.State, e.Error = task.Failed.String(), err.Error()
	}
	if rerr := i.history.RecordInstall(e); rerr != nil {
		ctxlog.FromContext(ctx).Warn("recording install history", "error", rerr)
	}
}

// stage runs fn as a child task and wraps its failure in *StageError.
func stage[T any](c *task.Context, op, name string, weight int64, fn task.Func[T]) (T, error) {
	v, err := task.Yield(c, name, weight, fn)
	if err != nil && !errors.Is(err, context.Canceled) {
		err = &StageError{Operation: op, Stage: name, Err: err}
	}
	return v, err
}

// refresh tells the resolver about newly registered versions.
func (i *Installer) refresh(ctx context.Context) error {
	if i.versions == nil {
		return nil
	}
	_, err := i.versions.Refresh(ctx)
	return err
}

// artifactSize maps an unknown (zero) size to -1.
func artifactSize(n int64) int64 {
	if n <= 0 {
		return -1
	}
	return n
}
