package core

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// runtimeChecks are rerun by fixes that install or replace a version
// descriptor: the java check reads the required major version from it.
var runtimeChecks = []diagnose.Category{diagnose.CategoryVersion, diagnose.CategoryJava}

// registerFixes registers every remedy. Registration order is dispatch
// order: the runtime must exist before its files are repaired, libraries
// before staged installer processors run.
func (s *Service) registerFixes() {
	r := s.engine.Registry()
	r.Register(diagnose.Fix{
		Name:    "installRuntime",
		Kinds:   []domain.IssueKind{domain.IssueMissingVersion},
		Remedy:  s.fixMissingVersion,
		Recheck: runtimeChecks,
	})
	r.Register(diagnose.Fix{
		Name: "installVersion",
		Kinds: []domain.IssueKind{
			domain.IssueMissingVersionJSON, domain.IssueCorruptedVersionJSON,
			domain.IssueMissingVersionJar, domain.IssueCorruptedVersionJar,
		},
		Remedy:  s.fixVersionFiles,
		Recheck: runtimeChecks,
	})
	r.Register(diagnose.Fix{
		Name:    "installAssetIndex",
		Kinds:   []domain.IssueKind{domain.IssueMissingAssetsIndex, domain.IssueCorruptedAssetsIndex},
		Remedy:  s.fixAssetIndex,
		Recheck: []diagnose.Category{diagnose.CategoryVersion},
	})
	r.Register(diagnose.Fix{
		Name:    "installLibraries",
		Kinds:   []domain.IssueKind{domain.IssueMissingLibraries, domain.IssueCorruptedLibraries},
		Remedy:  s.fixLibraries,
		Recheck: []diagnose.Category{diagnose.CategoryVersion},
	})
	r.Register(diagnose.Fix{
		Name:    "installAssets",
		Kinds:   []domain.IssueKind{domain.IssueMissingAssets, domain.IssueCorruptedAssets},
		Remedy:  s.fixAssets,
		Recheck: []diagnose.Category{diagnose.CategoryVersion},
	})
	r.Register(diagnose.Fix{
		Name:    "installByProfile",
		Kinds:   []domain.IssueKind{domain.IssueBadInstall},
		Remedy:  s.fixBadInstall,
		Recheck: runtimeChecks,
	})
	r.Register(diagnose.Fix{
		Name:    "installAuthlibInjector",
		Kinds:   []domain.IssueKind{domain.IssueMissingAuthlibInjector},
		Remedy:  s.fixAuthlib,
		Recheck: []diagnose.Category{diagnose.CategoryUser},
	})
	r.Register(diagnose.Fix{
		Name:    "discoverJava",
		Kinds:   []domain.IssueKind{domain.IssueMissingJava},
		Remedy:  s.fixMissingJava,
		Recheck: []diagnose.Category{diagnose.CategoryJava},
	})
	r.Register(diagnose.Fix{
		Name:    "useDefaultJava",
		Kinds:   []domain.IssueKind{domain.IssueInvalidJava},
		Remedy:  s.fixInvalidJava,
		Recheck: []diagnose.Category{diagnose.CategoryJava},
	})
}

// inert logs a remedy that did not start because an install was running.
// The recheck still runs and the issue stays if nothing fixed it.
func inert(ctx context.Context, op string) error {
	ctxlog.FromContext(ctx).Info("install busy, fix skipped", "operation", op)
	return nil
}

func (s *Service) fixMissingVersion(ctx context.Context, issues []domain.Issue) error {
	inst, err := s.instances.Selected()
	if err != nil {
		return err
	}
	rt := inst.Runtime
	if rt.Minecraft == "" {
		latest, err := s.installer.LatestRelease(ctx)
		if err != nil {
			return err
		}
		rt.Minecraft = latest
		if err := s.instances.SetRuntime(inst.Path, rt); err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Info("runtime set to latest release", "instance", inst.Path, "minecraft", latest)
	}
	if _, ok, err := s.InstallRuntime(ctx, rt); err != nil {
		return err
	} else if !ok {
		return inert(ctx, "installRuntime")
	}
	return nil
}

func (s *Service) fixVersionFiles(ctx context.Context, issues []domain.Issue) error {
	var done []domain.RuntimeVersions
	var errs []error
	for _, a := range domain.ArgsOf[domain.VersionFileArgs](issues) {
		rt := a.Runtime
		if a.Version == a.Minecraft {
			// Only the base version is broken; loaders stay untouched.
			rt = domain.RuntimeVersions{Minecraft: a.Minecraft}
		}
		if slices.Contains(done, rt) {
			continue
		}
		done = append(done, rt)
		if _, ok, err := s.InstallRuntime(ctx, rt); err != nil {
			errs = append(errs, err)
		} else if !ok {
			return inert(ctx, "installVersion")
		}
	}
	return errors.Join(errs...)
}

func (s *Service) fixAssetIndex(ctx context.Context, issues []domain.Issue) error {
	var done []string
	var errs []error
	for _, a := range domain.ArgsOf[domain.VersionFileArgs](issues) {
		if slices.Contains(done, a.Version) {
			continue
		}
		done = append(done, a.Version)
		h, ok := s.installer.InstallAssetsForVersion(ctx, a.Version)
		res, ok, err := await(ctx, s, h, ok)
		if !ok {
			return inert(ctx, install.OpAssetsForVersion)
		}
		if err == nil {
			err = res.Err()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) fixLibraries(ctx context.Context, issues []domain.Issue) error {
	libs := domain.ArgsOf[domain.LibraryArgs](issues)
	h, ok := s.installer.InstallLibraries(ctx, libs)
	return batchOutcome(ctx, s, install.OpLibraries, h, ok)
}

func (s *Service) fixAssets(ctx context.Context, issues []domain.Issue) error {
	assets := domain.ArgsOf[domain.AssetArgs](issues)
	h, ok := s.installer.InstallAssets(ctx, assets)
	return batchOutcome(ctx, s, install.OpAssets, h, ok)
}

func batchOutcome(ctx context.Context, s *Service, op string, h *task.Handle[*install.BatchResult], started bool) error {
	res, ok, err := await(ctx, s, h, started)
	if !ok {
		return inert(ctx, op)
	}
	if err != nil {
		return err
	}
	return res.Err()
}

func (s *Service) fixBadInstall(ctx context.Context, issues []domain.Issue) error {
	var errs []error
	for _, a := range domain.ArgsOf[domain.BadInstallArgs](issues) {
		h, ok := s.installer.RunInstallProfile(ctx, a.Version)
		if _, ok, err := await(ctx, s, h, ok); !ok {
			return inert(ctx, install.OpInstallProfile)
		} else if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) fixAuthlib(ctx context.Context, issues []domain.Issue) error {
	if _, ok, err := s.InstallAuthlibInjector(ctx); err != nil {
		return err
	} else if !ok {
		return inert(ctx, install.OpAuthlibInjector)
	}
	return nil
}

func (s *Service) fixMissingJava(ctx context.Context, issues []domain.Issue) error {
	javas, err := s.javas.Scan(ctx)
	if err != nil {
		return err
	}
	if _, ok := diagnose.DefaultJava(javas); !ok {
		return domain.ErrJavaNotFound
	}
	return nil
}

func (s *Service) fixInvalidJava(ctx context.Context, issues []domain.Issue) error {
	inst, err := s.instances.Selected()
	if err != nil {
		return err
	}
	path, err := s.javas.DefaultPath(ctx)
	if err != nil {
		return fmt.Errorf("choosing default java: %w", err)
	}
	return s.instances.SetJava(inst.Path, path)
}
