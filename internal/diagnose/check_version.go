package diagnose

import (
	"context"
	"errors"
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
)

func checkVersion(ctx context.Context, e *Engine, inst domain.Instance) (domain.IssueReport, error) {
	rep := empty(CategoryVersion)
	rt := inst.Runtime

	missing := func() (domain.IssueReport, error) {
		rep[domain.IssueMissingVersion] = []domain.Issue{
			domain.NewIssue(domain.IssueMissingVersion, domain.MissingVersionArgs{Runtime: rt}),
		}
		return rep, nil
	}
	if rt.Minecraft == "" {
		return missing()
	}

	id, err := e.deps.Versions.Resolve(rt)
	if err != nil {
		if errors.Is(err, domain.ErrMissingComponentVersion) {
			return missing()
		}
		return nil, fmt.Errorf("resolving version: %w", err)
	}

	vr, err := e.deps.Folder.VerifyVersion(ctx, id, e.deps.Platform)
	if err != nil {
		return nil, fmt.Errorf("verifying %s: %w", id, err)
	}

	fileIssue := func(missingKind, corruptedKind domain.IssueKind, p *minecraft.Problem, version string) {
		if p == nil {
			return
		}
		kind := missingKind
		if p.State == minecraft.FileCorrupted {
			kind = corruptedKind
		}
		rep[kind] = []domain.Issue{domain.NewIssue(kind, domain.VersionFileArgs{
			Version:   version,
			Minecraft: rt.Minecraft,
			Path:      p.Path,
			Expected:  p.Checksum.String(),
			Runtime:   rt,
		})}
	}

	fileIssue(domain.IssueMissingVersionJSON, domain.IssueCorruptedVersionJSON, vr.JSON, nameOr(vr.JSON, id))
	if vr.JSON != nil {
		return rep, nil
	}
	fileIssue(domain.IssueMissingVersionJar, domain.IssueCorruptedVersionJar, vr.Jar, nameOr(vr.Jar, id))
	fileIssue(domain.IssueMissingAssetsIndex, domain.IssueCorruptedAssetsIndex, vr.AssetIndex, id)

	var missingLibs, corruptedLibs []domain.LibraryArgs
	for _, p := range vr.Libraries {
		a := domain.LibraryArgs{Name: p.Name, Path: p.Path, URL: p.URL, Checksum: p.Checksum.Value, Size: p.Size}
		if p.State == minecraft.FileCorrupted {
			corruptedLibs = append(corruptedLibs, a)
		} else {
			missingLibs = append(missingLibs, a)
		}
	}
	rep[domain.IssueMissingLibraries] = domain.NewIssues(domain.IssueMissingLibraries, missingLibs)
	rep[domain.IssueCorruptedLibraries] = domain.NewIssues(domain.IssueCorruptedLibraries, corruptedLibs)

	var missingAssets, corruptedAssets []domain.AssetArgs
	for _, p := range vr.Assets {
		a := domain.AssetArgs{Name: p.Name, Hash: p.Checksum.Value, Size: p.Size}
		if p.State == minecraft.FileCorrupted {
			corruptedAssets = append(corruptedAssets, a)
		} else {
			missingAssets = append(missingAssets, a)
		}
	}
	rep[domain.IssueMissingAssets] = domain.NewIssues(domain.IssueMissingAssets, missingAssets)
	rep[domain.IssueCorruptedAssets] = domain.NewIssues(domain.IssueCorruptedAssets, corruptedAssets)

	if b := vr.BadInstall; b != nil {
		names := make([]string, len(b.Processors))
		for i, p := range b.Processors {
			names[i] = p.Jar
		}
		rep[domain.IssueBadInstall] = []domain.Issue{domain.NewIssue(domain.IssueBadInstall, domain.BadInstallArgs{
			Version:     b.Version,
			Minecraft:   b.Minecraft,
			ProfilePath: b.ProfilePath,
			Processors:  names,
		})}
	}
	return rep, nil
}

func nameOr(p *minecraft.Problem, fallback string) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	return fallback
}
