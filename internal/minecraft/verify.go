package minecraft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Problem is one missing or corrupted file.
type Problem struct {
	State    FileState
	Name     string // coordinate, asset name or version id
	Path     string
	URL      string
	Checksum Checksum
	Size     int64
}

// BadInstall lists the unfinished processors of a staged install.
type BadInstall struct {
	Version     string
	Minecraft   string
	ProfilePath string
	Processors  []Processor
}

// VersionReport is the file-level state of a version and its chain.
type VersionReport struct {
	Version   string
	Minecraft string
	// JSON is set when a descriptor in the chain is missing or unreadable;
	// nothing else is checked in that case.
	JSON       *Problem
	Jar        *Problem
	AssetIndex *Problem
	Libraries  []Problem
	Assets     []Problem
	BadInstall *BadInstall
	Resolved   *ResolvedVersion
}

// Clean reports whether no problem was found.
func (r *VersionReport) Clean() bool {
	return r.JSON == nil && r.Jar == nil && r.AssetIndex == nil &&
		len(r.Libraries) == 0 && len(r.Assets) == 0 && r.BadInstall == nil
}

// VerifyVersion checks every file the version at id needs: each descriptor
// of the chain, the main jar, the asset index and its objects, every library,
// and, when a chain member has an install profile, its processor outputs and
// libraries. Results are sorted so repeated runs are identical.
func (f Folder) VerifyVersion(ctx context.Context, id string, p Platform) (*VersionReport, error) {
	report := &VersionReport{Version: id}

	chain, err := f.Chain(id)
	if err != nil {
		var de *DescriptorError
		if !errors.As(err, &de) {
			return nil, err
		}
		state := FileCorrupted
		if de.Missing {
			state = FileMissing
		}
		report.JSON = &Problem{State: state, Name: de.ID, Path: de.Path}
		return report, nil
	}
	resolved := Flatten(chain, p)
	report.Resolved = resolved
	report.Minecraft = resolved.Minecraft

	jar := Problem{Name: resolved.JarID, Path: f.VersionJar(resolved.JarID)}
	if resolved.Client != nil {
		jar.URL, jar.Checksum, jar.Size = resolved.Client.URL, SHA1(resolved.Client.SHA1), resolved.Client.Size
	}
	if state, err := CheckFile(jar.Path, jar.Checksum, jar.Size); err != nil && state != FileCorrupted {
		return nil, fmt.Errorf("checking jar: %w", err)
	} else if state != FileOK {
		jar.State = state
		report.Jar = &jar
	}

	libs := resolved.Libraries
	for _, cid := range resolved.Chain {
		profile, err := ReadInstallProfile(f.InstallProfile(cid))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		failed, err := DiagnoseProcessors(f, profile)
		if err != nil {
			return nil, err
		}
		if len(failed) > 0 {
			report.BadInstall = &BadInstall{
				Version:     cid,
				Minecraft:   profile.Minecraft,
				ProfilePath: f.InstallProfile(cid),
				Processors:  failed,
			}
		}
		libs = append(libs, ResolveLibraries(profile.Libraries, p)...)
	}

	report.Libraries, err = f.verifyLibraries(ctx, libs)
	if err != nil {
		return nil, err
	}

	if resolved.AssetIndex != nil {
		ref := resolved.AssetIndex
		ip := Problem{Name: ref.ID, Path: f.AssetIndexPath(ref.ID), URL: ref.URL, Checksum: SHA1(ref.SHA1), Size: ref.Size}
		state, err := CheckFile(ip.Path, ip.Checksum, ip.Size)
		if err != nil && state != FileCorrupted {
			return nil, fmt.Errorf("checking asset index: %w", err)
		}
		if state != FileOK {
			ip.State = state
			report.AssetIndex = &ip
		} else {
			idx, err := ReadAssetIndex(ip.Path)
			if err != nil {
				ip.State = FileCorrupted
				report.AssetIndex = &ip
			} else if report.Assets, err = f.verifyAssets(ctx, idx); err != nil {
				return nil, err
			}
		}
	}
	return report, nil
}

func (f Folder) verifyLibraries(ctx context.Context, libs []ResolvedLibrary) ([]Problem, error) {
	seen := make(map[string]bool, len(libs))
	var items []Problem
	for _, l := range libs {
		if seen[l.Path] {
			continue
		}
		seen[l.Path] = true
		items = append(items, Problem{Name: l.Name, Path: f.LibraryPath(l.Path), URL: l.URL, Checksum: SHA1(l.SHA1), Size: l.Size})
	}
	return verifyAll(ctx, items)
}

func (f Folder) verifyAssets(ctx context.Context, idx *AssetIndex) ([]Problem, error) {
	objs := idx.Sorted()
	items := make([]Problem, 0, len(objs))
	for _, o := range objs {
		items = append(items, Problem{Name: o.Name, Path: f.AssetObjectPath(o.Hash), Checksum: SHA1(o.Hash), Size: o.Size})
	}
	return verifyAll(ctx, items)
}

// verifyAll hashes items concurrently and returns the failing ones sorted by
// name.
func verifyAll(ctx context.Context, items []Problem) ([]Problem, error) {
	var mu sync.Mutex
	var problems []Problem

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, it := range items {
		it := it
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			state, err := CheckFile(it.Path, it.Checksum, it.Size)
			if err != nil && state != FileCorrupted {
				return fmt.Errorf("checking %s: %w", it.Path, err)
			}
			if state == FileOK {
				return nil
			}
			it.State = state
			mu.Lock()
			problems = append(problems, it)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].Name != problems[j].Name {
			return problems[i].Name < problems[j].Name
		}
		return problems[i].Path < problems[j].Path
	})
	return problems, nil
}
