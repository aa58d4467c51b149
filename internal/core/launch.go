package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/linker"
	"github.com/DonovanMods/linux-mc-launcher/internal/resource"
)

// DefaultPlayerName is used when no account is selected.
const DefaultPlayerName = "Player"

// LaunchPlan is a ready-to-run game invocation.
type LaunchPlan struct {
	Instance domain.Instance
	Version  string
	Java     string
	Spec     LaunchSpec
	// Repair is the outcome of the preflight repair pass, if one ran.
	Repair *diagnose.FixOutcome
}

// Args returns the java arguments of the plan.
func (p *LaunchPlan) Args() []string {
	return p.Spec.Args()
}

// blocking filters issues that prevent a launch.
func blocking(issues []domain.Issue, autofix bool) []domain.Issue {
	var out []domain.Issue
	for _, is := range issues {
		if is.Blocking() && (!autofix || is.AutoFix) {
			out = append(out, is)
		}
	}
	return out
}

// PrepareLaunch diagnoses the selected instance, repairs autofixable
// blocking issues once, and fails with *domain.BlockedByIssuesError when
// blocking issues remain. Otherwise it deploys the enabled resource packs,
// extracts natives and returns the command to run.
func (s *Service) PrepareLaunch(ctx context.Context) (*LaunchPlan, error) {
	log := ctxlog.FromContext(ctx)

	if err := s.engine.DiagnoseAll(ctx); err != nil {
		return nil, fmt.Errorf("diagnosing: %w", err)
	}
	plan := &LaunchPlan{}
	if fixable := blocking(s.engine.Issues(), true); len(fixable) > 0 {
		log.Info("repairing before launch", "issue_kinds", domain.KindList(fixable))
		out, err := s.engine.Fix(ctx, fixable)
		if err != nil {
			return nil, fmt.Errorf("repairing: %w", err)
		}
		plan.Repair = &out
	}
	if remaining := blocking(s.engine.Issues(), false); len(remaining) > 0 {
		return nil, &domain.BlockedByIssuesError{Issues: remaining}
	}

	inst, err := s.instances.Selected()
	if err != nil {
		return nil, err
	}
	plan.Instance = inst
	if err := os.MkdirAll(inst.Path, 0755); err != nil {
		return nil, fmt.Errorf("creating game directory: %w", err)
	}

	id, err := s.resolver.Resolve(inst.Runtime)
	if err != nil {
		return nil, err
	}
	plan.Version = id
	r, err := s.folder.Resolve(id, s.platform)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id, err)
	}

	dst := filepath.Join(inst.Path, resource.ResourcePacksDir)
	synced, err := linker.SyncPacks(s.GetLinker(), s.folder.ResourcePacksDir(), dst, inst.ResourcePacks)
	if err != nil {
		log.Warn("syncing resource packs", "error", err)
	}
	if len(synced.Deployed) > 0 || len(synced.Removed) > 0 {
		log.Info("resource packs synced", "deployed", len(synced.Deployed), "removed", len(synced.Removed),
			"method", s.config.LinkMethod.String())
	}

	natives, err := s.installer.ExtractNatives(r)
	if err != nil {
		return nil, err
	}

	java := inst.Java
	if java == "" {
		if java, err = s.javas.DefaultPath(ctx); err != nil {
			return nil, err
		}
	}
	plan.Java = java

	acc, ok := s.accounts.SelectedAccount()
	if !ok {
		acc = OfflineAccount(DefaultPlayerName)
	}
	spec := LaunchSpec{
		Folder:   s.folder,
		Platform: s.platform,
		Version:  r,
		Instance: inst,
		Account:  acc,
		Natives:  natives,
	}
	if acc.NeedsAuthlibInjector() {
		path, valid, err := s.folder.AuthlibInjector()
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, &domain.BlockedByIssuesError{Issues: []domain.Issue{
				domain.NewIssue(domain.IssueMissingAuthlibInjector, domain.AuthlibArgs{AuthService: acc.AuthService, Path: path}),
			}}
		}
		spec.Authlib = path
	}
	plan.Spec = spec
	return plan, nil
}

// Launch runs PrepareLaunch and starts the game in the instance directory.
// The caller waits on the returned command.
func (s *Service) Launch(ctx context.Context, stdout, stderr io.Writer) (*exec.Cmd, *LaunchPlan, error) {
	plan, err := s.PrepareLaunch(ctx)
	if err != nil {
		return nil, plan, err
	}
	cmd := exec.CommandContext(ctx, plan.Java, plan.Args()...)
	cmd.Dir = plan.Instance.Path
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, plan, fmt.Errorf("starting game: %w", err)
	}
	ctxlog.FromContext(ctx).Info("game started", "version", plan.Version, "pid", cmd.Process.Pid)
	return cmd, plan, nil
}
