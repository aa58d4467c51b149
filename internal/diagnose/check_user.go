package diagnose

import (
	"context"
	"fmt"
	"sort"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

func checkUser(ctx context.Context, e *Engine, inst domain.Instance) (domain.IssueReport, error) {
	rep := empty(CategoryUser)
	acc, ok := e.deps.Accounts.SelectedAccount()
	if !ok || !acc.NeedsAuthlibInjector() {
		return rep, nil
	}
	path, valid, err := e.deps.Folder.AuthlibInjector()
	if err != nil {
		return nil, fmt.Errorf("checking authlib-injector: %w", err)
	}
	if !valid {
		rep[domain.IssueMissingAuthlibInjector] = []domain.Issue{
			domain.NewIssue(domain.IssueMissingAuthlibInjector, domain.AuthlibArgs{AuthService: acc.AuthService, Path: path}),
		}
	}
	return rep, nil
}

// serverBuiltins are mod ids every modded server advertises.
var serverBuiltins = map[string]bool{"minecraft": true, "forge": true, "fml": true, "mcp": true, "FML": true}

func checkServer(ctx context.Context, e *Engine, inst domain.Instance) (domain.IssueReport, error) {
	rep := empty(CategoryServer)
	if inst.Server == nil {
		return rep, nil
	}
	addr := inst.Server.String()
	status, ok, err := e.deps.Servers.ServerStatus(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("reading server status: %w", err)
	}
	if !ok || len(status.Mods) == 0 {
		return rep, nil
	}

	mods, err := e.deps.Resources.Mods(ctx, inst.Path)
	if err != nil {
		return nil, fmt.Errorf("listing mods: %w", err)
	}
	local := make(map[string]bool, len(mods))
	for _, m := range mods {
		local[m.ModID] = true
	}

	var missing []domain.ServerMod
	for _, m := range status.Mods {
		if serverBuiltins[m.ModID] || local[m.ModID] {
			continue
		}
		missing = append(missing, m)
	}
	if len(missing) == 0 {
		return rep, nil
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].ModID < missing[j].ModID })
	rep[domain.IssueMissingModsOnServer] = []domain.Issue{
		domain.NewIssue(domain.IssueMissingModsOnServer, domain.ServerModsArgs{Server: addr, Mods: missing}),
	}
	return rep, nil
}
