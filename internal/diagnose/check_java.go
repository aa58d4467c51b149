package diagnose

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

func checkJava(ctx context.Context, e *Engine, inst domain.Instance) (domain.IssueReport, error) {
	rep := empty(CategoryJava)
	rt := inst.Runtime

	javas, err := e.deps.Javas.Javas(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing javas: %w", err)
	}

	var rec domain.JavaRecord
	found := false
	if inst.Java == "" {
		rec, found = DefaultJava(javas)
	} else {
		i := slices.IndexFunc(javas, func(j domain.JavaRecord) bool { return j.Path == inst.Java })
		if i >= 0 {
			rec, found = javas[i], true
		}
	}

	switch {
	case len(javas) == 0 || (inst.Java == "" && !found):
		rep[domain.IssueMissingJava] = []domain.Issue{domain.NewIssue(domain.IssueMissingJava, domain.JavaArgs{Minecraft: rt.Minecraft})}
		return rep, nil
	case !found || !rec.Valid:
		rep[domain.IssueInvalidJava] = []domain.Issue{domain.NewIssue(domain.IssueInvalidJava, domain.JavaArgs{Java: inst.Java, Minecraft: rt.Minecraft})}
		return rep, nil
	}

	var problems []domain.JavaArgs
	base := domain.JavaArgs{Java: rec.Path, Version: rec.Version, Major: rec.Major, Minecraft: rt.Minecraft, Forge: rt.Forge}

	required := requiredJava(ctx, e, rt)
	if required > 0 && rec.Major < required {
		a := base
		a.Type, a.Required = domain.JavaRuleRequired, required
		problems = append(problems, a)
	}
	if required <= 8 {
		minor := minorOf(rt.Minecraft)
		switch {
		case minor >= 0 && minor < 13 && rec.Major > 8:
			a := base
			a.Type, a.Required = domain.JavaRuleMinecraft, 8
			problems = append(problems, a)
		case minor >= 13 && rt.Forge != "" && rec.Major > 10:
			a := base
			a.Type = domain.JavaRuleForge
			problems = append(problems, a)
		}
	}

	if hostArch, err := e.deps.HostArch(); err == nil {
		if is64(hostArch) && is32(rec.Arch) {
			a := base
			a.Type = domain.JavaRuleArchitecture
			problems = append(problems, a)
		}
	} else {
		ctxlog.FromContext(ctx).Debug("host architecture unavailable", "error", err)
	}

	for _, p := range problems {
		rep[domain.IssueIncompatibleJava] = append(rep[domain.IssueIncompatibleJava], domain.NewIssue(domain.IssueIncompatibleJava, p))
	}
	return rep, nil
}

// requiredJava reads the java major version the resolved descriptor
// declares. Unresolvable versions report 0; the version check covers them.
func requiredJava(ctx context.Context, e *Engine, rt domain.RuntimeVersions) int {
	if rt.Minecraft == "" {
		return 0
	}
	id, err := e.deps.Versions.Resolve(rt)
	if err != nil {
		return 0
	}
	r, err := e.deps.Folder.Resolve(id, e.deps.Platform)
	if err != nil || r.JavaVersion == nil {
		ctxlog.FromContext(ctx).Debug("no declared java version", "version", id)
		return 0
	}
	return r.JavaVersion.MajorVersion
}

// DefaultJava picks the valid runtime with the highest major version.
func DefaultJava(javas []domain.JavaRecord) (domain.JavaRecord, bool) {
	var best domain.JavaRecord
	found := false
	for _, j := range javas {
		if !j.Valid {
			continue
		}
		if !found || j.Major > best.Major || (j.Major == best.Major && j.Path < best.Path) {
			best, found = j, true
		}
	}
	return best, found
}

func is64(arch string) bool {
	switch strings.ToLower(arch) {
	case "x86_64", "amd64", "aarch64", "arm64", "ppc64le", "s390x":
		return true
	}
	return false
}

func is32(arch string) bool {
	switch strings.ToLower(arch) {
	case "x86", "i386", "i486", "i586", "i686", "arm", "armv7l":
		return true
	}
	return false
}
