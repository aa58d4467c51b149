package domain

import (
	"slices"
	"strings"
)

// IssueKind is the discriminant of a detected problem.
type IssueKind string

const (
	IssueMissingVersion           IssueKind = "missingVersion"
	IssueMissingVersionJSON       IssueKind = "missingVersionJson"
	IssueCorruptedVersionJSON     IssueKind = "corruptedVersionJson"
	IssueMissingVersionJar        IssueKind = "missingVersionJar"
	IssueCorruptedVersionJar      IssueKind = "corruptedVersionJar"
	IssueMissingAssetsIndex       IssueKind = "missingAssetsIndex"
	IssueCorruptedAssetsIndex     IssueKind = "corruptedAssetsIndex"
	IssueMissingLibraries         IssueKind = "missingLibraries"
	IssueCorruptedLibraries       IssueKind = "corruptedLibraries"
	IssueMissingAssets            IssueKind = "missingAssets"
	IssueCorruptedAssets          IssueKind = "corruptedAssets"
	IssueBadInstall               IssueKind = "badInstall"
	IssueMissingJava              IssueKind = "missingJava"
	IssueInvalidJava              IssueKind = "invalidJava"
	IssueIncompatibleJava         IssueKind = "incompatibleJava"
	IssueUnknownMod               IssueKind = "unknownMod"
	IssueIncompatibleMod          IssueKind = "incompatibleMod"
	IssueRequireForge             IssueKind = "requireForge"
	IssueRequireFabric            IssueKind = "requireFabric"
	IssueRequireFabricAPI         IssueKind = "requireFabricAPI"
	IssueIncompatibleResourcePack IssueKind = "incompatibleResourcePack"
	IssueMissingAuthlibInjector   IssueKind = "missingAuthlibInjector"
	IssueMissingModsOnServer      IssueKind = "missingModsOnServer"
)

type kindInfo struct {
	autofix  bool
	optional bool
}

var kindTable = map[IssueKind]kindInfo{
	IssueMissingVersion:           {autofix: true},
	IssueMissingVersionJSON:       {autofix: true},
	IssueCorruptedVersionJSON:     {autofix: true},
	IssueMissingVersionJar:        {autofix: true},
	IssueCorruptedVersionJar:      {autofix: true},
	IssueMissingAssetsIndex:       {autofix: true},
	IssueCorruptedAssetsIndex:     {autofix: true},
	IssueMissingLibraries:         {autofix: true},
	IssueCorruptedLibraries:       {autofix: true},
	IssueMissingAssets:            {autofix: true},
	IssueCorruptedAssets:          {autofix: true},
	IssueBadInstall:               {autofix: true},
	IssueMissingJava:              {autofix: true},
	IssueInvalidJava:              {autofix: true},
	IssueIncompatibleJava:         {},
	IssueUnknownMod:               {optional: true},
	IssueIncompatibleMod:          {optional: true},
	IssueRequireForge:             {},
	IssueRequireFabric:            {},
	IssueRequireFabricAPI:         {optional: true},
	IssueIncompatibleResourcePack: {optional: true},
	IssueMissingAuthlibInjector:   {autofix: true},
	IssueMissingModsOnServer:      {},
}

// kindOrder fixes the order kinds are listed in reports.
var kindOrder = []IssueKind{
	IssueMissingVersion,
	IssueMissingVersionJSON, IssueCorruptedVersionJSON,
	IssueMissingVersionJar, IssueCorruptedVersionJar,
	IssueMissingAssetsIndex, IssueCorruptedAssetsIndex,
	IssueMissingLibraries, IssueCorruptedLibraries,
	IssueMissingAssets, IssueCorruptedAssets,
	IssueBadInstall,
	IssueMissingJava, IssueInvalidJava, IssueIncompatibleJava,
	IssueUnknownMod, IssueIncompatibleMod,
	IssueRequireForge, IssueRequireFabric, IssueRequireFabricAPI,
	IssueIncompatibleResourcePack,
	IssueMissingAuthlibInjector,
	IssueMissingModsOnServer,
}

// Kinds returns every known issue kind in report order.
func Kinds() []IssueKind {
	return slices.Clone(kindOrder)
}

// MultiThreshold is the item count at which a list issue collapses into a
// single multi issue.
const MultiThreshold = 3

// Issue is an immutable snapshot of one detected problem. A multi issue
// aggregates Items instead of carrying a single Args payload.
type Issue struct {
	Kind     IssueKind   `json:"id"`
	Args     IssueArgs   `json:"arguments,omitempty"`
	Items    []IssueArgs `json:"items,omitempty"`
	Multi    bool        `json:"multi"`
	AutoFix  bool        `json:"autofix"`
	Optional bool        `json:"optional"`
}

// NewIssue builds a single-item issue with the kind's default flags.
func NewIssue(kind IssueKind, args IssueArgs) Issue {
	info := kindTable[kind]
	return Issue{Kind: kind, Args: args, AutoFix: info.autofix, Optional: info.optional}
}

// NewIssues builds the issues for a list of items of one kind. Lists at or
// above MultiThreshold collapse into one multi issue.
func NewIssues[A IssueArgs](kind IssueKind, items []A) []Issue {
	if len(items) == 0 {
		return []Issue{}
	}
	if len(items) >= MultiThreshold {
		info := kindTable[kind]
		all := make([]IssueArgs, len(items))
		for i, it := range items {
			all[i] = it
		}
		return []Issue{{Kind: kind, Items: all, Multi: true, AutoFix: info.autofix, Optional: info.optional}}
	}
	out := make([]Issue, len(items))
	for i, it := range items {
		out[i] = NewIssue(kind, it)
	}
	return out
}

// Flatten returns the item payloads carried by the issue.
func (i Issue) Flatten() []IssueArgs {
	if i.Multi {
		return i.Items
	}
	if i.Args == nil {
		return nil
	}
	return []IssueArgs{i.Args}
}

// Blocking reports whether the issue prevents a launch.
func (i Issue) Blocking() bool {
	return !i.Optional
}

// ArgsOf collects the payloads of type A from every issue in the list.
func ArgsOf[A IssueArgs](issues []Issue) []A {
	var out []A
	for _, is := range issues {
		for _, a := range is.Flatten() {
			if v, ok := a.(A); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// IssueReport maps each kind to its current issues. A check owns a disjoint
// set of kinds and always writes all of them, possibly empty.
type IssueReport map[IssueKind][]Issue

// Merge overwrites the keys present in partial. Keys absent from partial are
// left untouched.
func (r IssueReport) Merge(partial IssueReport) {
	for k, v := range partial {
		r[k] = slices.Clone(v)
	}
}

// Clone returns a copy that shares no slices with r.
func (r IssueReport) Clone() IssueReport {
	out := make(IssueReport, len(r))
	out.Merge(r)
	return out
}

// Active returns every issue in a deterministic order: kinds in report
// order, unknown kinds sorted by name after them.
func (r IssueReport) Active() []Issue {
	var out []Issue
	seen := make(map[IssueKind]bool, len(kindOrder))
	for _, k := range kindOrder {
		seen[k] = true
		out = append(out, r[k]...)
	}
	var rest []IssueKind
	for k := range r {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		out = append(out, r[k]...)
	}
	return out
}

// Empty reports whether no issue is active.
func (r IssueReport) Empty() bool {
	for _, v := range r {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// Of returns the issues of the given kinds in report order.
func (r IssueReport) Of(kinds ...IssueKind) []Issue {
	var out []Issue
	for _, is := range r.Active() {
		if slices.Contains(kinds, is.Kind) {
			out = append(out, is)
		}
	}
	return out
}

// KindList renders kinds as a comma separated list for logs and errors.
func KindList(issues []Issue) string {
	var kinds []string
	for _, is := range issues {
		if !slices.Contains(kinds, string(is.Kind)) {
			kinds = append(kinds, string(is.Kind))
		}
	}
	return strings.Join(kinds, ",")
}
