package diagnose

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
)

// Remedy repairs the issues a fix matched. It receives only issues of the
// fix's kinds.
type Remedy func(ctx context.Context, issues []domain.Issue) error

// Fix maps issue kinds to a remedy and the checks to rerun afterwards.
type Fix struct {
	Name    string
	Kinds   []domain.IssueKind
	Remedy  Remedy
	Recheck []Category
}

func (f Fix) match(issues []domain.Issue) []domain.Issue {
	var out []domain.Issue
	for _, is := range issues {
		if slices.Contains(f.Kinds, is.Kind) {
			out = append(out, is)
		}
	}
	return out
}

// Registry is an append-only ordered list of fixes.
type Registry struct {
	mu    sync.RWMutex
	fixes []Fix
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends f. Registration order is dispatch order.
func (r *Registry) Register(f Fix) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixes = append(r.fixes, f)
}

// Fixes returns the registered fixes in order.
func (r *Registry) Fixes() []Fix {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.fixes)
}

// Covers reports whether any registered fix handles kind.
func (r *Registry) Covers(kind domain.IssueKind) bool {
	for _, f := range r.Fixes() {
		if slices.Contains(f.Kinds, kind) {
			return true
		}
	}
	return false
}

// FixFailure records one remedy that returned an error.
type FixFailure struct {
	Fix   string
	Kinds []domain.IssueKind
	Err   error
}

func (f FixFailure) Error() string {
	return fmt.Sprintf("fix %s: %v", f.Fix, f.Err)
}

// FixOutcome summarises a dispatch.
type FixOutcome struct {
	Ran       []string
	Failures  []FixFailure
	Rechecked []Category
	// Unhandled lists autofixable kinds no registered fix covers.
	Unhandled []domain.IssueKind
	// Noop is set when every given issue was not autofixable or already being
	// fixed.
	Noop bool
}

// Fix dispatches the registered remedies for issues. Issues that are not
// autofixable or whose kind is already being fixed by another dispatch are
// dropped; if nothing remains it returns immediately with Noop set. Remedies
// run one after another in registration order, a failing remedy is recorded
// and does not stop the others, and the recheck categories of the remedies
// that ran are diagnosed once after all of them finish. The returned error
// is only set when ctx ends or the recheck fails.
func (e *Engine) Fix(ctx context.Context, issues []domain.Issue) (FixOutcome, error) {
	log := ctxlog.FromContext(ctx)

	e.mu.Lock()
	var batch []domain.Issue
	var kinds []domain.IssueKind
	for _, is := range issues {
		if !is.AutoFix || (e.inFlight[is.Kind] && !slices.Contains(kinds, is.Kind)) {
			continue
		}
		batch = append(batch, is)
		if !slices.Contains(kinds, is.Kind) {
			kinds = append(kinds, is.Kind)
			e.inFlight[is.Kind] = true
		}
	}
	e.mu.Unlock()

	if len(batch) == 0 {
		return FixOutcome{Noop: true}, nil
	}
	defer func() {
		e.mu.Lock()
		for _, k := range kinds {
			delete(e.inFlight, k)
		}
		e.mu.Unlock()
	}()

	if err := e.guard.Acquire(ctx, LockKey); err != nil {
		return FixOutcome{}, err
	}
	defer e.guard.Release(LockKey)

	e.setResolving(kinds, true)
	defer e.setResolving(kinds, false)

	var out FixOutcome
	for _, k := range kinds {
		if !e.registry.Covers(k) {
			log.Warn("no fix registered", "issue_kind", k)
			out.Unhandled = append(out.Unhandled, k)
		}
	}

	var rechecks []Category
	for _, f := range e.registry.Fixes() {
		matched := f.match(batch)
		if len(matched) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		log.Info("running fix", "fix", f.Name, "issue_kinds", domain.KindList(matched))
		out.Ran = append(out.Ran, f.Name)
		if err := f.Remedy(ctx, matched); err != nil {
			log.Warn("fix failed", "fix", f.Name, "issue_kinds", domain.KindList(matched), "error", err)
			out.Failures = append(out.Failures, FixFailure{Fix: f.Name, Kinds: f.Kinds, Err: err})
		}
		for _, c := range f.Recheck {
			if !slices.Contains(rechecks, c) {
				rechecks = append(rechecks, c)
			}
		}
	}

	out.Rechecked = rechecks
	if len(rechecks) == 0 {
		return out, nil
	}
	return out, e.diagnoseLocked(ctx, rechecks)
}

func (e *Engine) setResolving(kinds []domain.IssueKind, on bool) {
	e.mu.Lock()
	for _, k := range kinds {
		if on {
			e.resolving[k] = true
		} else {
			delete(e.resolving, k)
		}
	}
	snapshot := e.report.Clone()
	e.mu.Unlock()
	event.Publish(e.deps.Bus, event.IssuesUpdated{Report: snapshot})
}
