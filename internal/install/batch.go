package install

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/task"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the batch fan-out ceiling.
const DefaultConcurrency = 16

// ItemError is the failure of one batch item.
type ItemError struct {
	Name string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// BatchResult aggregates per-item outcomes. Each list is sorted by name.
type BatchResult struct {
	Installed []string
	Skipped   []string
	Errors    []ItemError
}

// Err joins the item errors, or returns nil.
func (r *BatchResult) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Failed reports whether any item failed.
func (r *BatchResult) Failed() bool {
	return r != nil && len(r.Errors) > 0
}

// ensureAll places every artifact with at most limit concurrent downloads.
// Items succeed or fail independently; when allOrNothing is set the first
// failure cancels the rest and is returned. Progress is reported in files.
func (n *Network) ensureAll(c *task.Context, items []Artifact, limit int, allOrNothing bool) (*BatchResult, error) {
	if limit < 1 {
		limit = DefaultConcurrency
	}
	c.SetUnit("files")
	c.Update(0, int64(len(items)))

	g, ctx := errgroup.WithContext(c)
	g.SetLimit(limit)

	var mu sync.Mutex
	res := &BatchResult{}
	for _, a := range items {
		a := a
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			downloaded, err := n.Ensure(ctx, a, nil)
			mu.Lock()
			switch {
			case err != nil:
				res.Errors = append(res.Errors, ItemError{Name: a.Name, Err: err})
			case downloaded:
				res.Installed = append(res.Installed, a.Name)
			default:
				res.Skipped = append(res.Skipped, a.Name)
			}
			mu.Unlock()
			c.Add(1)
			if err != nil && allOrNothing {
				return ItemError{Name: a.Name, Err: err}
			}
			return nil
		})
	}
	err := g.Wait()

	sort.Strings(res.Installed)
	sort.Strings(res.Skipped)
	sort.Slice(res.Errors, func(i, j int) bool { return res.Errors[i].Name < res.Errors[j].Name })
	if err != nil {
		return res, err
	}
	if cerr := c.Err(); cerr != nil {
		return res, cerr
	}
	return res, nil
}
