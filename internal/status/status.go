// Package status reports whether the working copy of each resolved
// dependency has local modifications. The report is advisory.
package status

import (
	"context"
	"sync"

	log "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/StinkyLord/stella/internal/model"
)

// Status is the cleanliness of one working copy.
type Status string

const (
	Clean   Status = "clean"
	Dirty   Status = "dirty"
	Unknown Status = "unknown" // The working tree could not be queried
)

// maxConcurrentQueries bounds the number of working trees inspected at once.
const maxConcurrentQueries = 8

// Checker queries the working-tree state of a local path.
type Checker interface {
	IsDirty(ctx context.Context, localPath string) (bool, error)
}

// Check queries every dependency of r and returns its status by identity.
// A failed query is reported as Unknown; Check itself never fails.
func Check(ctx context.Context, r *model.ResolvedComponent, c Checker) map[string]Status {
	deps := r.Dependencies()
	out := make(map[string]Status, len(deps))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQueries)
	for _, d := range deps {
		g.Go(func() error {
			s := query(gctx, c, d)
			mu.Lock()
			out[d.Identity] = s
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func query(ctx context.Context, c Checker, d model.ResolvedDependency) Status {
	dirty, err := c.IsDirty(ctx, d.LocalPath)
	switch {
	case err != nil:
		log.Warn("Could not query working tree", "identity", d.Identity, "path", d.LocalPath, "error", err)
		return Unknown
	case dirty:
		return Dirty
	default:
		return Clean
	}
}
