package recommend

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shoprec/internal/domain/interaction"
)

// Snapshot is the read-only input of one computation.
type Snapshot struct {
	// ProductIDs is the product universe. Its order fixes vector positions.
	ProductIDs []string
	Profiles   []interaction.Profile
}

// collectSnapshot issues both reads concurrently; they are independent.
func collectSnapshot(ctx context.Context, r SnapshotReader) (Snapshot, error) {
	var (
		ids      []string
		profiles []interaction.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverRead("list product ids", &err)
		v, err := r.ListProductIDs(gctx)
		if err != nil {
			return fmt.Errorf("list product ids: %w", err)
		}
		ids = v
		return nil
	})
	g.Go(func() (err error) {
		defer recoverRead("list interactions", &err)
		v, err := r.ListInteractions(gctx)
		if err != nil {
			return fmt.Errorf("list interactions: %w", err)
		}
		profiles = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err //nolint:wrapcheck // already wrapped per read
	}

	return Snapshot{ProductIDs: dedupe(ids), Profiles: profiles}, nil
}

// recoverRead turns a panic in a snapshot read into that read's error.
// Reads run on their own goroutines, out of reach of the caller's recover.
func recoverRead(op string, err *error) {
	if rvr := recover(); rvr != nil {
		*err = fmt.Errorf("%s: panic: %v", op, rvr)
	}
}

// dedupe drops repeated ids, keeping the first occurrence.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
