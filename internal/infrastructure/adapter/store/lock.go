package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"golang.org/x/sync/semaphore"
)

// writerWeight is the full capacity of a family semaphore. A reader takes 1, a writer takes all of it.
const writerWeight = 1 << 16

// lockSet holds one reader/writer lock per family
type lockSet struct {
	locks        map[persistence.Family]*semaphore.Weighted
	timeout      coreport.Duration
	timeProvider coreport.TimeProvider
}

func newLockSet(timeout coreport.Duration, timeProvider coreport.TimeProvider) *lockSet {
	locks := make(map[persistence.Family]*semaphore.Weighted)
	for _, f := range persistence.Families() {
		locks[f] = semaphore.NewWeighted(writerWeight)
	}
	return &lockSet{locks: locks, timeout: timeout, timeProvider: timeProvider}
}

// normalizeFamilies validates, de-duplicates and sorts families into lock order
func normalizeFamilies(families []persistence.Family) ([]persistence.Family, error) {
	if len(families) == 0 {
		return nil, fmt.Errorf("%w: no record family requested", errs.ErrInvalidInput)
	}

	seen := make(map[persistence.Family]bool, len(families))
	out := make([]persistence.Family, 0, len(families))
	for _, f := range families {
		if f.Rank() < 0 {
			return nil, fmt.Errorf("%w: unknown record family %q", errs.ErrInvalidInput, f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank() < out[j].Rank() })
	return out, nil
}

// acquire takes the locks of families in order. On failure every lock already
// taken is released. families must already be normalized.
func (l *lockSet) acquire(ctx context.Context, families []persistence.Family, write bool) (func(), error) {
	weight := int64(1)
	if write {
		weight = writerWeight
	}

	waitCtx, cancel := l.timeProvider.WithTimeout(ctx, l.timeout)
	defer cancel()

	held := make([]*semaphore.Weighted, 0, len(families))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(weight)
		}
	}

	for _, f := range families {
		sem := l.locks[f]
		if err := sem.Acquire(waitCtx, weight); err != nil {
			release()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: timed out waiting for %s", errs.ErrStoreBusy, f)
			}
			return nil, err
		}
		held = append(held, sem)
	}

	return release, nil
}
