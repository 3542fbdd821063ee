package catalog

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"catmap/models"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// LocationSource gives the aggregator access to a cat's observations and its stored location
type LocationSource interface {
	CatObservationLocations(ctx context.Context, catID uint64) ([]models.Location, error)
	SetCatLocation(ctx context.Context, catID uint64, location models.Location) error
}

// Aggregator keeps every cat's location equal to the mean of its observations' locations
type Aggregator struct {
	locks cmap.ConcurrentMap[string, *sync.Mutex]
}

func NewAggregator() *Aggregator {
	return &Aggregator{locks: cmap.New[*sync.Mutex]()}
}

func (a *Aggregator) mutex(key string) *sync.Mutex {
	return a.locks.Upsert(key, nil, func(exists bool, current, _ *sync.Mutex) *sync.Mutex {
		if exists {
			return current
		}
		return &sync.Mutex{}
	})
}

func (a *Aggregator) lockKeys(keys []string) (unlock func()) {
	locked := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		m := a.mutex(key)
		m.Lock()
		locked = append(locked, m)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

// Lock serializes writers touching the same cats. IDs are locked in ascending order
// (zero and duplicates skipped), the returned func releases all of them.
func (a *Aggregator) Lock(catIDs ...uint64) (unlock func()) {
	ids := uniqueIDs(catIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "cat:" + strconv.FormatUint(id, 10)
	}
	return a.lockKeys(keys)
}

// LockObservation serializes writers of the same observation, so its cat link can be read
// once and trusted. It has to be taken before any cat lock.
func (a *Aggregator) LockObservation(id uint64) (unlock func()) {
	return a.lockKeys([]string{"observation:" + strconv.FormatUint(id, 10)})
}

// Recompute must run in the same transaction as the write that triggered it.
// A cat without observations keeps its last location.
func (a *Aggregator) Recompute(ctx context.Context, src LocationSource, catID uint64) error {
	locations, err := src.CatObservationLocations(ctx, catID)
	if err != nil {
		return err
	}
	average, ok := models.AverageLocation(locations)
	if !ok {
		return nil
	}
	return src.SetCatLocation(ctx, catID, average)
}

// uniqueIDs drops zeros and duplicates, keeping the first occurrence order
func uniqueIDs(ids ...uint64) []uint64 {
	result := make([]uint64, 0, len(ids))
	seen := map[uint64]bool{}
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

func catIDOf(id *uint64) uint64 {
	if id == nil {
		return 0
	}
	return *id
}
