package msp

import "sync"

// SubRegion is a non-overlapping allocation inside segment 0.
type SubRegion struct {
	Position int
	Extent   int
	Attrs    string
}

// RegionTracker hands out non-overlapping word ranges inside segment 0 for
// loadable banks. Allocation is first-fit over the free-list.
type RegionTracker struct {
	mu       sync.Mutex
	size     int
	assigned []SubRegion // sorted by Position
}

func newRegionTracker(size int) *RegionTracker {
	return &RegionTracker{size: size}
}

// Regions exposes the region tracker for segment 0.
func (m *MSP) Regions() *RegionTracker {
	return m.regions
}

// Assign allocates a contiguous range of sizeWords inside segment 0,
// failing ErrOutOfSpace when no gap fits.
func (rt *RegionTracker) Assign(sizeWords int, attrs string) (SubRegion, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	pos := 0
	for _, r := range rt.assigned {
		if r.Position-pos >= sizeWords {
			break
		}
		pos = r.Position + r.Extent
	}
	if pos+sizeWords > rt.size {
		return SubRegion{}, ErrOutOfSpace
	}

	region := SubRegion{Position: pos, Extent: sizeWords, Attrs: attrs}
	inserted := false
	result := make([]SubRegion, 0, len(rt.assigned)+1)
	for _, r := range rt.assigned {
		if !inserted && region.Position < r.Position {
			result = append(result, region)
			inserted = true
		}
		result = append(result, r)
	}
	if !inserted {
		result = append(result, region)
	}
	rt.assigned = result
	return region, nil
}

// Release frees a previously assigned region so its range can be reused.
func (rt *RegionTracker) Release(r SubRegion) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for i, a := range rt.assigned {
		if a.Position == r.Position && a.Extent == r.Extent {
			rt.assigned = append(rt.assigned[:i], rt.assigned[i+1:]...)
			return
		}
	}
}

// Assigned returns a snapshot of the currently assigned regions, for
// testing the non-overlap invariant.
func (rt *RegionTracker) Assigned() []SubRegion {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]SubRegion, len(rt.assigned))
	copy(out, rt.assigned)
	return out
}
