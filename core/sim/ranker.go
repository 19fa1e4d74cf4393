package sim

import (
	"math"
	"sort"

	"github.com/shanchengnb/fire-egine-dispatch/core/model"
)

// RankAvailable orders the currently free vehicles by suitability for the
// given incident: ascending travel time, then historical dispatch count,
// then vehicle id. Vehicles without a travel-time entry sort last. The
// ranking is recomputed on every call and never cached.
func (e *Engine) RankAvailable(in *model.Incident) []int {
	if in == nil {
		return nil
	}

	type candidate struct {
		id     int
		travel float64
		count  int
	}
	var cands []candidate
	for _, v := range e.fleet {
		if !v.Available() {
			continue
		}
		travel, ok := e.oracle.TravelSeconds(in.Index, v.Station)
		if !ok {
			travel = math.Inf(1)
		}
		cands = append(cands, candidate{id: v.ID, travel: travel, count: v.DispatchCount})
	}

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.travel != b.travel {
			return a.travel < b.travel
		}
		if a.count != b.count {
			return a.count < b.count
		}
		return a.id < b.id
	})

	ids := make([]int, len(cands))
	for i, c := range cands {
		ids[i] = c.id
	}
	return ids
}
