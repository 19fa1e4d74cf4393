// Package logging persists the append-only dispatch log for offline
// evaluation. Stores are written by the episode runner; the simulation
// core never reads them back during a run.
package logging

import (
	"context"

	"github.com/shanchengnb/fire-egine-dispatch/core/model"
)

// LogQuery defines filters for retrieving dispatch records. Zero values
// disable the corresponding filter; timestamps are simulation seconds.
type LogQuery struct {
	Start      int64
	End        int64
	VehicleID  *int
	RiskLevel  string
	FailedOnly bool
}

// LogStore persists dispatch records and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec model.DispatchRecord) error
	Query(ctx context.Context, q LogQuery) ([]model.DispatchRecord, error)
	Close() error
}

func matches(r model.DispatchRecord, q LogQuery) bool {
	if q.Start != 0 && r.Timestamp < q.Start {
		return false
	}
	if q.End != 0 && r.Timestamp > q.End {
		return false
	}
	if q.VehicleID != nil {
		if r.VehicleID == nil || *r.VehicleID != *q.VehicleID {
			return false
		}
	}
	if q.RiskLevel != "" && r.RiskLevel != q.RiskLevel {
		return false
	}
	if q.FailedOnly && !r.Failed() {
		return false
	}
	return true
}
