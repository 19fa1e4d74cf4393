package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/shanchengnb/fire-egine-dispatch/core/logger"
	"github.com/shanchengnb/fire-egine-dispatch/core/model"
	"github.com/shanchengnb/fire-egine-dispatch/core/traveltime"
)

// LostIncidentReward is returned when a step dispatches no vehicle at all.
const LostIncidentReward = -1000.0

// StepInfo carries the outcome details of one Step call.
type StepInfo struct {
	IncidentID      int
	RiskLevel       string
	Dispatched      []int
	MinResponseTime float64
	ResponseTimes   []float64
	Error           string
}

// Engine owns the simulation clock, the incident queue, the fleet and the
// dispatch log, and drives them through the Reset/Step contract. One engine
// instance is single-threaded; parallel workers each own an independent
// engine with no shared state.
type Engine struct {
	cfg    Config
	oracle traveltime.Oracle
	log    logger.Logger

	fleet    []*model.Vehicle
	pending  []*model.Incident
	finished []*model.Incident

	records       []model.DispatchRecord
	responseTimes []float64

	clock     int64
	stepCount int
}

// NewEngine builds an engine from the configuration and travel-time oracle.
// The fleet is derived from the station list: vehicle ids are assigned
// densely in declaration order so id doubles as the fleet array index.
func NewEngine(cfg Config, oracle traveltime.Oracle, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: invalid config: %w", err)
	}
	if oracle == nil {
		return nil, fmt.Errorf("sim: nil travel-time oracle")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	e := &Engine{cfg: cfg, oracle: oracle, log: log}
	e.initFleet()
	return e, nil
}

func (e *Engine) initFleet() {
	e.fleet = e.fleet[:0]
	id := 0
	for _, st := range e.cfg.Stations {
		home := model.Location{}
		if st.Home != nil {
			home = *st.Home
		} else {
			e.log.Warnf("station %s has no coordinates, using map origin", st.Name)
		}
		for i := 0; i < st.Count; i++ {
			e.fleet = append(e.fleet, model.NewVehicle(id, st.Name, home, e.cfg.CooldownSeconds))
			id++
		}
	}
}

// Reset reinitializes the fleet and clears the clock, step counter, logs
// and histories. A non-nil incident set replaces the queue, sorted
// ascending by call timestamp; nil keeps the current queue untouched.
func (e *Engine) Reset(incidents []*model.Incident) {
	e.clock = 0
	e.stepCount = 0
	e.finished = nil
	e.records = nil
	e.responseTimes = nil
	e.initFleet()

	if incidents != nil {
		queue := make([]*model.Incident, len(incidents))
		copy(queue, incidents)
		sort.SliceStable(queue, func(i, j int) bool {
			return queue[i].Timestamp < queue[j].Timestamp
		})
		e.pending = queue
	}
}

// Step resolves the head-of-queue incident with the selected vehicles, in
// order. Unavailable or out-of-range selections are skipped silently; the
// engine never substitutes a fallback choice. When no vehicle is dispatched
// the incident is permanently lost and the sentinel reward is returned.
func (e *Engine) Step(selected []int) (float64, bool, StepInfo) {
	e.stepCount++
	if len(e.pending) == 0 {
		return 0, true, StepInfo{}
	}

	head := e.pending[0]
	if e.clock < head.Timestamp {
		delta := head.Timestamp - e.clock
		e.clock = head.Timestamp
		for _, v := range e.fleet {
			v.Advance(float64(delta))
		}
		e.log.Debugf("advancing clock to %d (+%ds)", head.Timestamp, delta)
	}

	e.pending = e.pending[1:]
	in := head

	need := e.RequiredCount(in)
	if len(selected) > need {
		selected = selected[:need]
	}

	// Incident tables may omit per-event durations; the configured
	// defaults stand in for them.
	reaction := in.ReactionSeconds
	if reaction == 0 {
		reaction = e.cfg.ReactionSeconds
	}
	onScene := in.OnSceneSeconds
	if onScene == 0 {
		onScene = e.cfg.OnSceneSeconds
	}

	var (
		rewards []float64
		times   []float64
		used    []int
	)
	for _, id := range selected {
		if id < 0 || id >= len(e.fleet) {
			e.log.Warnf("selected vehicle %d outside fleet of %d", id, len(e.fleet))
			continue
		}
		v := e.fleet[id]
		if !v.Available() {
			continue
		}

		travel, ok := e.oracle.TravelSeconds(in.Index, v.Station)
		if !ok {
			travel = traveltime.Fallback
			e.log.Warnf("no travel time for incident %s from station %s, using fallback %.0fs",
				in.Index, v.Station, travel)
		}

		v.Assign(in.Location, travel, reaction, onScene)
		in.MarkResponded(v.ID, travel)

		vid := v.ID
		station := v.Station
		rt := travel
		rec := model.DispatchRecord{
			IncidentID:    in.ID,
			IncidentIndex: in.Index,
			VehicleID:     &vid,
			Station:       &station,
			ResponseTime:  &rt,
			RiskLevel:     in.RiskLevel,
			Timestamp:     in.Timestamp,
		}
		if len(used) == 0 {
			rec.DispatchedCount = need
		}
		e.records = append(e.records, rec)

		rewards = append(rewards, -(travel * travel))
		times = append(times, travel)
		used = append(used, v.ID)
	}

	if len(used) == 0 {
		e.records = append(e.records, model.DispatchRecord{
			IncidentID:    in.ID,
			IncidentIndex: in.Index,
			RiskLevel:     in.RiskLevel,
			Timestamp:     in.Timestamp,
			Error:         model.ErrNoEnginesDispatched,
		})
		// The incident is neither requeued nor finished: it is lost.
		return LostIncidentReward, false, StepInfo{
			IncidentID: in.ID,
			RiskLevel:  in.RiskLevel,
			Error:      model.ErrNoEnginesDispatched,
		}
	}

	e.finished = append(e.finished, in)
	e.responseTimes = append(e.responseTimes, times...)
	if in.Timestamp > e.clock {
		e.clock = in.Timestamp
	}
	done := e.stepCount >= e.cfg.MaxSteps || len(e.pending) == 0

	return stat.Mean(rewards, nil), done, StepInfo{
		IncidentID:      in.ID,
		RiskLevel:       in.RiskLevel,
		Dispatched:      used,
		MinResponseTime: floats.Min(times),
		ResponseTimes:   times,
	}
}

// RequiredCount resolves the incident's dispatch count against the
// engine's configured default, capped at MaxDispatchPerEvent.
func (e *Engine) RequiredCount(in *model.Incident) int {
	if in == nil {
		return 0
	}
	n := in.RequiredDispatchCount(e.cfg.DefaultDispatchCount)
	if e.cfg.MaxDispatchPerEvent > 0 && n > e.cfg.MaxDispatchPerEvent {
		n = e.cfg.MaxDispatchPerEvent
	}
	return n
}

// Head returns the next incident without consuming it, or nil when the
// queue is empty.
func (e *Engine) Head() *model.Incident {
	if len(e.pending) == 0 {
		return nil
	}
	return e.pending[0]
}

// AvailableIDs lists the ids of currently dispatchable vehicles.
func (e *Engine) AvailableIDs() []int {
	var ids []int
	for _, v := range e.fleet {
		if v.Available() {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// Fleet exposes the vehicle arena. Callers must not mutate the vehicles.
func (e *Engine) Fleet() []*model.Vehicle { return e.fleet }

// Oracle returns the travel-time oracle the engine was built with.
func (e *Engine) Oracle() traveltime.Oracle { return e.oracle }

// Records returns the append-only dispatch log.
func (e *Engine) Records() []model.DispatchRecord { return e.records }

// Finished returns the incidents resolved so far.
func (e *Engine) Finished() []*model.Incident { return e.finished }

// ResponseTimes returns the realized travel times across all steps.
func (e *Engine) ResponseTimes() []float64 { return e.responseTimes }

// Clock returns the simulation wall time in seconds.
func (e *Engine) Clock() int64 { return e.clock }

// StepCount returns the number of Step calls since the last Reset.
func (e *Engine) StepCount() int { return e.stepCount }

// MaxSteps returns the configured step budget.
func (e *Engine) MaxSteps() int { return e.cfg.MaxSteps }

// PendingCount returns the number of incidents still queued.
func (e *Engine) PendingCount() int { return len(e.pending) }
