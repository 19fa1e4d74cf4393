// Package env bundles the dispatch engine and the feature encoder into a
// gym-style environment. Action adapters translate agent action encodings
// into ordered vehicle-id lists before the core Step runs; they add no
// invariants of their own.
package env

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/shanchengnb/fire-egine-dispatch/core/logger"
	"github.com/shanchengnb/fire-egine-dispatch/core/model"
	"github.com/shanchengnb/fire-egine-dispatch/core/sim"
)

// ErrInvalidActionIndex marks a step rejected by a strict adapter.
const ErrInvalidActionIndex = "invalid_action_index"

// Meta describes the environment state right after a reset.
type Meta struct {
	StepCount        int
	PendingIncidents int
}

// Info extends the core step outcome with environment-level context.
type Info struct {
	sim.StepInfo
	StepCount        int
	PendingIncidents int
	Clock            int64
	Selected         []int
	Ranks            []int
	LastResponseTime float64
	AvgResponseTime  float64
	Terminated       bool
	Truncated        bool
}

// Env drives one engine through the Reset/Step contract, translating agent
// actions via the configured adapter and attaching observations.
type Env struct {
	engine  *sim.Engine
	enc     *sim.Encoder
	adapter ActionAdapter
	log     logger.Logger
}

// New wires an environment around the given engine and encoder.
func New(engine *sim.Engine, enc *sim.Encoder, adapter ActionAdapter, log logger.Logger) (*Env, error) {
	if engine == nil || enc == nil || adapter == nil {
		return nil, fmt.Errorf("env: nil parameter provided to New")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Env{engine: engine, enc: enc, adapter: adapter, log: log}, nil
}

// Engine exposes the wrapped engine for inspection.
func (ev *Env) Engine() *sim.Engine { return ev.engine }

// Reset reinitializes the simulation and returns the first observation.
// A nil incident set keeps the engine's current queue.
func (ev *Env) Reset(incidents []*model.Incident) ([]float64, Meta) {
	ev.engine.Reset(incidents)
	return ev.enc.Encode(ev.engine), Meta{
		StepCount:        0,
		PendingIncidents: ev.engine.PendingCount(),
	}
}

// Step translates the action, advances the simulation by one incident and
// returns the next observation. Following the training convention, the
// done flag fires only when the step budget is exhausted or the queue has
// drained; dispatch failure alone never ends an episode. The core
// termination signal is still reported via Info.Terminated.
func (ev *Env) Step(action []float64) ([]float64, float64, bool, Info) {
	head := ev.engine.Head()
	ranked := ev.engine.RankAvailable(head)

	if len(ranked) == 0 {
		if head != nil {
			ev.log.Warnf("no available vehicles, incident %d will be lost", head.ID)
		}
		reward, terminated, sinfo := ev.engine.Step(nil)
		return ev.enc.Encode(ev.engine), reward, ev.done(terminated), ev.info(sinfo, nil, nil, terminated)
	}

	required := ev.engine.RequiredCount(head)
	ranks, err := ev.adapter.Ranks(action, len(ranked), required)
	if err != nil {
		ev.log.Errorf("action rejected: %v", err)
		info := ev.info(sim.StepInfo{Error: ErrInvalidActionIndex}, nil, nil, true)
		return ev.enc.Encode(ev.engine), sim.LostIncidentReward, true, info
	}

	ids := make([]int, len(ranks))
	for i, r := range ranks {
		ids[i] = ranked[r]
	}

	reward, terminated, sinfo := ev.engine.Step(ids)
	return ev.enc.Encode(ev.engine), reward, ev.done(terminated), ev.info(sinfo, ids, ranks, terminated)
}

func (ev *Env) done(terminated bool) bool {
	if ev.engine.PendingCount() == 0 && terminated {
		return true
	}
	return ev.engine.StepCount() >= ev.engine.MaxSteps()
}

func (ev *Env) info(sinfo sim.StepInfo, ids, ranks []int, terminated bool) Info {
	info := Info{
		StepInfo:         sinfo,
		StepCount:        ev.engine.StepCount(),
		PendingIncidents: ev.engine.PendingCount(),
		Clock:            ev.engine.Clock(),
		Selected:         ids,
		Ranks:            ranks,
		Terminated:       terminated,
		Truncated:        ev.engine.StepCount() >= ev.engine.MaxSteps(),
	}
	if times := ev.engine.ResponseTimes(); len(times) > 0 {
		info.LastResponseTime = times[len(times)-1]
		info.AvgResponseTime = stat.Mean(times, nil)
	}
	return info
}
