package env

import (
	"testing"

	"github.com/shanchengnb/fire-egine-dispatch/core/model"
	"github.com/shanchengnb/fire-egine-dispatch/core/sim"
	"github.com/shanchengnb/fire-egine-dispatch/core/traveltime"
)

func testEnv(t *testing.T, adapter ActionAdapter, incidents []*model.Incident) *Env {
	t.Helper()
	cfg := sim.Config{
		MaxSteps: 50,
		Stations: []sim.StationConfig{
			{Name: "A", Count: 1, Home: &model.Location{X: 10, Y: 10}},
			{Name: "B", Count: 1, Home: &model.Location{X: 20, Y: 20}},
		},
	}
	m := traveltime.NewMatrix()
	m.Set("I1", "A", 50)
	m.Set("I1", "B", 120)
	engine, err := sim.NewEngine(cfg, m, nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	ev, err := New(engine, sim.NewEncoder(sim.ObservationConfig{Dim: 96}), adapter, nil)
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	ev.Reset(incidents)
	return ev
}

func call(id int, index string, ts int64, risk string) *model.Incident {
	return &model.Incident{ID: id, Index: index, Timestamp: ts, RiskLevel: risk,
		ReactionSeconds: 30, OnSceneSeconds: 300}
}

func TestEnvResetReturnsObservation(t *testing.T) {
	ev := testEnv(t, DiscreteAdapter{}, []*model.Incident{call(0, "I1", 0, "low risk")})
	obs, meta := ev.Reset(nil)
	if len(obs) != 96 {
		t.Fatalf("expected 96-dim observation got %d", len(obs))
	}
	if meta.StepCount != 0 || meta.PendingIncidents != 1 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestEnvStepDispatchesNearest(t *testing.T) {
	ev := testEnv(t, DiscreteAdapter{}, []*model.Incident{call(0, "I1", 0, "low risk")})
	obs, reward, done, info := ev.Step([]float64{0})
	if len(obs) != 96 {
		t.Fatalf("expected observation with step result")
	}
	if reward != -(50.0 * 50.0) {
		t.Fatalf("expected nearest vehicle reward got %v", reward)
	}
	if len(info.Selected) != 1 || info.Selected[0] != 0 {
		t.Fatalf("expected vehicle 0 got %v", info.Selected)
	}
	if !info.Terminated {
		t.Fatalf("queue drained, terminated flag expected")
	}
	if !done {
		t.Fatalf("expected done on drained queue")
	}
}

func TestEnvStepRankIndexSelectsSecondNearest(t *testing.T) {
	ev := testEnv(t, DiscreteAdapter{}, []*model.Incident{call(0, "I1", 0, "low risk")})
	_, reward, _, info := ev.Step([]float64{1})
	if reward != -(120.0 * 120.0) {
		t.Fatalf("expected second nearest reward got %v", reward)
	}
	if info.Selected[0] != 1 || info.Ranks[0] != 1 {
		t.Fatalf("unexpected selection %+v", info)
	}
}

func TestEnvStepNoAvailableVehicles(t *testing.T) {
	ev := testEnv(t, DiscreteAdapter{}, []*model.Incident{
		call(0, "I1", 0, "low risk"),
		call(1, "I1", 1, "low risk"),
		call(2, "I1", 2, "low risk"),
	})
	// Occupy the whole fleet, then the third incident is lost.
	ev.Step([]float64{0})
	ev.Step([]float64{0})
	_, reward, done, info := ev.Step([]float64{0})
	if reward != sim.LostIncidentReward {
		t.Fatalf("expected sentinel reward got %v", reward)
	}
	if info.Error != model.ErrNoEnginesDispatched {
		t.Fatalf("expected lost-incident error got %+v", info)
	}
	if done {
		t.Fatalf("dispatch failure must not end the episode")
	}
}

func TestEnvStrictAdapterEndsEpisode(t *testing.T) {
	ev := testEnv(t, DiscreteAdapter{Strict: true}, []*model.Incident{call(0, "I1", 0, "low risk")})
	_, reward, done, info := ev.Step([]float64{99})
	if reward != sim.LostIncidentReward || !done {
		t.Fatalf("expected sentinel termination got (%v,%v)", reward, done)
	}
	if info.Error != ErrInvalidActionIndex {
		t.Fatalf("expected invalid action marker got %+v", info)
	}
	// The strict rejection happens before the engine runs.
	if ev.Engine().PendingCount() != 1 {
		t.Fatalf("incident must remain queued after a rejected action")
	}
}

func TestEnvMultiDiscreteHighRisk(t *testing.T) {
	ev := testEnv(t, MultiDiscreteAdapter{}, []*model.Incident{call(0, "I1", 0, "high risk")})
	_, reward, _, info := ev.Step([]float64{0, 1})
	if len(info.Dispatched) != 2 {
		t.Fatalf("expected both vehicles got %v", info.Dispatched)
	}
	want := (-(50.0 * 50.0) + -(120.0 * 120.0)) / 2
	if reward != want {
		t.Fatalf("expected %v got %v", want, reward)
	}
}

func TestEnvContinuousSelection(t *testing.T) {
	ev := testEnv(t, ContinuousAdapter{MaxCandidates: 10}, []*model.Incident{call(0, "I1", 0, "low risk")})
	// Highest score on candidate 1: the farther vehicle.
	_, reward, _, info := ev.Step([]float64{0.2, 0.8})
	if reward != -(120.0 * 120.0) {
		t.Fatalf("expected vehicle 1 reward got %v", reward)
	}
	if info.Selected[0] != 1 {
		t.Fatalf("unexpected selection %v", info.Selected)
	}
}

func TestEnvInfoResponseTimes(t *testing.T) {
	ev := testEnv(t, DiscreteAdapter{}, []*model.Incident{
		call(0, "I1", 0, "low risk"),
		call(1, "I1", 5000, "low risk"),
	})
	ev.Step([]float64{0})
	_, _, _, info := ev.Step([]float64{0})
	if info.LastResponseTime != 50 {
		t.Fatalf("expected last response 50 got %v", info.LastResponseTime)
	}
	if info.AvgResponseTime != 50 {
		t.Fatalf("expected avg 50 got %v", info.AvgResponseTime)
	}
}
