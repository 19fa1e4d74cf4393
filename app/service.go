package app

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/shanchengnb/fire-egine-dispatch/config"
	"github.com/shanchengnb/fire-egine-dispatch/core/env"
	coremetrics "github.com/shanchengnb/fire-egine-dispatch/core/metrics"
	"github.com/shanchengnb/fire-egine-dispatch/core/model"
	"github.com/shanchengnb/fire-egine-dispatch/core/sim"
	simlog "github.com/shanchengnb/fire-egine-dispatch/core/sim/logging"
	"github.com/shanchengnb/fire-egine-dispatch/data"
	"github.com/shanchengnb/fire-egine-dispatch/infra/logger"
	"github.com/shanchengnb/fire-egine-dispatch/infra/metrics"
	"github.com/shanchengnb/fire-egine-dispatch/infra/mqtt"
	"github.com/shanchengnb/fire-egine-dispatch/internal/eventbus"
)

// Service wires the data loaders, the environment, the baseline policy and
// the exporters into a runnable simulation.
type Service struct {
	cfg       *config.Config
	env       *env.Env
	incidents []*model.Incident
	policy    Policy
	sink      coremetrics.MetricsSink
	store     simlog.LogStore
	bus       *eventbus.Bus
	pub       *mqtt.RecordPublisher
	log       logger.Logger
}

// EpisodeReport summarizes one completed episode.
type EpisodeReport struct {
	Episode             int
	Steps               int
	Finished            int
	Lost                int
	MeanResponseSeconds float64
	P90ResponseSeconds  float64
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("service")

	matrix, err := data.LoadTravelTimes(cfg.Data.TravelTimesPath)
	if err != nil {
		return nil, fmt.Errorf("travel times: %w", err)
	}
	incidents, err := data.LoadIncidents(cfg.Data.IncidentsPath, logger.New("data"))
	if err != nil {
		return nil, fmt.Errorf("incidents: %w", err)
	}
	logg.Infof("loaded %d incidents, %d travel-time rows", len(incidents), matrix.Len())

	engine, err := sim.NewEngine(cfg.Sim.EngineConfig(), matrix, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	enc := sim.NewEncoder(cfg.Observation.EncoderConfig())

	var adapter env.ActionAdapter
	switch cfg.Action.Kind {
	case "multidiscrete":
		adapter = env.MultiDiscreteAdapter{Strict: cfg.Action.Strict}
	case "continuous":
		adapter = env.ContinuousAdapter{MaxCandidates: cfg.Action.MaxCandidates}
	default:
		adapter = env.DiscreteAdapter{Strict: cfg.Action.Strict}
	}
	environment, err := env.New(engine, enc, adapter, logger.New("env"))
	if err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}

	policy, err := NewPolicy(cfg.Run.Policy, cfg.Action.Kind, cfg.Action.MaxCandidates, cfg.Run.Seed)
	if err != nil {
		return nil, err
	}

	sink, err := metrics.FromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var store simlog.LogStore
	switch cfg.DispatchLog.Backend {
	case "sqlite":
		store, err = simlog.NewSQLiteStore(cfg.DispatchLog.Path)
	default:
		store, err = simlog.NewJSONLStore(cfg.DispatchLog.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("dispatch log: %w", err)
	}

	var pub *mqtt.RecordPublisher
	if cfg.MQTT.Enabled {
		pub, err = mqtt.NewRecordPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	return &Service{
		cfg:       cfg,
		env:       environment,
		incidents: incidents,
		policy:    policy,
		sink:      sink,
		store:     store,
		bus:       eventbus.New(),
		pub:       pub,
		log:       logg,
	}, nil
}

// Run executes the configured number of episodes and blocks until they are
// done or the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	drained := make(chan struct{})
	go s.consume(s.bus.Subscribe(), drained)

	for ep := 0; ep < s.cfg.Run.Episodes; ep++ {
		if ctx.Err() != nil {
			break
		}
		report, err := s.runEpisode(ctx, ep)
		if err != nil {
			s.bus.Close()
			<-drained
			return err
		}
		s.log.Infof("episode %d done: steps=%d finished=%d lost=%d mean_response=%.1fs p90_response=%.1fs",
			report.Episode, report.Steps, report.Finished, report.Lost,
			report.MeanResponseSeconds, report.P90ResponseSeconds)
	}

	s.bus.Close()
	<-drained
	return nil
}

func (s *Service) runEpisode(ctx context.Context, episode int) (EpisodeReport, error) {
	engine := s.env.Engine()
	obs, meta := s.env.Reset(cloneIncidents(s.incidents))
	s.log.Infof("episode %d start: policy=%s pending=%d fleet=%d",
		episode, s.policy.Name(), meta.PendingIncidents, len(engine.Fleet()))
	if rec, ok := s.sink.(coremetrics.FleetSizeRecorder); ok {
		if err := rec.RecordFleetSize(len(engine.Fleet())); err != nil {
			s.log.Warnf("fleet size metric: %v", err)
		}
	}

	report := EpisodeReport{Episode: episode}
	recorded := 0
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		head := engine.Head()
		candidates := len(engine.RankAvailable(head))
		required := engine.RequiredCount(head)
		action := s.policy.Act(obs, candidates, required)

		next, reward, done, info := s.env.Step(action)
		obs = next
		report.Steps = info.StepCount

		s.observeStep(reward, info)
		recorded = s.announceRecords(engine, info.StepCount, recorded)

		if done {
			break
		}
	}

	for _, rec := range engine.Records() {
		if rec.Failed() {
			report.Lost++
		}
	}
	report.Finished = len(engine.Finished())
	if times := engine.ResponseTimes(); len(times) > 0 {
		report.MeanResponseSeconds = stat.Mean(times, nil)
		sorted := append([]float64(nil), times...)
		sort.Float64s(sorted)
		report.P90ResponseSeconds = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}

	runID := ""
	if s.pub != nil {
		runID = s.pub.RunID()
	}
	s.bus.Publish(sim.EpisodeEvent{
		RunID:               runID,
		Steps:               report.Steps,
		Finished:            report.Finished,
		Lost:                report.Lost,
		MeanResponseSeconds: report.MeanResponseSeconds,
	})
	return report, nil
}

func (s *Service) observeStep(reward float64, info env.Info) {
	res := coremetrics.StepResult{
		Step:       info.StepCount,
		IncidentID: info.IncidentID,
		RiskLevel:  info.RiskLevel,
		Reward:     reward,
		Dispatched: len(info.Dispatched),
		Lost:       info.Error != "",
		Clock:      info.Clock,
	}
	if err := s.sink.RecordStep(res); err != nil {
		s.log.Warnf("step metric: %v", err)
	}
	if rec, ok := s.sink.(coremetrics.PendingRecorder); ok {
		if err := rec.RecordPendingIncidents(info.PendingIncidents); err != nil {
			s.log.Warnf("pending metric: %v", err)
		}
	}
}

// announceRecords persists every dispatch record appended since the last
// call, publishes it on the bus and reports the realized response times to
// the metrics sink. The store write is synchronous: the dispatch log is the
// board of record and must not lose entries, while bus delivery stays
// best-effort.
func (s *Service) announceRecords(engine *sim.Engine, step, from int) int {
	recs := engine.Records()
	var times []coremetrics.ResponseTime
	for _, rec := range recs[from:] {
		if err := s.store.Append(context.Background(), rec); err != nil {
			s.log.Errorf("dispatch log append: %v", err)
		}
		s.bus.Publish(sim.RecordEvent{Step: step, Record: rec})
		if rec.Failed() || rec.VehicleID == nil {
			continue
		}
		rt := coremetrics.ResponseTime{
			VehicleID: *rec.VehicleID,
			RiskLevel: rec.RiskLevel,
			Seconds:   *rec.ResponseTime,
		}
		if rec.Station != nil {
			rt.Station = *rec.Station
		}
		times = append(times, rt)
	}
	if len(times) > 0 {
		if err := s.sink.RecordResponseTimes(times); err != nil {
			s.log.Warnf("response time metric: %v", err)
		}
	}
	return len(recs)
}

// consume forwards bus events to the MQTT publisher when one is enabled.
// It exits when the bus closes.
func (s *Service) consume(sub <-chan eventbus.Event, done chan<- struct{}) {
	defer close(done)
	for e := range sub {
		switch ev := e.(type) {
		case sim.RecordEvent:
			if s.pub != nil {
				if err := s.pub.Publish(ev.Step, ev.Record); err != nil {
					s.log.Warnf("mqtt publish: %v", err)
				}
			}
		case sim.EpisodeEvent:
			if s.pub != nil {
				s.log.Debugf("episode summary for run %s published", ev.RunID)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Close()
	}
	return s.store.Close()
}

// cloneIncidents deep-copies the loaded incident set so repeated episodes
// start from untouched response fields.
func cloneIncidents(src []*model.Incident) []*model.Incident {
	out := make([]*model.Incident, len(src))
	for i, in := range src {
		cp := *in
		cp.Assigned = false
		cp.ResponderID = 0
		cp.ResponseTime = 0
		out[i] = &cp
	}
	return out
}
