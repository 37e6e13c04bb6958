package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// BoidState is the read-only view of one agent handed to the renderer.
type BoidState struct {
	Pos   geometry.Vector2D
	Vel   geometry.Vector2D
	Force geometry.Vector2D
}

// Snapshot is a copy of the flock after a step, safe to read from another goroutine.
type Snapshot struct {
	Boids     []BoidState
	Step      uint64
	Stats     flock.Stats
	Anomalies int   // agents reset since the world started
	Err       error // outcome of the step that produced this snapshot
}

// WorldActor owns the flock engine. Every *durationpb.Duration it receives
// advances the flock by that much simulated time.
type WorldActor struct {
	cfg *Config
	sim *flock.Simulation
	// Communication with UI
	snapshotCh chan<- *Snapshot
	anomalies  int
	// --- Benchmark Stats ---
	stepCount   int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	return w.populate(ctx.ActorSystem().Logger())
}

// populate builds the engine, the world is not usable before it succeeds.
func (w *WorldActor) populate(logger log.Logger) error {
	sim, err := flock.New(w.cfg.Flock, flock.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to build flock: %w", err)
	}
	w.sim = sim
	w.lastLogTime = time.Now()
	logger.Infof("World is populating %d boids on a %dx%d grid...", sim.Len(), w.cfg.Flock.GridSlices, w.cfg.Flock.GridSlices)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")
		w.pushSnapshot(nil)

	// The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		w.logBenchmarks(ctx.Logger())
		err := w.advance(msg.AsDuration())
		if err != nil && !errors.Is(err, flock.ErrNumericInstability) {
			ctx.Logger().Errorf("World step rejected: %v", err)
		}
		w.pushSnapshot(err)

	default:
		ctx.Unhandled()
	}
}

// advance runs one engine step. An instability is counted and returned, the
// flock stays usable after it.
func (w *WorldActor) advance(dt time.Duration) error {
	err := w.sim.Step(dt.Seconds())
	var unstable *flock.InstabilityError
	if errors.As(err, &unstable) {
		w.anomalies += len(unstable.Agents)
	}
	if err == nil || unstable != nil {
		w.stepCount++
	}
	return err
}

func (w *WorldActor) logBenchmarks(logger log.Logger) {
	if time.Since(w.lastLogTime) >= time.Second {
		stats := w.sim.Stats()
		logger.Infof("📊 STEP RATE: %d/sec | Boids: %d | Mean speed: %.4f | Anomalies: %d",
			w.stepCount, w.sim.Len(), stats.MeanSpeed, w.anomalies)
		w.stepCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot(err error) {
	select {
	case w.snapshotCh <- w.buildSnapshot(err):
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) buildSnapshot(err error) *Snapshot {
	n := w.sim.Len()
	snapshot := &Snapshot{
		Boids:     make([]BoidState, n),
		Step:      w.sim.Steps(),
		Stats:     w.sim.Stats(),
		Anomalies: w.anomalies,
		Err:       err,
	}
	for i := range snapshot.Boids {
		snapshot.Boids[i] = BoidState{
			Pos:   w.sim.PositionOf(i),
			Vel:   w.sim.VelocityOf(i),
			Force: w.sim.ForceOf(i),
		}
	}
	return snapshot
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	if w.sim == nil {
		return nil
	}
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d steps...", w.sim.Steps())
	return nil
}
