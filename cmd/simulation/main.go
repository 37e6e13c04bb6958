// Command simulation runs the flock without a window and logs its statistics.
//
// Usage:
//
//	simulation [-config flock.json|flock.toml] [-steps 600] [-every 60]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

const snapshotTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "", "JSON or TOML config file (built-in defaults when empty)")
	schemaFile := flag.String("schema", "", "JSON schema for the config file (embedded schema when empty)")
	steps := flag.Int("steps", 600, "number of steps to run")
	every := flag.Int("every", 60, "log the flock statistics every n steps")
	flag.Parse()

	if *steps < 0 || *every < 1 {
		Fatal(fmt.Errorf("steps must be >= 0 and every >= 1, got %d and %d", *steps, *every))
	}
	if err := run(*configFile, *schemaFile, *steps, *every); err != nil {
		Fatal(err)
	}
}

func run(configFile, schemaFile string, steps, every int) error {
	cfg, err := simulation.LoadConfig(configFile, schemaFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := log.New(log.InfoLevel, os.Stdout)
	system, err := actor.NewActorSystem("boids-headless", actor.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer system.Stop(ctx)

	// One snapshot per tick, consumed before the next tick is sent.
	snapshotCh := make(chan *simulation.Snapshot, 1)
	pid, err := system.Spawn(ctx, "world", simulation.NewWorldActor(snapshotCh, cfg))
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}
	snap, err := await(snapshotCh)
	if err != nil {
		return err
	}
	report(logger, snap)

	start := time.Now()
	tick := cfg.Tick()
	for i := 1; i <= steps; i++ {
		if err := actor.Tell(ctx, pid, tick); err != nil {
			return fmt.Errorf("failed to tick world: %w", err)
		}
		if snap, err = await(snapshotCh); err != nil {
			return err
		}
		if snap.Err != nil && !errors.Is(snap.Err, flock.ErrNumericInstability) {
			return snap.Err
		}
		if i%every == 0 || i == steps {
			report(logger, snap)
		}
	}
	elapsed := time.Since(start)
	logger.Infof("%d steps of %d boids in %v (%.1f steps/sec)",
		steps, len(snap.Boids), elapsed.Round(time.Millisecond), float64(steps)/elapsed.Seconds())
	return nil
}

func await(ch <-chan *simulation.Snapshot) (*simulation.Snapshot, error) {
	select {
	case snap := <-ch:
		return snap, nil
	case <-time.After(snapshotTimeout):
		return nil, fmt.Errorf("no snapshot from the world after %v", snapshotTimeout)
	}
}

func report(logger log.Logger, snap *simulation.Snapshot) {
	logger.Infof("step %5d | mean speed %.5f | max speed %.5f | mean force %.5f | anomalies %d",
		snap.Step, snap.Stats.MeanSpeed, snap.Stats.MaxSpeed, snap.Stats.MeanForce, snap.Anomalies)
}

// Fatal prints err to stderr and exits with status 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}
