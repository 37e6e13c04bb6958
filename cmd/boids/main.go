// Command boids shows a flock of boids on a torus in a window.
//
// Usage:
//
//	boids [-config flock.json|flock.toml] [-schema config.schema.json]
//
// Space pauses and resumes the flock. While paused, right arrow performs a
// single step. D toggles the force and velocity vectors. Esc quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML config file (built-in defaults when empty)")
	schemaFile := flag.String("schema", "", "JSON schema for the config file (embedded schema when empty)")
	flag.Parse()

	if err := run(*configFile, *schemaFile); err != nil {
		Fatal(err)
	}
}

func run(configFile, schemaFile string) error {
	cfg, err := simulation.LoadConfig(configFile, schemaFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := log.New(log.InfoLevel, os.Stdout)
	system, err := actor.NewActorSystem("boids", actor.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer system.Stop(ctx)

	game, err := simulation.GetNewGame(ctx, cfg, system)
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("Boids on a torus (%d agents)", cfg.Flock.AgentCount))
	return ebiten.RunGame(game)
}

// Fatal prints err to stderr and exits with status 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}
